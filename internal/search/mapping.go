package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve mapping for genre documents.
// Names use the simple analyzer so "Post-Punk" tokenizes to post, punk
// without stemming; descriptions get English stemming.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	nameField := bleve.NewTextFieldMapping()
	nameField.Analyzer = simple.Name
	nameField.Store = true
	nameField.IncludeTermVectors = true // highlighting
	docMapping.AddFieldMappingsAt("name", nameField)

	altField := bleve.NewTextFieldMapping()
	altField.Analyzer = simple.Name
	altField.Store = true
	docMapping.AddFieldMappingsAt("alternate_names", altField)

	descField := bleve.NewTextFieldMapping()
	descField.Analyzer = en.AnalyzerName
	descField.Store = false
	docMapping.AddFieldMappingsAt("short_desc", descField)

	for _, field := range []string{"id", "type", "slug"} {
		kw := bleve.NewTextFieldMapping()
		kw.Analyzer = keyword.Name
		kw.Store = true
		docMapping.AddFieldMappingsAt(field, kw)
	}

	trialField := bleve.NewBooleanFieldMapping()
	trialField.Store = true
	docMapping.AddFieldMappingsAt("trial", trialField)

	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}
