// Package search provides full-text lookup over the base genre taxonomy
// using an in-memory Bleve index.
package search

import (
	"strconv"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	"github.com/genrewiki/genrewiki-server/internal/util"
)

// GenreDocument is the indexed form of a genre.
type GenreDocument struct {
	ID             string   `json:"id"`
	Type           string   `json:"type"`
	Name           string   `json:"name"`
	AlternateNames []string `json:"alternate_names,omitempty"`
	ShortDesc      string   `json:"short_desc,omitempty"`
	Slug           string   `json:"slug"`
	Trial          bool     `json:"trial"`
}

// DocumentFromGenre converts a genre to its indexed form.
func DocumentFromGenre(g *domain.Genre) *GenreDocument {
	return &GenreDocument{
		ID:             strconv.Itoa(g.ID),
		Type:           string(g.Type),
		Name:           g.Name,
		AlternateNames: g.AlternateNames,
		ShortDesc:      g.ShortDesc,
		Slug:           util.GenreSlug(g.Name),
		Trial:          g.Trial,
	}
}

// ToMap converts the document to a map keyed by the mapped field names.
func (d *GenreDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":    d.ID,
		"type":  d.Type,
		"name":  d.Name,
		"slug":  d.Slug,
		"trial": d.Trial,
	}
	if len(d.AlternateNames) > 0 {
		m["alternate_names"] = d.AlternateNames
	}
	if d.ShortDesc != "" {
		m["short_desc"] = d.ShortDesc
	}
	return m
}
