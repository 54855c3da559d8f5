package domain

import (
	"slices"
	"time"
)

// GenreType classifies a genre within the taxonomy.
type GenreType string

// Genre types.
const (
	GenreTypeMeta  GenreType = "META"
	GenreTypeScene GenreType = "SCENE"
	GenreTypeStyle GenreType = "STYLE"
	GenreTypeTrend GenreType = "TREND"
)

// GenreTypes lists every genre type in display order.
var GenreTypes = []GenreType{GenreTypeMeta, GenreTypeScene, GenreTypeStyle, GenreTypeTrend}

// Valid reports whether t is one of the known genre types.
func (t GenreType) Valid() bool {
	return slices.Contains(GenreTypes, t)
}

// InfluenceType optionally qualifies an influence edge.
type InfluenceType string

// Influence types. The zero value means unspecified.
const (
	InfluenceUnspecified InfluenceType = ""
	InfluenceHistorical  InfluenceType = "HISTORICAL"
	InfluenceSonic       InfluenceType = "SONIC"
)

// Location is a place a scene is associated with.
type Location struct {
	Country string `json:"country" yaml:"country" validate:"required,iso3166_1_alpha2"`
	Region  string `json:"region,omitempty" yaml:"region,omitempty" validate:"max=200"`
	City    string `json:"city,omitempty" yaml:"city,omitempty" validate:"max=200"`
}

// Influence is an influence edge on a persisted genre.
// On InfluencedBy the ID is the influencer; on Influences it is the influenced genre.
type Influence struct {
	ID   int           `json:"id"`
	Type InfluenceType `json:"influence_type,omitempty"`
}

// Genre is a persisted node of the base taxonomy.
// Parents and InfluencedBy are the stored edges; Children and Influences are
// derived from the stored edges of other genres and are never written back.
type Genre struct {
	ID             int         `json:"id"`
	Type           GenreType   `json:"type"`
	Name           string      `json:"name"`
	AlternateNames []string    `json:"alternate_names,omitempty"`
	ShortDesc      string      `json:"short_desc,omitempty"`
	LongDesc       string      `json:"long_desc,omitempty"`
	Trial          bool        `json:"trial"`
	Locations      []Location  `json:"locations,omitempty"`
	Cultures       []string    `json:"cultures,omitempty"`
	Parents        []int       `json:"parents,omitempty"`
	InfluencedBy   []Influence `json:"influenced_by,omitempty"`
	Children       []int       `json:"children,omitempty"`
	Influences     []Influence `json:"influences,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// IsRoot returns true if this genre has no parents.
func (g *Genre) IsRoot() bool {
	return len(g.Parents) == 0
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
func (g *Genre) InitTimestamps() {
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now
}

// Touch updates the UpdatedAt timestamp to the current time.
func (g *Genre) Touch() {
	g.UpdatedAt = time.Now()
}

// Draft converts a persisted genre into an edit draft with EXISTS references.
func (g *Genre) Draft() GenreDraft {
	d := GenreDraft{
		Type:           g.Type,
		Name:           g.Name,
		AlternateNames: slices.Clone(g.AlternateNames),
		ShortDesc:      g.ShortDesc,
		LongDesc:       g.LongDesc,
		Trial:          g.Trial,
		Locations:      slices.Clone(g.Locations),
		Cultures:       slices.Clone(g.Cultures),
	}
	for _, p := range g.Parents {
		d.Parents = append(d.Parents, ExistingRef(p))
	}
	for _, inf := range g.InfluencedBy {
		d.InfluencedBy = append(d.InfluencedBy, DraftInfluence{Ref: ExistingRef(inf.ID), Type: inf.Type})
	}
	return d
}

// GenreDraft is the full proposed state of a genre inside a correction.
// Edits carry a complete replacement draft, not a diff.
type GenreDraft struct {
	Type           GenreType        `json:"type" yaml:"type" validate:"required,oneof=META SCENE STYLE TREND"`
	Name           string           `json:"name" yaml:"name" validate:"required,notblank,max=200"`
	AlternateNames []string         `json:"alternate_names,omitempty" yaml:"alternate_names,omitempty" validate:"dive,required,max=200"`
	ShortDesc      string           `json:"short_desc,omitempty" yaml:"short_desc,omitempty" validate:"max=1000"`
	LongDesc       string           `json:"long_desc,omitempty" yaml:"long_desc,omitempty"`
	Trial          bool             `json:"trial" yaml:"trial"`
	Locations      []Location       `json:"locations,omitempty" yaml:"locations,omitempty" validate:"dive"`
	Cultures       []string         `json:"cultures,omitempty" yaml:"cultures,omitempty" validate:"dive,required,notblank"`
	Parents        []GenreRef       `json:"parents,omitempty" yaml:"-" validate:"dive"`
	InfluencedBy   []DraftInfluence `json:"influenced_by,omitempty" yaml:"-" validate:"dive"`
}

// DraftInfluence is an influence edge inside a draft.
type DraftInfluence struct {
	Ref  GenreRef      `json:"ref"`
	Type InfluenceType `json:"influence_type,omitempty" validate:"omitempty,oneof=HISTORICAL SONIC"`
}

// Clone returns a deep copy of the draft.
func (d GenreDraft) Clone() GenreDraft {
	d.AlternateNames = slices.Clone(d.AlternateNames)
	d.Locations = slices.Clone(d.Locations)
	d.Cultures = slices.Clone(d.Cultures)
	d.Parents = slices.Clone(d.Parents)
	d.InfluencedBy = slices.Clone(d.InfluencedBy)
	return d
}

// ReferencesTo reports whether the draft has a parent or influence edge to ref.
func (d *GenreDraft) ReferencesTo(ref GenreRef) bool {
	if slices.Contains(d.Parents, ref) {
		return true
	}
	return slices.ContainsFunc(d.InfluencedBy, func(inf DraftInfluence) bool { return inf.Ref == ref })
}

// DropReferencesTo removes every parent and influence edge to ref.
func (d *GenreDraft) DropReferencesTo(ref GenreRef) {
	d.Parents = slices.DeleteFunc(d.Parents, func(p GenreRef) bool { return p == ref })
	d.InfluencedBy = slices.DeleteFunc(d.InfluencedBy, func(inf DraftInfluence) bool { return inf.Ref == ref })
}
