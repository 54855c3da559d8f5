package taxonomy

import (
	"github.com/genrewiki/genrewiki-server/internal/domain"
)

// Field names reported in a LossReport.
const (
	FieldLocations = "locations"
	FieldCultures  = "cultures"
)

// TypeResolver returns the type of a referenced genre.
// The second result is false when the reference cannot be resolved.
type TypeResolver func(domain.GenreRef) (domain.GenreType, bool)

// LossReport lists what a type switch would discard from a draft.
type LossReport struct {
	Fields     []string                `json:"fields"`
	Parents    []domain.GenreRef       `json:"parents"`
	Influences []domain.DraftInfluence `json:"influences"`
}

// IsEmpty reports whether the projection lost nothing.
func (r LossReport) IsEmpty() bool {
	return len(r.Fields) == 0 && len(r.Parents) == 0 && len(r.Influences) == 0
}

// ProjectDraft converts a draft to the target type, dropping whatever the
// target type cannot carry: fields it does not use, and parents or
// influences whose type is not allowed for it. References that typeOf
// cannot resolve are kept unless the target type takes no edges of that
// kind at all; they are validated at write time.
func ProjectDraft(target domain.GenreType, draft domain.GenreDraft, typeOf TypeResolver) (domain.GenreDraft, LossReport) {
	out := draft.Clone()
	out.Type = target
	report := LossReport{
		Fields:     []string{},
		Parents:    []domain.GenreRef{},
		Influences: []domain.DraftInfluence{},
	}

	if !HasLocations(target) {
		if len(out.Locations) > 0 {
			report.Fields = append(report.Fields, FieldLocations)
			out.Locations = nil
		}
		if len(out.Cultures) > 0 {
			report.Fields = append(report.Fields, FieldCultures)
			out.Cultures = nil
		}
	}

	out.Parents = out.Parents[:0]
	for _, p := range draft.Parents {
		if t, ok := typeOf(p); !HasParents(target) || (ok && !CanParent(target, t)) {
			report.Parents = append(report.Parents, p)
			continue
		}
		out.Parents = append(out.Parents, p)
	}

	out.InfluencedBy = out.InfluencedBy[:0]
	for _, inf := range draft.InfluencedBy {
		if t, ok := typeOf(inf.Ref); !HasInfluences(target) || (ok && !CanInfluence(target, t)) {
			report.Influences = append(report.Influences, inf)
			continue
		}
		out.InfluencedBy = append(out.InfluencedBy, inf)
	}

	return out, report
}
