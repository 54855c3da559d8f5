package service

import (
	"fmt"
	"strings"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	domainerrors "github.com/genrewiki/genrewiki-server/internal/errors"
	"github.com/genrewiki/genrewiki-server/internal/overlay"
	"github.com/genrewiki/genrewiki-server/internal/taxonomy"
	"github.com/genrewiki/genrewiki-server/internal/util"
)

// prepareDraft returns a normalized copy of d that passes validation.
func (s *CorrectionService) prepareDraft(d domain.GenreDraft) (domain.GenreDraft, error) {
	d = d.Clone()
	d.Name = strings.TrimSpace(d.Name)
	d.ShortDesc = strings.TrimSpace(d.ShortDesc)
	d.LongDesc = util.MarkdownDescription(d.LongDesc)
	if err := s.validateDraft(d); err != nil {
		return domain.GenreDraft{}, err
	}
	return d, nil
}

// validateDraft applies the struct rules and the per-type field rules.
func (s *CorrectionService) validateDraft(d domain.GenreDraft) error {
	if err := s.validator.Validate(d); err != nil {
		return err
	}
	if taxonomy.HasLocations(d.Type) {
		return nil
	}
	details := map[string]string{}
	if len(d.Locations) > 0 {
		details[taxonomy.FieldLocations] = "only applies to SCENE genres"
	}
	if len(d.Cultures) > 0 {
		details[taxonomy.FieldCultures] = "only applies to SCENE genres"
	}
	if len(details) > 0 {
		return domainerrors.ValidationWithDetails("validation failed", details)
	}
	return nil
}

// checkTouched verifies the edges of the touched genres in the post-write
// overlay: every reference resolves, every edge is allowed by the type
// policy in both directions, and the overlay stays acyclic.
func checkTouched(t *overlay.Tree, touched []domain.GenreRef) error {
	if len(touched) == 0 {
		return nil
	}
	isTouched := make(map[domain.GenreRef]bool, len(touched))
	for _, ref := range touched {
		isTouched[ref] = true
	}

	for _, w := range t.Warnings {
		if !isTouched[w.Node] {
			continue
		}
		if w.Kind == overlay.WarningDeletedReference {
			return domainerrors.Conflictf("%s %s is deleted by this correction", w.Relation, w.Target).WithDetails(w)
		}
		return domainerrors.NotFoundf("%s %s not found", w.Relation, w.Target).WithDetails(w)
	}

	var violations []overlay.Violation
	for _, v := range t.CheckPolicy() {
		if isTouched[v.Node] || isTouched[v.Target] {
			violations = append(violations, v)
		}
	}
	if len(violations) > 0 {
		return domainerrors.TypeMismatch(describeViolation(violations[0])).WithDetails(violations)
	}

	return checkCycles(t)
}

func checkCycles(t *overlay.Tree) error {
	if path := t.FindParentCycle(); path != nil {
		return domainerrors.CycleDetected("parent edges form a cycle", path)
	}
	if path := t.FindInfluenceCycle(); path != nil {
		return domainerrors.CycleDetected("influence edges form a cycle", path)
	}
	return nil
}

func describeViolation(v overlay.Violation) string {
	if v.Relation == overlay.RelationParent {
		return fmt.Sprintf("a %s genre cannot have a %s parent (%s -> %s)", v.NodeType, v.TargetType, v.Node, v.Target)
	}
	return fmt.Sprintf("a %s genre cannot be influenced by a %s genre (%s <- %s)", v.NodeType, v.TargetType, v.Node, v.Target)
}
