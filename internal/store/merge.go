package store

import (
	"context"
	"fmt"

	"github.com/genrewiki/genrewiki-server/internal/domain"
)

// ApplyCorrection writes a correction's changes through w:
//
//  1. created genres are inserted without edges and receive their IDs;
//  2. created and edited genres get their fields and edges written, with
//     CREATED references resolved to the new IDs;
//  3. deleted genres are removed last, taking every edge pointing at them.
//
// References to created genres that the correction does not contain are
// dropped. Callers are expected to run this inside one transaction.
func ApplyCorrection(ctx context.Context, w GenreWriter, c *domain.Correction) (map[int]int, error) {
	assigned := make(map[int]int, len(c.Create))

	for _, cg := range c.Create {
		g := genreFromDraft(0, cg.Data, nil)
		g.Parents = nil
		g.InfluencedBy = nil
		if err := w.CreateGenre(ctx, g); err != nil {
			return nil, fmt.Errorf("create genre %q: %w", cg.Data.Name, err)
		}
		assigned[cg.LocalID] = g.ID
	}

	for _, cg := range c.Create {
		g := genreFromDraft(assigned[cg.LocalID], cg.Data, assigned)
		if err := w.UpdateGenre(ctx, g); err != nil {
			return nil, fmt.Errorf("link created genre %d: %w", g.ID, err)
		}
	}

	for _, e := range c.Edit {
		g := genreFromDraft(e.TargetID, e.Draft, assigned)
		if err := w.UpdateGenre(ctx, g); err != nil {
			return nil, fmt.Errorf("update genre %d: %w", e.TargetID, err)
		}
	}

	for _, id := range c.Delete {
		if err := w.DeleteGenre(ctx, id); err != nil {
			return nil, fmt.Errorf("delete genre %d: %w", id, err)
		}
	}

	return assigned, nil
}

// genreFromDraft converts a draft into a persisted genre with ID id,
// resolving CREATED references through assigned.
func genreFromDraft(id int, d domain.GenreDraft, assigned map[int]int) *domain.Genre {
	d = d.Clone()
	g := &domain.Genre{
		ID:             id,
		Type:           d.Type,
		Name:           d.Name,
		AlternateNames: d.AlternateNames,
		ShortDesc:      d.ShortDesc,
		LongDesc:       d.LongDesc,
		Trial:          d.Trial,
		Locations:      d.Locations,
		Cultures:       d.Cultures,
	}

	resolve := func(ref domain.GenreRef) (int, bool) {
		if ref.IsExisting() {
			return ref.ID, true
		}
		newID, ok := assigned[ref.ID]
		return newID, ok
	}

	for _, p := range d.Parents {
		if pid, ok := resolve(p); ok {
			g.Parents = append(g.Parents, pid)
		}
	}
	for _, inf := range d.InfluencedBy {
		if sid, ok := resolve(inf.Ref); ok {
			g.InfluencedBy = append(g.InfluencedBy, domain.Influence{ID: sid, Type: inf.Type})
		}
	}

	return g
}
