// Package seed loads a taxonomy described in YAML into the store. Seeding is
// an ordinary correction of creates, merged through the same checks as any
// other correction.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	domainerrors "github.com/genrewiki/genrewiki-server/internal/errors"
	"github.com/genrewiki/genrewiki-server/internal/graph"
	"github.com/genrewiki/genrewiki-server/internal/service"
	"github.com/genrewiki/genrewiki-server/internal/store"
	"github.com/genrewiki/genrewiki-server/internal/util"
)

// AccountID is recorded as the creator of seed corrections.
const AccountID = "system"

//go:embed taxonomy.yaml
var defaultTaxonomy []byte

// DefaultTaxonomy returns the embedded default taxonomy document.
func DefaultTaxonomy() []byte {
	return bytes.Clone(defaultTaxonomy)
}

// File is a taxonomy document.
type File struct {
	Genres []Entry `yaml:"genres"`
}

// Entry is one genre of a taxonomy document. Edges name other entries by slug.
type Entry struct {
	domain.GenreDraft `yaml:",inline"`

	Parents      []string         `yaml:"parents,omitempty"`
	InfluencedBy []InfluenceEntry `yaml:"influenced_by,omitempty"`
}

// InfluenceEntry is an influence edge of a taxonomy document.
type InfluenceEntry struct {
	Slug string               `yaml:"slug"`
	Type domain.InfluenceType `yaml:"type,omitempty"`
}

// Slug returns the slug other entries use to reference e.
func (e *Entry) Slug() string {
	return util.GenreSlug(e.Name)
}

func (e *Entry) deps() []string {
	deps := make([]string, 0, len(e.Parents)+len(e.InfluencedBy))
	deps = append(deps, e.Parents...)
	for _, inf := range e.InfluencedBy {
		deps = append(deps, inf.Slug)
	}
	return deps
}

// Parse decodes a taxonomy document, rejecting unknown keys.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		return nil, domainerrors.Validationf("parse taxonomy: %v", err)
	}
	return &f, nil
}

// Plan orders the entries so every genre comes after its parents and
// influences. It fails on duplicate slugs, unknown references and cycles.
func (f *File) Plan() ([]*Entry, error) {
	bySlug := make(map[string]*Entry, len(f.Genres))
	slugs := make([]string, 0, len(f.Genres))
	for i := range f.Genres {
		e := &f.Genres[i]
		slug := e.Slug()
		if slug == "" {
			return nil, domainerrors.Validationf("genre %d has no usable name", i)
		}
		if _, dup := bySlug[slug]; dup {
			return nil, domainerrors.Conflictf("duplicate genre slug %q", slug)
		}
		bySlug[slug] = e
		slugs = append(slugs, slug)
	}

	for _, slug := range slugs {
		for _, dep := range bySlug[slug].deps() {
			if _, ok := bySlug[dep]; !ok {
				return nil, domainerrors.NotFoundf("genre %q references unknown genre %q", slug, dep)
			}
		}
	}

	order, cycle := graph.TopoOrder(slugs, func(slug string) []string { return bySlug[slug].deps() })
	if cycle != nil {
		return nil, domainerrors.CycleDetected("taxonomy edges form a cycle", cycle)
	}

	plan := make([]*Entry, 0, len(order))
	for _, slug := range order {
		plan = append(plan, bySlug[slug])
	}
	return plan, nil
}

// draft resolves the entry's slug references to correction-local refs.
func (e *Entry) draft(localIDs map[string]int) domain.GenreDraft {
	d := e.GenreDraft.Clone()
	d.Parents = nil
	d.InfluencedBy = nil
	for _, p := range e.Parents {
		d.Parents = append(d.Parents, domain.CreatedRef(localIDs[p]))
	}
	for _, inf := range e.InfluencedBy {
		d.InfluencedBy = append(d.InfluencedBy, domain.DraftInfluence{
			Ref:  domain.CreatedRef(localIDs[inf.Slug]),
			Type: inf.Type,
		})
	}
	return d
}

// Seeder merges taxonomy documents into the store.
type Seeder struct {
	corrections *service.CorrectionService
	genres      store.GenreReader
	logger      *slog.Logger
}

// NewSeeder creates a new seeder.
func NewSeeder(corrections *service.CorrectionService, genres store.GenreReader, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Seeder{corrections: corrections, genres: genres, logger: logger}
}

// SeedDefaults merges the embedded taxonomy when the store has no genres.
// It returns nil without error when the store is already populated.
func (s *Seeder) SeedDefaults(ctx context.Context) (*service.MergeResult, error) {
	existing, err := s.genres.ListGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("check existing genres: %w", err)
	}
	if len(existing) > 0 {
		s.logger.Debug("store already has genres, skipping default taxonomy", "genres", len(existing))
		return nil, nil
	}
	return s.Seed(ctx, defaultTaxonomy, "Default taxonomy")
}

// Seed drafts every genre of the document into a new correction and merges it.
// The correction is discarded when any draft or the merge is rejected.
func (s *Seeder) Seed(ctx context.Context, data []byte, name string) (*service.MergeResult, error) {
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	plan, err := f.Plan()
	if err != nil {
		return nil, err
	}

	c, err := s.corrections.CreateCorrection(ctx, AccountID, name)
	if err != nil {
		return nil, err
	}

	res, err := s.apply(ctx, c.ID, plan)
	if err != nil {
		if derr := s.corrections.DeleteCorrection(ctx, c.ID); derr != nil {
			s.logger.Warn("failed to discard seed correction", "correction_id", c.ID, "error", derr)
		}
		return nil, err
	}

	s.logger.Info("taxonomy seeded", "correction_id", c.ID, "genres", len(res.Assigned))
	return res, nil
}

func (s *Seeder) apply(ctx context.Context, correctionID string, plan []*Entry) (*service.MergeResult, error) {
	localIDs := make(map[string]int, len(plan))
	for _, e := range plan {
		localID, _, err := s.corrections.CreateGenre(ctx, correctionID, e.draft(localIDs))
		if err != nil {
			return nil, fmt.Errorf("draft %q: %w", e.Name, err)
		}
		localIDs[e.Slug()] = localID
	}
	return s.corrections.MergeCorrection(ctx, correctionID)
}
