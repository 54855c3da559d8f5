package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	domainerrors "github.com/genrewiki/genrewiki-server/internal/errors"
	"github.com/genrewiki/genrewiki-server/internal/id"
	"github.com/genrewiki/genrewiki-server/internal/metrics"
	"github.com/genrewiki/genrewiki-server/internal/overlay"
	"github.com/genrewiki/genrewiki-server/internal/store"
	"github.com/genrewiki/genrewiki-server/internal/taxonomy"
	"github.com/genrewiki/genrewiki-server/internal/validation"
)

// CorrectionStore is the persistence the correction service needs.
type CorrectionStore interface {
	store.GenreReader
	store.CorrectionRepository
	store.Merger
}

// CorrectionService drafts, inspects and merges corrections.
//
// Every write loads the correction together with the base taxonomy, applies
// the change to a copy, rebuilds the overlay and only persists the copy when
// the touched genres pass validation, type policy and cycle checks.
// Concurrent writes to the same correction are last-writer-wins.
type CorrectionService struct {
	store     CorrectionStore
	genres    *GenreService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCorrectionService creates a new correction service. genres may be nil;
// when set, its search index is invalidated after every merge.
func NewCorrectionService(st CorrectionStore, genres *GenreService, logger *slog.Logger) *CorrectionService {
	return &CorrectionService{
		store:     st,
		genres:    genres,
		validator: validation.New(),
		logger:    orDiscard(logger),
	}
}

// CreateCorrection starts an empty correction owned by creatorID.
func (s *CorrectionService) CreateCorrection(ctx context.Context, creatorID, name string) (*domain.Correction, error) {
	creatorID = strings.TrimSpace(creatorID)
	if creatorID == "" {
		return nil, domainerrors.Validation("creator id is required")
	}
	if len(name) > 200 {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"name": "must not exceed 200 characters"})
	}

	correctionID, err := id.NewCorrectionID()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate correction id")
	}

	c := &domain.Correction{
		ID:        correctionID,
		Name:      strings.TrimSpace(name),
		CreatorID: creatorID,
		Create:    []domain.CreatedGenre{},
		Edit:      []domain.EditedGenre{},
		Delete:    []int{},
	}
	c.InitTimestamps()

	if err := s.store.CreateCorrection(ctx, c); err != nil {
		return nil, mapStoreError(err, "correction %s", c.ID)
	}

	s.logger.Info("correction created", "correction_id", c.ID, "creator_id", creatorID)
	return c, nil
}

// GetCorrection returns a correction by ID.
func (s *CorrectionService) GetCorrection(ctx context.Context, correctionID string) (*domain.Correction, error) {
	c, err := s.store.GetCorrection(ctx, correctionID)
	if err != nil {
		return nil, mapStoreError(err, "correction %s", correctionID)
	}
	return c, nil
}

// ListCorrections returns every correction, most recently updated first.
func (s *CorrectionService) ListCorrections(ctx context.Context) ([]*domain.Correction, error) {
	list, err := s.store.ListCorrections(ctx)
	if err != nil {
		return nil, mapStoreError(err, "corrections")
	}
	return list, nil
}

// RenameCorrection sets the display name of an open correction.
func (s *CorrectionService) RenameCorrection(ctx context.Context, correctionID, name string) (*domain.Correction, error) {
	if len(name) > 200 {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"name": "must not exceed 200 characters"})
	}
	c, err := s.openCorrection(ctx, correctionID)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(name)
	c.Touch()
	if err := s.store.PutCorrection(ctx, c); err != nil {
		return nil, mapStoreError(err, "correction %s", correctionID)
	}
	return c, nil
}

// DeleteCorrection discards a correction and all its pending changes.
func (s *CorrectionService) DeleteCorrection(ctx context.Context, correctionID string) error {
	if err := s.store.RemoveCorrection(ctx, correctionID); err != nil {
		return mapStoreError(err, "correction %s", correctionID)
	}
	s.logger.Info("correction deleted", "correction_id", correctionID)
	return nil
}

// CreateGenre adds a new genre to the correction and returns its local ID.
func (s *CorrectionService) CreateGenre(ctx context.Context, correctionID string, draft domain.GenreDraft) (int, *domain.Correction, error) {
	draft, err := s.prepareDraft(draft)
	if err != nil {
		return 0, nil, s.reject(err)
	}

	var localID int
	c, err := s.write(ctx, correctionID, func(c *domain.Correction, _ map[int]struct{}) ([]domain.GenreRef, error) {
		localID = c.NextLocalID()
		c.Create = append(c.Create, domain.CreatedGenre{LocalID: localID, Data: draft.Clone()})
		return []domain.GenreRef{domain.CreatedRef(localID)}, nil
	})
	if err != nil {
		return 0, nil, err
	}

	s.logger.Info("genre drafted", "correction_id", correctionID, "local_id", localID, "name", draft.Name)
	return localID, c, nil
}

// UpdateCreatedGenre replaces the draft of a genre created by the correction.
func (s *CorrectionService) UpdateCreatedGenre(ctx context.Context, correctionID string, localID int, draft domain.GenreDraft) (*domain.Correction, error) {
	draft, err := s.prepareDraft(draft)
	if err != nil {
		return nil, s.reject(err)
	}

	return s.write(ctx, correctionID, func(c *domain.Correction, _ map[int]struct{}) ([]domain.GenreRef, error) {
		cg, ok := c.Created(localID)
		if !ok {
			return nil, domainerrors.NotFoundf("created genre %d not found in correction", localID)
		}
		cg.Data = draft.Clone()
		return []domain.GenreRef{domain.CreatedRef(localID)}, nil
	})
}

// RemoveCreatedGenre drops a created genre and every reference the
// correction's other drafts hold to it.
func (s *CorrectionService) RemoveCreatedGenre(ctx context.Context, correctionID string, localID int) (*domain.Correction, error) {
	return s.write(ctx, correctionID, func(c *domain.Correction, _ map[int]struct{}) ([]domain.GenreRef, error) {
		if !c.RemoveCreated(localID) {
			return nil, domainerrors.NotFoundf("created genre %d not found in correction", localID)
		}
		return nil, nil
	})
}

// EditGenre records a full replacement draft for a base genre, replacing any
// earlier edit or delete of it.
func (s *CorrectionService) EditGenre(ctx context.Context, correctionID string, genreID int, draft domain.GenreDraft) (*domain.Correction, error) {
	draft, err := s.prepareDraft(draft)
	if err != nil {
		return nil, s.reject(err)
	}

	c, err := s.write(ctx, correctionID, func(c *domain.Correction, base map[int]struct{}) ([]domain.GenreRef, error) {
		if _, ok := base[genreID]; !ok {
			return nil, domainerrors.NotFoundf("genre %d not found", genreID)
		}
		c.SetEdit(genreID, draft.Clone())
		return []domain.GenreRef{domain.ExistingRef(genreID)}, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("genre edit drafted", "correction_id", correctionID, "genre_id", genreID)
	return c, nil
}

// DeleteGenre marks a base genre for deletion, dropping any pending edit of it.
// Drafts that still reference the genre surface as overlay warnings.
func (s *CorrectionService) DeleteGenre(ctx context.Context, correctionID string, genreID int) (*domain.Correction, error) {
	c, err := s.write(ctx, correctionID, func(c *domain.Correction, base map[int]struct{}) ([]domain.GenreRef, error) {
		if _, ok := base[genreID]; !ok {
			return nil, domainerrors.NotFoundf("genre %d not found", genreID)
		}
		c.MarkDeleted(genreID)
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("genre delete drafted", "correction_id", correctionID, "genre_id", genreID)
	return c, nil
}

// RemovePendingChange reverts a base genre to its persisted state within the
// correction by dropping its edit or delete.
func (s *CorrectionService) RemovePendingChange(ctx context.Context, correctionID string, genreID int) (*domain.Correction, error) {
	return s.write(ctx, correctionID, func(c *domain.Correction, _ map[int]struct{}) ([]domain.GenreRef, error) {
		if !c.RemovePending(genreID) {
			return nil, domainerrors.NotFoundf("correction has no pending change for genre %d", genreID)
		}
		// Reverting can re-type the genre, which re-checks its edges.
		return []domain.GenreRef{domain.ExistingRef(genreID)}, nil
	})
}

// Tree returns the overlay of a correction over the whole base taxonomy.
func (s *CorrectionService) Tree(ctx context.Context, correctionID string) (*overlay.Tree, error) {
	base, c, err := s.fetch(ctx, correctionID)
	if err != nil {
		return nil, err
	}
	return s.build(base, c)
}

// BaseTree returns the overlay of an empty correction: the base taxonomy
// with every tag unset.
func (s *CorrectionService) BaseTree(ctx context.Context) (*overlay.Tree, error) {
	base, err := s.store.ListGenres(ctx)
	if err != nil {
		return nil, mapStoreError(err, "genres")
	}
	return s.build(base, nil)
}

// NodeView returns the overlay view of one genre. Persisted genres take the
// single-genre path; created genres need the whole overlay.
func (s *CorrectionService) NodeView(ctx context.Context, correctionID string, ref domain.GenreRef) (*overlay.Node, []overlay.Warning, error) {
	if ref.IsCreated() {
		t, err := s.Tree(ctx, correctionID)
		if err != nil {
			return nil, nil, err
		}
		n, err := t.Get(ref)
		if err != nil {
			return nil, nil, err
		}
		return n, warningsFor(t.Warnings, ref), nil
	}

	var (
		g *domain.Genre
		c *domain.Correction
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		g, err = s.store.GetGenre(egCtx, ref.ID)
		return mapStoreError(err, "genre %d", ref.ID)
	})
	eg.Go(func() error {
		var err error
		c, err = s.store.GetCorrection(egCtx, correctionID)
		return mapStoreError(err, "correction %s", correctionID)
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	n, warnings, err := overlay.BuildNode(g, c)
	if err != nil {
		return nil, nil, err
	}
	metrics.RecordOverlayBuild(metrics.ScopeNode, time.Since(start), warningKinds(warnings))
	return n, warnings, nil
}

// DescendantChanges returns the distinct change tags below ref in the
// correction's overlay.
func (s *CorrectionService) DescendantChanges(ctx context.Context, correctionID string, ref domain.GenreRef) ([]domain.ChangeTag, error) {
	t, err := s.Tree(ctx, correctionID)
	if err != nil {
		return nil, err
	}
	return t.DescendantChangeTags(ref)
}

// ProjectDraft previews switching a draft to another type. References are
// resolved against the correction's overlay, or against the base taxonomy
// when correctionID is empty.
func (s *CorrectionService) ProjectDraft(ctx context.Context, correctionID string, target domain.GenreType, draft domain.GenreDraft) (domain.GenreDraft, taxonomy.LossReport, error) {
	if !target.Valid() {
		return domain.GenreDraft{}, taxonomy.LossReport{}, domainerrors.Validationf("unknown genre type %q", target)
	}

	var (
		t   *overlay.Tree
		err error
	)
	if correctionID == "" {
		t, err = s.BaseTree(ctx)
	} else {
		t, err = s.Tree(ctx, correctionID)
	}
	if err != nil {
		return domain.GenreDraft{}, taxonomy.LossReport{}, err
	}

	projected, report := taxonomy.ProjectDraft(target, draft, t.TypeOf)
	return projected, report, nil
}

// MergeResult reports the outcome of a merge.
type MergeResult struct {
	Correction *domain.Correction `json:"correction"`
	// Assigned maps the correction's local IDs to the new genre IDs.
	Assigned map[int]int `json:"assigned"`
}

// MergeCorrection applies a correction to the base taxonomy. It refuses
// corrections whose overlay has dangling references, policy violations or
// cycles, so the store can apply them without further checks.
func (s *CorrectionService) MergeCorrection(ctx context.Context, correctionID string) (*MergeResult, error) {
	base, c, err := s.fetch(ctx, correctionID)
	if err != nil {
		return nil, err
	}
	if c.IsMerged() {
		return nil, domainerrors.AlreadyMerged("correction " + correctionID + " is already merged")
	}
	if c.IsEmpty() {
		return nil, domainerrors.Validation("correction has no changes")
	}

	t, err := s.build(base, c)
	if err != nil {
		return nil, err
	}
	if len(t.Warnings) > 0 {
		return nil, s.reject(domainerrors.Conflict("correction has dangling references").WithDetails(t.Warnings))
	}
	if violations := t.CheckPolicy(); len(violations) > 0 {
		return nil, s.reject(domainerrors.TypeMismatch("correction violates the type policy").WithDetails(violations))
	}
	if err := checkCycles(t); err != nil {
		return nil, s.reject(err)
	}

	assigned, err := s.store.MergeCorrection(ctx, c)
	if err != nil {
		return nil, mapStoreError(err, "correction %s", correctionID)
	}

	metrics.RecordMerge()
	if s.genres != nil {
		s.genres.Invalidate()
	}

	s.logger.Info("correction merged",
		"correction_id", correctionID,
		"created", len(c.Create),
		"edited", len(c.Edit),
		"deleted", len(c.Delete),
	)
	return &MergeResult{Correction: c, Assigned: assigned}, nil
}

// mutation applies one change to c. base holds the IDs of every persisted
// genre. It returns the genres whose edges must be re-checked.
type mutation func(c *domain.Correction, base map[int]struct{}) ([]domain.GenreRef, error)

// write runs a mutation against an open correction and persists the result
// if the post-write overlay passes the checks.
func (s *CorrectionService) write(ctx context.Context, correctionID string, apply mutation) (*domain.Correction, error) {
	genres, c, err := s.fetch(ctx, correctionID)
	if err != nil {
		return nil, err
	}
	if c.IsMerged() {
		return nil, domainerrors.AlreadyMerged("correction " + correctionID + " is already merged")
	}

	base := make(map[int]struct{}, len(genres))
	for _, g := range genres {
		base[g.ID] = struct{}{}
	}

	touched, err := apply(c, base)
	if err != nil {
		return nil, s.reject(err)
	}

	t, err := s.build(genres, c)
	if err != nil {
		return nil, s.reject(err)
	}
	if err := checkTouched(t, touched); err != nil {
		return nil, s.reject(err)
	}

	c.Touch()
	if err := s.store.PutCorrection(ctx, c); err != nil {
		return nil, mapStoreError(err, "correction %s", correctionID)
	}
	return c, nil
}

// fetch loads the base taxonomy and a correction concurrently.
func (s *CorrectionService) fetch(ctx context.Context, correctionID string) ([]*domain.Genre, *domain.Correction, error) {
	var (
		genres []*domain.Genre
		c      *domain.Correction
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		genres, err = s.store.ListGenres(egCtx)
		return mapStoreError(err, "genres")
	})
	eg.Go(func() error {
		var err error
		c, err = s.store.GetCorrection(egCtx, correctionID)
		return mapStoreError(err, "correction %s", correctionID)
	})
	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	return genres, c, nil
}

func (s *CorrectionService) openCorrection(ctx context.Context, correctionID string) (*domain.Correction, error) {
	c, err := s.GetCorrection(ctx, correctionID)
	if err != nil {
		return nil, err
	}
	if c.IsMerged() {
		return nil, domainerrors.AlreadyMerged("correction " + correctionID + " is already merged")
	}
	return c, nil
}

func (s *CorrectionService) build(base []*domain.Genre, c *domain.Correction) (*overlay.Tree, error) {
	start := time.Now()
	t, err := overlay.Build(base, c)
	if err != nil {
		return nil, err
	}
	metrics.RecordOverlayBuild(metrics.ScopeTree, time.Since(start), warningKinds(t.Warnings))
	if len(t.Warnings) > 0 && c != nil {
		s.logger.Warn("overlay has dangling references", "correction_id", c.ID, "warnings", len(t.Warnings))
	}
	return t, nil
}

// reject records a refused write and returns err unchanged.
func (s *CorrectionService) reject(err error) error {
	var domainErr *domainerrors.Error
	if domainerrors.As(err, &domainErr) {
		metrics.RecordRejectedWrite(string(domainErr.Code))
	}
	return err
}

func warningKinds(warnings []overlay.Warning) []string {
	kinds := make([]string, len(warnings))
	for i, w := range warnings {
		kinds[i] = string(w.Kind)
	}
	return kinds
}

func warningsFor(warnings []overlay.Warning, ref domain.GenreRef) []overlay.Warning {
	out := []overlay.Warning{}
	for _, w := range warnings {
		if w.Node == ref {
			out = append(out, w)
		}
	}
	return out
}
