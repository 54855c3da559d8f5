package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	"github.com/genrewiki/genrewiki-server/internal/service"
	"github.com/genrewiki/genrewiki-server/internal/taxonomy"
)

func (s *Server) registerTaxonomyRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getTaxonomyPolicy",
		Method:      http.MethodGet,
		Path:        "/api/v1/taxonomy/policy",
		Summary:     "Get type policy",
		Description: "Returns which genre types may parent or influence which, and which types carry locations",
		Tags:        []string{"Taxonomy"},
	}, s.handleGetPolicy)

	huma.Register(s.api, huma.Operation{
		OperationID: "projectDraft",
		Method:      http.MethodPost,
		Path:        "/api/v1/taxonomy/project",
		Summary:     "Preview a type change",
		Description: "Converts a draft to another genre type and reports the fields and edges the conversion drops",
		Tags:        []string{"Taxonomy"},
	}, s.handleProjectDraft)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBaseTree",
		Method:      http.MethodGet,
		Path:        "/api/v1/taxonomy/tree",
		Summary:     "Get base tree",
		Description: "Returns the base taxonomy as an overlay with no pending changes",
		Tags:        []string{"Taxonomy"},
	}, s.handleGetBaseTree)
}

// === DTOs ===

// PolicyOutput wraps the type policy for Huma.
type PolicyOutput struct {
	Body service.Policy
}

// ProjectDraftRequest is the request body for previewing a type change.
type ProjectDraftRequest struct {
	TargetType   string            `json:"target_type" doc:"Genre type to convert to"`
	CorrectionID string            `json:"correction_id,omitempty" doc:"Resolve references against this correction's overlay instead of the base taxonomy"`
	Draft        GenreDraftRequest `json:"draft" doc:"Draft to convert"`
}

// ProjectDraftInput wraps the project request for Huma.
type ProjectDraftInput struct {
	Body ProjectDraftRequest
}

// ProjectDraftResponse contains the converted draft and what it lost.
type ProjectDraftResponse struct {
	Draft    domain.GenreDraft   `json:"draft" doc:"Draft converted to the target type"`
	Lost     taxonomy.LossReport `json:"lost" doc:"Fields and edges dropped by the conversion"`
	Lossless bool                `json:"lossless" doc:"True when nothing was dropped"`
}

// ProjectDraftOutput wraps the project response for Huma.
type ProjectDraftOutput struct {
	Body ProjectDraftResponse
}

// === Handlers ===

func (s *Server) handleGetPolicy(_ context.Context, _ *struct{}) (*PolicyOutput, error) {
	return &PolicyOutput{Body: s.services.Genre.Policy()}, nil
}

func (s *Server) handleProjectDraft(ctx context.Context, input *ProjectDraftInput) (*ProjectDraftOutput, error) {
	target := domain.GenreType(strings.ToUpper(strings.TrimSpace(input.Body.TargetType)))

	draft, lost, err := s.services.Correction.ProjectDraft(ctx, input.Body.CorrectionID, target, input.Body.Draft.toDomain())
	if err != nil {
		return nil, err
	}

	return &ProjectDraftOutput{
		Body: ProjectDraftResponse{
			Draft:    draft,
			Lost:     lost,
			Lossless: lost.IsEmpty(),
		},
	}, nil
}

func (s *Server) handleGetBaseTree(ctx context.Context, _ *struct{}) (*TreeOutput, error) {
	t, err := s.services.Correction.BaseTree(ctx)
	if err != nil {
		return nil, err
	}
	return &TreeOutput{Body: newTreeResponse("", t)}, nil
}
