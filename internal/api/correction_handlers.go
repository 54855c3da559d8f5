package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	"github.com/genrewiki/genrewiki-server/internal/service"
)

func (s *Server) registerCorrectionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createCorrection",
		Method:        http.MethodPost,
		Path:          "/api/v1/corrections",
		Summary:       "Create correction",
		Description:   "Starts an empty correction owned by the calling account",
		Tags:          []string{"Corrections"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateCorrection)

	huma.Register(s.api, huma.Operation{
		OperationID: "listCorrections",
		Method:      http.MethodGet,
		Path:        "/api/v1/corrections",
		Summary:     "List corrections",
		Description: "Returns every correction, most recently updated first",
		Tags:        []string{"Corrections"},
	}, s.handleListCorrections)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCorrection",
		Method:      http.MethodGet,
		Path:        "/api/v1/corrections/{id}",
		Summary:     "Get correction",
		Description: "Returns a correction with its pending creates, edits and deletes",
		Tags:        []string{"Corrections"},
	}, s.handleGetCorrection)

	huma.Register(s.api, huma.Operation{
		OperationID: "renameCorrection",
		Method:      http.MethodPatch,
		Path:        "/api/v1/corrections/{id}",
		Summary:     "Rename correction",
		Description: "Sets the display name of an open correction",
		Tags:        []string{"Corrections"},
	}, s.handleRenameCorrection)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteCorrection",
		Method:        http.MethodDelete,
		Path:          "/api/v1/corrections/{id}",
		Summary:       "Delete correction",
		Description:   "Discards a correction and all of its pending changes",
		Tags:          []string{"Corrections"},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteCorrection)

	huma.Register(s.api, huma.Operation{
		OperationID: "mergeCorrection",
		Method:      http.MethodPost,
		Path:        "/api/v1/corrections/{id}/merge",
		Summary:     "Merge correction",
		Description: "Applies the correction to the base taxonomy in one transaction",
		Tags:        []string{"Corrections"},
	}, s.handleMergeCorrection)
}

// === DTOs ===

// CreateCorrectionRequest is the request body for creating a correction.
type CreateCorrectionRequest struct {
	Name string `json:"name,omitempty" maxLength:"200" doc:"Display name"`
}

// CreateCorrectionInput wraps the create correction request for Huma.
type CreateCorrectionInput struct {
	AccountID string `header:"X-Account-ID" doc:"Account creating the correction"`
	Body      CreateCorrectionRequest
}

// CorrectionIDInput addresses a single correction.
type CorrectionIDInput struct {
	ID string `path:"id" doc:"Correction ID"`
}

// RenameCorrectionRequest is the request body for renaming a correction.
type RenameCorrectionRequest struct {
	Name string `json:"name" maxLength:"200" doc:"New display name"`
}

// RenameCorrectionInput wraps the rename request for Huma.
type RenameCorrectionInput struct {
	ID   string `path:"id" doc:"Correction ID"`
	Body RenameCorrectionRequest
}

// CorrectionOutput wraps a correction for Huma.
type CorrectionOutput struct {
	Body *domain.Correction
}

// ListCorrectionsResponse contains a list of corrections.
type ListCorrectionsResponse struct {
	Corrections []*domain.Correction `json:"corrections" doc:"Corrections, most recently updated first"`
}

// ListCorrectionsOutput wraps the list corrections response for Huma.
type ListCorrectionsOutput struct {
	Body ListCorrectionsResponse
}

// MergeCorrectionOutput wraps the merge result for Huma.
type MergeCorrectionOutput struct {
	Body *service.MergeResult
}

// === Handlers ===

func (s *Server) handleCreateCorrection(ctx context.Context, input *CreateCorrectionInput) (*CorrectionOutput, error) {
	c, err := s.services.Correction.CreateCorrection(ctx, input.AccountID, input.Body.Name)
	if err != nil {
		return nil, err
	}
	return &CorrectionOutput{Body: c}, nil
}

func (s *Server) handleListCorrections(ctx context.Context, _ *struct{}) (*ListCorrectionsOutput, error) {
	list, err := s.services.Correction.ListCorrections(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*domain.Correction{}
	}
	return &ListCorrectionsOutput{Body: ListCorrectionsResponse{Corrections: list}}, nil
}

func (s *Server) handleGetCorrection(ctx context.Context, input *CorrectionIDInput) (*CorrectionOutput, error) {
	c, err := s.services.Correction.GetCorrection(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CorrectionOutput{Body: c}, nil
}

func (s *Server) handleRenameCorrection(ctx context.Context, input *RenameCorrectionInput) (*CorrectionOutput, error) {
	c, err := s.services.Correction.RenameCorrection(ctx, input.ID, input.Body.Name)
	if err != nil {
		return nil, err
	}
	return &CorrectionOutput{Body: c}, nil
}

func (s *Server) handleDeleteCorrection(ctx context.Context, input *CorrectionIDInput) (*struct{}, error) {
	if err := s.services.Correction.DeleteCorrection(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}

func (s *Server) handleMergeCorrection(ctx context.Context, input *CorrectionIDInput) (*MergeCorrectionOutput, error) {
	res, err := s.services.Correction.MergeCorrection(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &MergeCorrectionOutput{Body: res}, nil
}
