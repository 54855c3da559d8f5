package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/genrewiki/genrewiki-server/internal/domain"
)

func (s *Server) registerChangeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createGenreInCorrection",
		Method:        http.MethodPost,
		Path:          "/api/v1/corrections/{id}/created",
		Summary:       "Draft a new genre",
		Description:   "Adds a genre that exists only inside the correction until it is merged",
		Tags:          []string{"Changes"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCreatedGenre",
		Method:      http.MethodPut,
		Path:        "/api/v1/corrections/{id}/created/{localId}",
		Summary:     "Update a drafted genre",
		Description: "Replaces the draft of a genre created by the correction",
		Tags:        []string{"Changes"},
	}, s.handleUpdateCreatedGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeCreatedGenre",
		Method:      http.MethodDelete,
		Path:        "/api/v1/corrections/{id}/created/{localId}",
		Summary:     "Remove a drafted genre",
		Description: "Drops a created genre and every reference the correction holds to it",
		Tags:        []string{"Changes"},
	}, s.handleRemoveCreatedGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "editGenre",
		Method:      http.MethodPut,
		Path:        "/api/v1/corrections/{id}/edits/{genreId}",
		Summary:     "Edit a genre",
		Description: "Records a full replacement draft for a base genre",
		Tags:        []string{"Changes"},
	}, s.handleEditGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteGenre",
		Method:      http.MethodPost,
		Path:        "/api/v1/corrections/{id}/deletes/{genreId}",
		Summary:     "Delete a genre",
		Description: "Marks a base genre for deletion, dropping any pending edit of it",
		Tags:        []string{"Changes"},
	}, s.handleDeleteGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "revertGenre",
		Method:      http.MethodDelete,
		Path:        "/api/v1/corrections/{id}/changes/{genreId}",
		Summary:     "Revert a genre",
		Description: "Drops the pending edit or delete of a base genre",
		Tags:        []string{"Changes"},
	}, s.handleRevertGenre)
}

// === DTOs ===

// GenreDraftRequest is the full proposed state of a genre.
type GenreDraftRequest struct {
	Type           domain.GenreType        `json:"type" doc:"META, SCENE, STYLE or TREND"`
	Name           string                  `json:"name" doc:"Primary name"`
	AlternateNames []string                `json:"alternate_names,omitempty" doc:"Other names the genre goes by"`
	ShortDesc      string                  `json:"short_desc,omitempty" doc:"One-paragraph summary"`
	LongDesc       string                  `json:"long_desc,omitempty" doc:"Full description"`
	Trial          bool                    `json:"trial,omitempty" doc:"Genre is provisional"`
	Locations      []domain.Location       `json:"locations,omitempty" doc:"Places a scene is tied to (SCENE only)"`
	Cultures       []string                `json:"cultures,omitempty" doc:"Cultures a scene is tied to (SCENE only)"`
	Parents        []domain.GenreRef       `json:"parents,omitempty" doc:"Parent genres"`
	InfluencedBy   []domain.DraftInfluence `json:"influenced_by,omitempty" doc:"Genres this genre was influenced by"`
}

func (r GenreDraftRequest) toDomain() domain.GenreDraft {
	return domain.GenreDraft{
		Type:           r.Type,
		Name:           r.Name,
		AlternateNames: r.AlternateNames,
		ShortDesc:      r.ShortDesc,
		LongDesc:       r.LongDesc,
		Trial:          r.Trial,
		Locations:      r.Locations,
		Cultures:       r.Cultures,
		Parents:        r.Parents,
		InfluencedBy:   r.InfluencedBy,
	}
}

// CreateGenreInput wraps a new genre draft for Huma.
type CreateGenreInput struct {
	ID   string `path:"id" doc:"Correction ID"`
	Body GenreDraftRequest
}

// CreateGenreResponse reports the local ID of a drafted genre.
type CreateGenreResponse struct {
	LocalID    int                `json:"local_id" doc:"Correction-local ID of the new genre"`
	Correction *domain.Correction `json:"correction" doc:"Updated correction"`
}

// CreateGenreOutput wraps the create genre response for Huma.
type CreateGenreOutput struct {
	Body CreateGenreResponse
}

// UpdateCreatedGenreInput wraps a replacement draft for a created genre.
type UpdateCreatedGenreInput struct {
	ID      string `path:"id" doc:"Correction ID"`
	LocalID int    `path:"localId" doc:"Correction-local genre ID"`
	Body    GenreDraftRequest
}

// CreatedGenreInput addresses a created genre.
type CreatedGenreInput struct {
	ID      string `path:"id" doc:"Correction ID"`
	LocalID int    `path:"localId" doc:"Correction-local genre ID"`
}

// EditGenreInput wraps a replacement draft for a base genre.
type EditGenreInput struct {
	ID      string `path:"id" doc:"Correction ID"`
	GenreID int    `path:"genreId" doc:"Base genre ID"`
	Body    GenreDraftRequest
}

// CorrectionGenreInput addresses a base genre within a correction.
type CorrectionGenreInput struct {
	ID      string `path:"id" doc:"Correction ID"`
	GenreID int    `path:"genreId" doc:"Base genre ID"`
}

// === Handlers ===

func (s *Server) handleCreateGenre(ctx context.Context, input *CreateGenreInput) (*CreateGenreOutput, error) {
	localID, c, err := s.services.Correction.CreateGenre(ctx, input.ID, input.Body.toDomain())
	if err != nil {
		return nil, err
	}
	return &CreateGenreOutput{Body: CreateGenreResponse{LocalID: localID, Correction: c}}, nil
}

func (s *Server) handleUpdateCreatedGenre(ctx context.Context, input *UpdateCreatedGenreInput) (*CorrectionOutput, error) {
	c, err := s.services.Correction.UpdateCreatedGenre(ctx, input.ID, input.LocalID, input.Body.toDomain())
	if err != nil {
		return nil, err
	}
	return &CorrectionOutput{Body: c}, nil
}

func (s *Server) handleRemoveCreatedGenre(ctx context.Context, input *CreatedGenreInput) (*CorrectionOutput, error) {
	c, err := s.services.Correction.RemoveCreatedGenre(ctx, input.ID, input.LocalID)
	if err != nil {
		return nil, err
	}
	return &CorrectionOutput{Body: c}, nil
}

func (s *Server) handleEditGenre(ctx context.Context, input *EditGenreInput) (*CorrectionOutput, error) {
	c, err := s.services.Correction.EditGenre(ctx, input.ID, input.GenreID, input.Body.toDomain())
	if err != nil {
		return nil, err
	}
	return &CorrectionOutput{Body: c}, nil
}

func (s *Server) handleDeleteGenre(ctx context.Context, input *CorrectionGenreInput) (*CorrectionOutput, error) {
	c, err := s.services.Correction.DeleteGenre(ctx, input.ID, input.GenreID)
	if err != nil {
		return nil, err
	}
	return &CorrectionOutput{Body: c}, nil
}

func (s *Server) handleRevertGenre(ctx context.Context, input *CorrectionGenreInput) (*CorrectionOutput, error) {
	c, err := s.services.Correction.RemovePendingChange(ctx, input.ID, input.GenreID)
	if err != nil {
		return nil, err
	}
	return &CorrectionOutput{Body: c}, nil
}
