package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	domainerrors "github.com/genrewiki/genrewiki-server/internal/errors"
	"github.com/genrewiki/genrewiki-server/internal/search"
)

func (s *Server) registerGenreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Returns every genre of the base taxonomy with derived children and influences",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres/search",
		Summary:     "Search genres",
		Description: "Full-text search over genre names, alternate names and short descriptions",
		Tags:        []string{"Genres"},
	}, s.handleSearchGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGenre",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres/{id}",
		Summary:     "Get genre",
		Description: "Returns a base genre by ID",
		Tags:        []string{"Genres"},
	}, s.handleGetGenre)
}

// === DTOs ===

// ListGenresResponse contains every base genre.
type ListGenresResponse struct {
	Genres []*domain.Genre `json:"genres" doc:"Base genres in ID order"`
	Total  int             `json:"total" doc:"Number of genres"`
}

// ListGenresOutput wraps the list genres response for Huma.
type ListGenresOutput struct {
	Body ListGenresResponse
}

// GetGenreInput contains parameters for getting a genre.
type GetGenreInput struct {
	ID int `path:"id" doc:"Genre ID"`
}

// GenreOutput wraps a genre for Huma.
type GenreOutput struct {
	Body *domain.Genre
}

// SearchGenresInput contains parameters for searching genres.
type SearchGenresInput struct {
	Query     string   `query:"q" required:"true" minLength:"1" doc:"Search text"`
	Types     []string `query:"type" doc:"Restrict results to these genre types"`
	Limit     int      `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Page size"`
	Offset    int      `query:"offset" minimum:"0" doc:"Results to skip"`
	Highlight bool     `query:"highlight" doc:"Return highlighted name fragments"`
}

// SearchGenresOutput wraps search results for Huma.
type SearchGenresOutput struct {
	Body *search.Result
}

// === Handlers ===

func (s *Server) handleListGenres(ctx context.Context, _ *struct{}) (*ListGenresOutput, error) {
	genres, err := s.services.Genre.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	if genres == nil {
		genres = []*domain.Genre{}
	}
	return &ListGenresOutput{Body: ListGenresResponse{Genres: genres, Total: len(genres)}}, nil
}

func (s *Server) handleGetGenre(ctx context.Context, input *GetGenreInput) (*GenreOutput, error) {
	g, err := s.services.Genre.GetGenre(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GenreOutput{Body: g}, nil
}

func (s *Server) handleSearchGenres(ctx context.Context, input *SearchGenresInput) (*SearchGenresOutput, error) {
	types, err := parseGenreTypes(input.Types)
	if err != nil {
		return nil, err
	}

	res, err := s.services.Genre.SearchGenres(ctx, search.Params{
		Query:     input.Query,
		Types:     types,
		Limit:     input.Limit,
		Offset:    input.Offset,
		Highlight: input.Highlight,
	})
	if err != nil {
		return nil, err
	}
	return &SearchGenresOutput{Body: res}, nil
}

// parseGenreTypes accepts type names in any case.
func parseGenreTypes(raw []string) ([]domain.GenreType, error) {
	types := make([]domain.GenreType, 0, len(raw))
	for _, r := range raw {
		t := domain.GenreType(strings.ToUpper(strings.TrimSpace(r)))
		if t == "" {
			continue
		}
		if !t.Valid() {
			return nil, domainerrors.Validationf("unknown genre type %q", r)
		}
		types = append(types, t)
	}
	return types, nil
}
