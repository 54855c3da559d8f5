package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/genrewiki/genrewiki-server/internal/domain"
	domainerrors "github.com/genrewiki/genrewiki-server/internal/errors"
	"github.com/genrewiki/genrewiki-server/internal/overlay"
)

func (s *Server) registerOverlayRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCorrectionTree",
		Method:      http.MethodGet,
		Path:        "/api/v1/corrections/{id}/tree",
		Summary:     "Get correction tree",
		Description: "Returns the base taxonomy with the correction applied, every node tagged by change",
		Tags:        []string{"Overlay"},
	}, s.handleGetCorrectionTree)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCorrectionGenre",
		Method:      http.MethodGet,
		Path:        "/api/v1/corrections/{id}/genres/{genreId}",
		Summary:     "Get genre in correction",
		Description: "Returns one base genre as the correction would leave it",
		Tags:        []string{"Overlay"},
	}, s.handleGetCorrectionGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCreatedGenre",
		Method:      http.MethodGet,
		Path:        "/api/v1/corrections/{id}/created/{localId}",
		Summary:     "Get drafted genre",
		Description: "Returns a genre created by the correction with its resolved edges",
		Tags:        []string{"Overlay"},
	}, s.handleGetCreatedGenre)

	huma.Register(s.api, huma.Operation{
		OperationID: "getDescendantChanges",
		Method:      http.MethodGet,
		Path:        "/api/v1/corrections/{id}/tree/{kind}/{nodeId}/changes",
		Summary:     "Get subtree changes",
		Description: "Returns the change tags found below a node of the correction tree",
		Tags:        []string{"Overlay"},
	}, s.handleGetDescendantChanges)
}

// === DTOs ===

// TreeResponse is an overlay rendered for clients.
type TreeResponse struct {
	CorrectionID   string            `json:"correction_id,omitempty" doc:"Correction the tree was built for"`
	Nodes          []*overlay.Node   `json:"nodes" doc:"Every genre of the overlay in tree order"`
	ChangedRoots   []domain.GenreRef `json:"changed_roots" doc:"Roots with pending changes in their subtree"`
	UnchangedRoots []domain.GenreRef `json:"unchanged_roots" doc:"Roots without pending changes"`
	Deleted        []int             `json:"deleted" doc:"Base genres the correction removes"`
	Warnings       []overlay.Warning `json:"warnings" doc:"Edges dropped while building the overlay"`
}

// TreeOutput wraps a tree for Huma.
type TreeOutput struct {
	Body TreeResponse
}

// NodeResponse is one overlay genre with the warnings that concern it.
type NodeResponse struct {
	Node     *overlay.Node     `json:"node" doc:"Genre as the correction would leave it"`
	Warnings []overlay.Warning `json:"warnings" doc:"Edges of this genre dropped while building the overlay"`
}

// NodeOutput wraps a node for Huma.
type NodeOutput struct {
	Body NodeResponse
}

// DescendantChangesInput addresses a node of a correction tree.
type DescendantChangesInput struct {
	ID     string `path:"id" doc:"Correction ID"`
	Kind   string `path:"kind" doc:"exists for base genres, created for drafted ones"`
	NodeID int    `path:"nodeId" doc:"Genre ID or correction-local ID"`
}

// DescendantChangesResponse summarizes pending changes below a node.
type DescendantChangesResponse struct {
	Ref        domain.GenreRef    `json:"ref" doc:"Node the summary is for"`
	HasChanges bool               `json:"has_changes" doc:"True when any descendant is created or edited"`
	Changes    []domain.ChangeTag `json:"changes" doc:"Distinct change tags found below the node"`
}

// DescendantChangesOutput wraps the summary for Huma.
type DescendantChangesOutput struct {
	Body DescendantChangesResponse
}

// === Handlers ===

func (s *Server) handleGetCorrectionTree(ctx context.Context, input *CorrectionIDInput) (*TreeOutput, error) {
	t, err := s.services.Correction.Tree(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &TreeOutput{Body: newTreeResponse(input.ID, t)}, nil
}

func (s *Server) handleGetCorrectionGenre(ctx context.Context, input *CorrectionGenreInput) (*NodeOutput, error) {
	return s.nodeView(ctx, input.ID, domain.ExistingRef(input.GenreID))
}

func (s *Server) handleGetCreatedGenre(ctx context.Context, input *CreatedGenreInput) (*NodeOutput, error) {
	return s.nodeView(ctx, input.ID, domain.CreatedRef(input.LocalID))
}

func (s *Server) handleGetDescendantChanges(ctx context.Context, input *DescendantChangesInput) (*DescendantChangesOutput, error) {
	kind, err := domain.ParseRefKind(input.Kind)
	if err != nil {
		return nil, domainerrors.Validation(err.Error())
	}
	ref := domain.GenreRef{Kind: kind, ID: input.NodeID}

	tags, err := s.services.Correction.DescendantChanges(ctx, input.ID, ref)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []domain.ChangeTag{}
	}
	return &DescendantChangesOutput{
		Body: DescendantChangesResponse{
			Ref:        ref,
			HasChanges: len(tags) > 0,
			Changes:    tags,
		},
	}, nil
}

func (s *Server) nodeView(ctx context.Context, correctionID string, ref domain.GenreRef) (*NodeOutput, error) {
	n, warnings, err := s.services.Correction.NodeView(ctx, correctionID, ref)
	if err != nil {
		return nil, err
	}
	if warnings == nil {
		warnings = []overlay.Warning{}
	}
	return &NodeOutput{Body: NodeResponse{Node: n, Warnings: warnings}}, nil
}

func newTreeResponse(correctionID string, t *overlay.Tree) TreeResponse {
	changed, unchanged := t.GroupRoots()
	resp := TreeResponse{
		CorrectionID:   correctionID,
		Nodes:          t.All(),
		ChangedRoots:   refsOf(changed),
		UnchangedRoots: refsOf(unchanged),
		Deleted:        t.Deleted,
		Warnings:       t.Warnings,
	}
	if resp.Deleted == nil {
		resp.Deleted = []int{}
	}
	if resp.Warnings == nil {
		resp.Warnings = []overlay.Warning{}
	}
	return resp
}

func refsOf(nodes []*overlay.Node) []domain.GenreRef {
	refs := make([]domain.GenreRef, 0, len(nodes))
	for _, n := range nodes {
		refs = append(refs, n.Ref)
	}
	return refs
}
