package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/listenup-flags/internal/domain"
	"github.com/listenupapp/listenup-flags/internal/service"
)

func (s *Server) registerEntityRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listEntities",
		Method:      http.MethodGet,
		Path:        "/api/v1/entities",
		Summary:     "List entities",
		Description: "Returns registered flaggable entities, optionally of one type",
		Tags:        []string{"Entities"},
	}, s.handleListEntities)

	huma.Register(s.api, huma.Operation{
		OperationID:   "registerEntity",
		Method:        http.MethodPost,
		Path:          "/api/v1/entities",
		Summary:       "Register entity",
		Description:   "Registers a flaggable entity, or updates the label of a known one",
		Tags:          []string{"Entities"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleRegisterEntity)
}

// === DTOs ===

// EntityResponse contains entity data in API responses.
type EntityResponse struct {
	Type      string    `json:"type" doc:"Entity type"`
	ID        int64     `json:"id" doc:"Entity ID"`
	Label     string    `json:"label" doc:"Display label"`
	URL       string    `json:"url,omitempty" doc:"Canonical URL"`
	CreatedAt time.Time `json:"created_at" doc:"Registration time"`
}

func (s *Server) newEntityResponse(e *domain.Entity) EntityResponse {
	resp := EntityResponse{
		Type:      e.Type,
		ID:        e.ID,
		Label:     e.Label,
		CreatedAt: e.CreatedAt,
	}
	if u, err := s.services.Routes.EntityURL(e); err == nil {
		resp.URL = u
	}
	return resp
}

// ListEntitiesInput filters the entity list.
type ListEntitiesInput struct {
	Type string `query:"type" doc:"Only list entities of this type"`
}

// ListEntitiesResponse contains a list of entities.
type ListEntitiesResponse struct {
	Entities []EntityResponse `json:"entities" doc:"Registered entities"`
}

// ListEntitiesOutput wraps the list for Huma.
type ListEntitiesOutput struct {
	Body ListEntitiesResponse
}

// RegisterEntityRequest is the request body for registering an entity.
type RegisterEntityRequest struct {
	Type  string `json:"type" doc:"Entity type, e.g. node"`
	ID    int64  `json:"id" minimum:"1" doc:"Entity ID"`
	Label string `json:"label,omitempty" doc:"Display label"`
}

// RegisterEntityInput wraps the request for Huma.
type RegisterEntityInput struct {
	Authorization string `header:"Authorization"`
	Body          RegisterEntityRequest
}

// EntityOutput wraps a single entity for Huma.
type EntityOutput struct {
	Body EntityResponse
}

// === Handlers ===

func (s *Server) handleListEntities(ctx context.Context, input *ListEntitiesInput) (*ListEntitiesOutput, error) {
	entities, err := s.services.Flags.ListEntities(ctx, input.Type)
	if err != nil {
		return nil, err
	}

	resp := make([]EntityResponse, len(entities))
	for i, e := range entities {
		resp[i] = s.newEntityResponse(e)
	}

	return &ListEntitiesOutput{Body: ListEntitiesResponse{Entities: resp}}, nil
}

func (s *Server) handleRegisterEntity(ctx context.Context, input *RegisterEntityInput) (*EntityOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	e, err := s.services.Flags.RegisterEntity(ctx, service.RegisterEntityRequest{
		Type:  input.Body.Type,
		ID:    input.Body.ID,
		Label: input.Body.Label,
	})
	if err != nil {
		return nil, err
	}

	return &EntityOutput{Body: s.newEntityResponse(e)}, nil
}
