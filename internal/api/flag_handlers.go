package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/listenup-flags/internal/domain"
	"github.com/listenupapp/listenup-flags/internal/service"
)

func (s *Server) registerFlagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listFlags",
		Method:      http.MethodGet,
		Path:        "/api/v1/flags",
		Summary:     "List flags",
		Description: "Returns all flag definitions ordered by weight",
		Tags:        []string{"Flags"},
	}, s.handleListFlags)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFlag",
		Method:      http.MethodGet,
		Path:        "/api/v1/flags/{flag_id}",
		Summary:     "Get flag",
		Description: "Returns a flag definition by machine name",
		Tags:        []string{"Flags"},
	}, s.handleGetFlag)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createFlag",
		Method:        http.MethodPost,
		Path:          "/api/v1/flags",
		Summary:       "Create flag",
		Description:   "Creates a new flag definition",
		Tags:          []string{"Flags"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateFlag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteFlag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/flags/{flag_id}",
		Summary:     "Delete flag",
		Description: "Deletes a flag definition together with all its flaggings",
		Tags:        []string{"Flags"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteFlag)
}

// === DTOs ===

// FlagResponse contains flag data in API responses.
type FlagResponse struct {
	ID              string    `json:"id" doc:"Machine name"`
	Label           string    `json:"label" doc:"Human readable name"`
	EntityType      string    `json:"entity_type" doc:"Entity type the flag applies to"`
	FlagShortText   string    `json:"flag_short_text" doc:"Link text for flagging"`
	UnflagShortText string    `json:"unflag_short_text" doc:"Link text for unflagging"`
	Weight          int       `json:"weight" doc:"Sort weight"`
	Global          bool      `json:"global" doc:"Whether one flagging is shared by everyone"`
	CreatedAt       time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt       time.Time `json:"updated_at" doc:"Last update time"`
}

func newFlagResponse(f *domain.Flag) FlagResponse {
	return FlagResponse{
		ID:              f.ID,
		Label:           f.Label,
		EntityType:      f.EntityType,
		FlagShortText:   f.FlagShortText,
		UnflagShortText: f.UnflagShortText,
		Weight:          f.Weight,
		Global:          f.Global,
		CreatedAt:       f.CreatedAt,
		UpdatedAt:       f.UpdatedAt,
	}
}

// ListFlagsResponse contains a list of flags.
type ListFlagsResponse struct {
	Flags []FlagResponse `json:"flags" doc:"Flag definitions"`
}

// ListFlagsOutput wraps the list flags response for Huma.
type ListFlagsOutput struct {
	Body ListFlagsResponse
}

// FlagOutput wraps a single flag for Huma.
type FlagOutput struct {
	Body FlagResponse
}

// GetFlagInput names a flag.
type GetFlagInput struct {
	FlagID string `path:"flag_id" doc:"Flag machine name"`
}

// CreateFlagRequest is the request body for creating a flag.
type CreateFlagRequest struct {
	ID              string `json:"id" doc:"Machine name, lowercase letters, digits and underscores"`
	EntityType      string `json:"entity_type" doc:"Entity type the flag applies to"`
	Label           string `json:"label,omitempty" doc:"Human readable name; derived from the id when empty"`
	FlagShortText   string `json:"flag_short_text,omitempty" doc:"Link text for flagging"`
	UnflagShortText string `json:"unflag_short_text,omitempty" doc:"Link text for unflagging"`
	Weight          int    `json:"weight,omitempty" doc:"Sort weight"`
	Global          bool   `json:"global,omitempty" doc:"Share one flagging between all actors"`
}

// CreateFlagInput wraps the create flag request for Huma.
type CreateFlagInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateFlagRequest
}

// DeleteFlagInput names the flag to delete.
type DeleteFlagInput struct {
	Authorization string `header:"Authorization"`
	FlagID        string `path:"flag_id" doc:"Flag machine name"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message" doc:"Result message"`
}

// MessageOutput wraps a message for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleListFlags(ctx context.Context, _ *struct{}) (*ListFlagsOutput, error) {
	flags, err := s.services.Flags.ListFlags(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]FlagResponse, len(flags))
	for i, f := range flags {
		resp[i] = newFlagResponse(f)
	}

	return &ListFlagsOutput{Body: ListFlagsResponse{Flags: resp}}, nil
}

func (s *Server) handleGetFlag(ctx context.Context, input *GetFlagInput) (*FlagOutput, error) {
	f, err := s.services.Flags.GetFlagByID(ctx, input.FlagID)
	if err != nil {
		return nil, err
	}

	return &FlagOutput{Body: newFlagResponse(f)}, nil
}

func (s *Server) handleCreateFlag(ctx context.Context, input *CreateFlagInput) (*FlagOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	f, err := s.services.Flags.CreateFlag(ctx, service.CreateFlagRequest{
		ID:              input.Body.ID,
		Label:           input.Body.Label,
		EntityType:      input.Body.EntityType,
		FlagShortText:   input.Body.FlagShortText,
		UnflagShortText: input.Body.UnflagShortText,
		Weight:          input.Body.Weight,
		Global:          input.Body.Global,
	})
	if err != nil {
		return nil, err
	}

	return &FlagOutput{Body: newFlagResponse(f)}, nil
}

func (s *Server) handleDeleteFlag(ctx context.Context, input *DeleteFlagInput) (*MessageOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Flags.DeleteFlag(ctx, input.FlagID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Flag deleted"}}, nil
}
