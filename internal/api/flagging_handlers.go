package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/listenup-flags/internal/domain"
	"github.com/listenupapp/listenup-flags/internal/service"
)

func (s *Server) registerFlaggingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getFlagStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/flags/{flag_id}/entities/{entity_id}",
		Summary:     "Get flag status",
		Description: "Returns whether the current user or session flagged the entity, and how many times it is flagged",
		Tags:        []string{"Flaggings"},
	}, s.handleGetFlagStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "flagEntity",
		Method:      http.MethodPut,
		Path:        "/api/v1/flags/{flag_id}/entities/{entity_id}",
		Summary:     "Flag entity",
		Description: "Flags the entity for the current user or session",
		Tags:        []string{"Flaggings"},
	}, s.handleFlagEntity)

	huma.Register(s.api, huma.Operation{
		OperationID: "unflagEntity",
		Method:      http.MethodDelete,
		Path:        "/api/v1/flags/{flag_id}/entities/{entity_id}",
		Summary:     "Unflag entity",
		Description: "Removes the current user's or session's flagging of the entity",
		Tags:        []string{"Flaggings"},
	}, s.handleUnflagEntity)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMyFlaggings",
		Method:      http.MethodGet,
		Path:        "/api/v1/me/flaggings",
		Summary:     "List my flaggings",
		Description: "Returns the flaggings owned by the current user or session, newest first",
		Tags:        []string{"Flaggings"},
	}, s.handleListMyFlaggings)
}

// === DTOs ===

// FlaggingInput addresses one flag on one entity.
type FlaggingInput struct {
	FlagID   string `path:"flag_id" doc:"Flag machine name"`
	EntityID int64  `path:"entity_id" minimum:"1" doc:"Entity ID"`
}

// FlaggingResponse contains flagging data in API responses.
type FlaggingResponse struct {
	ID         string    `json:"id" doc:"Flagging ID"`
	FlagID     string    `json:"flag_id" doc:"Flag machine name"`
	EntityType string    `json:"entity_type" doc:"Entity type"`
	EntityID   int64     `json:"entity_id" doc:"Entity ID"`
	UserID     string    `json:"user_id,omitempty" doc:"Owning user, empty for anonymous and global flaggings"`
	CreatedAt  time.Time `json:"created_at" doc:"When the entity was flagged"`
}

func newFlaggingResponse(f *domain.Flagging) *FlaggingResponse {
	if f == nil {
		return nil
	}
	return &FlaggingResponse{
		ID:         f.ID,
		FlagID:     f.FlagID,
		EntityType: f.EntityType,
		EntityID:   f.EntityID,
		UserID:     f.UserID,
		CreatedAt:  f.CreatedAt,
	}
}

// FlagStatusResponse is the flag state of an entity for the current actor.
type FlagStatusResponse struct {
	FlagID   string            `json:"flag_id" doc:"Flag machine name"`
	EntityID int64             `json:"entity_id" doc:"Entity ID"`
	Flagged  bool              `json:"flagged" doc:"Whether the current actor flagged the entity"`
	Count    int               `json:"count" doc:"Number of flaggings of the entity with this flag"`
	Flagging *FlaggingResponse `json:"flagging,omitempty" doc:"The current actor's flagging, if any"`
	LinkText string            `json:"link_text" doc:"Text for the link that toggles the state"`
}

// FlagStatusOutput wraps the status for Huma.
type FlagStatusOutput struct {
	Body FlagStatusResponse
}

// ListFlaggingsResponse contains a list of flaggings.
type ListFlaggingsResponse struct {
	Flaggings []FlaggingResponse `json:"flaggings" doc:"Flaggings, newest first"`
}

// ListFlaggingsOutput wraps the list for Huma.
type ListFlaggingsOutput struct {
	Body ListFlaggingsResponse
}

// === Handlers ===

func (s *Server) handleGetFlagStatus(ctx context.Context, input *FlaggingInput) (*FlagStatusOutput, error) {
	flag, entity, err := s.resolveFlaggable(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.flagStatus(ctx, flag, entity)
}

func (s *Server) handleFlagEntity(ctx context.Context, input *FlaggingInput) (*FlagStatusOutput, error) {
	flag, entity, err := s.resolveFlaggable(ctx, input)
	if err != nil {
		return nil, err
	}

	if _, err := s.services.Flags.Flag(ctx, flag, entity); err != nil {
		return nil, err
	}
	return s.flagStatus(ctx, flag, entity)
}

func (s *Server) handleUnflagEntity(ctx context.Context, input *FlaggingInput) (*FlagStatusOutput, error) {
	flag, entity, err := s.resolveFlaggable(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.services.Flags.Unflag(ctx, flag, entity); err != nil {
		return nil, err
	}
	return s.flagStatus(ctx, flag, entity)
}

func (s *Server) handleListMyFlaggings(ctx context.Context, _ *struct{}) (*ListFlaggingsOutput, error) {
	flaggings, err := s.services.Flags.ListActorFlaggings(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]FlaggingResponse, len(flaggings))
	for i, f := range flaggings {
		resp[i] = *newFlaggingResponse(f)
	}

	return &ListFlaggingsOutput{Body: ListFlaggingsResponse{Flaggings: resp}}, nil
}

func (s *Server) resolveFlaggable(ctx context.Context, input *FlaggingInput) (*domain.Flag, *domain.Entity, error) {
	flag, err := s.services.Flags.GetFlagByID(ctx, input.FlagID)
	if err != nil {
		return nil, nil, err
	}

	entity, err := s.services.Flags.GetFlaggableByID(ctx, flag, input.EntityID)
	if err != nil {
		return nil, nil, err
	}
	return flag, entity, nil
}

func (s *Server) flagStatus(ctx context.Context, flag *domain.Flag, entity *domain.Entity) (*FlagStatusOutput, error) {
	st, err := s.services.Flags.Status(ctx, flag, entity)
	if err != nil {
		return nil, err
	}
	return &FlagStatusOutput{Body: newFlagStatusResponse(flag, entity, st)}, nil
}

func newFlagStatusResponse(flag *domain.Flag, entity *domain.Entity, st *service.Status) FlagStatusResponse {
	linkText := flag.FlagShortText
	if st.Flagged {
		linkText = flag.UnflagShortText
	}

	return FlagStatusResponse{
		FlagID:   flag.ID,
		EntityID: entity.ID,
		Flagged:  st.Flagged,
		Count:    st.Count,
		Flagging: newFlaggingResponse(st.Flagging),
		LinkText: linkText,
	}
}
