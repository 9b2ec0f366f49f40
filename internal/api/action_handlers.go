package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/listenup-flags/internal/rules"
)

func (s *Server) registerActionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listActions",
		Method:      http.MethodGet,
		Path:        "/api/v1/actions",
		Summary:     "List workflow actions",
		Description: "Returns the registered workflow actions with their context declarations",
		Tags:        []string{"Actions"},
	}, s.handleListActions)

	huma.Register(s.api, huma.Operation{
		OperationID: "executeAction",
		Method:      http.MethodPost,
		Path:        "/api/v1/actions/{id}/execute",
		Summary:     "Execute workflow action",
		Description: "Resolves the flag and entity context values and executes the action",
		Tags:        []string{"Actions"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleExecuteAction)
}

// === DTOs ===

// ActionResponse describes one workflow action.
type ActionResponse struct {
	rules.Definition
	Summary string `json:"summary" doc:"Short description shown in the workflow UI"`
}

// ListActionsResponse contains the registered actions.
type ListActionsResponse struct {
	Actions []ActionResponse `json:"actions" doc:"Registered actions sorted by id"`
}

// ListActionsOutput wraps the list for Huma.
type ListActionsOutput struct {
	Body ListActionsResponse
}

// ExecuteActionRequest carries the context values of an action.
type ExecuteActionRequest struct {
	FlagID   string `json:"flag_id" doc:"Flag machine name"`
	EntityID int64  `json:"entity_id" minimum:"1" doc:"Entity ID"`
}

// ExecuteActionInput wraps the request for Huma.
type ExecuteActionInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Action ID"`
	Body          ExecuteActionRequest
}

// ExecuteActionResponse reports an executed action.
type ExecuteActionResponse struct {
	Action  string `json:"action" doc:"Action ID"`
	Summary string `json:"summary" doc:"Action summary"`
}

// ExecuteActionOutput wraps the response for Huma.
type ExecuteActionOutput struct {
	Body ExecuteActionResponse
}

// === Handlers ===

func (s *Server) handleListActions(_ context.Context, _ *struct{}) (*ListActionsOutput, error) {
	actions := s.services.Actions.Registry().Actions()

	resp := make([]ActionResponse, len(actions))
	for i, a := range actions {
		resp[i] = ActionResponse{Definition: a.Definition(), Summary: a.Summary()}
	}

	return &ListActionsOutput{Body: ListActionsResponse{Actions: resp}}, nil
}

func (s *Server) handleExecuteAction(ctx context.Context, input *ExecuteActionInput) (*ExecuteActionOutput, error) {
	if _, err := s.authenticateRequest(input.Authorization); err != nil {
		return nil, err
	}

	action, err := s.services.Actions.CreateInstance(input.ID)
	if err != nil {
		return nil, err
	}

	flag, entity, err := s.resolveFlaggable(ctx, &FlaggingInput{
		FlagID:   input.Body.FlagID,
		EntityID: input.Body.EntityID,
	})
	if err != nil {
		return nil, err
	}

	if err := action.Execute(ctx, rules.Context{Entity: entity, Flag: flag}); err != nil {
		return nil, err
	}

	s.logger.Info("workflow action executed",
		"action", action.ID(),
		"flag_id", flag.ID,
		"entity_id", entity.ID,
	)

	return &ExecuteActionOutput{Body: ExecuteActionResponse{
		Action:  action.ID(),
		Summary: action.Summary(),
	}}, nil
}
