package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/listenupapp/listenup-flags/internal/domain"
	domainerrors "github.com/listenupapp/listenup-flags/internal/errors"
	"github.com/listenupapp/listenup-flags/internal/http/response"
	"github.com/listenupapp/listenup-flags/internal/routing"
)

// DestinationParam names the query (or form) parameter overriding the
// redirect target of a link.
const DestinationParam = "destination"

// LinkService is what the link controller needs from the flag service.
type LinkService interface {
	GetFlagByID(ctx context.Context, flagID string) (*domain.Flag, error)
	GetFlaggableByID(ctx context.Context, flag *domain.Flag, entityID int64) (*domain.Entity, error)
	Flag(ctx context.Context, flag *domain.Flag, entity *domain.Entity) (*domain.Flagging, error)
	Unflag(ctx context.Context, flag *domain.Flag, entity *domain.Entity) error
}

// LinkController serves the flag and unflag links rendered next to content.
// Each request performs one state change and redirects back to the entity.
type LinkController struct {
	flags  LinkService
	routes *routing.Generator
	logger *slog.Logger
}

// NewLinkController creates a link controller.
func NewLinkController(flags LinkService, routes *routing.Generator, logger *slog.Logger) *LinkController {
	return &LinkController{
		flags:  flags,
		routes: routes,
		logger: logger,
	}
}

// Routes mounts GET and POST /flag/{flag_id}/{entity_id} and
// /unflag/{flag_id}/{entity_id}. Non-numeric entity ids do not match.
func (c *LinkController) Routes(r chi.Router) {
	r.Get("/flag/{flag_id}/{entity_id:[0-9]+}", c.Flag)
	r.Post("/flag/{flag_id}/{entity_id:[0-9]+}", c.Flag)
	r.Get("/unflag/{flag_id}/{entity_id:[0-9]+}", c.Unflag)
	r.Post("/unflag/{flag_id}/{entity_id:[0-9]+}", c.Unflag)
}

// Flag flags the entity and redirects to the flagged entity.
// The redirect target is resolved first so a bad route never leaves a
// flagging behind an error response.
func (c *LinkController) Flag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flag, entity, err := c.resolve(r)
	if err != nil {
		response.HandleError(w, err, c.logger)
		return
	}
	target, err := c.redirectTarget(r, entity)
	if err != nil {
		response.HandleError(w, err, c.logger)
		return
	}

	if _, err := c.flags.Flag(ctx, flag, entity); err != nil {
		response.HandleError(w, err, c.logger)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// Unflag removes the flagging and redirects to the entity.
func (c *LinkController) Unflag(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	flag, entity, err := c.resolve(r)
	if err != nil {
		response.HandleError(w, err, c.logger)
		return
	}
	target, err := c.redirectTarget(r, entity)
	if err != nil {
		response.HandleError(w, err, c.logger)
		return
	}

	if err := c.flags.Unflag(ctx, flag, entity); err != nil {
		response.HandleError(w, err, c.logger)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// resolve loads the flag and the flaggable entity named by the route.
func (c *LinkController) resolve(r *http.Request) (*domain.Flag, *domain.Entity, error) {
	ctx := r.Context()

	entityID, err := strconv.ParseInt(chi.URLParam(r, "entity_id"), 10, 64)
	if err != nil {
		return nil, nil, domainerrors.NotFound("entity not found")
	}

	flag, err := c.flags.GetFlagByID(ctx, chi.URLParam(r, "flag_id"))
	if err != nil {
		return nil, nil, err
	}

	entity, err := c.flags.GetFlaggableByID(ctx, flag, entityID)
	if err != nil {
		return nil, nil, err
	}
	return flag, entity, nil
}

// redirectTarget returns the destination parameter when it names a local
// path, otherwise the entity's canonical URL.
func (c *LinkController) redirectTarget(r *http.Request, entity *domain.Entity) (string, error) {
	target := r.FormValue(DestinationParam)
	if isLocalDestination(target) {
		return target, nil
	}
	if target != "" {
		c.logger.Warn("ignoring non-local destination", "destination", target)
	}
	return c.routes.EntityURL(entity)
}

// isLocalDestination reports whether dest is a path on this site.
func isLocalDestination(dest string) bool {
	if dest == "" || !strings.HasPrefix(dest, "/") {
		return false
	}
	// Protocol-relative and backslash tricks resolve to other hosts in browsers.
	if strings.HasPrefix(dest, "//") || strings.HasPrefix(dest, "/\\") {
		return false
	}
	u, err := url.Parse(dest)
	if err != nil {
		return false
	}
	return u.Scheme == "" && u.Host == ""
}
