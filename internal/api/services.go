package api

import (
	"github.com/listenupapp/listenup-flags/internal/auth"
	"github.com/listenupapp/listenup-flags/internal/routing"
	"github.com/listenupapp/listenup-flags/internal/rules"
	"github.com/listenupapp/listenup-flags/internal/service"
	"github.com/listenupapp/listenup-flags/internal/sse"
	"github.com/listenupapp/listenup-flags/internal/store"
)

// Services groups the collaborators used by the API server.
type Services struct {
	Store   store.Store
	Flags   *service.FlagService
	Tokens  *auth.TokenService
	Routes  *routing.Generator
	Actions *rules.Manager
	Events  *sse.Manager // nil disables the event stream
}

// Options tunes the HTTP surface.
type Options struct {
	CORSOrigins []string
	// SecureCookies marks the anonymous session cookie Secure.
	SecureCookies bool
	// LinkRateLimit is the number of link requests per minute per client IP.
	// Zero disables limiting.
	LinkRateLimit int
}
