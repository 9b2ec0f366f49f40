package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/listenup-flags/internal/auth"
	"github.com/listenupapp/listenup-flags/internal/domain"
)

// actorMiddleware attaches the request's actor to the context.
// A valid bearer token identifies a user. Everyone else is an anonymous
// session, and gets a session cookie if they do not carry one yet.
func actorMiddleware(tokens *auth.TokenService, secureCookies bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var actor domain.Actor

			if token, ok := auth.BearerToken(r.Header.Get("Authorization")); ok && tokens != nil {
				claims, err := tokens.VerifyAccessToken(token)
				if err != nil {
					// Continue as anonymous; handlers that need a user reject later.
					logger.Debug("ignoring invalid access token", "error", err)
				} else {
					actor.UserID = claims.UserID
				}
			}

			if actor.UserID == "" {
				sessionID, ok := auth.SessionFromRequest(r)
				if !ok {
					sessionID = auth.NewSessionID()
					http.SetCookie(w, auth.SessionCookie(sessionID, secureCookies))
				}
				actor.SessionID = sessionID
			}

			ctx := domain.WithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// authenticateRequest validates the Authorization header and returns the user ID.
func (s *Server) authenticateRequest(authHeader string) (string, error) {
	if authHeader == "" {
		return "", huma.Error401Unauthorized("Missing authorization header")
	}

	token, ok := auth.BearerToken(authHeader)
	if !ok {
		return "", huma.Error401Unauthorized("Invalid authorization header format")
	}

	claims, err := s.services.Tokens.VerifyAccessToken(token)
	if err != nil {
		return "", err
	}

	return claims.UserID, nil
}
