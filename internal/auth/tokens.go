package auth

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"aidanwoods.dev/go-paseto"

	domainerrors "github.com/listenupapp/listenup-flags/internal/errors"
	"github.com/listenupapp/listenup-flags/internal/id"
)

const (
	tokenIssuer   = "listenup-flags"
	tokenAudience = "listenup-flags-client"
)

// TokenService generates and verifies PASETO v4.local access tokens.
type TokenService struct {
	symmetricKey        paseto.V4SymmetricKey
	accessTokenDuration time.Duration
}

// NewTokenService creates a token service from a 32-byte key.
func NewTokenService(key []byte, accessDuration time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("PASETO v4 key must be exactly %d bytes, got %d", keyLength, len(key))
	}
	if accessDuration <= 0 {
		return nil, fmt.Errorf("access token duration must be positive, got %s", accessDuration)
	}

	symmetricKey, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		symmetricKey:        symmetricKey,
		accessTokenDuration: accessDuration,
	}, nil
}

// GenerateAccessToken creates an encrypted access token for userID.
// It returns the token and its expiry.
func (s *TokenService) GenerateAccessToken(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, domainerrors.Validation("user id is required")
	}

	now := time.Now()
	expires := now.Add(s.accessTokenDuration)

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(userID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expires)

	tokenID, err := id.Generate(id.PrefixToken)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(tokenID)

	//nolint:errcheck // Token.Set only errors on values that cannot be marshalled
	_ = token.Set("user_id", userID)

	return token.V4Encrypt(s.symmetricKey, nil), expires, nil
}

// VerifyAccessToken decrypts and validates an access token.
// Expired tokens yield TOKEN_EXPIRED, anything else UNAUTHORIZED.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	parser := paseto.NewParser()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.NotExpired())
	parser.AddRule(paseto.ValidAt(time.Now()))

	token, err := parser.ParseV4Local(s.symmetricKey, tokenString, nil)
	if err != nil {
		if strings.Contains(err.Error(), "expired") {
			return nil, domainerrors.TokenExpired("access token expired").WithCause(err)
		}
		return nil, domainerrors.Unauthorized("invalid access token").WithCause(err)
	}

	var claims AccessClaims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("parse claims: %w", err)
	}
	if claims.UserID == "" {
		return nil, domainerrors.Unauthorized("access token has no user")
	}
	return &claims, nil
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *TokenService) AccessTokenDuration() time.Duration {
	return s.accessTokenDuration
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
