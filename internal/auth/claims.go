package auth

import "time"

// AccessClaims are the claims carried by an access token.
// v4.local tokens are encrypted, so clients cannot read them.
type AccessClaims struct {
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	UserID     string    `json:"user_id"`
	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	TokenID    string    `json:"jti"`
}
