// Package id generates prefixed NanoID identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the identifiers minted by this service.
const (
	PrefixFlagging = "flagging"
	PrefixClient   = "sse"
	PrefixToken    = "token"
)

// Generate creates a prefixed unique ID.
// Format: prefix-nanoid (e.g., "flagging-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}
