// Package auth issues and verifies access tokens and identifies anonymous
// browser sessions.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KeyFileName is the file under the data directory holding the token key.
const KeyFileName = "auth.key"

// PASETO v4.local needs a 256-bit symmetric key.
const (
	keyLength    = 32
	keyHexLength = keyLength * 2
)

// LoadOrGenerateKey returns the token key stored hex encoded in
// <dataPath>/auth.key, creating the file with a fresh random key if it is
// missing.
func LoadOrGenerateKey(dataPath string) ([]byte, error) {
	keyPath := filepath.Join(dataPath, KeyFileName)

	//#nosec G304 -- path is derived from the configured data directory
	raw, err := os.ReadFile(keyPath)
	switch {
	case err == nil:
		return decodeKey(strings.TrimSpace(string(raw)))
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("read auth key: %w", err)
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate auth key: %w", err)
	}

	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("save auth key: %w", err)
	}
	return key, nil
}

func decodeKey(keyHex string) ([]byte, error) {
	if len(keyHex) != keyHexLength {
		return nil, fmt.Errorf("invalid auth key length: expected %d hex chars, got %d", keyHexLength, len(keyHex))
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid auth key format: %w", err)
	}
	return key, nil
}
