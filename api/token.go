// ABOUTME: Bearer token persistence for the backend API
// ABOUTME: Stores the session token at an XDG path with restricted permissions
package api

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

// TokenPath returns XDG-compliant path for storing the API bearer token.
func TokenPath() string {
	return filepath.Join(ConfigDir(), "credentials.json")
}

// SaveToken saves the bearer token to the XDG data directory.
func SaveToken(token *oauth2.Token) error {
	path := TokenPath()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	return nil
}

// LoadToken loads the bearer token from the XDG data directory. The
// SYNCHRO_TOKEN environment variable overrides the stored token.
func LoadToken() (*oauth2.Token, error) {
	if raw := os.Getenv("SYNCHRO_TOKEN"); raw != "" {
		return &oauth2.Token{AccessToken: raw, TokenType: "bearer"}, nil
	}

	path := TokenPath()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var token oauth2.Token
	if err := json.NewDecoder(f).Decode(&token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	return &token, nil
}
