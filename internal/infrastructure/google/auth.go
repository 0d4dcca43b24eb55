// Package google builds authorized clients for the Gmail and Sheets APIs from
// an OAuth client file (credentials.json) and a stored user token (token.json).
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/sheets/v4"
)

var Scopes = []string{
	gmail.GmailReadonlyScope,
	sheets.SpreadsheetsScope,
}

var ErrNoToken = errors.New("no stored token, run the authorize command first")

func LoadConfig(credentialsFile string) (*oauth2.Config, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %q: %w", credentialsFile, err)
	}

	cfg, err := googleoauth.ConfigFromJSON(b, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials file %q: %w", credentialsFile, err)
	}

	return cfg, nil
}

// NewHTTPClient returns a client authorized with the stored token. Refreshed
// tokens are written back to tokenFile.
func NewHTTPClient(ctx context.Context, credentialsFile, tokenFile string) (*http.Client, error) {
	cfg, err := LoadConfig(credentialsFile)
	if err != nil {
		return nil, err
	}

	token, err := LoadToken(tokenFile)
	if err != nil {
		return nil, err
	}

	src := &savingTokenSource{
		base: cfg.TokenSource(ctx, token),
		path: tokenFile,
		last: token.AccessToken,
	}

	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, src)), nil
}

func LoadToken(path string) (*oauth2.Token, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file %q: %w", path, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(b, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token file %q: %w", path, err)
	}

	return &token, nil
}

func SaveToken(path string, token *oauth2.Token) error {
	b, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}

	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("failed to write token file %q: %w", path, err)
	}

	return nil
}

type savingTokenSource struct {
	base oauth2.TokenSource
	path string

	mu   sync.Mutex
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if token.AccessToken != s.last {
		if err := SaveToken(s.path, token); err != nil {
			return nil, err
		}
		s.last = token.AccessToken
	}

	return token, nil
}
