// Package auth obtains and caches the OAuth token the API client needs.
// The flow is authorization code with PKCE against the hosted service;
// tokens are cached on disk so most runs skip the browser round trip.
package auth

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	// expiryBuffer keeps us from presenting a token that expires mid-run.
	expiryBuffer = 5 * time.Minute
	// unknownExpiryAge bounds the lifetime of tokens whose response did
	// not carry expires_in.
	unknownExpiryAge = 12 * time.Hour
)

// Token is the cached OAuth token.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
	CachedAt     time.Time `json:"cached_at"`
}

// Valid reports whether the token can still be presented at now.
func (t *Token) Valid(now time.Time) bool {
	if t.AccessToken == "" {
		return false
	}
	if !t.ExpiresAt.IsZero() {
		return now.Before(t.ExpiresAt.Add(-expiryBuffer))
	}
	return now.Before(t.CachedAt.Add(unknownExpiryAge))
}

// CachePath returns the token cache location, honoring XDG_CACHE_HOME.
func CachePath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(err, "resolve cache directory")
	}
	return filepath.Join(base, "teamterm", "tokens.json"), nil
}

// LoadToken reads a cached token. A missing or stale cache returns nil
// without an error; the caller falls through to the browser flow.
func LoadToken(path string, now time.Time) *Token {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("cannot read token cache")
		}
		return nil
	}
	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("token cache is corrupt, ignoring")
		return nil
	}
	if !tok.Valid(now) {
		log.Debug().Time("expires_at", tok.ExpiresAt).Msg("cached token expired")
		return nil
	}
	return &tok
}

// SaveToken writes the token cache. The file carries a credential so it
// is not group or world readable.
func SaveToken(path string, tok *Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrapf(err, "create cache directory %s", filepath.Dir(path))
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode token")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrapf(err, "write token cache %s", path)
	}
	return nil
}
