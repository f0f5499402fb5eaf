package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/kjeldgaard/teamterm/internal/config"
)

const (
	// DefaultAuthorizeURL is the service's OAuth authorize endpoint.
	DefaultAuthorizeURL = "https://auth.teams.example.com/v1/authorize"
	// DefaultTokenURL is the service's OAuth token endpoint.
	DefaultTokenURL = "https://auth.teams.example.com/v1/access_token"

	scopes = "messaging:all"
)

// Flow runs the authorization-code flow with PKCE for one integration.
type Flow struct {
	Client       *config.Client
	AuthorizeURL string
	TokenURL     string

	// OpenBrowser points the user's browser at the authorize URL.
	// Overridable in tests.
	OpenBrowser func(url string) error

	httpClient *http.Client
}

// NewFlow returns a flow using the public endpoints and the platform
// browser.
func NewFlow(client *config.Client) *Flow {
	return &Flow{
		Client:       client,
		AuthorizeURL: DefaultAuthorizeURL,
		TokenURL:     DefaultTokenURL,
		OpenBrowser:  openBrowser,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Login obtains a fresh token: it opens the browser on the authorize URL
// and waits for the loopback redirect with the authorization code. The
// redirect listener binds the port registered with the integration, so a
// second concurrent login on the same machine fails fast.
func (f *Flow) Login(ctx context.Context) (*Token, error) {
	verifier, challenge, err := pkcePair()
	if err != nil {
		return nil, err
	}
	state := uuid.NewString()
	redirectURI := fmt.Sprintf("http://localhost:%d/redirect", f.Client.Port)

	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", f.Client.Port))
	if err != nil {
		return nil, errors.Wrapf(err, "bind redirect listener on port %d", f.Client.Port)
	}

	codes := make(chan string, 1)
	failures := make(chan error, 1)
	server := &http.Server{Handler: redirectHandler(state, codes, failures)}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failures <- err
		}
	}()
	defer server.Close()

	authorize := f.AuthorizeURL + "?" + url.Values{
		"response_type":         {"code"},
		"client_id":             {f.Client.ID},
		"redirect_uri":          {redirectURI},
		"scope":                 {scopes},
		"state":                 {state},
		"code_challenge":        {challenge},
		"code_challenge_method": {"S256"},
	}.Encode()

	log.Info().Msg("opening browser for login")
	if err := f.OpenBrowser(authorize); err != nil {
		// The user can still paste the URL by hand; it is in the log.
		log.Warn().Err(err).Str("url", authorize).Msg("cannot open browser, visit the URL manually")
	}

	var code string
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-failures:
		return nil, errors.Wrap(err, "waiting for login redirect")
	case code = <-codes:
	}

	return f.exchange(ctx, code, verifier, redirectURI)
}

// redirectHandler accepts the OAuth redirect, checks the state nonce, and
// hands the code over.
func redirectHandler(state string, codes chan<- string, failures chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if errCode := query.Get("error"); errCode != "" {
			http.Error(w, "Login failed, you can close this tab.", http.StatusBadRequest)
			failures <- errors.Errorf("authorization denied: %s", errCode)
			return
		}
		if query.Get("state") != state {
			http.Error(w, "Login failed, you can close this tab.", http.StatusBadRequest)
			failures <- errors.New("state mismatch in login redirect")
			return
		}
		code := query.Get("code")
		if code == "" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintln(w, "Logged in, you can close this tab and return to the terminal.")
		codes <- code
	})
}

// exchange trades the authorization code for a token.
func (f *Flow) exchange(ctx context.Context, code, verifier, redirectURI string) (*Token, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {f.Client.ID},
		"client_secret": {f.Client.Secret},
		"code":          {code},
		"redirect_uri":  {redirectURI},
		"code_verifier": {verifier},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "exchange authorization code")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, "decode token response")
	}
	if body.AccessToken == "" {
		return nil, errors.New("token response carries no access token")
	}

	now := time.Now().UTC()
	tok := &Token{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		CachedAt:     now,
	}
	if body.ExpiresIn > 0 {
		tok.ExpiresAt = now.Add(time.Duration(body.ExpiresIn) * time.Second)
	}
	return tok, nil
}

// pkcePair returns a fresh code verifier and its S256 challenge.
func pkcePair() (verifier, challenge string, err error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", "", errors.Wrap(err, "generate code verifier")
	}
	verifier = base64.RawURLEncoding.EncodeToString(raw)
	sum := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(sum[:])
	return verifier, challenge, nil
}

func openBrowser(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return exec.Command("xdg-open", url).Start()
	}
}
