package auth

import (
	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"

	"github.com/kjeldgaard/teamterm/internal/config"
)

const promptAttempts = 5

// PromptClient asks for the integration credentials on first run. The
// service hands out a 65 character hex id and a 64 character hex secret;
// anything else is rejected before the form completes.
func PromptClient() (*config.Client, error) {
	var id, secret string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Integration client id").
				Description("65 hexadecimal characters, from the integration page").
				Value(&id).
				Validate(hexExactly("client id", 65)),
			huh.NewInput().
				Title("Integration client secret").
				EchoMode(huh.EchoModePassword).
				Description("64 hexadecimal characters").
				Value(&secret).
				Validate(hexExactly("client secret", 64)),
		),
	)

	var lastErr error
	for range promptAttempts {
		if lastErr = form.Run(); lastErr == nil {
			return &config.Client{ID: id, Secret: secret}, nil
		}
		if errors.Is(lastErr, huh.ErrUserAborted) {
			return nil, lastErr
		}
	}
	return nil, errors.Wrapf(lastErr, "no valid credentials after %d attempts", promptAttempts)
}

// hexExactly validates a fixed-length lowercase or uppercase hex string.
func hexExactly(what string, length int) func(string) error {
	return func(s string) error {
		if len(s) != length {
			return errors.Errorf("%s must be exactly %d characters, got %d", what, length, len(s))
		}
		for _, r := range s {
			switch {
			case r >= '0' && r <= '9':
			case r >= 'a' && r <= 'f':
			case r >= 'A' && r <= 'F':
			default:
				return errors.Errorf("%s must be hexadecimal", what)
			}
		}
		return nil
	}
}
