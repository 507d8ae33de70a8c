package session

import (
	"context"
	"log/slog"
	"net/url"

	"aquaflow-client/internal/api"
	"aquaflow-client/internal/domain"
)

type profileAPI interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
}

// Validator decides whether the locally stored token still grants access.
type Validator struct {
	api    profileAPI
	creds  *Credentials
	logger *slog.Logger
}

// NewValidator builds a Validator over the shared API client and credentials.
func NewValidator(client profileAPI, creds *Credentials, logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{api: client, creds: creds, logger: logger}
}

// Credentials exposes the session state the validator guards.
func (v *Validator) Credentials() *Credentials {
	return v.creds
}

// Validate reports whether the stored token is usable. It never returns an
// error: the answer is a decision, not a diagnosis.
//
// Only a definitive 401 from the profile endpoint destroys the session. Any
// other failure (timeout, network, 5xx, bad payload) is inconclusive and the
// token is assumed still good, so a backend outage cannot log users out.
func (v *Validator) Validate(ctx context.Context) bool {
	token, ok := v.creds.Token()
	if !ok || token == "" {
		return false
	}

	var resp struct {
		User domain.User `json:"user"`
	}
	err := v.api.Get(ctx, "/profile", nil, &resp)
	if err == nil {
		// Refresh the cached user alongside the confirmed token.
		if err := v.creds.Set(token, resp.User); err != nil {
			v.logger.Warn("failed to refresh cached user", "error", err)
		}
		return true
	}

	if api.IsAuthError(err) {
		v.logger.Debug("token rejected, evicting credentials")
		v.creds.Evict()
		return false
	}

	v.logger.Warn("profile check inconclusive, keeping session", "error", err)
	return true
}
