// Package identity verifies bearer tokens against the external identity
// provider and API keys against stored profiles.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ManuelReschke/EnergyLedger/internal/pkg/env"
)

// ErrInvalidToken is returned when the provider rejects the credential.
var ErrInvalidToken = errors.New("identity: invalid or expired token")

// Identity is the verified caller.
type Identity struct {
	UserID string
	Email  string
}

// Verifier checks a credential and returns the caller behind it.
type Verifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(ctx context.Context, token string) (Identity, error)

func (f VerifierFunc) Verify(ctx context.Context, token string) (Identity, error) {
	return f(ctx, token)
}

// RemoteVerifier calls the provider's user endpoint with the bearer token.
type RemoteVerifier struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewRemoteVerifierFromEnv reads IDENTITY_URL, IDENTITY_API_KEY and IDENTITY_TIMEOUT_SECONDS.
func NewRemoteVerifierFromEnv() *RemoteVerifier {
	timeout := env.GetEnvInt("IDENTITY_TIMEOUT_SECONDS", 10)
	return &RemoteVerifier{
		BaseURL: strings.TrimSpace(env.GetEnv("IDENTITY_URL", "")),
		APIKey:  strings.TrimSpace(env.GetEnv("IDENTITY_API_KEY", "")),
		HTTPClient: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
	}
}

func (v *RemoteVerifier) Verify(ctx context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, ErrInvalidToken
	}
	if v.BaseURL == "" {
		return Identity{}, errors.New("identity: IDENTITY_URL is not configured")
	}

	u, err := url.Parse(strings.TrimRight(v.BaseURL, "/") + "/auth/v1/user")
	if err != nil {
		return Identity{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Identity{}, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if v.APIKey != "" {
		req.Header.Set("apikey", v.APIKey)
	}

	client := v.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Identity{}, fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return Identity{}, ErrInvalidToken
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return Identity{}, fmt.Errorf("identity request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var raw struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return Identity{}, fmt.Errorf("identity response: %w", err)
	}
	if raw.ID == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{UserID: raw.ID, Email: raw.Email}, nil
}
