package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/tendant/simple-sso/pkg/config"
	"github.com/tendant/simple-sso/pkg/profile"
	"github.com/tendant/simple-sso/pkg/resolver"
)

// ErrProfileFetch indicates the provider's user-info endpoint could not be
// reached or returned an unusable response. Login attempts failing here must
// be treated as authentication failures, never as anonymous sessions.
var ErrProfileFetch = errors.New("failed to fetch user profile")

// Adapter orchestrates one login attempt end to end: profile fetch with the
// access token, normalization, and account resolution.
type Adapter struct {
	config     *config.ProviderConfig
	normalizer *profile.Normalizer
	resolver   *resolver.Service
	httpClient *http.Client

	// configErr holds the startup validation result. A non-nil value keeps
	// the adapter in the disabled state: registration is refused.
	configErr error
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithHTTPClient sets the HTTP client used for provider API calls.
func WithHTTPClient(client *http.Client) AdapterOption {
	return func(a *Adapter) {
		a.httpClient = client
	}
}

// NewAdapter creates the strategy adapter for the configured provider. The
// configuration is validated here, once; an invalid configuration produces a
// constructed but disabled adapter (see Register).
func NewAdapter(cfg *config.ProviderConfig, normalizer *profile.Normalizer, resolve *resolver.Service, opts ...AdapterOption) *Adapter {
	adapter := &Adapter{
		config:     cfg,
		normalizer: normalizer,
		resolver:   resolve,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		configErr:  cfg.Validate(),
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// Name returns the configured provider name.
func (a *Adapter) Name() string {
	return a.config.Name
}

// Enabled reports whether the adapter passed configuration validation.
func (a *Adapter) Enabled() bool {
	return a.configErr == nil
}

// OAuth2Config builds the oauth2 client configuration for the handshake.
// The authorization-code flow itself is delegated entirely to the oauth2
// package; only the post-handshake profile fetch is bespoke.
func (a *Adapter) OAuth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.config.ClientID,
		ClientSecret: a.config.ClientSecret,
		RedirectURL:  a.config.CallbackURL(),
		Scopes:       a.config.Scopes(),
		Endpoint: oauth2.Endpoint{
			AuthURL:  a.config.AuthorizationURL,
			TokenURL: a.config.TokenURL,
		},
	}
}

// FetchProfile retrieves and normalizes the user profile for an access
// token. The token travels in the Authorization header, not as a query
// parameter; some providers reject the latter.
func (a *Adapter) FetchProfile(ctx context.Context, accessToken string) (*profile.CanonicalProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.config.UserProfileURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProfileFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrProfileFetch, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrProfileFetch, resp.StatusCode)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: unparsable body: %v", ErrProfileFetch, err)
	}

	return a.normalizer.NormalizeMap(raw)
}

// Login runs one complete login attempt for an access token and returns the
// resolved local user id. Any error aborts the attempt; the caller signals
// the host's session layer only on success.
func (a *Adapter) Login(ctx context.Context, accessToken string) (int64, error) {
	p, err := a.FetchProfile(ctx, accessToken)
	if err != nil {
		return 0, err
	}

	userID, err := a.resolver.Resolve(ctx, p)
	if err != nil {
		return 0, err
	}

	slog.Info("External login succeeded",
		"provider", p.Provider, "external_id", p.ExternalID, "user_id", userID)
	return userID, nil
}

// Descriptor returns the strategy metadata shown by the host (login button,
// register link, routes).
func (a *Adapter) Descriptor() Descriptor {
	return Descriptor{
		Name:        a.config.Name,
		AuthURL:     a.config.AuthPath(),
		CallbackURL: a.config.CallbackPath(),
		Icon:        a.config.Icon,
		LinkText:    a.config.LinkText,
		RegisterURL: a.config.RegisterLink(),
		Scope:       a.config.Scopes(),
	}
}

// Register adds the adapter to the strategy registry. A disabled adapter
// (invalid configuration) refuses registration with a descriptive error
// instead of being silently omitted.
func (a *Adapter) Register(registry *Registry) error {
	if a.configErr != nil {
		return fmt.Errorf("refusing to register strategy: %w", a.configErr)
	}
	return registry.Add(a)
}
