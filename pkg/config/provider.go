package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrConfigInvalid indicates the provider configuration is unusable. The
// subsystem stays disabled and strategy registration is refused.
var ErrConfigInvalid = errors.New("provider configuration is invalid")

// ProviderConfig holds the settings for the single external OAuth2 provider
// this instance talks to. It is loaded once at startup and read-only afterwards.
type ProviderConfig struct {
	// Name identifies the provider (e.g. "acme"). It scopes mapping keys and
	// the denormalized user field, so changing it orphans existing mappings.
	Name     string `env:"SSO_PROVIDER_NAME"`
	Icon     string `env:"SSO_ICON" env-default:"fa-sign-in"`
	LinkText string `env:"SSO_LINK_TEXT"`

	// RegisterURL and RegisterContext are concatenated into the link shown to
	// users who do not have an account with the provider yet.
	RegisterURL     string `env:"SSO_REGISTER_URL"`
	RegisterContext string `env:"SSO_REGISTER_CONTEXT"`

	// BaseURL is the public URL of the host application, used to build the
	// absolute OAuth2 callback URL.
	BaseURL string `env:"SSO_BASE_URL" env-default:"http://localhost:4000"`

	AuthorizationURL string `env:"SSO_AUTHORIZATION_URL"`
	TokenURL         string `env:"SSO_TOKEN_URL"`
	UserProfileURL   string `env:"SSO_USER_PROFILE_URL"`

	ClientID     string `env:"SSO_CLIENT_ID"`
	ClientSecret string `env:"SSO_CLIENT_SECRET"`

	// Scope is the comma-separated scope list requested from the provider.
	Scope string `env:"SSO_SCOPE" env-default:"read"`
}

// Validate checks the fields the adapter cannot operate without. Errors wrap
// ErrConfigInvalid so callers can detect the disabled state with errors.Is.
func (c *ProviderConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("%w: provider name is required", ErrConfigInvalid)
	}
	if c.UserProfileURL == "" {
		return fmt.Errorf("%w: user profile URL is required", ErrConfigInvalid)
	}
	if _, err := url.Parse(c.UserProfileURL); err != nil {
		return fmt.Errorf("%w: invalid user profile URL: %v", ErrConfigInvalid, err)
	}
	return nil
}

// Scopes splits the comma-separated scope setting into a list.
func (c *ProviderConfig) Scopes() []string {
	parts := strings.Split(c.Scope, ",")
	scopes := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

// AuthPath returns the host-relative login path for this provider.
func (c *ProviderConfig) AuthPath() string {
	return "/auth/" + c.Name
}

// CallbackPath returns the host-relative OAuth2 callback path.
func (c *ProviderConfig) CallbackPath() string {
	return c.AuthPath() + "/callback"
}

// CallbackURL returns the absolute OAuth2 callback URL.
func (c *ProviderConfig) CallbackURL() string {
	return c.BaseURL + c.CallbackPath()
}

// RegisterLink returns the sign-up link shown next to the login button.
func (c *ProviderConfig) RegisterLink() string {
	return c.RegisterURL + c.RegisterContext
}

// UserIDField returns the name of the denormalized field stamped on the local
// user record, holding the provider-scoped external id.
func (c *ProviderConfig) UserIDField() string {
	return c.Name + "Id"
}

// MappingKey returns the object key under which external-id to local-user-id
// mappings are stored. Scoped by provider name so the entries never collide
// with unrelated host data.
func (c *ProviderConfig) MappingKey() string {
	return c.Name + "Id:uid"
}
