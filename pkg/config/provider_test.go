package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() ProviderConfig {
	return ProviderConfig{
		Name:             "acme",
		BaseURL:          "http://localhost:4000",
		AuthorizationURL: "https://id.acme.test/oauth/authorize",
		TokenURL:         "https://id.acme.test/oauth/token",
		UserProfileURL:   "https://id.acme.test/api/me",
		ClientID:         "client-id",
		ClientSecret:     "client-secret",
		Scope:            "read",
	}
}

func TestProviderConfig_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		cfg := validConfig()
		assert.NoError(t, cfg.Validate())
	})

	t.Run("MissingName", func(t *testing.T) {
		cfg := validConfig()
		cfg.Name = ""
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrConfigInvalid)
		assert.Contains(t, err.Error(), "provider name")
	})

	t.Run("MissingUserProfileURL", func(t *testing.T) {
		cfg := validConfig()
		cfg.UserProfileURL = ""
		err := cfg.Validate()
		assert.ErrorIs(t, err, ErrConfigInvalid)
		assert.Contains(t, err.Error(), "user profile URL")
	})
}

func TestProviderConfig_Scopes(t *testing.T) {
	cfg := validConfig()

	cfg.Scope = "read"
	assert.Equal(t, []string{"read"}, cfg.Scopes())

	cfg.Scope = "read, write,profile"
	assert.Equal(t, []string{"read", "write", "profile"}, cfg.Scopes())

	cfg.Scope = ""
	assert.Empty(t, cfg.Scopes())
}

func TestProviderConfig_Paths(t *testing.T) {
	cfg := validConfig()

	assert.Equal(t, "/auth/acme", cfg.AuthPath())
	assert.Equal(t, "/auth/acme/callback", cfg.CallbackPath())
	assert.Equal(t, "http://localhost:4000/auth/acme/callback", cfg.CallbackURL())
	assert.Equal(t, "acmeId", cfg.UserIDField())
	assert.Equal(t, "acmeId:uid", cfg.MappingKey())
}
