// Package config holds the immutable provider configuration for the SSO
// adapter.
//
// Configuration is loaded once at process start (typically with cleanenv from
// environment variables), validated, and passed by reference to the other
// packages. If validation fails the adapter enters a disabled state: strategy
// registration is refused with ErrConfigInvalid and no login route is served.
//
// Example:
//
//	cfg := config.ProviderConfig{}
//	cleanenv.ReadEnv(&cfg)
//	if err := cfg.Validate(); err != nil {
//		slog.Error("sso disabled", "error", err)
//	}
package config
