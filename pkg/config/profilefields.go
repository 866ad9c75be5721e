package config

// ProfileFields names the raw JSON fields the provider's user-info endpoint
// returns. Exact field names are provider-specific, so they are configured
// here rather than hardcoded at the normalizer.
type ProfileFields struct {
	ID         string `env:"SSO_PROFILE_ID_FIELD" env-default:"id"`
	GivenName  string `env:"SSO_PROFILE_GIVEN_NAME_FIELD" env-default:"first_name"`
	FamilyName string `env:"SSO_PROFILE_FAMILY_NAME_FIELD" env-default:"last_name"`
	Email      string `env:"SSO_PROFILE_EMAIL_FIELD" env-default:"email_address"`

	// AdminHint is optional. When the raw profile carries this field with a
	// truthy value, the resolved user is granted the administrative role.
	AdminHint string `env:"SSO_PROFILE_ADMIN_FIELD" env-default:"is_admin"`
}
