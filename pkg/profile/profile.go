package profile

// Email is one address attached to a canonical profile.
type Email struct {
	Address string `json:"address"`
	Kind    string `json:"kind,omitempty"`
}

// CanonicalProfile is the normalized identity record used internally,
// independent of the provider's wire format. It is produced fresh for every
// login attempt and never persisted as-is.
type CanonicalProfile struct {
	// Provider is the configured provider name, stamped on during
	// normalization for downstream bookkeeping.
	Provider string `json:"provider"`

	// ExternalID is the provider-scoped, stable user identifier. Always
	// non-empty; normalization fails otherwise.
	ExternalID string `json:"external_id"`

	// DisplayName is the concatenated given and family names. May be empty.
	DisplayName string `json:"display_name,omitempty"`

	// Emails holds the addresses asserted by the provider, most trusted
	// first. Normalization guarantees at least one entry.
	Emails []Email `json:"emails"`

	// AdminHint is true when the provider marks the user as an administrator.
	AdminHint bool `json:"admin_hint,omitempty"`
}

// PrimaryEmail returns the first email address.
func (p *CanonicalProfile) PrimaryEmail() string {
	if len(p.Emails) == 0 {
		return ""
	}
	return p.Emails[0].Address
}
