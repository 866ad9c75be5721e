package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/jinzhu/copier"

	"github.com/tendant/simple-sso/pkg/session"
	"github.com/tendant/simple-sso/pkg/strategy"
)

// Handle serves the provider login routes: redirect to the provider,
// callback, and strategy metadata listing.
type Handle struct {
	registry *strategy.Registry
	states   strategy.StateStore
	notifier session.Notifier

	stateExpiration time.Duration
	successURL      string
	failureURL      string
}

// Option configures a Handle.
type Option func(*Handle)

// WithStateExpiration sets how long a pending OAuth2 state stays valid.
func WithStateExpiration(d time.Duration) Option {
	return func(h *Handle) {
		h.stateExpiration = d
	}
}

// WithSuccessURL sets where users land after a successful login.
func WithSuccessURL(url string) Option {
	return func(h *Handle) {
		h.successURL = url
	}
}

// WithFailureURL sets where users land after a failed login. Error detail
// is logged server-side only; the redirect carries none of it.
func WithFailureURL(url string) Option {
	return func(h *Handle) {
		h.failureURL = url
	}
}

// NewHandle creates the login route handler.
func NewHandle(registry *strategy.Registry, states strategy.StateStore, notifier session.Notifier, opts ...Option) *Handle {
	handle := &Handle{
		registry:        registry,
		states:          states,
		notifier:        notifier,
		stateExpiration: 10 * time.Minute,
		successURL:      "/",
		failureURL:      "/login?error=auth_failed",
	}

	for _, opt := range opts {
		opt(handle)
	}

	return handle
}

// Routes mounts the handler on a chi router.
func (h *Handle) Routes(r chi.Router) {
	r.Get("/auth/providers", h.ListProviders)
	r.Get("/auth/{provider}", h.InitiateLogin)
	r.Get("/auth/{provider}/callback", h.Callback)
}

// ProviderResponse is the public shape of a strategy descriptor.
type ProviderResponse struct {
	Name        string   `json:"name"`
	AuthURL     string   `json:"url"`
	CallbackURL string   `json:"callbackURL"`
	Icon        string   `json:"icon,omitempty"`
	LinkText    string   `json:"linktext,omitempty"`
	RegisterURL string   `json:"registerURL,omitempty"`
	Scope       []string `json:"scope"`
}

// ListProviders returns the metadata of every registered strategy.
func (h *Handle) ListProviders(w http.ResponseWriter, r *http.Request) {
	descriptors := h.registry.Descriptors()

	providers := make([]ProviderResponse, 0, len(descriptors))
	if err := copier.Copy(&providers, &descriptors); err != nil {
		slog.Error("Failed to map strategy descriptors", "error", err)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "internal_error"})
		return
	}

	render.JSON(w, r, map[string]interface{}{"providers": providers})
}

// InitiateLogin issues an anti-forgery state and redirects the user to the
// provider's authorization endpoint.
func (h *Handle) InitiateLogin(w http.ResponseWriter, r *http.Request) {
	providerName := chi.URLParam(r, "provider")

	adapter, err := h.registry.Get(providerName)
	if err != nil {
		slog.Warn("Login attempt for unknown strategy", "provider", providerName)
		http.NotFound(w, r)
		return
	}

	value, err := strategy.NewStateValue()
	if err != nil {
		h.fail(w, r, providerName, err)
		return
	}

	err = h.states.Store(&strategy.State{
		Value:       value,
		Provider:    providerName,
		RedirectURL: r.URL.Query().Get("redirect"),
		ExpiresAt:   time.Now().Add(h.stateExpiration).Unix(),
	})
	if err != nil {
		h.fail(w, r, providerName, err)
		return
	}

	http.Redirect(w, r, adapter.OAuth2Config().AuthCodeURL(value), http.StatusFound)
}

// Callback completes one login attempt: state validation, code exchange,
// profile fetch and account resolution, then session establishment. Every
// failure ends in the generic failure redirect.
func (h *Handle) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	providerName := chi.URLParam(r, "provider")

	adapter, err := h.registry.Get(providerName)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		slog.Warn("Provider returned an error on callback", "provider", providerName, "provider_error", errParam)
		http.Redirect(w, r, h.failureURL, http.StatusFound)
		return
	}

	state, err := h.states.Consume(r.URL.Query().Get("state"))
	if err != nil {
		h.fail(w, r, providerName, err)
		return
	}
	if state.Provider != providerName {
		slog.Error("State provider mismatch", "expected", state.Provider, "got", providerName)
		http.Redirect(w, r, h.failureURL, http.StatusFound)
		return
	}

	token, err := adapter.OAuth2Config().Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil {
		h.fail(w, r, providerName, err)
		return
	}

	userID, err := adapter.Login(ctx, token.AccessToken)
	if err != nil {
		h.fail(w, r, providerName, err)
		return
	}

	if err := h.notifier.Establish(w, r, userID); err != nil {
		h.fail(w, r, providerName, err)
		return
	}

	target := h.successURL
	if state.RedirectURL != "" {
		target = state.RedirectURL
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// fail logs the failure detail server-side and sends the user to the
// generic failure page.
func (h *Handle) fail(w http.ResponseWriter, r *http.Request, provider string, err error) {
	slog.Error("External login attempt failed", "provider", provider, "error", err)
	http.Redirect(w, r, h.failureURL, http.StatusFound)
}
