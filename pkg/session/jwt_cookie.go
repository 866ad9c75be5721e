package session

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultCookieName is the session cookie written by JWTCookieNotifier.
const DefaultCookieName = "sso_session"

// JWTCookieNotifier is a reference Notifier that issues an HS256-signed JWT
// into an HttpOnly cookie. Hosts with their own session layer implement
// Notifier instead.
type JWTCookieNotifier struct {
	secret     []byte
	cookieName string
	expiry     time.Duration
	secure     bool
}

// JWTOption configures a JWTCookieNotifier.
type JWTOption func(*JWTCookieNotifier)

// WithCookieName overrides the session cookie name.
func WithCookieName(name string) JWTOption {
	return func(n *JWTCookieNotifier) {
		n.cookieName = name
	}
}

// WithExpiry overrides the session token lifetime.
func WithExpiry(d time.Duration) JWTOption {
	return func(n *JWTCookieNotifier) {
		n.expiry = d
	}
}

// WithSecureCookie toggles the Secure cookie attribute. Disable only for
// local development over plain HTTP.
func WithSecureCookie(secure bool) JWTOption {
	return func(n *JWTCookieNotifier) {
		n.secure = secure
	}
}

// NewJWTCookieNotifier creates a notifier signing with the given secret.
func NewJWTCookieNotifier(secret string, opts ...JWTOption) *JWTCookieNotifier {
	notifier := &JWTCookieNotifier{
		secret:     []byte(secret),
		cookieName: DefaultCookieName,
		expiry:     24 * time.Hour,
		secure:     true,
	}

	for _, opt := range opts {
		opt(notifier)
	}

	return notifier
}

// Establish signs a session token for userID and writes it as a cookie.
func (n *JWTCookieNotifier) Establish(w http.ResponseWriter, r *http.Request, userID int64) error {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"iat": now.Unix(),
		"exp": now.Add(n.expiry).Unix(),
	})

	signed, err := token.SignedString(n.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session token: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     n.cookieName,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(n.expiry),
		HttpOnly: true,
		Secure:   n.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Auth returns a jwtauth verifier for the notifier's secret, for hosts that
// want to guard routes with the standard chi middleware chain:
//
//	r.Use(jwtauth.Verifier(notifier.Auth()))
//	r.Use(jwtauth.Authenticator(notifier.Auth()))
func (n *JWTCookieNotifier) Auth() *jwtauth.JWTAuth {
	return jwtauth.New("HS256", n.secret, nil)
}
