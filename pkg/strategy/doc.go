// Package strategy wires the SSO adapter into the OAuth2 client flow.
//
// The Adapter owns one login attempt end to end: after the oauth2 package
// completes the authorization-code handshake, the adapter fetches the user
// profile from the provider (bearer token in the Authorization header),
// normalizes it, and resolves it to a local user id. Any error aborts the
// attempt and is surfaced to the session layer as an authentication failure.
//
// Strategy metadata (login route, icon, link text, register link, scopes) is
// published through a Registry; an adapter whose configuration failed
// validation refuses registration instead of being silently omitted.
//
// The package also keeps the pending OAuth2 anti-forgery states between
// redirect and callback (StateStore).
package strategy
