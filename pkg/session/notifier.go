package session

import "net/http"

// Notifier is the host's session-establishment capability. The strategy API
// calls it once per successful login with the resolved local user id; the
// host decides what a session looks like.
type Notifier interface {
	Establish(w http.ResponseWriter, r *http.Request, userID int64) error
}
