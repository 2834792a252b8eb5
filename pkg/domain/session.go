package domain

import "time"

// Session is the persisted client state: the bearer token issued at login and who it belongs to.
type Session struct {
	Token    string    `json:"token"`
	Username string    `json:"username"`
	SavedAt  time.Time `json:"saved_at"`
}

// Empty reports whether the session holds no token.
func (s Session) Empty() bool {
	return s.Token == ""
}
