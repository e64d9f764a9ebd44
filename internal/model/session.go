package model

import "time"

// Session is an authenticated identity held in server memory only.
type Session struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"account_id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	Privileges []string  `json:"privileges"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	Token      string    `json:"token,omitempty"`
}

// HasPrivilege reports whether the session's role grants code.
func (s *Session) HasPrivilege(code string) bool {
	for _, p := range s.Privileges {
		if p == code {
			return true
		}
	}
	return false
}

type SessionEventKind string

const (
	SessionSignedUp  SessionEventKind = "signed_up"
	SessionSignedIn  SessionEventKind = "signed_in"
	SessionSignedOut SessionEventKind = "signed_out"
	SessionExpired   SessionEventKind = "expired"
)

// SessionEvent is one auth state transition. Session is the session that
// started or ended.
type SessionEvent struct {
	Kind    SessionEventKind
	Session Session
}

// Authenticated reports whether the event leaves the identity signed in.
func (e SessionEvent) Authenticated() bool {
	return e.Kind == SessionSignedUp || e.Kind == SessionSignedIn
}
