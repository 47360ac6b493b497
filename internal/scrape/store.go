package scrape

import (
	"encoding/json"
	"log/slog"
	"os"
)

// SessionStore persists the login session as a JSON file so it survives
// restarts. A single fixed path, one logical session.
type SessionStore struct {
	path string
}

func NewSessionStore(path string) *SessionStore {
	return &SessionStore{path: path}
}

// Load reads the stored session. Missing or undecodable records are not
// errors; they mean "no session" and the caller falls back to a fresh login.
func (st *SessionStore) Load() (Session, bool) {
	data, err := os.ReadFile(st.path)
	if err != nil {
		return Session{}, false
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		slog.Warn("session: stored record unreadable, ignoring",
			slog.String("path", st.path), slog.Any("error", err))
		return Session{}, false
	}
	return s, true
}

// Save overwrites the stored session. Best-effort at call sites: a failed
// write is reported but the in-memory session keeps serving the request.
func (st *SessionStore) Save(s Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(st.path, data, 0o600)
}
