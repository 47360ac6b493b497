package scrape

import (
	"testing"
	"time"
)

func TestSessionStale(t *testing.T) {
	now := time.Now()
	sessionAgedBy := func(age time.Duration) Session {
		return Session{Timestamp: now.Add(-age).UnixMilli()}
	}

	t.Run("fresh session", func(t *testing.T) {
		if sessionAgedBy(time.Hour).Stale(now) {
			t.Error("1h old session should not be stale")
		}
	})

	t.Run("just inside window", func(t *testing.T) {
		if sessionAgedBy(7*24*time.Hour - time.Second).Stale(now) {
			t.Error("session 1s inside the window should not be stale")
		}
	})

	t.Run("just past window", func(t *testing.T) {
		if !sessionAgedBy(7*24*time.Hour + time.Second).Stale(now) {
			t.Error("session 1s past the window must be stale")
		}
	})

	t.Run("zero value", func(t *testing.T) {
		if !(Session{}).Stale(now) {
			t.Error("zero-value session must be stale")
		}
	})
}
