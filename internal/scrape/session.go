package scrape

import (
	"time"

	"github.com/go-rod/rod/lib/proto"
)

// sessionValidity is how long a persisted session is trusted without a live
// check. Past it the session is stale regardless of cookie expiry: staleness
// is conservative and always forces re-verification against the target page.
const sessionValidity = 7 * 24 * time.Hour

// Session is a persisted login: the cookie set captured after a successful
// authentication plus the capture time. Overwritten on every re-login,
// never deleted.
type Session struct {
	Cookies   []*proto.NetworkCookieParam `json:"cookies"`
	Timestamp int64                       `json:"timestamp"` // epoch ms
}

// Stale reports whether the session is past its validity window.
func (s Session) Stale(now time.Time) bool {
	return now.Sub(time.UnixMilli(s.Timestamp)) > sessionValidity
}
