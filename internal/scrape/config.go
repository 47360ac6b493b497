package scrape

import (
	"net/url"
	"time"
)

// Config holds all scraper configuration, injected from main.
type Config struct {
	BaseURL     string // episode pages live under <BaseURL>/episode/<id>
	LoginURL    string
	Username    string
	Password    string
	SessionFile string
}

// EpisodeURL builds the navigation target for an episode id.
func (c Config) EpisodeURL(id string) string {
	return c.BaseURL + "/episode/" + url.PathEscape(id)
}

// Step timeouts. Tuned against the real site, which renders slowly and
// client-side; change them only with fresh measurements.
const (
	pageTimeout     = 60 * time.Second // default bound for navigations
	loginNavTimeout = 60 * time.Second // login page open + post-submit settle
	markerTimeout   = 10 * time.Second // logged-in marker wait
	activateTimeout = 10 * time.Second // transcript control and container waits
)

// browserUserAgent masquerades a regular desktop Chrome. The site serves a
// degraded shell to clients it considers bots.
const browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
