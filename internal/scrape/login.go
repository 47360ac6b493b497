package scrape

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Login form and logged-in marker selectors. Part of the site contract;
// versioned by the site, not by us.
const (
	selUsername     = "#login-username"
	selPassword     = "#login-password"
	selLoginSubmit  = "#login-button"
	selLoggedInUser = `[data-testid="user-widget-link"]`
)

// EnsureAuthenticated leaves the page on target in an authenticated state.
// A stored session inside its validity window is applied and verified live
// against the target page itself: validity is page-scoped on this site, a
// generic "am I logged in" probe can false-positive on gated episodes. Any
// failure to reuse falls through to a full login.
func EnsureAuthenticated(page *rod.Page, store *SessionStore, cfg Config, target string) error {
	flow := authFlow{
		store: store,
		applyCookies: func(s Session) error {
			return page.Browser().SetCookies(s.Cookies)
		},
		navigate: func(url string, timeout time.Duration) error {
			return navigate(page, url, timeout)
		},
		verify: func() bool { return verifyLogin(page) },
		login:  func() error { return performLogin(page, store, cfg) },
	}
	return flow.run(target)
}

// authFlow is the reuse-or-login state machine with its browser steps
// injected, so the routing decisions are testable without a browser.
type authFlow struct {
	store        *SessionStore
	applyCookies func(Session) error
	navigate     func(url string, timeout time.Duration) error
	verify       func() bool
	login        func() error
}

func (f authFlow) run(target string) error {
	sess, ok := f.store.Load()
	reusable := ok && !sess.Stale(time.Now())

	if reusable {
		if err := f.applyCookies(sess); err != nil {
			slog.Warn("session: applying stored cookies failed", slog.Any("error", err))
			reusable = false
		}
	}

	if err := f.navigate(target, pageTimeout); err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	// A stale or absent session is never presented for verification; it
	// goes straight to the login workflow.
	if reusable && f.verify() {
		slog.Debug("session: reused stored login")
		return nil
	}
	if reusable {
		slog.Info("session: stored login rejected by site, re-authenticating")
	}

	metrics.Logins.Add(1)
	if err := f.login(); err != nil {
		metrics.LoginFailures.Add(1)
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}

	// Land back on the intended page so the caller sees its authenticated
	// state, not the post-login redirect.
	if err := f.navigate(target, pageTimeout); err != nil {
		return fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	return nil
}

// verifyLogin waits briefly for the marker element only authenticated
// viewers get. Its absence is a normal "not logged in" signal, never an
// error.
func verifyLogin(page *rod.Page) bool {
	p := page.Timeout(markerTimeout)
	defer p.CancelTimeout()
	_, err := p.Element(selLoggedInUser)
	return err == nil
}

// performLogin runs the credential workflow and persists the resulting
// cookie set. No retries here: a failed login fails the whole request.
func performLogin(page *rod.Page, store *SessionStore, cfg Config) error {
	return persistAfterLogin(store, func() ([]*proto.NetworkCookie, error) {
		return submitCredentials(page, cfg)
	})
}

// persistAfterLogin writes a new session only once every login step has
// succeeded. A failed login must leave the store untouched. The write
// itself is best-effort: the captured cookies still serve this request.
func persistAfterLogin(store *SessionStore, login func() ([]*proto.NetworkCookie, error)) error {
	cookies, err := login()
	if err != nil {
		return err
	}
	sess := Session{Cookies: proto.CookiesToParams(cookies), Timestamp: time.Now().UnixMilli()}
	if err := store.Save(sess); err != nil {
		slog.Warn("session: persisting login failed, continuing with in-memory cookies",
			slog.Any("error", err))
	}
	slog.Info("session: logged in", slog.Int("cookies", len(sess.Cookies)))
	return nil
}

// submitCredentials drives the login form and returns the browser's cookie
// set after the post-submit navigation has settled.
func submitCredentials(page *rod.Page, cfg Config) ([]*proto.NetworkCookie, error) {
	if err := navigate(page, cfg.LoginURL, loginNavTimeout); err != nil {
		return nil, err
	}

	p := page.Timeout(loginNavTimeout)
	defer p.CancelTimeout()

	user, err := p.Element(selUsername)
	if err != nil {
		return nil, fmt.Errorf("username field: %w", err)
	}
	if err := user.Input(cfg.Username); err != nil {
		return nil, fmt.Errorf("username field: %w", err)
	}

	pass, err := p.Element(selPassword)
	if err != nil {
		return nil, fmt.Errorf("password field: %w", err)
	}
	if err := pass.Input(cfg.Password); err != nil {
		return nil, fmt.Errorf("password field: %w", err)
	}

	submit, err := p.Element(selLoginSubmit)
	if err != nil {
		return nil, fmt.Errorf("submit control: %w", err)
	}

	// Arm the navigation wait before clicking so the resulting navigation
	// cannot slip between the two calls.
	wait := p.WaitNavigation(proto.PageLifecycleEventNameNetworkAlmostIdle)
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return nil, fmt.Errorf("submit: %w", err)
	}
	wait()
	// WaitNavigation surfaces no error of its own: its closure also returns
	// when the deadline expires. An expired context here means the login
	// never settled, and cookies off a still-open login form must not be
	// captured as a session.
	if err := p.GetContext().Err(); err != nil {
		return nil, fmt.Errorf("post-submit settle: %w", err)
	}

	cookies, err := page.Browser().GetCookies()
	if err != nil {
		return nil, fmt.Errorf("capture cookies: %w", err)
	}
	return cookies, nil
}
