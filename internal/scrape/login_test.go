package scrape

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/proto"
)

// fakeFlow wires an authFlow to counters so the routing decisions can be
// asserted without a browser.
type fakeFlow struct {
	flow        authFlow
	navigations []string
	verifies    int
	logins      int

	verifyResult bool
	loginErr     error
}

func newFakeFlow(t *testing.T, store *SessionStore) *fakeFlow {
	t.Helper()
	f := &fakeFlow{verifyResult: true}
	f.flow = authFlow{
		store:        store,
		applyCookies: func(Session) error { return nil },
		navigate: func(url string, _ time.Duration) error {
			f.navigations = append(f.navigations, url)
			return nil
		},
		verify: func() bool { f.verifies++; return f.verifyResult },
		login:  func() error { f.logins++; return f.loginErr },
	}
	return f
}

func storeWithSessionAge(t *testing.T, age time.Duration) *SessionStore {
	t.Helper()
	store := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	err := store.Save(Session{
		Cookies:   []*proto.NetworkCookieParam{{Name: "sid", Value: "v"}},
		Timestamp: time.Now().Add(-age).UnixMilli(),
	})
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestAuthFlowReusesFreshSession(t *testing.T) {
	store := storeWithSessionAge(t, time.Hour)
	f := newFakeFlow(t, store)

	if err := f.flow.run("https://listen.example/episode/ep1"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if f.logins != 0 {
		t.Errorf("login ran %d times for a fresh verified session", f.logins)
	}
	if f.verifies != 1 {
		t.Errorf("verify ran %d times, want 1", f.verifies)
	}
	if len(f.navigations) != 1 {
		t.Errorf("navigated %d times, want 1 (target only)", len(f.navigations))
	}
}

func TestAuthFlowStaleSessionAlwaysLogsIn(t *testing.T) {
	store := storeWithSessionAge(t, 7*24*time.Hour+time.Second)
	f := newFakeFlow(t, store)

	if err := f.flow.run("https://listen.example/episode/ep1"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if f.verifies != 0 {
		t.Errorf("a stale session was presented for verification %d times", f.verifies)
	}
	if f.logins != 1 {
		t.Errorf("login ran %d times, want 1", f.logins)
	}
	// Re-navigation to the target after login.
	if len(f.navigations) != 2 {
		t.Errorf("navigated %d times, want 2", len(f.navigations))
	}
}

func TestAuthFlowAbsentSessionLogsIn(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	f := newFakeFlow(t, store)

	if err := f.flow.run("https://listen.example/episode/ep1"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if f.verifies != 0 || f.logins != 1 {
		t.Errorf("verifies=%d logins=%d, want 0 and 1", f.verifies, f.logins)
	}
}

func TestAuthFlowRejectedSessionFallsThroughToLogin(t *testing.T) {
	store := storeWithSessionAge(t, time.Hour)
	f := newFakeFlow(t, store)
	f.verifyResult = false

	if err := f.flow.run("https://listen.example/episode/ep1"); err != nil {
		t.Fatalf("run: %v", err)
	}
	if f.verifies != 1 || f.logins != 1 {
		t.Errorf("verifies=%d logins=%d, want 1 and 1", f.verifies, f.logins)
	}
}

func TestAuthFlowLoginFailure(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))
	f := newFakeFlow(t, store)
	f.loginErr = errors.New("wrong password")

	err := f.flow.run("https://listen.example/episode/ep1")
	if !errors.Is(err, ErrLoginFailed) {
		t.Fatalf("expected ErrLoginFailed, got %v", err)
	}
	if len(f.navigations) != 1 {
		t.Errorf("navigated %d times, want 1 (no re-navigation after a failed login)", len(f.navigations))
	}
}

func TestFailedLoginWritesNoSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	store := NewSessionStore(path)

	// A post-submit settle timeout surfaces as the page context expiring.
	settleTimeout := errors.New("post-submit settle: " + context.DeadlineExceeded.Error())
	err := persistAfterLogin(store, func() ([]*proto.NetworkCookie, error) {
		return nil, settleTimeout
	})
	if !errors.Is(err, settleTimeout) {
		t.Fatalf("expected the login error to propagate, got %v", err)
	}

	if _, ok := store.Load(); ok {
		t.Error("a failed login persisted a session record")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("session file exists after a failed login: %v", err)
	}
}

func TestSuccessfulLoginPersistsSession(t *testing.T) {
	store := NewSessionStore(filepath.Join(t.TempDir(), "session.json"))

	before := time.Now().UnixMilli()
	err := persistAfterLogin(store, func() ([]*proto.NetworkCookie, error) {
		return []*proto.NetworkCookie{{Name: "sid", Value: "abc"}}, nil
	})
	if err != nil {
		t.Fatalf("persistAfterLogin: %v", err)
	}

	sess, ok := store.Load()
	if !ok {
		t.Fatal("expected a session record after a successful login")
	}
	if sess.Timestamp < before || sess.Timestamp > time.Now().UnixMilli() {
		t.Errorf("timestamp %d outside the login window", sess.Timestamp)
	}
	if len(sess.Cookies) != 1 || sess.Cookies[0].Name != "sid" {
		t.Errorf("cookies not captured: %+v", sess.Cookies)
	}
}
