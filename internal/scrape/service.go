package scrape

import (
	"context"
	"log/slog"
	"time"
)

// Source tells the caller where a transcript came from.
type Source string

const (
	SourceCache Source = "cache"
	SourceFresh Source = "fresh"
)

// Result is the outcome of one transcript fetch.
type Result struct {
	Identifier string `json:"identifier"`
	Transcript string `json:"transcript"`
	Source     Source `json:"source"`
}

// Service runs the end-to-end pipeline for one episode: cache lookup, then
// browser, login, extraction, cache fill. Construct once in main; safe for
// concurrent use. Each request owns its own browser, the only shared state
// is the cache and the session file, and two requests hitting a stale
// session at once simply both re-login. That race is bounded-cost and left
// unguarded.
type Service struct {
	cfg   Config
	cache *Cache
	store *SessionStore

	// scrapeFn is swapped in tests to keep browsers out of unit runs.
	scrapeFn func(ctx context.Context, id string) (string, error)
}

func NewService(cfg Config, cache *Cache) *Service {
	s := &Service{
		cfg:   cfg,
		cache: cache,
		store: NewSessionStore(cfg.SessionFile),
	}
	s.scrapeFn = s.scrapeTranscript
	return s
}

// Fetch returns the transcript for an episode id, cache-aside: on a hit the
// browser pipeline is never touched; on a miss the scraped transcript is
// cached before returning. Failures are never cached.
func (s *Service) Fetch(ctx context.Context, id string) (Result, error) {
	metrics.Requests.Add(1)

	if doc, ok := s.cache.Get(ctx, id); ok {
		return Result{Identifier: id, Transcript: doc, Source: SourceCache}, nil
	}

	start := time.Now()
	doc, err := s.scrapeFn(ctx, id)
	if err != nil {
		metrics.ScrapeFailures.Add(1)
		return Result{}, err
	}
	slog.Info("transcript scraped",
		slog.String("episode", id),
		slog.Duration("took", time.Since(start)))

	s.cache.Set(ctx, id, doc)
	return Result{Identifier: id, Transcript: doc, Source: SourceFresh}, nil
}

// scrapeTranscript owns exactly one browser for its whole duration and
// releases it on every exit path.
func (s *Service) scrapeTranscript(_ context.Context, id string) (string, error) {
	page, cleanup, err := newBrowser()
	if err != nil {
		return "", err
	}
	defer cleanup()

	target := s.cfg.EpisodeURL(id)
	if err := EnsureAuthenticated(page, s.store, s.cfg, target); err != nil {
		return "", err
	}
	return ExtractTranscript(page)
}
