package scrape

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Operational counters, thread-safe via atomics.
var metrics struct {
	Requests         atomic.Int64
	CacheHits        atomic.Int64
	CacheMisses      atomic.Int64
	Logins           atomic.Int64
	LoginFailures    atomic.Int64
	EmptyTranscripts atomic.Int64
	ScrapeFailures   atomic.Int64
}

// GetMetrics returns a snapshot of all counters.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"requests":          metrics.Requests.Load(),
		"cache_hits":        metrics.CacheHits.Load(),
		"cache_misses":      metrics.CacheMisses.Load(),
		"logins":            metrics.Logins.Load(),
		"login_failures":    metrics.LoginFailures.Load(),
		"empty_transcripts": metrics.EmptyTranscripts.Load(),
		"scrape_failures":   metrics.ScrapeFailures.Load(),
	}
}

// FormatMetrics renders counters as plain text for the metrics endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	keys := []string{
		"requests", "cache_hits", "cache_misses",
		"logins", "login_failures",
		"empty_transcripts", "scrape_failures",
	}
	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}
