package scrape

import "errors"

// ErrContentUnavailable means the episode has no reachable transcript:
// the transcript control or container never appeared, or every row was
// filtered out. Maps to 404 at the HTTP edge.
var ErrContentUnavailable = errors.New("transcript not available")

// ErrLoginFailed wraps any failure inside the login workflow. Maps to 500.
var ErrLoginFailed = errors.New("login failed")
