package engine

import "errors"

// Sentinel errors shared by guide, sources and the servers. Check with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidURL   = errors.New("invalid YouTube URL")
	ErrNoTranscript = errors.New("no transcript available")
)
