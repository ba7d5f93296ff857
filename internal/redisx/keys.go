package redisx

import "time"

const (
	// Cached checkout-session summary: session:%s -> JSON summary
	KeySessionSummary = "session:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLSessionCache = 5 * time.Minute
	TTLDedup        = 48 * time.Hour
)
