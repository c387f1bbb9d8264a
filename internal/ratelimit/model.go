package ratelimit

import "time"

// Record matches the rate_limits table schema: one row per caller IP.
// request_count only moves forward inside a window; a request arriving more
// than one window after window_start resets the row to count 1.
type Record struct {
	IPAddress    string    `json:"ip_address"`
	RequestCount int       `json:"request_count"`
	WindowStart  time.Time `json:"window_start"`
	LastRequest  time.Time `json:"last_request"`
}

// Decision is the outcome of a limiter check.
type Decision struct {
	Allowed bool
	// Scope identifies which limit denied the request: "hour" for the
	// fixed Postgres window, "burst" for the optional Redis fast path.
	Scope string
	// RetryAfter is how long a denied caller should wait, i.e. the full
	// window of the denying limit.
	RetryAfter time.Duration
}

const (
	ScopeHour  = "hour"
	ScopeBurst = "burst"
)
