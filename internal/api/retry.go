package api

import "time"

// RetryConfig governs the capped retry loop used for read operations only.
// Mutations are never retried automatically: replaying an increment would
// double its side effect.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, first try included.
	MaxAttempts int

	// Backoff is the wait after the first failure; subsequent waits grow
	// linearly (Backoff, 2*Backoff, ...).
	Backoff time.Duration
}

// DefaultRetryConfig matches the client's historical behavior: three attempts
// with linearly increasing backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Backoff:     time.Second,
	}
}

func (c RetryConfig) backoffFor(attempt int) time.Duration {
	return c.Backoff * time.Duration(attempt)
}
