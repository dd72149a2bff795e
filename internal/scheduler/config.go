package scheduler

import "time"

type Config struct {
	// Interval between retry sweeps.
	Interval time.Duration
	// BatchSize caps how many bookings one sweep touches.
	BatchSize int
	// MaxAttempts stops retrying a channel that keeps failing.
	MaxAttempts int
	// JobTimeout bounds a single sweep.
	JobTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 5 * time.Minute
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 5
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = time.Minute
	}
	return c
}
