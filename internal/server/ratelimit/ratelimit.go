// Package ratelimit throttles uploads per client with token buckets.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long an untouched client bucket is kept.
const idleTTL = time.Hour

// Info contains information about rate limit status.
type Info struct {
	Allowed    bool
	Limit      int
	RetryAfter time.Duration
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	PerMinute       float64
	Burst           int
	CleanupInterval time.Duration
}

type client struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Limiter manages one token bucket per client.
type Limiter struct {
	mu            sync.Mutex
	clients       map[string]*client
	config        Config
	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	now           func() time.Time
}

// NewLimiter creates a new rate limiter with the given configuration.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = &Config{
			Enabled:         true,
			PerMinute:       6,
			Burst:           3,
			CleanupInterval: 5 * time.Minute,
		}
	}
	limiter := &Limiter{
		clients: make(map[string]*client),
		config:  *config,
		now:     time.Now,
	}
	if limiter.config.Burst <= 0 {
		limiter.config.Burst = 1
	}

	// Start cleanup goroutine if enabled
	if config.Enabled && config.CleanupInterval > 0 {
		limiter.cleanupTicker = time.NewTicker(config.CleanupInterval)
		limiter.cleanupStop = make(chan struct{})
		go limiter.cleanup()
	}

	return limiter
}

// Allow consumes one token for clientID if available.
func (l *Limiter) Allow(clientID string) (bool, Info) {
	if !l.config.Enabled || l.config.PerMinute <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()

	l.mu.Lock()
	c, ok := l.clients[clientID]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rate.Limit(l.config.PerMinute/60), l.config.Burst)}
		l.clients[clientID] = c
	}
	c.lastAccess = now
	l.mu.Unlock()

	reservation := c.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, Info{Limit: l.config.Burst}
	}

	delay := reservation.DelayFrom(now)
	if delay > 0 {
		// Not allowed now: give the token back and report when to retry.
		reservation.CancelAt(now)
		return false, Info{Limit: l.config.Burst, RetryAfter: delay}
	}

	return true, Info{Allowed: true, Limit: l.config.Burst}
}

// cleanup removes old unused buckets to prevent memory leaks.
func (l *Limiter) cleanup() {
	for {
		select {
		case <-l.cleanupTicker.C:
			l.cleanupClients()
		case <-l.cleanupStop:
			return
		}
	}
}

// cleanupClients removes buckets that haven't been accessed within idleTTL.
func (l *Limiter) cleanupClients() {
	cutoff := l.now().Add(-idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	for id, c := range l.clients {
		if c.lastAccess.Before(cutoff) {
			delete(l.clients, id)
		}
	}
}

// Stop stops the cleanup goroutine.
func (l *Limiter) Stop() {
	if l.cleanupTicker != nil {
		l.cleanupTicker.Stop()
	}
	if l.cleanupStop != nil {
		close(l.cleanupStop)
	}
}
