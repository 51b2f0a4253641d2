package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// AuthAttemptLimiter blocks a client after repeated authentication failures
// within a sliding window. State is in-memory; a restart clears it, which is
// acceptable for a single-instance vault.
type AuthAttemptLimiter struct {
	mu      sync.Mutex
	clients map[string]*attemptState

	maxFailures   int
	window        time.Duration
	blockDuration time.Duration

	lastSweep time.Time
}

type attemptState struct {
	failures     int
	windowStart  time.Time
	blockedUntil time.Time
	lastSeen     time.Time
}

const (
	limiterSweepEvery = 5 * time.Minute
	limiterStaleAfter = 24 * time.Hour
)

func NewAuthAttemptLimiter(maxFailures int, window, blockDuration time.Duration) *AuthAttemptLimiter {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	if blockDuration <= 0 {
		blockDuration = 15 * time.Minute
	}
	return &AuthAttemptLimiter{
		clients:       make(map[string]*attemptState),
		maxFailures:   maxFailures,
		window:        window,
		blockDuration: blockDuration,
		lastSweep:     time.Now(),
	}
}

// Allow reports whether the client may attempt authentication now.
func (l *AuthAttemptLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	defer l.sweepLocked(now)

	state, ok := l.clients[key]
	if !ok {
		return true
	}

	state.lastSeen = now
	if now.Before(state.blockedUntil) {
		return false
	}
	if now.Sub(state.windowStart) > l.window {
		state.failures = 0
		state.windowStart = now
	}
	return true
}

// Failure records a failed attempt; crossing the threshold blocks the client.
func (l *AuthAttemptLimiter) Failure(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	defer l.sweepLocked(now)

	state, ok := l.clients[key]
	if !ok {
		l.clients[key] = &attemptState{failures: 1, windowStart: now, lastSeen: now}
		return
	}

	state.lastSeen = now
	if now.Sub(state.windowStart) > l.window {
		state.failures = 0
		state.windowStart = now
	}

	state.failures++
	if state.failures >= l.maxFailures {
		state.blockedUntil = now.Add(l.blockDuration)
		state.failures = 0
		state.windowStart = now
	}
}

// Success clears the client's failure history.
func (l *AuthAttemptLimiter) Success(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.clients, key)
	l.sweepLocked(time.Now())
}

func (l *AuthAttemptLimiter) sweepLocked(now time.Time) {
	if now.Sub(l.lastSweep) < limiterSweepEvery {
		return
	}
	for key, state := range l.clients {
		if now.Sub(state.lastSeen) > limiterStaleAfter && now.After(state.blockedUntil) {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

func clientIPKey(r *http.Request, prefix string) string {
	host := r.RemoteAddr
	if parsedHost, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		host = parsedHost
	}
	if host == "" {
		host = "unknown"
	}
	return prefix + ":" + host
}
