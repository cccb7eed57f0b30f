package ratelimit

import (
	"log"
	"sync"
	"time"
)

// Policy constants. Static configuration, not runtime-tunable.
const (
	MaxCommandsPerMinute = 30
	CommandWindow        = 60 * time.Second

	MaxLoginFailures = 5
	LoginWindow      = 300 * time.Second
	LockoutDuration  = 300 * time.Second

	// Samples older than this are dropped on access.
	retention = 3600 * time.Second
)

// Limiter tracks per-source-address command rates and failed logins,
// and issues temporary lockouts. Addresses are shared between
// connections, so all state is guarded by one mutex.
type Limiter struct {
	mu       sync.Mutex
	commands map[string][]time.Time
	failures map[string][]time.Time
	lockouts map[string]time.Time

	now func() time.Time
}

// New creates a Limiter using the wall clock.
func New() *Limiter {
	return &Limiter{
		commands: make(map[string][]time.Time),
		failures: make(map[string][]time.Time),
		lockouts: make(map[string]time.Time),
		now:      time.Now,
	}
}

// SetClock replaces the time source. Test hook.
func (l *Limiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// IsLimited reports whether the address is currently throttled, either
// by an active lockout or by exceeding the trailing command window.
// It does not record anything.
func (l *Limiter) IsLimited(addr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if until, ok := l.lockouts[addr]; ok && now.Before(until) {
		return true
	}

	return countSince(l.commands[addr], now.Add(-CommandWindow)) >= MaxCommandsPerMinute
}

// RecordCommand appends a command sample for the address.
func (l *Limiter) RecordCommand(addr string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.commands[addr] = append(prune(l.commands[addr], now.Add(-retention)), now)
}

// RecordLoginAttempt records the outcome of a login decision. Failures
// accumulate in the trailing window; reaching the threshold sets a
// lockout. Successes do not clear earlier failures.
func (l *Limiter) RecordLoginAttempt(addr string, success bool) {
	if success {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.failures[addr] = append(prune(l.failures[addr], now.Add(-retention)), now)

	if countSince(l.failures[addr], now.Add(-LoginWindow)) >= MaxLoginFailures {
		l.lockouts[addr] = now.Add(LockoutDuration)
		log.Printf("Address %s locked out after repeated failed logins", addr)
	}
}

// prune drops samples at or before the cutoff. Samples are appended in
// time order, so the slice stays sorted.
func prune(samples []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(samples) && !samples[i].After(cutoff) {
		i++
	}
	return samples[i:]
}

func countSince(samples []time.Time, cutoff time.Time) int {
	n := 0
	for _, ts := range samples {
		if ts.After(cutoff) {
			n++
		}
	}
	return n
}
