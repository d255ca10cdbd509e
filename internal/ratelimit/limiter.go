// Package ratelimit implements the per-user submission limiter.
//
// A limiter remembers at most Count submission times. While fewer than Count
// are recorded every submission is accepted. After that a submission is
// accepted only when the oldest recorded time is more than Window in the
// past, in which case it takes the oldest entry's place.
package ratelimit

import (
	"errors"
	"time"
)

// ErrExceeded is returned when a submission is refused.
var ErrExceeded = errors.New("rate limit exceeded")

// Limit is a count of submissions allowed per window.
type Limit struct {
	Count  int
	Window time.Duration
}

// Limiter is a sliding-window submission limiter. It is not safe for
// concurrent use; callers hold their own lock.
type Limiter struct {
	limit   Limit
	entries []time.Time
}

// New creates a limiter. It returns an error if the limit allows nothing.
func New(limit Limit) (*Limiter, error) {
	if limit.Count <= 0 {
		return nil, errors.New("rate limiter must allow at least one submission")
	}
	return &Limiter{limit: limit, entries: make([]time.Time, 0, limit.Count)}, nil
}

// Limit returns the configured limit.
func (l *Limiter) Limit() Limit { return l.limit }

// Submit records a submission at now, or returns ErrExceeded.
func (l *Limiter) Submit(now time.Time) error {
	slot, err := l.Check(now)
	if err != nil {
		return err
	}
	l.Record(slot, now)
	return nil
}

// Check reports whether a submission at now would be accepted, without
// recording it. The returned slot is passed to Record.
func (l *Limiter) Check(now time.Time) (int, error) {
	if len(l.entries) < l.limit.Count {
		return len(l.entries), nil
	}

	oldest := 0
	for i, t := range l.entries {
		if t.Before(l.entries[oldest]) {
			oldest = i
		}
	}
	if l.entries[oldest].Add(l.limit.Window).Before(now) {
		return oldest, nil
	}
	return 0, ErrExceeded
}

// Record stores now in a slot returned by Check.
func (l *Limiter) Record(slot int, now time.Time) {
	if slot >= len(l.entries) {
		l.entries = append(l.entries, now)
		return
	}
	l.entries[slot] = now
}
