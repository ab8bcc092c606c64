package geosource

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Sample is a single location fix. Immutable once emitted.
type Sample struct {
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	AccuracyM float64   `json:"accuracy_m,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

var (
	ErrBusy   = errors.New("geosource: feed already has an active subscription")
	ErrClosed = errors.New("geosource: subscription stopped")
)

// Source emits location samples to a single consumer.
type Source interface {
	Subscribe(onSample func(Sample), onErr func(error)) (*Subscription, error)
	Once(ctx context.Context) (Sample, error)
}

// Subscription is a handle for a continuous sample stream.
type Subscription struct {
	feed     *Feed
	onSample func(Sample)
	onErr    func(error)
	stopped  atomic.Bool
}

// Stop cancels the subscription. It is idempotent and synchronous: after it
// returns, no new delivery starts. A sample already being delivered at call
// time may still land.
func (s *Subscription) Stop() {
	if s == nil || s.stopped.Swap(true) {
		return
	}
	s.feed.mu.Lock()
	if s.feed.sub == s {
		s.feed.sub = nil
	}
	s.feed.mu.Unlock()
}

// Feed adapts a push-based transport (websocket ingest, REST single fixes)
// into a Source. Samples are delivered synchronously in push order.
type Feed struct {
	mu      sync.Mutex
	sub     *Subscription
	waiters []chan Sample
}

func NewFeed() *Feed {
	return &Feed{}
}

// Subscribe registers the single continuous consumer.
func (f *Feed) Subscribe(onSample func(Sample), onErr func(error)) (*Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sub != nil {
		return nil, ErrBusy
	}
	sub := &Subscription{feed: f, onSample: onSample, onErr: onErr}
	f.sub = sub
	return sub, nil
}

// Once waits for the next pushed sample. No retry or backoff; a deadline
// comes from the caller's context.
func (f *Feed) Once(ctx context.Context) (Sample, error) {
	ch := make(chan Sample, 1)
	f.mu.Lock()
	f.waiters = append(f.waiters, ch)
	f.mu.Unlock()

	select {
	case s := <-ch:
		return s, nil
	case <-ctx.Done():
		f.mu.Lock()
		for i, w := range f.waiters {
			if w == ch {
				f.waiters = append(f.waiters[:i], f.waiters[i+1:]...)
				break
			}
		}
		f.mu.Unlock()
		return Sample{}, ctx.Err()
	}
}

// Push delivers a sample to the subscriber and any Once waiters. The caller
// is expected to push from a single goroutine per device, which preserves
// emission order.
func (f *Feed) Push(s Sample) {
	if s.Timestamp.IsZero() {
		s.Timestamp = time.Now()
	}

	f.mu.Lock()
	sub := f.sub
	waiters := f.waiters
	f.waiters = nil
	f.mu.Unlock()

	for _, w := range waiters {
		w <- s
	}
	if sub != nil && !sub.stopped.Load() {
		sub.onSample(s)
	}
}

// Fail surfaces a source error (permission denied, position unavailable) to
// the subscriber without tearing down the stream.
func (f *Feed) Fail(err error) {
	f.mu.Lock()
	sub := f.sub
	f.mu.Unlock()

	if sub != nil && !sub.stopped.Load() && sub.onErr != nil {
		sub.onErr(err)
	}
}
