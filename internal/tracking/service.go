package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"travelogy-engine/internal/auth"
	"travelogy-engine/internal/diary"
	"travelogy-engine/internal/geosource"
	"travelogy-engine/internal/nearby"
	"travelogy-engine/internal/shared/geo"
	"travelogy-engine/internal/stream"

	"github.com/google/uuid"
)

var (
	ErrAlreadyTracking = errors.New("tracking: a trip is already being tracked")
	ErrNotTracking     = errors.New("tracking: no active trip")
)

// Store is the remote trip persistence the tracker syncs with, best effort.
type Store interface {
	StartTrip(ctx context.Context, startedAt time.Time, lat, lon *float64, mode string) (string, error)
	CompleteTrip(ctx context.Context, tripID string, endedAt time.Time, distanceKm float64, path []RoutePoint) error
}

// Tracker owns the single active trip and its state machine. All remote
// writes are best effort; failures degrade to local-only tracking.
type Tracker struct {
	source     geosource.Source
	store      Store
	places     *nearby.Service
	hub        *stream.Hub
	fixTimeout time.Duration
	now        func() time.Time

	mu      sync.Mutex
	state   State
	trip    *Trip
	tripCtx context.Context
	sub     *geosource.Subscription
	lastErr error
}

func NewTracker(source geosource.Source, store Store, places *nearby.Service, hub *stream.Hub, fixTimeout time.Duration) *Tracker {
	if fixTimeout <= 0 {
		fixTimeout = 5 * time.Second
	}
	return &Tracker{
		source:     source,
		store:      store,
		places:     places,
		hub:        hub,
		fixTimeout: fixTimeout,
		now:        time.Now,
	}
}

// Start begins a fresh trip: best-effort initial fix, best-effort remote
// create, then the continuous subscription. A second Start while tracking
// returns ErrAlreadyTracking.
func (t *Tracker) Start(ctx context.Context, mode string) (Trip, error) {
	t.mu.Lock()
	if t.state == StateTracking {
		t.mu.Unlock()
		return Trip{}, ErrAlreadyTracking
	}
	trip := &Trip{
		LocalID:       uuid.NewString(),
		TransportMode: mode,
		StartTime:     t.now(),
		Path:          []RoutePoint{},
	}
	t.trip = trip
	t.state = StateTracking
	t.lastErr = nil
	// Remote writes for this trip authenticate as the user who started it,
	// including ones fired from sample delivery or shutdown.
	t.tripCtx = context.WithoutCancel(ctx)
	t.mu.Unlock()

	if t.places != nil {
		t.places.Reset()
	}

	var lat, lon *float64
	fixCtx, cancel := context.WithTimeout(ctx, t.fixTimeout)
	if s, err := t.source.Once(fixCtx); err != nil {
		log.Printf("initial fix unavailable: %v", err)
	} else {
		lat, lon = &s.Lat, &s.Lon
	}
	cancel()

	if t.store != nil {
		if id, err := t.store.StartTrip(ctx, trip.StartTime, lat, lon, mode); err != nil {
			// Tracking continues locally; later remote writes for this trip
			// are skipped, never retried.
			log.Printf("remote trip create failed, tracking locally: %v", err)
		} else {
			t.mu.Lock()
			trip.RemoteID = id
			t.mu.Unlock()
		}
	}

	sub, err := t.source.Subscribe(t.handleSample, t.handleSourceError)
	if err != nil {
		t.mu.Lock()
		t.state = StateIdle
		t.trip = nil
		t.mu.Unlock()
		return Trip{}, err
	}

	t.mu.Lock()
	t.sub = sub
	snap := trip.clone()
	t.mu.Unlock()
	return snap, nil
}

// Stop finalizes the trip. It cancels the sample subscription before any
// mutation so no point lands after it returns, then attempts remote
// completion when a remote id exists. Stop on a stopped tracker returns the
// finalized trip again.
func (t *Tracker) Stop(ctx context.Context) (Trip, error) {
	t.mu.Lock()
	switch t.state {
	case StateIdle:
		t.mu.Unlock()
		return Trip{}, ErrNotTracking
	case StateStopped:
		snap := t.trip.clone()
		t.mu.Unlock()
		return snap, nil
	}

	sub := t.sub
	t.sub = nil
	t.state = StateStopped
	t.trip.EndTime = t.now()
	snap := t.trip.clone()
	tripCtx := t.tripCtx
	t.mu.Unlock()

	sub.Stop()

	if snap.RemoteID != "" && t.store != nil {
		// Callers without credentials of their own (shutdown) complete the
		// trip with the token captured at Start.
		if auth.TokenFromContext(ctx) == "" {
			if token := auth.TokenFromContext(tripCtx); token != "" {
				ctx = auth.ContextWithToken(ctx, token)
			}
		}
		err := t.store.CompleteTrip(ctx, snap.RemoteID, snap.EndTime, snap.DistanceM/1000, snap.Path)
		if err != nil {
			log.Printf("remote trip completion failed, local trip remains source of truth: %v", err)
		}
	}
	return snap, nil
}

func (t *Tracker) handleSample(s geosource.Sample) {
	t.mu.Lock()
	if t.state != StateTracking {
		t.mu.Unlock()
		return
	}

	ts := s.Timestamp
	if n := len(t.trip.Path); n > 0 {
		prev := t.trip.Path[n-1]
		if ts.Before(prev.Timestamp) {
			ts = prev.Timestamp
		}
		t.trip.DistanceM = geo.Accumulate(t.trip.DistanceM, prev.Lat, prev.Lon, s.Lat, s.Lon)
	}
	point := RoutePoint{Lat: s.Lat, Lon: s.Lon, Timestamp: ts}
	t.trip.Path = append(t.trip.Path, point)
	localID := t.trip.LocalID
	tripCtx := t.tripCtx
	t.mu.Unlock()

	if t.hub != nil {
		payload, _ := json.Marshal(point)
		t.hub.Broadcast(localID, payload)
	}
	if t.places != nil {
		t.places.Observe(tripCtx, s)
	}
}

func (t *Tracker) handleSourceError(err error) {
	t.mu.Lock()
	t.lastErr = err
	t.mu.Unlock()
	// Not fatal: the path so far is kept and tracking can be retried.
	log.Printf("location source error: %v", err)
}

// Snapshot returns a copy of the current trip, active or last finalized.
func (t *Tracker) Snapshot() (Trip, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.trip == nil {
		return Trip{}, false
	}
	return t.trip.clone(), true
}

// Status reports the lifecycle state for the UI.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := Status{State: t.state.String()}
	if t.trip != nil {
		snap := t.trip.clone()
		st.Trip = &snap
	}
	if t.lastErr != nil {
		st.LastError = t.lastErr.Error()
	}
	return st
}

// ActiveRemoteID returns the remote id of the trip currently tracking.
func (t *Tracker) ActiveRemoteID() (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != StateTracking || t.trip == nil {
		return "", false
	}
	return t.trip.RemoteID, true
}

// AttachDiary mirrors a saved diary entry onto the in-memory trip.
func (t *Tracker) AttachDiary(entry diary.Entry) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.trip == nil {
		return false
	}
	t.trip.Diary = append(t.trip.Diary, entry)
	return true
}
