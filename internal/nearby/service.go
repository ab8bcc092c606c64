package nearby

import (
	"context"
	"log"
	"sync"

	"travelogy-engine/internal/geosource"
)

// Place is a transient point of interest. The list is replaced wholesale on
// every successful refresh and never merged with previous results.
type Place struct {
	ID      string  `json:"id"`
	Name    string  `json:"name,omitempty"`
	Type    string  `json:"type"`
	Subtype string  `json:"subtype,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Lookup is the external place search the throttle gates.
type Lookup interface {
	FetchNearby(ctx context.Context, lat, lon, radiusM float64) ([]Place, error)
}

// Service holds the current nearby-place list for the active trip.
type Service struct {
	throttle Throttle
	lookup   Lookup
	radiusM  float64

	mu     sync.Mutex
	places []Place
	last   *Refresh
}

func NewService(lookup Lookup, throttle Throttle, radiusM float64) *Service {
	if radiusM <= 0 {
		radiusM = 1500
	}
	return &Service{throttle: throttle, lookup: lookup, radiusM: radiusM}
}

// Observe consults the throttle for the sample and, when due, fires an
// asynchronous lookup. Overlapping refreshes are not locked out; the last
// resolved response wins.
func (s *Service) Observe(ctx context.Context, sample geosource.Sample) {
	if s == nil || s.lookup == nil {
		return
	}

	s.mu.Lock()
	if !s.throttle.ShouldRefresh(sample, s.last) {
		s.mu.Unlock()
		return
	}
	// Mark before the lookup resolves so a burst of samples does not fan out
	// into a lookup per sample.
	s.last = &Refresh{Lat: sample.Lat, Lon: sample.Lon, At: sample.Timestamp}
	s.mu.Unlock()

	go s.refresh(ctx, sample)
}

func (s *Service) refresh(ctx context.Context, sample geosource.Sample) {
	places, err := s.lookup.FetchNearby(ctx, sample.Lat, sample.Lon, s.radiusM)
	if err != nil {
		// Stale results are acceptable; keep the previous list.
		log.Printf("nearby lookup failed: %v", err)
		return
	}

	s.mu.Lock()
	s.places = places
	s.mu.Unlock()
}

// Places returns a copy of the current list.
func (s *Service) Places() []Place {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Place, len(s.places))
	copy(out, s.places)
	return out
}

// Reset clears the list and the refresh marker, for a fresh trip.
func (s *Service) Reset() {
	s.mu.Lock()
	s.places = nil
	s.last = nil
	s.mu.Unlock()
}

// LastRefresh returns the current refresh marker, nil before the first one.
func (s *Service) LastRefresh() *Refresh {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	cp := *s.last
	return &cp
}
