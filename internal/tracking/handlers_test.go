package tracking

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travelogy-engine/internal/geosource"

	"github.com/gofiber/fiber/v2"
)

func newTestApp(store Store) (*fiber.App, *Tracker, *geosource.Feed) {
	feed := geosource.NewFeed()
	tracker := NewTracker(feed, store, nil, nil, 5*time.Millisecond)
	app := fiber.New()
	RegisterRoutes(app.Group("/tracking"), tracker, feed, func(c *fiber.Ctx) error { return c.Next() })
	return app, tracker, feed
}

func TestTrackingHandlersLifecycle(t *testing.T) {
	app, _, _ := newTestApp(&fakeStore{startedID: "trip-1"})

	body, _ := json.Marshal(map[string]string{"transport_mode": "walk"})
	req := httptest.NewRequest(http.MethodPost, "/tracking/start", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("start status: %v %v", err, resp.StatusCode)
	}

	var trip Trip
	if err := json.NewDecoder(resp.Body).Decode(&trip); err != nil {
		t.Fatalf("decode trip: %v", err)
	}
	if trip.RemoteID != "trip-1" || trip.TransportMode != "walk" {
		t.Fatalf("unexpected trip: %+v", trip)
	}

	// A second start while tracking conflicts.
	req = httptest.NewRequest(http.MethodPost, "/tracking/start", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected conflict, got %d", resp.StatusCode)
	}

	sample, _ := json.Marshal(geosource.Sample{Lat: 0, Lon: 0.001, Timestamp: time.Now()})
	req = httptest.NewRequest(http.MethodPost, "/tracking/samples", bytes.NewReader(sample))
	req.Header.Set("Content-Type", "application/json")
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("sample status: %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/tracking/status", nil)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status status: %d", resp.StatusCode)
	}
	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if st.State != "tracking" || st.Trip == nil || len(st.Trip.Path) != 1 {
		t.Fatalf("unexpected status: %+v", st)
	}

	req = httptest.NewRequest(http.MethodPost, "/tracking/stop", nil)
	resp, _ = app.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stop status: %d", resp.StatusCode)
	}
}

func TestTrackingHandlersStopWithoutTrip(t *testing.T) {
	app, _, _ := newTestApp(&fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/tracking/stop", nil)
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected not found, got %d", resp.StatusCode)
	}
}

func TestTrackingHandlersSampleParseError(t *testing.T) {
	app, _, _ := newTestApp(&fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/tracking/samples", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected bad request, got %d", resp.StatusCode)
	}
}

func TestTrackingHandlersSourceError(t *testing.T) {
	app, tracker, _ := newTestApp(&fakeStore{})
	if _, err := tracker.Start(context.Background(), ""); err != nil {
		t.Fatalf("start: %v", err)
	}

	body, _ := json.Marshal(map[string]string{"message": "permission denied"})
	req := httptest.NewRequest(http.MethodPost, "/tracking/errors", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("error report status: %d", resp.StatusCode)
	}

	if st := tracker.Status(); st.LastError == "" {
		t.Fatalf("expected surfaced source error, got %+v", st)
	}
}

func TestIngestRoutesRequireAuth(t *testing.T) {
	feed := geosource.NewFeed()
	tracker := NewTracker(feed, &fakeStore{}, nil, nil, 5*time.Millisecond)
	app := fiber.New()
	reject := func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	}
	RegisterRoutes(app.Group("/tracking"), tracker, feed, reject)

	// The websocket ingest is a write path like /samples; both sit behind
	// the same middleware.
	for _, route := range []struct {
		method, path string
	}{
		{http.MethodGet, "/tracking/feed/session-1"},
		{http.MethodPost, "/tracking/samples"},
	} {
		req := httptest.NewRequest(route.method, route.path, nil)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s %s: %v", route.method, route.path, err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", route.method, route.path, resp.StatusCode)
		}
	}
}
