package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"travelogy-engine/internal/auth"
	"travelogy-engine/internal/diary"
	"travelogy-engine/internal/gamification"
	"travelogy-engine/internal/nearby"
	"travelogy-engine/internal/tracking"
)

var (
	_ tracking.Store       = (*Client)(nil)
	_ diary.Store          = (*Client)(nil)
	_ diary.Uploader       = (*Client)(nil)
	_ nearby.Lookup        = (*Client)(nil)
	_ gamification.Backend = (*Client)(nil)
)

// Client talks to the Travelogy backend REST API. Callers treat every
// write as best effort; an error never means local state was lost.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// wireID tolerates both string and numeric ids in backend responses.
type wireID string

func (w *wireID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*w = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*w = wireID(n.String())
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := auth.TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("backend %s %s: %s: %s", method, path, resp.Status, snippet)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, path, "application/json", bytes.NewReader(body), out)
}

// StartTrip registers a new trip and returns the backend's trip id.
// lat and lon are nil when no GPS fix was available at start.
func (c *Client) StartTrip(ctx context.Context, startedAt time.Time, lat, lon *float64, mode string) (string, error) {
	payload := struct {
		StartTime     time.Time `json:"start_time"`
		OriginLat     *float64  `json:"origin_latitude,omitempty"`
		OriginLon     *float64  `json:"origin_longitude,omitempty"`
		TransportMode string    `json:"transport_mode,omitempty"`
	}{startedAt, lat, lon, mode}

	var resp struct {
		Trip struct {
			ID wireID `json:"id"`
		} `json:"trip"`
	}
	if err := c.postJSON(ctx, "/api/trips/start/", payload, &resp); err != nil {
		return "", err
	}
	if resp.Trip.ID == "" {
		return "", fmt.Errorf("backend returned no trip id")
	}
	return string(resp.Trip.ID), nil
}

type wirePoint struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
}

// CompleteTrip reports the final distance and route. The destination is
// the last recorded point; the backend requires one even for empty paths.
func (c *Client) CompleteTrip(ctx context.Context, tripID string, endedAt time.Time, distanceKm float64, path []tracking.RoutePoint) error {
	points := make([]wirePoint, len(path))
	for i, p := range path {
		points[i] = wirePoint{p.Lat, p.Lon, p.Timestamp}
	}

	var destLat, destLon float64
	if len(path) > 0 {
		last := path[len(path)-1]
		destLat, destLon = last.Lat, last.Lon
	}

	payload := struct {
		EndTime    time.Time   `json:"end_time"`
		DestLat    float64     `json:"destination_latitude"`
		DestLon    float64     `json:"destination_longitude"`
		DistanceKm float64     `json:"distance_km"`
		Path       []wirePoint `json:"path"`
	}{endedAt, destLat, destLon, distanceKm, points}

	return c.postJSON(ctx, "/api/trips/"+url.PathEscape(tripID)+"/complete/", payload, nil)
}

// AddDiaryURLs attaches a note plus already-uploaded photo URLs to a trip.
func (c *Client) AddDiaryURLs(ctx context.Context, tripID, note string, photos []diary.PhotoRef) error {
	payload := struct {
		Note   string           `json:"note"`
		Photos []diary.PhotoRef `json:"photos"`
	}{note, photos}
	return c.postJSON(ctx, "/api/trips/"+url.PathEscape(tripID)+"/diary/urls/", payload, nil)
}

// AddDiary sends a note and raw photo bytes as multipart form data.
func (c *Client) AddDiary(ctx context.Context, tripID, note string, photos []diary.Photo) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("note", note); err != nil {
		return err
	}
	captions := make([]string, len(photos))
	for i, p := range photos {
		captions[i] = p.Caption
	}
	captionsJSON, err := json.Marshal(captions)
	if err != nil {
		return err
	}
	if err := w.WriteField("captions", string(captionsJSON)); err != nil {
		return err
	}
	for _, p := range photos {
		part, err := w.CreateFormFile("photos", p.Name)
		if err != nil {
			return err
		}
		if _, err := part.Write(p.Data); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}

	return c.do(ctx, http.MethodPost, "/api/trips/"+url.PathEscape(tripID)+"/diary/", w.FormDataContentType(), &buf, nil)
}

// Upload pushes one photo and returns its public URL.
func (c *Client) Upload(ctx context.Context, name string, data []byte) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(data); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	var resp struct {
		URL string `json:"url"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/uploads/", w.FormDataContentType(), &buf, &resp); err != nil {
		return "", err
	}
	if resp.URL == "" {
		return "", fmt.Errorf("backend returned no upload url")
	}
	return resp.URL, nil
}

type wireTrip struct {
	ID            wireID    `json:"id"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	DistanceKm    float64   `json:"distance_km"`
	TransportMode string    `json:"transport_mode"`
}

func (t wireTrip) toTrip() gamification.Trip {
	return gamification.Trip{
		ID:            string(t.ID),
		StartTime:     t.StartTime,
		EndTime:       t.EndTime,
		DistanceKm:    t.DistanceKm,
		TransportMode: t.TransportMode,
	}
}

// GetTrips returns the user's trips. The endpoint may paginate, so both a
// bare array and a results envelope are accepted.
func (c *Client) GetTrips(ctx context.Context) ([]gamification.Trip, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/trips/", "", nil, &raw); err != nil {
		return nil, err
	}

	var list []wireTrip
	if err := json.Unmarshal(raw, &list); err != nil {
		var page struct {
			Results []wireTrip `json:"results"`
		}
		if err := json.Unmarshal(raw, &page); err != nil {
			return nil, err
		}
		list = page.Results
	}

	trips := make([]gamification.Trip, len(list))
	for i, t := range list {
		trips[i] = t.toTrip()
	}
	return trips, nil
}

func (c *Client) GetTripStats(ctx context.Context) (gamification.Stats, error) {
	var stats gamification.Stats
	err := c.do(ctx, http.MethodGet, "/api/trips/stats/", "", nil, &stats)
	return stats, err
}

func (c *Client) GetProfile(ctx context.Context) (gamification.Profile, error) {
	var profile gamification.Profile
	err := c.do(ctx, http.MethodGet, "/api/gamification/profile/", "", nil, &profile)
	return profile, err
}

// FetchNearby queries points of interest around a coordinate.
func (c *Client) FetchNearby(ctx context.Context, lat, lon, radiusM float64) ([]nearby.Place, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("radius", strconv.FormatFloat(radiusM, 'f', -1, 64))

	var resp struct {
		Places []nearby.Place `json:"places"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/tourism/nearby/?"+q.Encode(), "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Places, nil
}
