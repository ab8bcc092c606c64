package diary

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

// ImplicitTripID is the sentinel the backend treats as "create a trip for
// this entry or 404". Used only when minting an explicit trip also failed.
const ImplicitTripID = "new"

// PhotoRef is a persisted photo: a final URL, never a local blob reference.
type PhotoRef struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// Photo is an incoming attachment. URL is set once the upload succeeded, so
// a retried Save never re-uploads it.
type Photo struct {
	Name    string
	Data    []byte
	Caption string
	URL     string
}

// Entry is a diary note with its photos.
type Entry struct {
	ID        string     `json:"id"`
	TripID    string     `json:"trip_id,omitempty"`
	Note      string     `json:"note,omitempty"`
	Photos    []PhotoRef `json:"photos"`
	CreatedAt time.Time  `json:"created_at"`
}

// Uploader stores a photo and returns its final URL.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// Store is the subset of the backend API the diary needs.
type Store interface {
	StartTrip(ctx context.Context, startedAt time.Time, lat, lon *float64, mode string) (string, error)
	AddDiaryURLs(ctx context.Context, tripID, note string, photos []PhotoRef) error
	AddDiary(ctx context.Context, tripID, note string, photos []Photo) error
}

// Service attaches notes and photos to trips, tolerating remote failures.
type Service struct {
	store    Store
	uploader Uploader
	now      func() time.Time
}

func NewService(store Store, uploader Uploader) *Service {
	return &Service{store: store, uploader: uploader, now: time.Now}
}

// ErrPartial marks a Save that produced a usable entry but did not fully
// persist it. The returned entry keeps every uploaded URL so the caller can
// retry without re-uploading.
var ErrPartial = errors.New("diary: entry not fully persisted")

// Save uploads photos, then persists the note with final URLs. An empty
// tripID attaches to an implicitly created trip.
func (s *Service) Save(ctx context.Context, tripID, note string, photos []Photo) (Entry, error) {
	if tripID == "" {
		id, err := s.store.StartTrip(ctx, s.now(), nil, nil, "")
		if err != nil {
			log.Printf("implicit trip creation failed, falling back to sentinel: %v", err)
			tripID = ImplicitTripID
		} else {
			tripID = id
		}
	}

	entry := Entry{
		ID:        uuid.NewString(),
		TripID:    tripID,
		Note:      note,
		Photos:    make([]PhotoRef, 0, len(photos)),
		CreatedAt: s.now(),
	}

	var failed bool
	if s.uploader != nil {
		for i := range photos {
			if photos[i].URL != "" || len(photos[i].Data) == 0 {
				continue
			}
			url, err := s.uploader.Upload(ctx, photos[i].Name, photos[i].Data)
			if err != nil {
				log.Printf("photo upload failed for %s: %v", photos[i].Name, err)
				failed = true
				continue
			}
			photos[i].URL = url
		}
	}

	for _, p := range photos {
		if p.URL == "" {
			continue
		}
		entry.Photos = append(entry.Photos, PhotoRef{URL: p.URL, Caption: p.Caption})
	}

	var persistErr error
	if s.uploader != nil || !hasRaw(photos) {
		persistErr = s.store.AddDiaryURLs(ctx, tripID, note, entry.Photos)
	} else {
		// No uploader available: hand the raw files to the backend directly.
		persistErr = s.store.AddDiary(ctx, tripID, note, photos)
	}
	if persistErr != nil {
		log.Printf("diary persistence failed for trip %s: %v", tripID, persistErr)
		failed = true
	}

	if failed {
		return entry, ErrPartial
	}
	return entry, nil
}

func hasRaw(photos []Photo) bool {
	for _, p := range photos {
		if p.URL == "" && len(p.Data) > 0 {
			return true
		}
	}
	return false
}
