package diary

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeStore struct {
	startErr   error
	startedID  string
	startCalls int

	urlsErr   error
	urlsCalls int
	gotTripID string
	gotNote   string
	gotPhotos []PhotoRef

	rawCalls int
}

func (f *fakeStore) StartTrip(_ context.Context, _ time.Time, _, _ *float64, _ string) (string, error) {
	f.startCalls++
	if f.startErr != nil {
		return "", f.startErr
	}
	return f.startedID, nil
}

func (f *fakeStore) AddDiaryURLs(_ context.Context, tripID, note string, photos []PhotoRef) error {
	f.urlsCalls++
	f.gotTripID = tripID
	f.gotNote = note
	f.gotPhotos = photos
	return f.urlsErr
}

func (f *fakeStore) AddDiary(_ context.Context, tripID, note string, _ []Photo) error {
	f.rawCalls++
	f.gotTripID = tripID
	f.gotNote = note
	return nil
}

type fakeUploader struct {
	err   error
	calls int
}

func (f *fakeUploader) Upload(_ context.Context, name string, _ []byte) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "https://storage.example/" + name, nil
}

func TestSaveUploadsBeforePersist(t *testing.T) {
	store := &fakeStore{}
	up := &fakeUploader{}
	svc := NewService(store, up)

	entry, err := svc.Save(context.Background(), "trip-1", "great view", []Photo{
		{Name: "a.jpg", Data: []byte("x"), Caption: "lakeside"},
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if up.calls != 1 || store.urlsCalls != 1 {
		t.Fatalf("expected upload then persist, got %d/%d", up.calls, store.urlsCalls)
	}
	if len(entry.Photos) != 1 || entry.Photos[0].URL != "https://storage.example/a.jpg" {
		t.Fatalf("expected final URL on entry, got %+v", entry.Photos)
	}
	if store.gotPhotos[0].Caption != "lakeside" {
		t.Fatalf("caption lost: %+v", store.gotPhotos)
	}
}

func TestSaveImplicitTrip(t *testing.T) {
	store := &fakeStore{startedID: "trip-implicit"}
	svc := NewService(store, &fakeUploader{})

	entry, err := svc.Save(context.Background(), "", "note only", nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if store.startCalls != 1 || entry.TripID != "trip-implicit" {
		t.Fatalf("expected implicit trip, got %+v", entry)
	}
}

func TestSaveImplicitTripSentinelFallback(t *testing.T) {
	store := &fakeStore{startErr: errors.New("backend down")}
	svc := NewService(store, &fakeUploader{})

	entry, err := svc.Save(context.Background(), "", "note", nil)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if entry.TripID != ImplicitTripID {
		t.Fatalf("expected sentinel trip id, got %q", entry.TripID)
	}
}

func TestSavePersistFailureKeepsUploadedURLs(t *testing.T) {
	store := &fakeStore{urlsErr: errors.New("timeout")}
	up := &fakeUploader{}
	svc := NewService(store, up)

	entry, err := svc.Save(context.Background(), "trip-1", "n", []Photo{{Name: "b.jpg", Data: []byte("y")}})
	if !errors.Is(err, ErrPartial) {
		t.Fatalf("expected ErrPartial, got %v", err)
	}
	if len(entry.Photos) != 1 || entry.Photos[0].URL == "" {
		t.Fatalf("uploaded URL must survive persistence failure: %+v", entry.Photos)
	}

	// Retry with the URL already set must not re-upload.
	store.urlsErr = nil
	_, err = svc.Save(context.Background(), "trip-1", "n", []Photo{{Name: "b.jpg", URL: entry.Photos[0].URL}})
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if up.calls != 1 {
		t.Fatalf("retry must not re-upload, got %d uploads", up.calls)
	}
}

func TestSaveWithoutUploaderFallsBackToMultipart(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store, nil)

	_, err := svc.Save(context.Background(), "trip-1", "n", []Photo{{Name: "c.jpg", Data: []byte("z")}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if store.rawCalls != 1 || store.urlsCalls != 0 {
		t.Fatalf("expected multipart fallback, got raw=%d urls=%d", store.rawCalls, store.urlsCalls)
	}
}
