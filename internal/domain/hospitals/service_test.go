package hospitals

import (
	"context"
	"errors"
	"testing"

	"pet-clinic-booking/internal/platform/logger"
	"pet-clinic-booking/internal/ports/places"
)

type fakeRepo struct {
	items []Hospital
}

func (f *fakeRepo) Create(ctx context.Context, h Hospital) error {
	f.items = append(f.items, h)
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (Hospital, error) {
	for _, h := range f.items {
		if h.ID == id {
			return h, nil
		}
	}
	return Hospital{}, ErrNotFound
}

func (f *fakeRepo) List(ctx context.Context) ([]Hospital, error) {
	return f.items, nil
}

type fakeSearcher struct {
	results []places.Place
	err     error
}

func (f *fakeSearcher) SearchKeyword(ctx context.Context, query string, lat, lng float64, limit int) ([]places.Place, error) {
	return f.results, f.err
}

func testLogger() logger.Logger {
	return logger.New(logger.Options{Level: logger.Error})
}

func TestNearest_SortsByDistanceAsc(t *testing.T) {
	repo := &fakeRepo{items: []Hospital{
		{ID: "far", Name: "서초 병원", Lat: 37.4916, Lng: 127.0076},
		{ID: "near", Name: "역삼 병원", Lat: 37.5012, Lng: 127.0396},
	}}
	svc := NewService(repo, nil, testLogger())

	// Punto de consulta: Gangnam
	out, err := svc.Nearest(context.Background(), 37.4979, 127.0276, "", 10)
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("expected 2 results, got %d", len(out))
	}
	if out[0].ID != "near" || out[1].ID != "far" {
		t.Fatalf("expected near-first ordering, got %s then %s", out[0].ID, out[1].ID)
	}
	if out[0].DistanceKm >= out[1].DistanceKm {
		t.Fatalf("distances not ascending: %f then %f", out[0].DistanceKm, out[1].DistanceKm)
	}
}

func TestNearest_MergesExternalAndDedupes(t *testing.T) {
	repo := &fakeRepo{items: []Hospital{
		{ID: "local-1", Name: "역삼 병원", Address: "역삼로 1", Lat: 37.5012, Lng: 127.0396},
	}}
	searcher := &fakeSearcher{results: []places.Place{
		// Duplicado del local (mismo nombre+dirección): debe descartarse.
		{ID: "kakao-1", Name: "역삼 병원", Address: "역삼로 1", Lat: 37.5012, Lng: 127.0396},
		{ID: "kakao-2", Name: "선릉 동물병원", Address: "선릉로 2", Lat: 37.5045, Lng: 127.0489},
	}}
	svc := NewService(repo, searcher, testLogger())

	out, err := svc.Nearest(context.Background(), 37.4979, 127.0276, "동물병원", 10)
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("expected 2 after dedupe, got %d", len(out))
	}
	ids := map[string]bool{out[0].ID: true, out[1].ID: true}
	if !ids["local-1"] || !ids["kakao-2"] {
		t.Fatalf("unexpected result set: %v", ids)
	}
}

func TestNearest_SearcherFailureDegradesToLocal(t *testing.T) {
	repo := &fakeRepo{items: []Hospital{
		{ID: "local-1", Name: "역삼 병원", Lat: 37.5012, Lng: 127.0396},
	}}
	searcher := &fakeSearcher{err: errors.New("kakao down")}
	svc := NewService(repo, searcher, testLogger())

	out, err := svc.Nearest(context.Background(), 37.4979, 127.0276, "동물병원", 10)
	if err != nil {
		t.Fatalf("expected silent degradation, got error: %v", err)
	}
	if len(out) != 1 || out[0].ID != "local-1" {
		t.Fatalf("expected only local result, got %+v", out)
	}
}
