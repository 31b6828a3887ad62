package hospitals

import (
	"math"
	"testing"
)

func TestDistanceInKm_SamePointIsZero(t *testing.T) {
	if d := DistanceInKm(37.4979, 127.0276, 37.4979, 127.0276); d != 0 {
		t.Fatalf("expected 0 for same point, got %f", d)
	}
}

func TestDistanceInKm_Symmetric(t *testing.T) {
	a := DistanceInKm(37.4979, 127.0276, 37.5665, 126.9780)
	b := DistanceInKm(37.5665, 126.9780, 37.4979, 127.0276)

	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("expected symmetric distance, got %f vs %f", a, b)
	}
}

func TestDistanceInKm_KnownDistance(t *testing.T) {
	// Gangnam -> Seoul City Hall, aprox 8.7km
	d := DistanceInKm(37.4979, 127.0276, 37.5665, 126.9780)

	if d < 8.0 || d > 9.5 {
		t.Fatalf("expected ~8.7km, got %f", d)
	}
}
