package livesync

import (
	"context"
	"testing"
	"time"

	"pet-clinic-booking/internal/adapters/storage/memory"
	"pet-clinic-booking/internal/domain/bookings"
	"pet-clinic-booking/internal/domain/pets"
	"pet-clinic-booking/internal/domain/users"
	"pet-clinic-booking/internal/platform/logger"
	"pet-clinic-booking/internal/platform/metrics"
)

func newTestSync(t *testing.T) (*Synchronizer, *memory.BookingRepository) {
	t.Helper()

	bookingRepo := memory.NewBookingRepository()
	petRepo := memory.NewPetRepository()
	userRepo := memory.NewUserRepository()
	resultRepo := memory.NewResultRepository()

	_ = petRepo.Create(context.Background(), pets.Pet{ID: "pet-1", OwnerUserID: "guardian-1", Name: "초코", Species: "dog"})
	_ = userRepo.Put(context.Background(), users.User{ID: "guardian-1", Name: "김보호", Phone: "010-1234-5678"})

	m := metrics.New()
	enricher := NewEnricher(petRepo, userRepo, resultRepo, m, 4)
	log := logger.New(logger.Options{Level: logger.Error})

	return NewSynchronizer(bookingRepo, bookingRepo, enricher, m, log), bookingRepo
}

func waitView(t *testing.T, ch <-chan []ViewBooking) []ViewBooking {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for view")
		return nil
	}
}

func TestSynchronizer_StreamsWriteThrough(t *testing.T) {
	sync, repo := newTestSync(t)

	ch, unsubscribe, err := sync.Subscribe("clinic-1", "2025-06-01")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()

	// Snapshot inicial vacío.
	if view := waitView(t, ch); len(view) != 0 {
		t.Fatalf("expected empty initial view, got %d rows", len(view))
	}

	_ = repo.Create(context.Background(), bookings.Booking{
		ID:       "b1",
		ClinicID: "clinic-1",
		PetID:    "pet-1",
		PetName:  "초코",
		UserID:   "guardian-1",
		Date:     "2025-06-01",
		Time:     "09:00",
		Status:   bookings.StatusPending,
		Version:  1,
	})

	view := waitView(t, ch)
	if len(view) != 1 {
		t.Fatalf("expected 1 row after create, got %d", len(view))
	}

	row := view[0]
	if row.ID != "b1" || row.Status != "pending" {
		t.Fatalf("unexpected row: %+v", row)
	}
	// Joins del enrichment.
	if row.PetName != "초코" || row.GuardianName != "김보호" || row.GuardianPhone != "010-1234-5678" {
		t.Fatalf("enrichment joins missing: %+v", row)
	}
	if row.HasResult {
		t.Fatalf("expected HasResult=false before treatment: %+v", row)
	}
}

func TestSynchronizer_EnrichmentDegradesToDenormalized(t *testing.T) {
	sync, repo := newTestSync(t)

	// Booking cuyo pet/guardián no existen en los repos.
	_ = repo.Create(context.Background(), bookings.Booking{
		ID:       "b-orphan",
		ClinicID: "clinic-1",
		PetID:    "missing-pet",
		PetName:  "이름만", // denormalizado en el booking
		UserID:   "missing-user",
		Date:     "2025-06-01",
		Time:     "10:00",
		Status:   bookings.StatusPending,
		Version:  1,
	})

	view, err := sync.View(context.Background(), "clinic-1", "2025-06-01")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view) != 1 {
		t.Fatalf("expected 1 row, got %d", len(view))
	}

	row := view[0]
	if row.PetName != "이름만" {
		t.Fatalf("expected denormalized fallback name, got %q", row.PetName)
	}
	if row.GuardianName != "" || row.HasResult {
		t.Fatalf("expected safe defaults: %+v", row)
	}
}

func TestSynchronizer_IntentOverlaysOpenRoom(t *testing.T) {
	sync, repo := newTestSync(t)

	_ = repo.Create(context.Background(), bookings.Booking{
		ID:       "b1",
		ClinicID: "clinic-1",
		PetID:    "pet-1",
		UserID:   "guardian-1",
		Date:     "2025-06-01",
		Time:     "09:00",
		Status:   bookings.StatusPending,
		Version:  1,
	})

	ch, unsubscribe, err := sync.Subscribe("clinic-1", "2025-06-01")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()

	waitView(t, ch) // estado inicial

	sync.ApplyIntent(context.Background(), "clinic-1", "2025-06-01", bookings.Booking{
		ID:       "b1",
		ClinicID: "clinic-1",
		Date:     "2025-06-01",
		Time:     "09:00",
		Status:   bookings.StatusConfirmed,
		Version:  2,
	})

	view := waitView(t, ch)
	if len(view) != 1 || view[0].Status != "confirmed" || !view[0].Optimistic {
		t.Fatalf("expected optimistic confirmed row, got %+v", view)
	}
}
