package livesync

import (
	"testing"

	"pet-clinic-booking/internal/domain/bookings"
)

func bk(id, hhmm string, status bookings.Status, version int64) bookings.Booking {
	return bookings.Booking{
		ID:      id,
		Time:    hhmm,
		Status:  status,
		Version: version,
	}
}

func TestReducer_SnapshotReplacesState(t *testing.T) {
	r := NewReducer()

	r.ApplySnapshot([]bookings.Booking{
		bk("a", "09:00", bookings.StatusPending, 1),
		bk("b", "10:00", bookings.StatusPending, 1),
	})
	r.ApplySnapshot([]bookings.Booking{
		bk("b", "10:00", bookings.StatusConfirmed, 2),
	})

	view := r.View()
	if len(view) != 1 {
		t.Fatalf("expected 1 row after replacing snapshot, got %d", len(view))
	}
	if view[0].Booking.ID != "b" || view[0].Booking.Status != bookings.StatusConfirmed {
		t.Fatalf("unexpected row: %+v", view[0])
	}
}

func TestReducer_IntentWinsUntilSnapshotCatchesUp(t *testing.T) {
	r := NewReducer()

	r.ApplySnapshot([]bookings.Booking{bk("a", "09:00", bookings.StatusPending, 1)})

	// La UI disparó confirm: overlay optimista con versión adelantada.
	if !r.ApplyIntent(bk("a", "09:00", bookings.StatusConfirmed, 2)) {
		t.Fatal("expected intent to apply")
	}

	// Snapshot viejo no pisa el intent.
	r.ApplySnapshot([]bookings.Booking{bk("a", "09:00", bookings.StatusPending, 1)})

	view := r.View()
	if view[0].Booking.Status != bookings.StatusConfirmed || !view[0].Optimistic {
		t.Fatalf("stale snapshot overwrote optimistic intent: %+v", view[0])
	}

	// Snapshot con la versión confirmada consolida (deja de ser optimista).
	r.ApplySnapshot([]bookings.Booking{bk("a", "09:00", bookings.StatusConfirmed, 2)})

	view = r.View()
	if view[0].Booking.Status != bookings.StatusConfirmed || view[0].Optimistic {
		t.Fatalf("snapshot did not consolidate intent: %+v", view[0])
	}
}

func TestReducer_StaleIntentIsDiscarded(t *testing.T) {
	r := NewReducer()

	r.ApplySnapshot([]bookings.Booking{bk("a", "09:00", bookings.StatusConfirmed, 3)})

	if r.ApplyIntent(bk("a", "09:00", bookings.StatusPending, 2)) {
		t.Fatal("stale intent must not apply")
	}

	view := r.View()
	if view[0].Booking.Status != bookings.StatusConfirmed || view[0].Booking.Version != 3 {
		t.Fatalf("state changed by stale intent: %+v", view[0])
	}
}

func TestReducer_InFlightCreationSurvivesSnapshot(t *testing.T) {
	r := NewReducer()

	// Booking recién creado que el Source todavía no trae.
	r.ApplyIntent(bk("new", "11:00", bookings.StatusPending, 1))
	r.ApplySnapshot([]bookings.Booking{bk("a", "09:00", bookings.StatusPending, 1)})

	view := r.View()
	if len(view) != 2 {
		t.Fatalf("expected in-flight creation to survive, got %d rows", len(view))
	}
}

func TestReducer_ViewSortedByTime(t *testing.T) {
	r := NewReducer()

	r.ApplySnapshot([]bookings.Booking{
		bk("late", "15:30", bookings.StatusPending, 1),
		bk("early", "09:00", bookings.StatusPending, 1),
		bk("mid", "11:00", bookings.StatusPending, 1),
	})

	view := r.View()
	want := []string{"early", "mid", "late"}
	for i, id := range want {
		if view[i].Booking.ID != id {
			t.Fatalf("position %d: expected %s got %s", i, id, view[i].Booking.ID)
		}
	}
}
