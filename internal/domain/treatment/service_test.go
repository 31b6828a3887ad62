package treatment

import (
	"context"
	"sync"
	"testing"
	"time"

	"pet-clinic-booking/internal/adapters/storage/memory"
	"pet-clinic-booking/internal/domain/bookings"
	"pet-clinic-booking/internal/domain/notifications"
	"pet-clinic-booking/internal/domain/patients"
	"pet-clinic-booking/internal/platform/logger"
	"pet-clinic-booking/internal/platform/metrics"
)

type staffAlways struct{}

func (staffAlways) IsStaff(ctx context.Context, clinicID, userID string) (bool, error) {
	return userID == "vet-1", nil
}

type fixture struct {
	svc      *Service
	bookings *memory.BookingRepository
	results  *memory.ResultRepository
	patients *memory.PatientRepository
	notifs   *memory.NotificationRepository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		bookings: memory.NewBookingRepository(),
		results:  memory.NewResultRepository(),
		patients: memory.NewPatientRepository(),
		notifs:   memory.NewNotificationRepository(),
	}

	f.svc = NewService(Deps{
		Bookings: f.bookings,
		Results:  f.results,
		Patients: f.patients,
		Logs:     memory.NewDailyLogRepository(),
		Notifs:   f.notifs,
		Staff:    staffAlways{},
		Runner:   memory.NewRunner(),
		Metrics:  metrics.New(),
		Log:      logger.New(logger.Options{Level: logger.Error}),
	})
	return f
}

func (f *fixture) seedBooking(t *testing.T, status bookings.Status) bookings.Booking {
	t.Helper()

	now := time.Now()
	b := bookings.Booking{
		ID:        "bk-1",
		ClinicID:  "clinic-1",
		PetID:     "pet-1",
		PetName:   "초코",
		UserID:    "guardian-1",
		Date:      "2025-06-01",
		Time:      "09:00",
		Status:    status,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := f.bookings.Create(context.Background(), b); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return b
}

func TestConfirm_PendingToConfirmed(t *testing.T) {
	f := newFixture(t)
	f.seedBooking(t, bookings.StatusPending)

	b, err := f.svc.Confirm(context.Background(), "bk-1", "vet-1")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if b.Status != bookings.StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", b.Status)
	}
	if b.Version != 2 {
		t.Fatalf("expected version bump to 2, got %d", b.Version)
	}

	// El guardián recibe la notificación encolada.
	ns, _ := f.notifs.ListByUser(context.Background(), "guardian-1", 10)
	if len(ns) != 1 || ns[0].Kind != notifications.KindBookingConfirmed {
		t.Fatalf("expected one booking_confirmed notification, got %+v", ns)
	}
}

func TestConfirm_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedBooking(t, bookings.StatusPending)

	first, err := f.svc.Confirm(context.Background(), "bk-1", "vet-1")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	second, err := f.svc.Confirm(context.Background(), "bk-1", "vet-1")
	if err != nil {
		t.Fatalf("second confirm must not fail: %v", err)
	}
	if second.Version != first.Version {
		t.Fatalf("idempotent confirm bumped version: %d -> %d", first.Version, second.Version)
	}
}

func TestConfirm_RequiresStaff(t *testing.T) {
	f := newFixture(t)
	f.seedBooking(t, bookings.StatusPending)

	if _, err := f.svc.Confirm(context.Background(), "bk-1", "guardian-1"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestConfirm_RejectedFromTerminalStates(t *testing.T) {
	for _, status := range []bookings.Status{bookings.StatusCancelled, bookings.StatusCompleted} {
		f := newFixture(t)
		f.seedBooking(t, status)

		if _, err := f.svc.Confirm(context.Background(), "bk-1", "vet-1"); err != ErrBadState {
			t.Fatalf("from %s: expected ErrBadState, got %v", status, err)
		}
	}
}

func TestCancel_GuardianCanCancelOwnBooking(t *testing.T) {
	f := newFixture(t)
	f.seedBooking(t, bookings.StatusPending)

	b, err := f.svc.Cancel(context.Background(), "bk-1", "guardian-1")
	if err != nil {
		t.Fatalf("cancel by owner: %v", err)
	}
	if b.Status != bookings.StatusCancelled {
		t.Fatalf("expected cancelled, got %s", b.Status)
	}
}

func TestCommitTreatment_RequiresConfirmed(t *testing.T) {
	f := newFixture(t)
	f.seedBooking(t, bookings.StatusPending)

	_, err := f.svc.CommitTreatment(context.Background(), "bk-1", "vet-1", ResultInput{MainDiagnosis: "위장염"})
	if err != ErrBadState {
		t.Fatalf("expected ErrBadState before confirm, got %v", err)
	}
}

func TestCommitTreatment_ResaveKeepsIDAndRollupCount(t *testing.T) {
	f := newFixture(t)
	f.seedBooking(t, bookings.StatusConfirmed)

	first, err := f.svc.CommitTreatment(context.Background(), "bk-1", "vet-1", ResultInput{MainDiagnosis: "위장염"})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}

	second, err := f.svc.CommitTreatment(context.Background(), "bk-1", "vet-1", ResultInput{MainDiagnosis: "장염", Plan: "금식 24h"})
	if err != nil {
		t.Fatalf("re-save: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("re-save changed result id: %s -> %s", first.ID, second.ID)
	}
	if second.MainDiagnosis != "장염" {
		t.Fatalf("re-save did not update diagnosis: %+v", second)
	}

	// El rollup cuenta una sola visita aunque se re-guarde.
	p, err := f.patients.Get(context.Background(), patients.RollupKey("clinic-1", "pet-1"))
	if err != nil {
		t.Fatalf("rollup missing: %v", err)
	}
	if p.VisitCount != 1 {
		t.Fatalf("expected VisitCount=1 after re-save, got %d", p.VisitCount)
	}

	// El booking quedó apuntando al resultado.
	b, _ := f.bookings.GetByID(context.Background(), "bk-1")
	if b.DiagnosisID != first.ID {
		t.Fatalf("booking not linked to result: %q", b.DiagnosisID)
	}
}

func TestCommitTreatment_ConcurrentSavesProduceOneResult(t *testing.T) {
	f := newFixture(t)
	f.seedBooking(t, bookings.StatusConfirmed)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.CommitTreatment(context.Background(), "bk-1", "vet-1", ResultInput{MainDiagnosis: "위장염"})
		}()
	}
	wg.Wait()

	all, err := f.results.ListByGuardian(context.Background(), "guardian-1", false)
	if err != nil {
		t.Fatalf("list results: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one result after concurrent saves, got %d", len(all))
	}

	p, _ := f.patients.Get(context.Background(), patients.RollupKey("clinic-1", "pet-1"))
	if p.VisitCount != 1 {
		t.Fatalf("expected VisitCount=1 after concurrent saves, got %d", p.VisitCount)
	}
}

func TestShare_CompletesBookingAndSharesAtomically(t *testing.T) {
	f := newFixture(t)
	f.seedBooking(t, bookings.StatusConfirmed)

	if _, err := f.svc.CommitTreatment(context.Background(), "bk-1", "vet-1", ResultInput{MainDiagnosis: "위장염"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	res, err := f.svc.ShareToGuardian(context.Background(), "bk-1", "vet-1")
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	if !res.SharedToGuardian {
		t.Fatal("result not marked shared")
	}

	b, _ := f.bookings.GetByID(context.Background(), "bk-1")
	if b.Status != bookings.StatusCompleted {
		t.Fatalf("booking not completed with share, got %s", b.Status)
	}
	if b.DiagnosisID != res.ID {
		t.Fatalf("booking diagnosis link missing: %q", b.DiagnosisID)
	}

	// Nunca hay completed sin resultado compartido.
	stored, _ := f.results.GetByBooking(context.Background(), "bk-1")
	if !stored.SharedToGuardian {
		t.Fatal("completed booking with unshared result")
	}
}

func TestShare_WithoutResultIsConflict(t *testing.T) {
	f := newFixture(t)
	f.seedBooking(t, bookings.StatusConfirmed)

	if _, err := f.svc.ShareToGuardian(context.Background(), "bk-1", "vet-1"); err != ErrNoResult {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
}

func TestShare_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedBooking(t, bookings.StatusConfirmed)

	_, _ = f.svc.CommitTreatment(context.Background(), "bk-1", "vet-1", ResultInput{MainDiagnosis: "위장염"})
	if _, err := f.svc.ShareToGuardian(context.Background(), "bk-1", "vet-1"); err != nil {
		t.Fatalf("share: %v", err)
	}
	if _, err := f.svc.ShareToGuardian(context.Background(), "bk-1", "vet-1"); err != nil {
		t.Fatalf("second share must not fail: %v", err)
	}

	b, _ := f.bookings.GetByID(context.Background(), "bk-1")
	if b.Version != 3 {
		t.Fatalf("idempotent share bumped version: %d", b.Version)
	}
}

func TestGetResult_GuardianOnlyAfterShare(t *testing.T) {
	f := newFixture(t)
	f.seedBooking(t, bookings.StatusConfirmed)

	_, _ = f.svc.CommitTreatment(context.Background(), "bk-1", "vet-1", ResultInput{MainDiagnosis: "위장염"})

	// Antes del share el guardián no lo ve.
	if _, err := f.svc.GetResult(context.Background(), "bk-1", "guardian-1"); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden before share, got %v", err)
	}

	_, _ = f.svc.ShareToGuardian(context.Background(), "bk-1", "vet-1")

	res, err := f.svc.GetResult(context.Background(), "bk-1", "guardian-1")
	if err != nil {
		t.Fatalf("guardian get after share: %v", err)
	}
	if res.MainDiagnosis != "위장염" {
		t.Fatalf("unexpected result: %+v", res)
	}

	records, err := f.svc.ListGuardianRecords(context.Background(), "guardian-1")
	if err != nil || len(records) != 1 {
		t.Fatalf("expected 1 shared record, got %d (err %v)", len(records), err)
	}
}
