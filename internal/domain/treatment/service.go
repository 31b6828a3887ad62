package treatment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-clinic-booking/internal/domain/bookings"
	"pet-clinic-booking/internal/domain/dailylogs"
	"pet-clinic-booking/internal/domain/notifications"
	"pet-clinic-booking/internal/domain/patients"
	"pet-clinic-booking/internal/domain/results"
	"pet-clinic-booking/internal/platform/logger"
	"pet-clinic-booking/internal/platform/metrics"
	"pet-clinic-booking/internal/ports/store"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	// ErrBadState: la transición pedida no es válida desde el estado actual.
	ErrBadState = errors.New("invalid state")
	// ErrNoResult: share sin tratamiento guardado.
	ErrNoResult = errors.New("no treatment result for booking")
)

// StaffDirectory autoriza acciones de staff sobre la clínica del booking.
type StaffDirectory interface {
	IsStaff(ctx context.Context, clinicID, userID string) (bool, error)
}

// Service es el dueño único de las transiciones de estado. Cada operación
// multi-colección (booking + resultado + rollup + log + cola) corre dentro
// de una unidad atómica del Runner: o se aplica todo o nada. Esto reemplaza
// las escrituras secuenciales best-effort del flujo original.
type Service struct {
	bookings  bookings.Repository
	results   results.Repository
	patients  patients.Repository
	logs      dailylogs.Repository
	notifs    notifications.Repository
	staff     StaffDirectory
	runner    store.Runner
	publisher notifications.Publisher // puede ser nil
	metrics   *metrics.Metrics
	log       logger.Logger
	now       func() time.Time
}

type Deps struct {
	Bookings  bookings.Repository
	Results   results.Repository
	Patients  patients.Repository
	Logs      dailylogs.Repository
	Notifs    notifications.Repository
	Staff     StaffDirectory
	Runner    store.Runner
	Publisher notifications.Publisher
	Metrics   *metrics.Metrics
	Log       logger.Logger
}

func NewService(d Deps) *Service {
	return &Service{
		bookings:  d.Bookings,
		results:   d.Results,
		patients:  d.Patients,
		logs:      d.Logs,
		notifs:    d.Notifs,
		staff:     d.Staff,
		runner:    d.Runner,
		publisher: d.Publisher,
		metrics:   d.Metrics,
		log:       d.Log,
		now:       time.Now,
	}
}

// Confirm pasa un booking pending|waiting a confirmed. Idempotente: confirmar
// un booking ya confirmado devuelve el booking tal cual.
func (s *Service) Confirm(ctx context.Context, bookingID, actorUserID string) (bookings.Booking, error) {
	b, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return bookings.Booking{}, err
	}
	if err := s.authorizeStaff(ctx, b.ClinicID, actorUserID); err != nil {
		return bookings.Booking{}, err
	}

	if b.Status == bookings.StatusConfirmed {
		return b, nil
	}
	if !bookings.CanTransition(b.Status, bookings.StatusConfirmed) {
		return bookings.Booking{}, ErrBadState
	}

	var updated bookings.Booking
	var notif notifications.Notification

	err = s.runner.WithinTx(ctx, func(ctx context.Context) error {
		cur, err := s.bookings.GetByID(ctx, b.ID)
		if err != nil {
			return err
		}
		if cur.Status == bookings.StatusConfirmed {
			updated = cur
			return nil
		}
		if !bookings.CanTransition(cur.Status, bookings.StatusConfirmed) {
			return ErrBadState
		}

		now := s.now()
		cur.Status = bookings.StatusConfirmed
		cur.Version++
		cur.UpdatedAt = now
		if err := s.bookings.Update(ctx, cur); err != nil {
			return err
		}

		if err := s.appendLog(ctx, cur, dailylogs.ActionBookingConfirmed, ""); err != nil {
			return err
		}

		notif = s.buildNotification(cur, notifications.KindBookingConfirmed,
			"예약이 확정되었습니다",
			fmt.Sprintf("%s %s %s 예약이 확정되었습니다.", cur.Date, cur.Time, cur.PetName))
		if err := s.notifs.Enqueue(ctx, notif); err != nil {
			return err
		}

		updated = cur
		return nil
	})
	if err != nil {
		return bookings.Booking{}, err
	}

	s.afterTransition(ctx, bookings.StatusConfirmed, notif)
	return updated, nil
}

// Cancel lo puede pedir el staff o el guardián dueño del turno.
func (s *Service) Cancel(ctx context.Context, bookingID, actorUserID string) (bookings.Booking, error) {
	b, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return bookings.Booking{}, err
	}

	if b.UserID != strings.TrimSpace(actorUserID) {
		if err := s.authorizeStaff(ctx, b.ClinicID, actorUserID); err != nil {
			return bookings.Booking{}, err
		}
	}

	if b.Status == bookings.StatusCancelled {
		return b, nil
	}
	if !bookings.CanTransition(b.Status, bookings.StatusCancelled) {
		return bookings.Booking{}, ErrBadState
	}

	var updated bookings.Booking
	var notif notifications.Notification

	err = s.runner.WithinTx(ctx, func(ctx context.Context) error {
		cur, err := s.bookings.GetByID(ctx, b.ID)
		if err != nil {
			return err
		}
		if cur.Status == bookings.StatusCancelled {
			updated = cur
			return nil
		}
		if !bookings.CanTransition(cur.Status, bookings.StatusCancelled) {
			return ErrBadState
		}

		cur.Status = bookings.StatusCancelled
		cur.Version++
		cur.UpdatedAt = s.now()
		if err := s.bookings.Update(ctx, cur); err != nil {
			return err
		}

		if err := s.appendLog(ctx, cur, dailylogs.ActionBookingCancelled, ""); err != nil {
			return err
		}

		notif = s.buildNotification(cur, notifications.KindBookingCancelled,
			"예약이 취소되었습니다",
			fmt.Sprintf("%s %s 예약이 취소되었습니다.", cur.Date, cur.Time))
		if err := s.notifs.Enqueue(ctx, notif); err != nil {
			return err
		}

		updated = cur
		return nil
	})
	if err != nil {
		return bookings.Booking{}, err
	}

	s.afterTransition(ctx, bookings.StatusCancelled, notif)
	return updated, nil
}

type ResultInput struct {
	TriageScore   int
	MainDiagnosis string
	Subjective    string
	Objective     string
	Assessment    string
	Plan          string
}

// CommitTreatment guarda (o re-guarda) la nota SOAP del booking como unidad
// atómica: upsert del resultado conservando su ID, bump del rollup de
// paciente solo en el primer guardado, y log de auditoría. Un re-guardado
// concurrente no puede duplicar resultados porque todo corre bajo el Runner.
func (s *Service) CommitTreatment(ctx context.Context, bookingID, actorUserID string, in ResultInput) (results.ClinicResult, error) {
	if strings.TrimSpace(in.MainDiagnosis) == "" {
		return results.ClinicResult{}, ErrInvalidInput
	}

	b, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return results.ClinicResult{}, err
	}
	if err := s.authorizeStaff(ctx, b.ClinicID, actorUserID); err != nil {
		return results.ClinicResult{}, err
	}

	var saved results.ClinicResult

	err = s.runner.WithinTx(ctx, func(ctx context.Context) error {
		cur, err := s.bookings.GetByID(ctx, b.ID)
		if err != nil {
			return err
		}
		if cur.Status != bookings.StatusConfirmed {
			return ErrBadState
		}

		now := s.now()

		existing, err := s.results.GetByBooking(ctx, cur.ID)
		first := false
		switch {
		case err == nil:
			// re-guardado: conserva ID y flag de compartido
		case errors.Is(err, results.ErrNotFound):
			first = true
			existing = results.ClinicResult{
				ID:        uuid.NewString(),
				BookingID: cur.ID,
				CreatedAt: now,
			}
		default:
			return err
		}

		existing.ClinicID = cur.ClinicID
		existing.PetID = cur.PetID
		existing.UserID = cur.UserID
		existing.VisitDate = cur.Date
		existing.VisitTime = cur.Time
		existing.TriageScore = in.TriageScore
		existing.MainDiagnosis = strings.TrimSpace(in.MainDiagnosis)
		existing.SOAP = results.SOAP{
			Subjective: strings.TrimSpace(in.Subjective),
			Objective:  strings.TrimSpace(in.Objective),
			Assessment: strings.TrimSpace(in.Assessment),
			Plan:       strings.TrimSpace(in.Plan),
		}
		existing.UpdatedAt = now

		if err := s.results.Upsert(ctx, existing); err != nil {
			return err
		}

		if first {
			if err := s.bumpRollup(ctx, cur, now); err != nil {
				return err
			}

			cur.DiagnosisID = existing.ID
			cur.Version++
			cur.UpdatedAt = now
			if err := s.bookings.Update(ctx, cur); err != nil {
				return err
			}
		}

		if err := s.appendLog(ctx, cur, dailylogs.ActionTreatmentSaved, existing.MainDiagnosis); err != nil {
			return err
		}

		saved = existing
		return nil
	})
	if err != nil {
		return results.ClinicResult{}, err
	}

	return saved, nil
}

// ShareToGuardian marca el resultado como compartido Y completa el booking en
// la misma transacción: nunca queda un booking completed con resultado sin
// compartir, ni un resultado compartido con booking a medio camino.
func (s *Service) ShareToGuardian(ctx context.Context, bookingID, actorUserID string) (results.ClinicResult, error) {
	b, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return results.ClinicResult{}, err
	}
	if err := s.authorizeStaff(ctx, b.ClinicID, actorUserID); err != nil {
		return results.ClinicResult{}, err
	}

	var shared results.ClinicResult
	var notif notifications.Notification
	already := false

	err = s.runner.WithinTx(ctx, func(ctx context.Context) error {
		cur, err := s.bookings.GetByID(ctx, b.ID)
		if err != nil {
			return err
		}

		res, err := s.results.GetByBooking(ctx, cur.ID)
		if err != nil {
			if errors.Is(err, results.ErrNotFound) {
				return ErrNoResult
			}
			return err
		}

		// Idempotente: ya compartido y completado.
		if cur.Status == bookings.StatusCompleted && res.SharedToGuardian {
			shared = res
			already = true
			return nil
		}
		if !bookings.CanTransition(cur.Status, bookings.StatusCompleted) {
			return ErrBadState
		}

		now := s.now()

		res.SharedToGuardian = true
		res.UpdatedAt = now
		if err := s.results.Upsert(ctx, res); err != nil {
			return err
		}

		cur.Status = bookings.StatusCompleted
		cur.DiagnosisID = res.ID
		cur.Version++
		cur.UpdatedAt = now
		if err := s.bookings.Update(ctx, cur); err != nil {
			return err
		}

		if err := s.appendLog(ctx, cur, dailylogs.ActionResultShared, res.MainDiagnosis); err != nil {
			return err
		}

		notif = s.buildNotification(cur, notifications.KindResultShared,
			"진료 결과가 도착했습니다",
			fmt.Sprintf("%s 진료 결과를 확인해 주세요.", cur.PetName))
		if err := s.notifs.Enqueue(ctx, notif); err != nil {
			return err
		}

		shared = res
		return nil
	})
	if err != nil {
		return results.ClinicResult{}, err
	}

	if !already {
		s.afterTransition(ctx, bookings.StatusCompleted, notif)
	}
	return shared, nil
}

// GetResult devuelve el resultado del booking: staff siempre, el guardián
// dueño solo cuando ya fue compartido.
func (s *Service) GetResult(ctx context.Context, bookingID, actorUserID string) (results.ClinicResult, error) {
	b, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return results.ClinicResult{}, err
	}

	res, err := s.results.GetByBooking(ctx, b.ID)
	if err != nil {
		if errors.Is(err, results.ErrNotFound) {
			return results.ClinicResult{}, ErrNoResult
		}
		return results.ClinicResult{}, err
	}

	actorUserID = strings.TrimSpace(actorUserID)
	if b.UserID == actorUserID && res.SharedToGuardian {
		return res, nil
	}
	if err := s.authorizeStaff(ctx, b.ClinicID, actorUserID); err != nil {
		return results.ClinicResult{}, err
	}
	return res, nil
}

// ListGuardianRecords devuelve los resultados compartidos con el guardián.
func (s *Service) ListGuardianRecords(ctx context.Context, userID string) ([]results.ClinicResult, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.results.ListByGuardian(ctx, userID, true)
}

func (s *Service) getBooking(ctx context.Context, id string) (bookings.Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return bookings.Booking{}, ErrInvalidInput
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return bookings.Booking{}, ErrNotFound
	}
	return b, nil
}

func (s *Service) authorizeStaff(ctx context.Context, clinicID, userID string) error {
	ok, err := s.staff.IsStaff(ctx, clinicID, strings.TrimSpace(userID))
	if err != nil || !ok {
		return ErrForbidden
	}
	return nil
}

func (s *Service) bumpRollup(ctx context.Context, b bookings.Booking, now time.Time) error {
	key := patients.RollupKey(b.ClinicID, b.PetID)

	p, err := s.patients.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, patients.ErrNotFound) {
			return err
		}
		p = patients.ClinicPatient{
			Key:         key,
			ClinicID:    b.ClinicID,
			PetID:       b.PetID,
			PetName:     b.PetName,
			OwnerUserID: b.UserID,
			CreatedAt:   now,
		}
	}

	p.VisitCount++
	p.LastVisitDate = b.Date
	p.PetName = b.PetName
	p.UpdatedAt = now

	return s.patients.Put(ctx, p)
}

func (s *Service) appendLog(ctx context.Context, b bookings.Booking, action dailylogs.Action, detail string) error {
	return s.logs.Append(ctx, dailylogs.DailyLog{
		ID:        uuid.NewString(),
		ClinicID:  b.ClinicID,
		BookingID: b.ID,
		Action:    action,
		Detail:    detail,
		At:        s.now(),
	})
}

func (s *Service) buildNotification(b bookings.Booking, kind notifications.Kind, title, body string) notifications.Notification {
	return notifications.Notification{
		ID:        uuid.NewString(),
		UserID:    b.UserID,
		BookingID: b.ID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		Status:    notifications.StatusQueued,
		CreatedAt: s.now(),
	}
}

// afterTransition corre fuera de la transacción: métricas y publish
// best-effort al broker. La fila queued ya está commiteada; si el publish
// falla solo se loguea.
func (s *Service) afterTransition(ctx context.Context, status bookings.Status, notif notifications.Notification) {
	if s.metrics != nil {
		s.metrics.StatusTransitions.WithLabelValues(string(status)).Inc()
	}

	if s.publisher == nil || notif.ID == "" {
		return
	}
	if err := s.publisher.Publish(ctx, notif); err != nil {
		if s.metrics != nil {
			s.metrics.NotifyPublishErrs.Inc()
		}
		s.log.Warn("notification publish failed", map[string]any{"id": notif.ID, "err": err.Error()})
		return
	}
	if err := s.notifs.MarkSent(ctx, notif.ID); err != nil {
		s.log.Warn("mark sent failed", map[string]any{"id": notif.ID, "err": err.Error()})
	}
}
