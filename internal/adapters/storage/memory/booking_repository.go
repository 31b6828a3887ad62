package memory

import (
	"context"
	"strings"
	"sync"

	"pet-clinic-booking/internal/domain/bookings"
)

// BookingRepository guarda los turnos en memoria y además es el Source del
// live view: cada escritura empuja el snapshot fresco del día a los
// suscriptores de esa clave (clinic id + fecha).
type BookingRepository struct {
	mu   sync.RWMutex
	rows map[string]bookings.Booking
	subs map[string]map[chan []bookings.Booking]struct{}
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{
		rows: map[string]bookings.Booking{},
		subs: map[string]map[chan []bookings.Booking]struct{}{},
	}
}

func dayKey(clinicID, date string) string { return clinicID + "|" + date }

func (r *BookingRepository) Create(ctx context.Context, b bookings.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows[b.ID] = b
	r.notifyLocked(b.ClinicID, b.Date)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (bookings.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.rows[id]
	if !ok {
		return bookings.Booking{}, bookings.ErrNotFound
	}
	return b, nil
}

func (r *BookingRepository) Update(ctx context.Context, b bookings.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.rows[b.ID]
	if !ok {
		return bookings.ErrNotFound
	}
	if stored.Version != b.Version-1 {
		return bookings.ErrStaleVersion
	}

	r.rows[b.ID] = b

	// El backfill mueve el booking de clave (le asigna ClinicID); se
	// notifica el día nuevo y, si cambió, también el viejo.
	r.notifyLocked(b.ClinicID, b.Date)
	if stored.ClinicID != b.ClinicID || stored.Date != b.Date {
		r.notifyLocked(stored.ClinicID, stored.Date)
	}
	return nil
}

func (r *BookingRepository) ListForClinicDay(ctx context.Context, clinicID, date string) ([]bookings.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked(clinicID, date), nil
}

func (r *BookingRepository) ListLegacyByClinicName(ctx context.Context, clinicName string) ([]bookings.Booking, error) {
	clinicName = strings.TrimSpace(clinicName)

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []bookings.Booking{}
	for _, b := range r.rows {
		if b.ClinicID == "" && b.ClinicName == clinicName {
			out = append(out, b)
		}
	}
	bookings.SortByTime(out)
	return out, nil
}

// Snapshots implementa el Source del live view. El canal arranca con el
// snapshot actual y se cierra cuando el ctx termina.
func (r *BookingRepository) Snapshots(ctx context.Context, clinicID, date string) (<-chan []bookings.Booking, error) {
	ch := make(chan []bookings.Booking, 1)
	key := dayKey(clinicID, date)

	r.mu.Lock()
	if r.subs[key] == nil {
		r.subs[key] = map[chan []bookings.Booking]struct{}{}
	}
	r.subs[key][ch] = struct{}{}
	ch <- r.snapshotLocked(clinicID, date)
	r.mu.Unlock()

	go func() {
		<-ctx.Done()

		r.mu.Lock()
		delete(r.subs[key], ch)
		if len(r.subs[key]) == 0 {
			delete(r.subs, key)
		}
		r.mu.Unlock()

		close(ch)
	}()

	return ch, nil
}

func (r *BookingRepository) snapshotLocked(clinicID, date string) []bookings.Booking {
	out := []bookings.Booking{}
	for _, b := range r.rows {
		if b.ClinicID == clinicID && b.Date == date {
			out = append(out, b)
		}
	}
	bookings.SortByTime(out)
	return out
}

func (r *BookingRepository) notifyLocked(clinicID, date string) {
	if clinicID == "" {
		return
	}

	subs := r.subs[dayKey(clinicID, date)]
	if len(subs) == 0 {
		return
	}

	snap := r.snapshotLocked(clinicID, date)
	for ch := range subs {
		// Coalescente: solo importa el último snapshot.
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
