package livesync

import (
	"context"
	"sync"

	"pet-clinic-booking/internal/domain/bookings"
	"pet-clinic-booking/internal/platform/logger"
	"pet-clinic-booking/internal/platform/metrics"
)

// Synchronizer mantiene una sala por (clinic id, fecha): una única
// suscripción al Source compartida por todos los clientes SSE del día.
// La sala vive mientras tenga suscriptores; el último en irse la cierra.
type Synchronizer struct {
	source   Source
	bookings bookings.Repository
	enricher *Enricher
	metrics  *metrics.Metrics
	log      logger.Logger

	mu    sync.Mutex
	rooms map[string]*room
}

type room struct {
	mu      sync.Mutex
	reducer *Reducer
	subs    map[chan []ViewBooking]struct{}
	cancel  context.CancelFunc
}

func NewSynchronizer(source Source, bookingRepo bookings.Repository, enricher *Enricher, m *metrics.Metrics, log logger.Logger) *Synchronizer {
	return &Synchronizer{
		source:   source,
		bookings: bookingRepo,
		enricher: enricher,
		metrics:  m,
		log:      log,
		rooms:    map[string]*room{},
	}
}

func roomKey(clinicID, date string) string { return clinicID + "|" + date }

// Subscribe suma un cliente al view en vivo del día. Devuelve el canal de
// views enriquecidos (coalescente: solo interesa el último estado) y el
// unsubscribe, que SIEMPRE debe llamarse.
func (s *Synchronizer) Subscribe(clinicID, date string) (<-chan []ViewBooking, func(), error) {
	key := roomKey(clinicID, date)

	s.mu.Lock()
	rm, ok := s.rooms[key]
	if !ok {
		ctx, cancel := context.WithCancel(context.Background())
		rm = &room{
			reducer: NewReducer(),
			subs:    map[chan []ViewBooking]struct{}{},
			cancel:  cancel,
		}

		snaps, err := s.source.Snapshots(ctx, clinicID, date)
		if err != nil {
			cancel()
			s.mu.Unlock()
			return nil, nil, err
		}

		s.rooms[key] = rm
		go s.pump(ctx, rm, snaps)
	}
	s.mu.Unlock()

	ch := make(chan []ViewBooking, 1)
	rm.mu.Lock()
	rm.subs[ch] = struct{}{}
	rm.mu.Unlock()

	unsubscribe := func() {
		rm.mu.Lock()
		delete(rm.subs, ch)
		empty := len(rm.subs) == 0
		rm.mu.Unlock()

		if empty {
			s.mu.Lock()
			if s.rooms[key] == rm {
				delete(s.rooms, key)
			}
			s.mu.Unlock()
			rm.cancel()
		}
	}

	return ch, unsubscribe, nil
}

// pump consume los snapshots confirmados del Source y los reduce + publica.
func (s *Synchronizer) pump(ctx context.Context, rm *room, snaps <-chan []bookings.Booking) {
	for snap := range snaps {
		rm.mu.Lock()
		rm.reducer.ApplySnapshot(snap)
		rows := rm.reducer.View()
		rm.mu.Unlock()

		if s.metrics != nil {
			s.metrics.SnapshotsApplied.Inc()
		}

		s.broadcast(ctx, rm, rows)
	}
}

// ApplyIntent overlay optimista sobre la sala, si hay alguien mirando.
// El write confirmado llega después por el Source y consolida (o corrige)
// el intent según Version.
func (s *Synchronizer) ApplyIntent(ctx context.Context, clinicID, date string, b bookings.Booking) {
	s.mu.Lock()
	rm, ok := s.rooms[roomKey(clinicID, date)]
	s.mu.Unlock()
	if !ok {
		return
	}

	rm.mu.Lock()
	applied := rm.reducer.ApplyIntent(b)
	rows := rm.reducer.View()
	rm.mu.Unlock()

	if !applied {
		return
	}
	s.broadcast(ctx, rm, rows)
}

// View arma el view enriquecido una sola vez. Si hay sala abierta usa su
// estado (incluye intents optimistas); si no, lee directo del repo.
func (s *Synchronizer) View(ctx context.Context, clinicID, date string) ([]ViewBooking, error) {
	s.mu.Lock()
	rm, ok := s.rooms[roomKey(clinicID, date)]
	s.mu.Unlock()

	if ok {
		rm.mu.Lock()
		rows := rm.reducer.View()
		rm.mu.Unlock()
		return s.enricher.Enrich(ctx, rows), nil
	}

	list, err := s.bookings.ListForClinicDay(ctx, clinicID, date)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(list))
	for _, b := range list {
		rows = append(rows, Row{Booking: b})
	}
	return s.enricher.Enrich(ctx, rows), nil
}

func (s *Synchronizer) broadcast(ctx context.Context, rm *room, rows []Row) {
	view := s.enricher.Enrich(ctx, rows)

	rm.mu.Lock()
	defer rm.mu.Unlock()

	for ch := range rm.subs {
		// Coalescente: si el sub viene atrasado se descarta su view viejo.
		select {
		case ch <- view:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
}
