package livesync

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"pet-clinic-booking/internal/domain/pets"
	"pet-clinic-booking/internal/domain/results"
	"pet-clinic-booking/internal/domain/users"
	"pet-clinic-booking/internal/platform/metrics"
)

// ViewBooking es la fila enriquecida que consume el dashboard de la clínica.
type ViewBooking struct {
	ID       string `json:"id"`
	ClinicID string `json:"clinic_id"`

	PetID      string `json:"pet_id"`
	PetName    string `json:"pet_name"`
	PetSpecies string `json:"pet_species,omitempty"`

	GuardianName  string `json:"guardian_name,omitempty"`
	GuardianPhone string `json:"guardian_phone,omitempty"`

	Date string `json:"date"`
	Time string `json:"time"`

	Status      string `json:"status"`
	Message     string `json:"message,omitempty"`
	TriageScore int    `json:"triage_score,omitempty"`
	AIDiagnosis string `json:"ai_diagnosis,omitempty"`

	HasResult    bool `json:"has_result"`
	ResultShared bool `json:"result_shared"`

	Version    int64     `json:"version"`
	Optimistic bool      `json:"optimistic,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Enricher hace los joins del view (mascota, guardián, resultado) con
// fan-out acotado. Nunca falla: un join caído degrada al default seguro
// (nombre denormalizado del booking, HasResult=false) y cuenta la métrica.
type Enricher struct {
	pets    pets.Repository
	users   users.Repository
	results results.Repository
	metrics *metrics.Metrics
	limit   int
}

func NewEnricher(petRepo pets.Repository, userRepo users.Repository, resultRepo results.Repository, m *metrics.Metrics, limit int) *Enricher {
	if limit <= 0 {
		limit = 4
	}
	return &Enricher{
		pets:    petRepo,
		users:   userRepo,
		results: resultRepo,
		metrics: m,
		limit:   limit,
	}
}

func (e *Enricher) Enrich(ctx context.Context, rows []Row) []ViewBooking {
	out := make([]ViewBooking, len(rows))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	for i := range rows {
		i := i
		g.Go(func() error {
			out[i] = e.enrichOne(ctx, rows[i])
			return nil
		})
	}
	_ = g.Wait() // los joins nunca devuelven error; degradan

	return out
}

func (e *Enricher) enrichOne(ctx context.Context, row Row) ViewBooking {
	b := row.Booking

	v := ViewBooking{
		ID:          b.ID,
		ClinicID:    b.ClinicID,
		PetID:       b.PetID,
		PetName:     b.PetName, // fallback denormalizado
		Date:        b.Date,
		Time:        b.Time,
		Status:      string(b.Status),
		Message:     b.Message,
		TriageScore: b.TriageScore,
		AIDiagnosis: b.AIDiagnosis,
		Version:     b.Version,
		Optimistic:  row.Optimistic,
		UpdatedAt:   b.UpdatedAt,
	}

	if b.PetID != "" {
		if p, err := e.pets.GetByID(ctx, b.PetID); err == nil {
			v.PetName = p.Name
			v.PetSpecies = p.Species
		} else {
			e.fail("pet")
		}
	}

	if b.UserID != "" {
		if u, err := e.users.GetByID(ctx, b.UserID); err == nil {
			v.GuardianName = u.Name
			v.GuardianPhone = u.Phone
		} else {
			e.fail("user")
		}
	}

	res, err := e.results.GetByBooking(ctx, b.ID)
	switch {
	case err == nil:
		v.HasResult = true
		v.ResultShared = res.SharedToGuardian
	case errors.Is(err, results.ErrNotFound):
		// sin resultado todavía, default seguro
	default:
		e.fail("result")
	}

	return v
}

func (e *Enricher) fail(join string) {
	if e.metrics != nil {
		e.metrics.EnrichFailures.WithLabelValues(join).Inc()
	}
}
