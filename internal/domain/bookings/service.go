package bookings

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-clinic-booking/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	// ErrStaleVersion: la escritura perdió contra otra más nueva.
	ErrStaleVersion = errors.New("stale version")
)

// PetDirectory resuelve dueño y nombre de la mascota sin importar pets
// directamente (evita ciclos entre módulos, mismo truco que OwnerOf).
type PetDirectory interface {
	OwnerAndName(ctx context.Context, petID string) (ownerUserID, name string, err error)
}

// TriageScorer es el backend de triage. Best-effort: si falla, el turno se
// crea igual con el default.
type TriageScorer interface {
	Score(ctx context.Context, symptom string) (score int, category string, err error)
}

// QuestionAnswerer es la consulta libre del mismo backend de triage: el
// guardián pregunta en texto plano y recibe una respuesta orientativa.
type QuestionAnswerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// FallbackDiagnosis se usa cuando el triage no responde ("기타" = otros).
const FallbackDiagnosis = "기타"

type Service struct {
	repo   Repository
	pets   PetDirectory
	triage TriageScorer // puede ser nil
	log    logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, pets PetDirectory, triage TriageScorer, log logger.Logger) *Service {
	return &Service{
		repo:   repo,
		pets:   pets,
		triage: triage,
		log:    log,
		now:    time.Now,
	}
}

type CreateInput struct {
	ClinicID   string
	ClinicName string // legacy; solo si el cliente viejo no conoce el id
	PetID      string
	Date       string // YYYY-MM-DD
	Time       string // HH:MM
	Message    string
}

func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Booking, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Booking{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.ClinicID) == "" && strings.TrimSpace(in.ClinicName) == "" {
		return Booking{}, ErrInvalidInput
	}
	if strings.TrimSpace(in.PetID) == "" {
		return Booking{}, ErrInvalidInput
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return Booking{}, ErrInvalidInput
	}
	if _, err := time.Parse("15:04", in.Time); err != nil {
		return Booking{}, ErrInvalidInput
	}

	ownerID, petName, err := s.pets.OwnerAndName(ctx, strings.TrimSpace(in.PetID))
	if err != nil {
		return Booking{}, ErrInvalidInput
	}
	if ownerID != userID {
		return Booking{}, ErrInvalidInput
	}

	// Triage best-effort sobre el motivo de consulta.
	score := 0
	diagnosis := ""
	if s.triage != nil && strings.TrimSpace(in.Message) != "" {
		sc, cat, terr := s.triage.Score(ctx, in.Message)
		if terr != nil {
			s.log.Warn("triage unavailable, using fallback", map[string]any{"err": terr.Error()})
			diagnosis = FallbackDiagnosis
		} else {
			score = sc
			diagnosis = cat
		}
	}

	now := s.now()
	b := Booking{
		ID:          uuid.NewString(),
		ClinicID:    strings.TrimSpace(in.ClinicID),
		ClinicName:  strings.TrimSpace(in.ClinicName),
		PetID:       strings.TrimSpace(in.PetID),
		PetName:     petName,
		UserID:      userID,
		Date:        in.Date,
		Time:        in.Time,
		Status:      StatusPending,
		Message:     strings.TrimSpace(in.Message),
		TriageScore: score,
		AIDiagnosis: diagnosis,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return Booking{}, err
	}
	return b, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Booking, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Booking{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

// ListForClinicDay mantiene el invariante de orden asc por hora aunque el
// repo no lo garantice.
func (s *Service) ListForClinicDay(ctx context.Context, clinicID, date string) ([]Booking, error) {
	clinicID = strings.TrimSpace(clinicID)
	if clinicID == "" {
		return nil, ErrInvalidInput
	}
	if date == "" {
		date = s.now().Format("2006-01-02")
	}

	out, err := s.repo.ListForClinicDay(ctx, clinicID, date)
	if err != nil {
		return nil, err
	}

	SortByTime(out)
	return out, nil
}

// SortByTime ordena asc por hora (compare de string HH:MM alcanza) con
// desempate por id para salida estable.
func SortByTime(list []Booking) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Time != list[j].Time {
			return list[i].Time < list[j].Time
		}
		return list[i].ID < list[j].ID
	})
}
