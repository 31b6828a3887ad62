package clinics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-clinic-booking/internal/domain/bookings"
	"pet-clinic-booking/internal/domain/dailylogs"
	"pet-clinic-booking/internal/platform/logger"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
)

type Service struct {
	repo     Repository
	bookings bookings.Repository
	logs     dailylogs.Repository
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, bookingRepo bookings.Repository, logRepo dailylogs.Repository, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		bookings: bookingRepo,
		logs:     logRepo,
		log:      log,
		now:      time.Now,
	}
}

type CreateInput struct {
	Name    string
	Address string
	Phone   string
}

// Create registra la clínica y deja al creador como staff admin.
func (s *Service) Create(ctx context.Context, creatorUserID string, in CreateInput) (Clinic, error) {
	creatorUserID = strings.TrimSpace(creatorUserID)
	if creatorUserID == "" || strings.TrimSpace(in.Name) == "" {
		return Clinic{}, ErrInvalidInput
	}

	now := s.now()
	c := Clinic{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Address:   strings.TrimSpace(in.Address),
		Phone:     strings.TrimSpace(in.Phone),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Clinic{}, err
	}

	staff := Staff{
		ClinicID:  c.ID,
		UserID:    creatorUserID,
		Role:      RoleAdmin,
		CreatedAt: now,
	}
	if err := s.repo.AddStaff(ctx, staff); err != nil {
		return Clinic{}, err
	}

	return c, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Clinic, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Clinic{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

type UpdateInput struct {
	Name    *string
	Address *string
	Phone   *string
}

func (s *Service) Update(ctx context.Context, clinicID, userID string, in UpdateInput) (Clinic, error) {
	c, err := s.repo.GetByID(ctx, strings.TrimSpace(clinicID))
	if err != nil {
		return Clinic{}, ErrNotFound
	}

	staff, err := s.repo.GetStaff(ctx, c.ID, strings.TrimSpace(userID))
	if err != nil || staff.Role != RoleAdmin {
		return Clinic{}, ErrForbidden
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Clinic{}, ErrInvalidInput
		}
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Address != nil {
		c.Address = strings.TrimSpace(*in.Address)
	}
	if in.Phone != nil {
		c.Phone = strings.TrimSpace(*in.Phone)
	}
	c.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, c); err != nil {
		return Clinic{}, err
	}
	return c, nil
}

// AddStaff suma un usuario al staff; solo un admin puede hacerlo.
func (s *Service) AddStaff(ctx context.Context, clinicID, adminUserID, newUserID string, role StaffRole) (Staff, error) {
	clinicID = strings.TrimSpace(clinicID)
	newUserID = strings.TrimSpace(newUserID)
	if clinicID == "" || newUserID == "" || !ValidRole(role) {
		return Staff{}, ErrInvalidInput
	}

	admin, err := s.repo.GetStaff(ctx, clinicID, strings.TrimSpace(adminUserID))
	if err != nil || admin.Role != RoleAdmin {
		return Staff{}, ErrForbidden
	}

	st := Staff{
		ClinicID:  clinicID,
		UserID:    newUserID,
		Role:      role,
		CreatedAt: s.now(),
	}
	if err := s.repo.AddStaff(ctx, st); err != nil {
		return Staff{}, err
	}
	return st, nil
}

// IsStaff implementa el directorio que usan los otros módulos para
// autorizar acciones de clínica.
func (s *Service) IsStaff(ctx context.Context, clinicID, userID string) (bool, error) {
	clinicID = strings.TrimSpace(clinicID)
	userID = strings.TrimSpace(userID)
	if clinicID == "" || userID == "" {
		return false, nil
	}

	if _, err := s.repo.GetStaff(ctx, clinicID, userID); err != nil {
		return false, nil
	}
	return true, nil
}

// ResolveKey canoniza un identificador de clínica: acepta el id o el nombre
// legacy y devuelve siempre el id. Es el reemplazo de la doble query por
// id y por nombre: todo el sync en vivo corre sobre esta clave resuelta.
func (s *Service) ResolveKey(ctx context.Context, idOrName string) (string, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return "", ErrInvalidInput
	}

	if c, err := s.repo.GetByID(ctx, idOrName); err == nil {
		return c.ID, nil
	}
	if c, err := s.repo.GetByName(ctx, idOrName); err == nil {
		return c.ID, nil
	}
	return "", ErrNotFound
}

// BackfillLegacyName migra una vez los bookings creados solo con el nombre
// de la clínica: les setea el ClinicID canónico. Después de esto la
// suscripción única por id cubre también a los turnos viejos.
func (s *Service) BackfillLegacyName(ctx context.Context, clinicID, userID string) (int, error) {
	c, err := s.repo.GetByID(ctx, strings.TrimSpace(clinicID))
	if err != nil {
		return 0, ErrNotFound
	}

	staff, err := s.repo.GetStaff(ctx, c.ID, strings.TrimSpace(userID))
	if err != nil || staff.Role != RoleAdmin {
		return 0, ErrForbidden
	}

	legacy, err := s.bookings.ListLegacyByClinicName(ctx, c.Name)
	if err != nil {
		return 0, err
	}

	migrated := 0
	for _, b := range legacy {
		b.ClinicID = c.ID
		b.Version++
		b.UpdatedAt = s.now()
		if err := s.bookings.Update(ctx, b); err != nil {
			// Un update perdido (carrera con otra escritura) no corta la
			// migración; se loguea y sigue.
			s.log.Warn("backfill skip booking", map[string]any{"booking": b.ID, "err": err.Error()})
			continue
		}
		migrated++
	}

	if migrated > 0 {
		_ = s.logs.Append(ctx, dailylogs.DailyLog{
			ID:       uuid.NewString(),
			ClinicID: c.ID,
			Action:   dailylogs.ActionLegacyBackfill,
			Detail:   fmt.Sprintf("migrated %d bookings from clinic_name=%q", migrated, c.Name),
			At:       s.now(),
		})
	}

	return migrated, nil
}
