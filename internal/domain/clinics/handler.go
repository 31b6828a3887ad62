package clinics

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-clinic-booking/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/clinics", func(cr chi.Router) {
		cr.Post("/", createClinicHandler(svc))
		cr.Get("/{clinicID}", getClinicHandler(svc))
		cr.Patch("/{clinicID}", updateClinicHandler(svc))
		cr.Post("/{clinicID}/staff", addStaffHandler(svc))
		cr.Post("/{clinicID}/bookings/backfill", backfillHandler(svc))
	})
}

type clinicRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

type updateClinicRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

type clinicResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type addStaffRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func createClinicHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req clinicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			Name:    req.Name,
			Address: req.Address,
			Phone:   req.Phone,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toClinicResponse(c))
	}
}

func getClinicHandler(svc *Service) http.HandlerFunc {
	// Perfil público: el guardián lo ve al reservar.
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := svc.GetByID(r.Context(), chi.URLParam(r, "clinicID"))
		if err != nil {
			http.Error(w, "clinic not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, toClinicResponse(c))
	}
}

func updateClinicHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateClinicRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.Update(r.Context(), chi.URLParam(r, "clinicID"), claims.UserID, UpdateInput{
			Name:    req.Name,
			Address: req.Address,
			Phone:   req.Phone,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toClinicResponse(c))
	}
}

func addStaffHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req addStaffRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		st, err := svc.AddStaff(r.Context(), chi.URLParam(r, "clinicID"), claims.UserID, req.UserID, StaffRole(req.Role))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"clinic_id": st.ClinicID,
			"user_id":   st.UserID,
			"role":      st.Role,
		})
	}
}

func backfillHandler(svc *Service) http.HandlerFunc {
	// Migración one-shot de bookings legacy por nombre; admin-only.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		n, err := svc.BackfillLegacyName(r.Context(), chi.URLParam(r, "clinicID"), claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]int{"migrated": n})
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch err {
	case ErrInvalidInput:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case ErrNotFound:
		http.Error(w, "clinic not found", http.StatusNotFound)
	case ErrForbidden:
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toClinicResponse(c Clinic) clinicResponse {
	return clinicResponse{
		ID:        c.ID,
		Name:      c.Name,
		Address:   c.Address,
		Phone:     c.Phone,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
