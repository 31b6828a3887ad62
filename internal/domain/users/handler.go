package users

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-clinic-booking/internal/middleware"
)

func RegisterRoutes(r chi.Router, repo Repository) {
	r.Put("/me", putProfileHandler(repo))
	r.Get("/me", getProfileHandler(repo))
}

type profileRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func putProfileHandler(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req profileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}

		now := time.Now()
		u := User{
			ID:        claims.UserID,
			Name:      strings.TrimSpace(req.Name),
			Phone:     strings.TrimSpace(req.Phone),
			Email:     strings.TrimSpace(req.Email),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if existing, err := repo.GetByID(r.Context(), claims.UserID); err == nil {
			u.CreatedAt = existing.CreatedAt
		}

		if err := repo.Put(r.Context(), u); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, toProfileResponse(u))
	}
}

func getProfileHandler(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		u, err := repo.GetByID(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toProfileResponse(u))
	}
}

func toProfileResponse(u User) profileResponse {
	return profileResponse{
		ID:        u.ID,
		Name:      u.Name,
		Phone:     u.Phone,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
