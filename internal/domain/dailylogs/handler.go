package dailylogs

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-clinic-booking/internal/middleware"
)

type StaffDirectory interface {
	IsStaff(ctx context.Context, clinicID, userID string) (bool, error)
}

func RegisterRoutes(r chi.Router, repo Repository, staff StaffDirectory) {
	r.Get("/clinics/{clinicID}/logs", listLogsHandler(repo, staff))
}

type logResponse struct {
	ID        string    `json:"id"`
	ClinicID  string    `json:"clinic_id"`
	BookingID string    `json:"booking_id,omitempty"`
	Action    Action    `json:"action"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

func listLogsHandler(repo Repository, staff StaffDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		clinicID := chi.URLParam(r, "clinicID")
		isStaff, err := staff.IsStaff(r.Context(), clinicID, claims.UserID)
		if err != nil || !isStaff {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		filter := ListFilter{Date: strings.TrimSpace(r.URL.Query().Get("date"))}
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Limit = n
			}
		}
		for _, a := range r.URL.Query()["action"] {
			if a = strings.TrimSpace(a); a != "" {
				filter.Actions = append(filter.Actions, Action(a))
			}
		}

		items, err := repo.ListByClinic(r.Context(), clinicID, filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]logResponse, 0, len(items))
		for _, e := range items {
			out = append(out, logResponse{
				ID:        e.ID,
				ClinicID:  e.ClinicID,
				BookingID: e.BookingID,
				Action:    e.Action,
				Detail:    e.Detail,
				At:        e.At,
			})
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
