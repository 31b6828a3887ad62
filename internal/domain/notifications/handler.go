package notifications

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-clinic-booking/internal/middleware"
)

func RegisterRoutes(r chi.Router, repo Repository) {
	r.Get("/me/notifications", listMyNotificationsHandler(repo))
}

type notificationResponse struct {
	ID        string     `json:"id"`
	BookingID string     `json:"booking_id,omitempty"`
	Kind      Kind       `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

func listMyNotificationsHandler(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		items, err := repo.ListByUser(r.Context(), claims.UserID, limit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]notificationResponse, 0, len(items))
		for _, n := range items {
			out = append(out, notificationResponse{
				ID:        n.ID,
				BookingID: n.BookingID,
				Kind:      n.Kind,
				Title:     n.Title,
				Body:      n.Body,
				Status:    n.Status,
				CreatedAt: n.CreatedAt,
				SentAt:    n.SentAt,
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
