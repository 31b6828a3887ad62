package livesync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-clinic-booking/internal/domain/bookings"
	"pet-clinic-booking/internal/middleware"
)

// Resolver canoniza el identificador de clínica (id o nombre legacy) a la
// clave única de suscripción.
type Resolver interface {
	ResolveKey(ctx context.Context, idOrName string) (string, error)
}

type StaffDirectory interface {
	IsStaff(ctx context.Context, clinicID, userID string) (bool, error)
}

func RegisterRoutes(r chi.Router, sync *Synchronizer, resolver Resolver, staff StaffDirectory) {
	// Registro directo (sin subrouter) para convivir con las rutas de
	// administración que viven bajo /clinics.
	r.Get("/clinics/{clinicID}/bookings", listViewHandler(sync, resolver, staff))
	r.Get("/clinics/{clinicID}/bookings/stream", streamHandler(sync, resolver, staff))
	r.Post("/clinics/{clinicID}/bookings/intents", intentHandler(sync, resolver, staff))
}

func listViewHandler(sync *Synchronizer, resolver Resolver, staff StaffDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, date, ok := authorizeDay(w, r, resolver, staff)
		if !ok {
			return
		}

		view, err := sync.View(r.Context(), clinicID, date)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, view)
	}
}

// streamHandler expone el view en vivo por SSE: un evento "view" con el
// snapshot enriquecido completo en cada cambio.
func streamHandler(sync *Synchronizer, resolver Resolver, staff StaffDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, date, ok := authorizeDay(w, r, resolver, staff)
		if !ok {
			return
		}

		flusher, canFlush := w.(http.Flusher)
		if !canFlush {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		ch, unsubscribe, err := sync.Subscribe(clinicID, date)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		defer unsubscribe()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		// Estado inicial antes del primer cambio.
		initial, err := sync.View(r.Context(), clinicID, date)
		if err == nil {
			writeEvent(w, initial)
			flusher.Flush()
		}

		keepalive := time.NewTicker(25 * time.Second)
		defer keepalive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case view := <-ch:
				writeEvent(w, view)
				flusher.Flush()
			case <-keepalive.C:
				fmt.Fprint(w, ": keepalive\n\n")
				flusher.Flush()
			}
		}
	}
}

type intentRequest struct {
	BookingID string `json:"booking_id"`
	Status    string `json:"status"`
	Version   int64  `json:"version"`
}

// intentHandler aplica el update optimista del dashboard: la UI lo manda al
// disparar una transición y el view lo refleja al instante; el write
// confirmado llega después por el Source y consolida según Version.
func intentHandler(sync *Synchronizer, resolver Resolver, staff StaffDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicID, date, ok := authorizeDay(w, r, resolver, staff)
		if !ok {
			return
		}

		var req intentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		status := bookings.Status(strings.TrimSpace(req.Status))
		if strings.TrimSpace(req.BookingID) == "" || !bookings.ValidStatus(status) || req.Version <= 0 {
			http.Error(w, "booking_id, status and version are required", http.StatusBadRequest)
			return
		}

		sync.ApplyIntent(r.Context(), clinicID, date, bookings.Booking{
			ID:       strings.TrimSpace(req.BookingID),
			ClinicID: clinicID,
			Date:     date,
			Status:   status,
			Version:  req.Version,
		})

		w.WriteHeader(http.StatusAccepted)
	}
}

// authorizeDay valida fecha, canoniza la clínica y chequea staff.
func authorizeDay(w http.ResponseWriter, r *http.Request, resolver Resolver, staff StaffDirectory) (clinicID, date string, ok bool) {
	claims, hasClaims := middleware.GetClaims(r.Context())
	if !hasClaims || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", "", false
	}

	date = strings.TrimSpace(r.URL.Query().Get("date"))
	if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
		return "", "", false
	}

	clinicID, err := resolver.ResolveKey(r.Context(), chi.URLParam(r, "clinicID"))
	if err != nil {
		http.Error(w, "clinic not found", http.StatusNotFound)
		return "", "", false
	}

	isStaff, err := staff.IsStaff(r.Context(), clinicID, claims.UserID)
	if err != nil || !isStaff {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", "", false
	}

	return clinicID, date, true
}

func writeEvent(w http.ResponseWriter, view []ViewBooking) {
	b, err := json.Marshal(view)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: view\ndata: %s\n\n", b)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
