package hospitals

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"pet-clinic-booking/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/hospitals", func(hr chi.Router) {
		hr.Post("/", createHospitalHandler(svc))
		hr.Get("/nearby", nearbyHandler(svc))
	})
}

type hospitalRequest struct {
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Phone   string  `json:"phone"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

type nearbyResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Address    string  `json:"address,omitempty"`
	Phone      string  `json:"phone,omitempty"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	DistanceKm float64 `json:"distance_km"`
}

func createHospitalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req hospitalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		h, err := svc.Create(r.Context(), CreateInput{
			Name:    req.Name,
			Address: req.Address,
			Phone:   req.Phone,
			Lat:     req.Lat,
			Lng:     req.Lng,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, nearbyResponse{
			ID: h.ID, Name: h.Name, Address: h.Address, Phone: h.Phone, Lat: h.Lat, Lng: h.Lng,
		})
	}
}

func nearbyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		lat, err1 := strconv.ParseFloat(q.Get("lat"), 64)
		lng, err2 := strconv.ParseFloat(q.Get("lng"), 64)
		if err1 != nil || err2 != nil {
			http.Error(w, "lat and lng are required", http.StatusBadRequest)
			return
		}

		limit := 0
		if v := q.Get("limit"); v != "" {
			limit, _ = strconv.Atoi(v)
		}

		items, err := svc.Nearest(r.Context(), lat, lng, q.Get("query"), limit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]nearbyResponse, 0, len(items))
		for _, n := range items {
			out = append(out, nearbyResponse{
				ID:         n.ID,
				Name:       n.Name,
				Address:    n.Address,
				Phone:      n.Phone,
				Lat:        n.Lat,
				Lng:        n.Lng,
				DistanceKm: n.DistanceKm,
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
