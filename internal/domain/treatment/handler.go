package treatment

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-clinic-booking/internal/domain/bookings"
	"pet-clinic-booking/internal/domain/results"
	"pet-clinic-booking/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	// Registro directo (sin subrouter) para convivir con las rutas de alta
	// y consulta que viven bajo /bookings.
	r.Post("/bookings/{bookingID}/confirm", transitionHandler(svc, "confirm"))
	r.Post("/bookings/{bookingID}/cancel", transitionHandler(svc, "cancel"))
	r.Put("/bookings/{bookingID}/treatment", commitTreatmentHandler(svc))
	r.Post("/bookings/{bookingID}/share", shareHandler(svc))
	r.Get("/bookings/{bookingID}/result", getResultHandler(svc))

	r.Get("/me/records", listMyRecordsHandler(svc))
}

type resultRequest struct {
	TriageScore   int    `json:"triage_score"`
	MainDiagnosis string `json:"main_diagnosis"`
	Subjective    string `json:"subjective"`
	Objective     string `json:"objective"`
	Assessment    string `json:"assessment"`
	Plan          string `json:"plan"`
}

type resultResponse struct {
	ID               string    `json:"id"`
	BookingID        string    `json:"booking_id"`
	ClinicID         string    `json:"clinic_id"`
	PetID            string    `json:"pet_id"`
	UserID           string    `json:"user_id"`
	VisitDate        string    `json:"visit_date"`
	VisitTime        string    `json:"visit_time"`
	TriageScore      int       `json:"triage_score,omitempty"`
	MainDiagnosis    string    `json:"main_diagnosis"`
	Subjective       string    `json:"subjective,omitempty"`
	Objective        string    `json:"objective,omitempty"`
	Assessment       string    `json:"assessment,omitempty"`
	Plan             string    `json:"plan,omitempty"`
	SharedToGuardian bool      `json:"shared_to_guardian"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func transitionHandler(svc *Service, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		bookingID := chi.URLParam(r, "bookingID")

		var err error
		var b bookings.Booking
		switch action {
		case "confirm":
			b, err = svc.Confirm(r.Context(), bookingID, claims.UserID)
		case "cancel":
			b, err = svc.Cancel(r.Context(), bookingID, claims.UserID)
		}
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toTransitionResponse(b))
	}
}

func commitTreatmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req resultRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := svc.CommitTreatment(r.Context(), chi.URLParam(r, "bookingID"), claims.UserID, ResultInput{
			TriageScore:   req.TriageScore,
			MainDiagnosis: req.MainDiagnosis,
			Subjective:    req.Subjective,
			Objective:     req.Objective,
			Assessment:    req.Assessment,
			Plan:          req.Plan,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toResultResponse(res))
	}
}

func shareHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		res, err := svc.ShareToGuardian(r.Context(), chi.URLParam(r, "bookingID"), claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toResultResponse(res))
	}
}

func getResultHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		res, err := svc.GetResult(r.Context(), chi.URLParam(r, "bookingID"), claims.UserID)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toResultResponse(res))
	}
}

func listMyRecordsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListGuardianRecords(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]resultResponse, 0, len(items))
		for _, res := range items {
			out = append(out, toResultResponse(res))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

type transitionResponse struct {
	ID          string          `json:"id"`
	ClinicID    string          `json:"clinic_id"`
	Status      bookings.Status `json:"status"`
	DiagnosisID string          `json:"diagnosis_id,omitempty"`
	Version     int64           `json:"version"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func toTransitionResponse(b bookings.Booking) transitionResponse {
	return transitionResponse{
		ID:          b.ID,
		ClinicID:    b.ClinicID,
		Status:      b.Status,
		DiagnosisID: b.DiagnosisID,
		Version:     b.Version,
		UpdatedAt:   b.UpdatedAt,
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch err {
	case ErrInvalidInput:
		http.Error(w, err.Error(), http.StatusBadRequest)
	case ErrNotFound:
		http.Error(w, "booking not found", http.StatusNotFound)
	case ErrForbidden:
		http.Error(w, "forbidden", http.StatusForbidden)
	case ErrBadState:
		http.Error(w, err.Error(), http.StatusConflict)
	case ErrNoResult:
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toResultResponse(res results.ClinicResult) resultResponse {
	return resultResponse{
		ID:               res.ID,
		BookingID:        res.BookingID,
		ClinicID:         res.ClinicID,
		PetID:            res.PetID,
		UserID:           res.UserID,
		VisitDate:        res.VisitDate,
		VisitTime:        res.VisitTime,
		TriageScore:      res.TriageScore,
		MainDiagnosis:    res.MainDiagnosis,
		Subjective:       res.SOAP.Subjective,
		Objective:        res.SOAP.Objective,
		Assessment:       res.SOAP.Assessment,
		Plan:             res.SOAP.Plan,
		SharedToGuardian: res.SharedToGuardian,
		CreatedAt:        res.CreatedAt,
		UpdatedAt:        res.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
