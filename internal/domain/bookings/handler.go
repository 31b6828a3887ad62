package bookings

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-clinic-booking/internal/middleware"
)

// StaffDirectory responde si un usuario es staff de una clínica.
type StaffDirectory interface {
	IsStaff(ctx context.Context, clinicID, userID string) (bool, error)
}

func RegisterRoutes(r chi.Router, svc *Service, staff StaffDirectory) {
	r.Route("/bookings", func(br chi.Router) {
		br.Post("/", createBookingHandler(svc))
		br.Get("/{bookingID}", getBookingHandler(svc, staff))
	})
}

// RegisterTriageRoutes expone la consulta libre al backend de triage.
// Separado de RegisterRoutes porque el backend es opcional por config.
func RegisterTriageRoutes(r chi.Router, answerer QuestionAnswerer) {
	r.Post("/triage/question", askQuestionHandler(answerer))
}

type createBookingRequest struct {
	ClinicID   string `json:"clinic_id"`
	ClinicName string `json:"clinic_name"` // legacy
	PetID      string `json:"pet_id"`
	Date       string `json:"date"` // YYYY-MM-DD
	Time       string `json:"time"` // HH:MM
	Message    string `json:"message"`
}

type bookingResponse struct {
	ID          string    `json:"id"`
	ClinicID    string    `json:"clinic_id"`
	ClinicName  string    `json:"clinic_name,omitempty"`
	PetID       string    `json:"pet_id"`
	PetName     string    `json:"pet_name"`
	UserID      string    `json:"user_id"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Status      Status    `json:"status"`
	Message     string    `json:"message,omitempty"`
	TriageScore int       `json:"triage_score,omitempty"`
	AIDiagnosis string    `json:"ai_diagnosis,omitempty"`
	DiagnosisID string    `json:"diagnosis_id,omitempty"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func createBookingHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createBookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		b, err := svc.Create(r.Context(), claims.UserID, CreateInput{
			ClinicID:   req.ClinicID,
			ClinicName: req.ClinicName,
			PetID:      req.PetID,
			Date:       req.Date,
			Time:       req.Time,
			Message:    req.Message,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toBookingResponse(b))
	}
}

func getBookingHandler(svc *Service, staff StaffDirectory) http.HandlerFunc {
	// El guardián dueño siempre puede ver su turno; staff de la clínica también.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		b, err := svc.GetByID(r.Context(), chi.URLParam(r, "bookingID"))
		if err != nil {
			http.Error(w, "booking not found", http.StatusNotFound)
			return
		}

		if b.UserID != claims.UserID {
			isStaff, err := staff.IsStaff(r.Context(), b.ClinicID, claims.UserID)
			if err != nil || !isStaff {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		writeJSON(w, http.StatusOK, toBookingResponse(b))
	}
}

type questionRequest struct {
	Question string `json:"question"`
}

type questionResponse struct {
	Answer string `json:"answer"`
}

func askQuestionHandler(answerer QuestionAnswerer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req questionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Question) == "" {
			http.Error(w, "question required", http.StatusBadRequest)
			return
		}

		answer, err := answerer.Answer(r.Context(), req.Question)
		if err != nil {
			http.Error(w, "triage unavailable", http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusOK, questionResponse{Answer: answer})
	}
}

func toBookingResponse(b Booking) bookingResponse {
	return bookingResponse{
		ID:          b.ID,
		ClinicID:    b.ClinicID,
		ClinicName:  b.ClinicName,
		PetID:       b.PetID,
		PetName:     b.PetName,
		UserID:      b.UserID,
		Date:        b.Date,
		Time:        b.Time,
		Status:      b.Status,
		Message:     b.Message,
		TriageScore: b.TriageScore,
		AIDiagnosis: b.AIDiagnosis,
		DiagnosisID: b.DiagnosisID,
		Version:     b.Version,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en pets/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
