package documents

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"pet-clinic-booking/internal/middleware"
)

const maxUploadBytes = 10 << 20 // 10MB

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/documents", func(dr chi.Router) {
		dr.Post("/", uploadDocumentHandler(svc))
		dr.Get("/", listDocumentsHandler(svc))
		dr.Get("/{documentID}", getDocumentHandler(svc))
	})
}

type documentResponse struct {
	ID          string    `json:"id"`
	PetID       string    `json:"pet_id,omitempty"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type,omitempty"`
	SizeBytes   int64     `json:"size_bytes"`
	Summary     string    `json:"summary,omitempty"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

func uploadDocumentHandler(svc *Service) http.HandlerFunc {
	// multipart: file + campos pet_id / extracted_text
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			http.Error(w, "invalid multipart form", http.StatusBadRequest)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file is required", http.StatusBadRequest)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		d, err := svc.Upload(r.Context(), claims.UserID, UploadInput{
			PetID:         r.FormValue("pet_id"),
			Filename:      header.Filename,
			ContentType:   header.Header.Get("Content-Type"),
			Data:          data,
			ExtractedText: r.FormValue("extracted_text"),
		})
		if err != nil {
			if err == ErrInvalidInput {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, toDocumentResponse(d))
	}
}

func listDocumentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListByOwner(r.Context(), claims.UserID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]documentResponse, 0, len(items))
		for _, d := range items {
			out = append(out, toDocumentResponse(d))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

func getDocumentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		d, err := svc.GetByID(r.Context(), chi.URLParam(r, "documentID"), claims.UserID)
		if err != nil {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, toDocumentResponse(d))
	}
}

func toDocumentResponse(d Document) documentResponse {
	return documentResponse{
		ID:          d.ID,
		PetID:       d.PetID,
		Filename:    d.Filename,
		ContentType: d.ContentType,
		SizeBytes:   d.SizeBytes,
		Summary:     d.Summary,
		UploadedAt:  d.UploadedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
