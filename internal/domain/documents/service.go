package documents

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-clinic-booking/internal/platform/blob"
	"pet-clinic-booking/internal/platform/logger"
)

// Parser resume el texto extraído del documento (modelo generativo).
type Parser interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type Service struct {
	repo   Repository
	blobs  blob.Store
	parser Parser // puede ser nil
	log    logger.Logger
	now    func() time.Time
}

func NewService(repo Repository, blobs blob.Store, parser Parser, log logger.Logger) *Service {
	return &Service{
		repo:   repo,
		blobs:  blobs,
		parser: parser,
		log:    log,
		now:    time.Now,
	}
}

type UploadInput struct {
	PetID       string
	Filename    string
	ContentType string
	Data        []byte
	// ExtractedText es el texto OCR que ya extrajo el cliente; si viene,
	// se le pide al parser un resumen estructurado.
	ExtractedText string
}

func (s *Service) Upload(ctx context.Context, ownerUserID string, in UploadInput) (Document, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" || strings.TrimSpace(in.Filename) == "" || len(in.Data) == 0 {
		return Document{}, ErrInvalidInput
	}

	id := uuid.NewString()
	key := fmt.Sprintf("documents/%s/%s", ownerUserID, id)

	info, err := s.blobs.Put(ctx, key, bytes.NewReader(in.Data), in.ContentType)
	if err != nil {
		return Document{}, err
	}

	// Resumen best-effort: si el parser falla el documento se guarda igual.
	summary := ""
	if s.parser != nil && strings.TrimSpace(in.ExtractedText) != "" {
		prompt := "다음 반려동물 진료 기록 텍스트에서 진단명, 처방, 날짜를 요약해 주세요:\n\n" + in.ExtractedText
		out, perr := s.parser.GenerateText(ctx, prompt)
		if perr != nil {
			s.log.Warn("document parse failed", map[string]any{"doc": id, "err": perr.Error()})
		} else {
			summary = strings.TrimSpace(out)
		}
	}

	d := Document{
		ID:          id,
		OwnerUserID: ownerUserID,
		PetID:       strings.TrimSpace(in.PetID),
		Filename:    strings.TrimSpace(in.Filename),
		ContentType: in.ContentType,
		BlobKey:     key,
		SizeBytes:   info.Size,
		Summary:     summary,
		UploadedAt:  s.now(),
	}

	if err := s.repo.Create(ctx, d); err != nil {
		// metadata falló: el blob queda huérfano, se limpia best-effort
		_ = s.blobs.Delete(ctx, key)
		return Document{}, err
	}

	return d, nil
}

func (s *Service) GetByID(ctx context.Context, id, ownerUserID string) (Document, error) {
	d, err := s.repo.GetByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return Document{}, ErrNotFound
	}
	if d.OwnerUserID != strings.TrimSpace(ownerUserID) {
		return Document{}, ErrNotFound
	}
	return d, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerUserID string) ([]Document, error) {
	return s.repo.ListByOwner(ctx, strings.TrimSpace(ownerUserID))
}
