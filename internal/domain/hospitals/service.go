package hospitals

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"pet-clinic-booking/internal/ports/places"
	"pet-clinic-booking/internal/platform/logger"
)

type Service struct {
	repo     Repository
	searcher places.Searcher // opcional: proveedor externo de lugares
	log      logger.Logger
	now      func() time.Time
}

func NewService(repo Repository, searcher places.Searcher, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		searcher: searcher,
		log:      log,
		now:      time.Now,
	}
}

type CreateInput struct {
	Name    string
	Address string
	Phone   string
	Lat     float64
	Lng     float64
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Hospital, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Hospital{}, ErrInvalidInput
	}

	h := Hospital{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(in.Name),
		Address:   strings.TrimSpace(in.Address),
		Phone:     strings.TrimSpace(in.Phone),
		Lat:       in.Lat,
		Lng:       in.Lng,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, h); err != nil {
		return Hospital{}, err
	}
	return h, nil
}

// Nearest lista hospitales ordenados por distancia asc al punto dado.
// Si hay proveedor externo configurado, sus resultados se mezclan con los
// locales (dedupe por nombre+dirección); si falla, se sigue solo con lo
// local: degradación silenciosa, no error.
func (s *Service) Nearest(ctx context.Context, lat, lng float64, query string, limit int) ([]Nearby, error) {
	if limit <= 0 {
		limit = 20
	}

	local, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Nearby, 0, len(local))
	seen := map[string]struct{}{}

	for _, h := range local {
		out = append(out, Nearby{
			Hospital:   h,
			DistanceKm: DistanceInKm(lat, lng, h.Lat, h.Lng),
		})
		seen[dedupeKey(h.Name, h.Address)] = struct{}{}
	}

	if s.searcher != nil && strings.TrimSpace(query) != "" {
		remote, rerr := s.searcher.SearchKeyword(ctx, query, lat, lng, limit)
		if rerr != nil {
			s.log.Warn("places search failed, serving local only", map[string]any{"err": rerr.Error()})
		}
		for _, p := range remote {
			if _, dup := seen[dedupeKey(p.Name, p.Address)]; dup {
				continue
			}
			out = append(out, Nearby{
				Hospital: Hospital{
					ID:      p.ID,
					Name:    p.Name,
					Address: p.Address,
					Phone:   p.Phone,
					Lat:     p.Lat,
					Lng:     p.Lng,
				},
				DistanceKm: DistanceInKm(lat, lng, p.Lat, p.Lng),
			})
		}
	}

	// Más cercano primero; desempate por nombre para salida estable.
	sort.Slice(out, func(i, j int) bool {
		if out[i].DistanceKm != out[j].DistanceKm {
			return out[i].DistanceKm < out[j].DistanceKm
		}
		return out[i].Name < out[j].Name
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func dedupeKey(name, address string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(address))
}
