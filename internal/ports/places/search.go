package places

import "context"

// Place es un resultado de búsqueda de un proveedor externo de mapas.
type Place struct {
	ID      string
	Name    string
	Address string
	Phone   string
	Lat     float64
	Lng     float64
}

// Searcher busca lugares por keyword cerca de una coordenada.
// La implementación real es el adapter estilo Kakao Local.
type Searcher interface {
	SearchKeyword(ctx context.Context, query string, lat, lng float64, limit int) ([]Place, error)
}
