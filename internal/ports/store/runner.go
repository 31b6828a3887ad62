package store

import "context"

// Runner ejecuta fn como unidad atómica: o se aplica todo o nada.
// La implementación postgres abre una transacción y la propaga por el
// context; la implementación memory serializa con un lock global.
type Runner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
