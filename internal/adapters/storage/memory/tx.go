package memory

import (
	"context"
	"sync"
)

// Runner in-memory: serializa las unidades atómicas con un lock global.
// No hay rollback (modo dev); la garantía que importa acá es que dos
// workflows no se intercalan.
type Runner struct {
	mu sync.Mutex
}

func NewRunner() *Runner { return &Runner{} }

func (r *Runner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}
