package users

import "context"

type Repository interface {
	// Put crea o actualiza el perfil (el ID viene del proveedor de auth).
	Put(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
}
