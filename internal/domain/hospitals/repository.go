package hospitals

import "context"

type Repository interface {
	Create(ctx context.Context, h Hospital) error
	GetByID(ctx context.Context, id string) (Hospital, error)
	List(ctx context.Context) ([]Hospital, error)
}
