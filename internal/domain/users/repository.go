package users

import "context"

// Repository persiste usuarios. Las implementaciones devuelven ErrNotFound
// para ausencia; cualquier otro error se trata como falla interna.
type Repository interface {
	Create(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}
