package pets

import "context"

// Repository persiste pets. Los listados vienen ordenados por fecha de
// creación descendente (newest-first). Ausencia => ErrNotFound; cualquier
// otro error es falla interna.
type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Pet, error)
	ListAll(ctx context.Context) ([]Pet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Pet, error)
	ListByAdopter(ctx context.Context, adopterID string) ([]Pet, error)
}
