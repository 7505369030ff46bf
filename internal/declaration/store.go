package declaration

import "context"

// Store persists declarations. Records are never hard-deleted.
type Store interface {
	Save(ctx context.Context, d Declaration) error
	FindByID(ctx context.Context, id string) (Declaration, error)
	List(ctx context.Context) ([]Declaration, error)
}
