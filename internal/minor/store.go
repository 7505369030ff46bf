package minor

import "context"

// Stores persist travel authorizations. Records are never hard-deleted.
type Store interface {
	Save(ctx context.Context, m Minor) error
	FindByID(ctx context.Context, id string) (Minor, error)
	List(ctx context.Context) ([]Minor, error)
}

type TouristStore interface {
	Save(ctx context.Context, m TouristMinor) error
	FindByID(ctx context.Context, id string) (TouristMinor, error)
	List(ctx context.Context) ([]TouristMinor, error)
}
