package vehicle

import "context"

// Stores are interface-driven so the in-memory implementation backs the
// tests and development wiring while PostgreSQL backs a real deployment.
// Records are never hard-deleted; no store exposes a delete.
type Store interface {
	Save(ctx context.Context, v Vehicle) error
	FindByID(ctx context.Context, id string) (Vehicle, error)
	List(ctx context.Context) ([]Vehicle, error)
}

type TouristStore interface {
	Save(ctx context.Context, v TouristVehicle) error
	FindByID(ctx context.Context, id string) (TouristVehicle, error)
	List(ctx context.Context) ([]TouristVehicle, error)
}
