package vehicle

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"frontera/internal/lifecycle"
	"frontera/pkg/platform/sentinel"
)

// PostgresStore persists vehicles relationally. Saves are upserts: the
// service layer writes the whole record on every mutation, matching the
// flush-on-every-change persistence model.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, v Vehicle) error {
	query := `
		INSERT INTO vehicles (id, plate, type, owner, owner_id, status, date, documents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			plate = EXCLUDED.plate,
			type = EXCLUDED.type,
			owner = EXCLUDED.owner,
			owner_id = EXCLUDED.owner_id,
			status = EXCLUDED.status,
			documents = EXCLUDED.documents
	`
	_, err := s.db.ExecContext(ctx, query,
		v.ID, v.Plate, v.Type, v.Owner, v.OwnerID, string(v.Status), v.Date, pq.Array(v.Documents),
	)
	if err != nil {
		return fmt.Errorf("upsert vehicle: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Vehicle, error) {
	query := `
		SELECT id, plate, type, owner, owner_id, status, date, documents
		FROM vehicles WHERE id = $1
	`
	var v Vehicle
	var status string
	var docs pq.StringArray
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&v.ID, &v.Plate, &v.Type, &v.Owner, &v.OwnerID, &status, &v.Date, &docs)
	if errors.Is(err, sql.ErrNoRows) {
		return Vehicle{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Vehicle{}, fmt.Errorf("select vehicle: %w", err)
	}
	v.Status = lifecycle.Status(status)
	v.Documents = docs
	return v, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Vehicle, error) {
	query := `
		SELECT id, plate, type, owner, owner_id, status, date, documents
		FROM vehicles ORDER BY date
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select vehicles: %w", err)
	}
	defer rows.Close()

	var out []Vehicle
	for rows.Next() {
		var v Vehicle
		var status string
		var docs pq.StringArray
		if err := rows.Scan(&v.ID, &v.Plate, &v.Type, &v.Owner, &v.OwnerID, &status, &v.Date, &docs); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		v.Status = lifecycle.Status(status)
		v.Documents = docs
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}
	return out, nil
}

// PostgresTouristStore persists tourist vehicles; the structured document
// slots are stored as a JSONB column.
type PostgresTouristStore struct {
	db *sql.DB
}

func NewPostgresTouristStore(db *sql.DB) *PostgresTouristStore {
	return &PostgresTouristStore{db: db}
}

func (s *PostgresTouristStore) Save(ctx context.Context, v TouristVehicle) error {
	docs, err := json.Marshal(v.Documents)
	if err != nil {
		return fmt.Errorf("marshal documents: %w", err)
	}
	query := `
		INSERT INTO tourist_vehicles (id, plate, type, owner, owner_id, status, date, documents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			plate = EXCLUDED.plate,
			type = EXCLUDED.type,
			owner = EXCLUDED.owner,
			owner_id = EXCLUDED.owner_id,
			status = EXCLUDED.status,
			documents = EXCLUDED.documents
	`
	_, err = s.db.ExecContext(ctx, query,
		v.ID, v.Plate, v.Type, v.Owner, v.OwnerID, v.Status, v.Date, docs,
	)
	if err != nil {
		return fmt.Errorf("upsert tourist vehicle: %w", err)
	}
	return nil
}

func (s *PostgresTouristStore) FindByID(ctx context.Context, id string) (TouristVehicle, error) {
	query := `
		SELECT id, plate, type, owner, owner_id, status, date, documents
		FROM tourist_vehicles WHERE id = $1
	`
	var v TouristVehicle
	var docs []byte
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&v.ID, &v.Plate, &v.Type, &v.Owner, &v.OwnerID, &v.Status, &v.Date, &docs)
	if errors.Is(err, sql.ErrNoRows) {
		return TouristVehicle{}, sentinel.ErrNotFound
	}
	if err != nil {
		return TouristVehicle{}, fmt.Errorf("select tourist vehicle: %w", err)
	}
	// Malformed document payloads degrade to an empty set instead of
	// failing the read.
	_ = json.Unmarshal(docs, &v.Documents)
	return v, nil
}

func (s *PostgresTouristStore) List(ctx context.Context) ([]TouristVehicle, error) {
	query := `
		SELECT id, plate, type, owner, owner_id, status, date, documents
		FROM tourist_vehicles ORDER BY date
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select tourist vehicles: %w", err)
	}
	defer rows.Close()

	var out []TouristVehicle
	for rows.Next() {
		var v TouristVehicle
		var docs []byte
		if err := rows.Scan(&v.ID, &v.Plate, &v.Type, &v.Owner, &v.OwnerID, &v.Status, &v.Date, &docs); err != nil {
			return nil, fmt.Errorf("scan tourist vehicle: %w", err)
		}
		_ = json.Unmarshal(docs, &v.Documents)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tourist vehicles: %w", err)
	}
	return out, nil
}
