package minor

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"frontera/pkg/platform/sentinel"
)

// PostgresStore persists legacy minors. Saves are upserts: the service
// writes the whole record on every mutation.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, m Minor) error {
	query := `
		INSERT INTO minors (id, name, age, guardian, owner_id, status, date, documents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			age = EXCLUDED.age,
			guardian = EXCLUDED.guardian,
			owner_id = EXCLUDED.owner_id,
			status = EXCLUDED.status,
			documents = EXCLUDED.documents
	`
	_, err := s.db.ExecContext(ctx, query,
		m.ID, m.Name, m.Age, m.Guardian, m.OwnerID, m.Status, m.Date, pq.Array(m.Documents),
	)
	if err != nil {
		return fmt.Errorf("upsert minor: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Minor, error) {
	query := `
		SELECT id, name, age, guardian, owner_id, status, date, documents
		FROM minors WHERE id = $1
	`
	var m Minor
	var docs pq.StringArray
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&m.ID, &m.Name, &m.Age, &m.Guardian, &m.OwnerID, &m.Status, &m.Date, &docs)
	if errors.Is(err, sql.ErrNoRows) {
		return Minor{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Minor{}, fmt.Errorf("select minor: %w", err)
	}
	m.Documents = docs
	return m, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Minor, error) {
	query := `
		SELECT id, name, age, guardian, owner_id, status, date, documents
		FROM minors ORDER BY date
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select minors: %w", err)
	}
	defer rows.Close()

	var out []Minor
	for rows.Next() {
		var m Minor
		var docs pq.StringArray
		if err := rows.Scan(&m.ID, &m.Name, &m.Age, &m.Guardian, &m.OwnerID, &m.Status, &m.Date, &docs); err != nil {
			return nil, fmt.Errorf("scan minor: %w", err)
		}
		m.Documents = docs
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate minors: %w", err)
	}
	return out, nil
}

// PostgresTouristStore persists tourist minors; the structured document
// slots are stored as a JSONB column.
type PostgresTouristStore struct {
	db *sql.DB
}

func NewPostgresTouristStore(db *sql.DB) *PostgresTouristStore {
	return &PostgresTouristStore{db: db}
}

func (s *PostgresTouristStore) Save(ctx context.Context, m TouristMinor) error {
	docs, err := json.Marshal(m.Documents)
	if err != nil {
		return fmt.Errorf("marshal documents: %w", err)
	}
	query := `
		INSERT INTO tourist_minors (id, name, age, guardian, is_direct_family, owner_id, status, date, documents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			age = EXCLUDED.age,
			guardian = EXCLUDED.guardian,
			is_direct_family = EXCLUDED.is_direct_family,
			owner_id = EXCLUDED.owner_id,
			status = EXCLUDED.status,
			documents = EXCLUDED.documents
	`
	_, err = s.db.ExecContext(ctx, query,
		m.ID, m.Name, m.Age, m.Guardian, m.IsDirectFamily, m.OwnerID, m.Status, m.Date, docs,
	)
	if err != nil {
		return fmt.Errorf("upsert tourist minor: %w", err)
	}
	return nil
}

func (s *PostgresTouristStore) FindByID(ctx context.Context, id string) (TouristMinor, error) {
	query := `
		SELECT id, name, age, guardian, is_direct_family, owner_id, status, date, documents
		FROM tourist_minors WHERE id = $1
	`
	var m TouristMinor
	var docs []byte
	err := s.db.QueryRowContext(ctx, query, id).
		Scan(&m.ID, &m.Name, &m.Age, &m.Guardian, &m.IsDirectFamily, &m.OwnerID, &m.Status, &m.Date, &docs)
	if errors.Is(err, sql.ErrNoRows) {
		return TouristMinor{}, sentinel.ErrNotFound
	}
	if err != nil {
		return TouristMinor{}, fmt.Errorf("select tourist minor: %w", err)
	}
	// Malformed document payloads degrade to an empty set instead of
	// failing the read.
	_ = json.Unmarshal(docs, &m.Documents)
	return m, nil
}

func (s *PostgresTouristStore) List(ctx context.Context) ([]TouristMinor, error) {
	query := `
		SELECT id, name, age, guardian, is_direct_family, owner_id, status, date, documents
		FROM tourist_minors ORDER BY date
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select tourist minors: %w", err)
	}
	defer rows.Close()

	var out []TouristMinor
	for rows.Next() {
		var m TouristMinor
		var docs []byte
		if err := rows.Scan(&m.ID, &m.Name, &m.Age, &m.Guardian, &m.IsDirectFamily, &m.OwnerID, &m.Status, &m.Date, &docs); err != nil {
			return nil, fmt.Errorf("scan tourist minor: %w", err)
		}
		_ = json.Unmarshal(docs, &m.Documents)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tourist minors: %w", err)
	}
	return out, nil
}
