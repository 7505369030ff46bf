package declaration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"frontera/internal/lifecycle"
	"frontera/pkg/platform/sentinel"
)

// PostgresStore persists declarations. Saves are upserts: the service
// writes the whole record on every mutation.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Save(ctx context.Context, d Declaration) error {
	query := `
		INSERT INTO declarations (id, category, items, traveler, owner_id, status, date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			category = EXCLUDED.category,
			items = EXCLUDED.items,
			traveler = EXCLUDED.traveler,
			owner_id = EXCLUDED.owner_id,
			status = EXCLUDED.status,
			notes = EXCLUDED.notes
	`
	_, err := s.db.ExecContext(ctx, query,
		d.ID, string(d.Category), pq.Array(d.Items), d.Traveler, d.OwnerID, string(d.Status), d.Date, d.Notes,
	)
	if err != nil {
		return fmt.Errorf("upsert declaration: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (Declaration, error) {
	query := `
		SELECT id, category, items, traveler, owner_id, status, date, notes
		FROM declarations WHERE id = $1
	`
	d, err := scanDeclaration(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Declaration{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Declaration{}, fmt.Errorf("select declaration: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Declaration, error) {
	query := `
		SELECT id, category, items, traveler, owner_id, status, date, notes
		FROM declarations ORDER BY date
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select declarations: %w", err)
	}
	defer rows.Close()

	var out []Declaration
	for rows.Next() {
		d, err := scanDeclaration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan declaration: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate declarations: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDeclaration(row rowScanner) (Declaration, error) {
	var d Declaration
	var category, status string
	var items pq.StringArray
	if err := row.Scan(&d.ID, &category, &items, &d.Traveler, &d.OwnerID, &status, &d.Date, &d.Notes); err != nil {
		return Declaration{}, err
	}
	d.Category = Category(category)
	d.Status = lifecycle.Status(status)
	d.Items = items
	return d, nil
}
