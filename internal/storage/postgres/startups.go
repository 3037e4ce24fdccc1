package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"agri-marketplace/internal/models"

	"github.com/google/uuid"
)

type StartupRepository struct {
	db *sql.DB
}

func NewStartupRepository(db *sql.DB) *StartupRepository {
	return &StartupRepository{db: db}
}

// FindByName matches the startup name exactly.
func (r *StartupRepository) FindByName(ctx context.Context, name string) (*models.Startup, error) {
	var (
		s           models.Startup
		contactJSON []byte
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, contact, created_at FROM startups WHERE name = $1`, name,
	).Scan(&s.ID, &s.Name, &contactJSON, &s.CreatedAt)
	if err != nil {
		return nil, notFoundOr(err)
	}
	if err := unmarshalJSON(contactJSON, &s.Contact); err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert creates the startup or refreshes its contact details.
func (r *StartupRepository) Upsert(ctx context.Context, s *models.Startup) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	contact, err := marshalJSON(s.Contact)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO startups (id, name, contact, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (name) DO UPDATE SET contact = EXCLUDED.contact`,
		s.ID, s.Name, contact, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert startup: %w", err)
	}
	return nil
}
