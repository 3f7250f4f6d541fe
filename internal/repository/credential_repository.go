package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/canvas-gateway-api/internal/models"
)

// CredentialRepository reads per-user Canvas credentials from the users table.
type CredentialRepository struct {
	db *sqlx.DB
}

// NewCredentialRepository constructs the repository.
func NewCredentialRepository(db *sqlx.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// FindByUserID returns the stored credentials, or (nil, nil) when the user has no row.
func (r *CredentialRepository) FindByUserID(ctx context.Context, userID string) (*models.CredentialRecord, error) {
	const query = `SELECT canvas_url, canvas_api_key FROM users WHERE id = $1`
	var record models.CredentialRecord
	if err := r.db.GetContext(ctx, &record, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find canvas credentials: %w", err)
	}
	return &record, nil
}
