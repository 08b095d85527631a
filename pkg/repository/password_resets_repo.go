package repository

import (
	"context"
	"database/sql"

	"github.com/tendant/portfolio-gate/pkg/domain"
)

// PasswordResetsRepository logs password reset email dispatches.
type PasswordResetsRepository struct {
	db *sql.DB
}

// NewPasswordResetsRepository creates a new password resets repository.
func NewPasswordResetsRepository(db *sql.DB) *PasswordResetsRepository {
	return &PasswordResetsRepository{db: db}
}

// Append inserts a reset request.
func (r *PasswordResetsRepository) Append(ctx context.Context, req *domain.PasswordResetRequest) error {
	query := `
		INSERT INTO password_resets (id, email, created_at, status)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.ExecContext(ctx, query, req.ID, req.Email, req.Timestamp, req.Status)
	return err
}
