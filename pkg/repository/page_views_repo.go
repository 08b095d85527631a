package repository

import (
	"context"
	"database/sql"

	"github.com/tendant/portfolio-gate/pkg/domain"
)

// PageViewsRepository handles the append-only page view log.
type PageViewsRepository struct {
	db *sql.DB
}

// NewPageViewsRepository creates a new page views repository.
func NewPageViewsRepository(db *sql.DB) *PageViewsRepository {
	return &PageViewsRepository{db: db}
}

// Append inserts a page view.
func (r *PageViewsRepository) Append(ctx context.Context, v *domain.PageView) error {
	query := `
		INSERT INTO page_views (id, actor, path, created_at, user_agent, referrer)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, v.ID, v.Actor, v.Path, v.Timestamp, v.UserAgent, v.Referrer)
	return err
}
