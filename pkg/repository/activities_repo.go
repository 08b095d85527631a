package repository

import (
	"context"
	"database/sql"

	"github.com/tendant/portfolio-gate/pkg/domain"
)

// ActivitiesRepository handles the append-only activity log.
type ActivitiesRepository struct {
	db *sql.DB
}

// NewActivitiesRepository creates a new activities repository.
func NewActivitiesRepository(db *sql.DB) *ActivitiesRepository {
	return &ActivitiesRepository{db: db}
}

// Append inserts an activity record.
func (r *ActivitiesRepository) Append(ctx context.Context, rec *domain.ActivityRecord) error {
	query := `
		INSERT INTO user_activities (id, actor, activity, detail, created_at, user_agent, ip)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Actor, rec.Activity, rec.Detail, rec.Timestamp, rec.UserAgent, rec.IP,
	)
	return err
}

// ListByActor returns the newest records for an actor, up to limit.
func (r *ActivitiesRepository) ListByActor(ctx context.Context, actor string, limit int) ([]*domain.ActivityRecord, error) {
	query := `
		SELECT id, actor, activity, detail, created_at, user_agent, ip
		FROM user_activities
		WHERE actor = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, actor, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.ActivityRecord
	for rows.Next() {
		rec := &domain.ActivityRecord{}
		if err := rows.Scan(&rec.ID, &rec.Actor, &rec.Activity, &rec.Detail, &rec.Timestamp, &rec.UserAgent, &rec.IP); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
