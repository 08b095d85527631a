package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/tendant/portfolio-gate/pkg/domain"
)

// ContactSubmissionsRepository stores contact form submissions.
type ContactSubmissionsRepository struct {
	db *sql.DB
}

// NewContactSubmissionsRepository creates a new contact submissions repository.
func NewContactSubmissionsRepository(db *sql.DB) *ContactSubmissionsRepository {
	return &ContactSubmissionsRepository{db: db}
}

// Create inserts a submission.
func (r *ContactSubmissionsRepository) Create(ctx context.Context, s *domain.ContactSubmission) error {
	fields, err := json.Marshal(s.Fields)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO contact_submissions (id, name, email, subject, message, fields, created_at, status, replied,
		                                 user_id, user_email, user_agent, referrer)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Email, s.Subject, s.Message, fields, s.Timestamp, s.Status, s.Replied,
		s.Requester.UserID, s.Requester.UserEmail, s.Requester.UserAgent, s.Requester.Referrer,
	)
	return err
}
