package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/portfolio-gate/pkg/domain"
)

// ProfilesRepository handles profile document persistence.
type ProfilesRepository struct {
	db *sql.DB
}

// NewProfilesRepository creates a new profiles repository.
func NewProfilesRepository(db *sql.DB) *ProfilesRepository {
	return &ProfilesRepository{db: db}
}

const profileColumns = `id, display_name, email, avatar_url, created_at, last_login, login_count,
		       is_email_verified, details, preferences, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*domain.Profile, error) {
	p := &domain.Profile{}
	var details, prefs []byte
	err := row.Scan(
		&p.ID, &p.DisplayName, &p.Email, &p.AvatarURL, &p.CreatedAt, &p.LastLogin, &p.LoginCount,
		&p.IsEmailVerified, &details, &prefs, &p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProfileNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(details) > 0 {
		if err := json.Unmarshal(details, &p.Details); err != nil {
			return nil, fmt.Errorf("decode profile details: %w", err)
		}
	}
	if len(prefs) > 0 {
		if err := json.Unmarshal(prefs, &p.Preferences); err != nil {
			return nil, fmt.Errorf("decode profile preferences: %w", err)
		}
	}
	return p, nil
}

// Get retrieves a profile by user ID.
func (r *ProfilesRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.db.QueryRowContext(ctx, query, id))
}

// CreateIfAbsent inserts the profile unless one already exists for its ID.
// It reports whether a row was inserted.
func (r *ProfilesRepository) CreateIfAbsent(ctx context.Context, p *domain.Profile) (bool, error) {
	details, err := json.Marshal(p.Details)
	if err != nil {
		return false, err
	}
	prefs, err := json.Marshal(p.Preferences)
	if err != nil {
		return false, err
	}

	query := `
		INSERT INTO profiles (id, display_name, email, avatar_url, created_at, last_login, login_count,
		                      is_email_verified, details, preferences)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
	result, err := r.db.ExecContext(ctx, query,
		p.ID, p.DisplayName, p.Email, p.AvatarURL, p.CreatedAt, p.LastLogin, p.LoginCount,
		p.IsEmailVerified, details, prefs,
	)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

// Update writes the mutable profile fields.
func (r *ProfilesRepository) Update(ctx context.Context, p *domain.Profile) error {
	details, err := json.Marshal(p.Details)
	if err != nil {
		return err
	}
	prefs, err := json.Marshal(p.Preferences)
	if err != nil {
		return err
	}

	query := `
		UPDATE profiles
		SET display_name = $2, avatar_url = $3, details = $4, preferences = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, p.ID, p.DisplayName, p.AvatarURL, details, prefs, p.UpdatedAt)
	if err != nil {
		return err
	}
	return expectRows(result, domain.ErrProfileNotFound)
}

// RecordLogin increments login_count and sets last_login atomically.
func (r *ProfilesRepository) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, emailVerified bool) error {
	query := `
		UPDATE profiles
		SET login_count = login_count + 1,
		    last_login = $2,
		    is_email_verified = $3
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, at, emailVerified)
	if err != nil {
		return err
	}
	return expectRows(result, domain.ErrProfileNotFound)
}

// List returns every profile ordered by creation time.
func (r *ProfilesRepository) List(ctx context.Context) ([]*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
