package profile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/portfolio-gate/pkg/domain"
	"github.com/tendant/portfolio-gate/pkg/repository"
)

// PostgresStore is the Store backed by the repository layer.
type PostgresStore struct {
	profiles   *repository.ProfilesRepository
	activities *repository.ActivitiesRepository
	pageViews  *repository.PageViewsRepository
	contacts   *repository.ContactSubmissionsRepository
	resets     *repository.PasswordResetsRepository
	now        func() time.Time
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a new Postgres-backed store.
func NewPostgresStore(
	profiles *repository.ProfilesRepository,
	activities *repository.ActivitiesRepository,
	pageViews *repository.PageViewsRepository,
	contacts *repository.ContactSubmissionsRepository,
	resets *repository.PasswordResetsRepository,
) *PostgresStore {
	return &PostgresStore{
		profiles:   profiles,
		activities: activities,
		pageViews:  pageViews,
		contacts:   contacts,
		resets:     resets,
		now:        time.Now,
	}
}

func (s *PostgresStore) GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return s.profiles.Get(ctx, id)
}

func (s *PostgresStore) CreateProfileIfAbsent(ctx context.Context, id uuid.UUID, seed domain.ProfileSeed) (bool, error) {
	return s.profiles.CreateIfAbsent(ctx, newProfile(id, seed, s.now()))
}

func (s *PostgresStore) UpdateProfile(ctx context.Context, id uuid.UUID, patch domain.ProfilePatch) (*domain.Profile, error) {
	p, err := s.profiles.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(p, s.now())
	if err := s.profiles.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PostgresStore) RecordLogin(ctx context.Context, id uuid.UUID, at time.Time, emailVerified bool) error {
	return s.profiles.RecordLogin(ctx, id, at, emailVerified)
}

func (s *PostgresStore) ListProfiles(ctx context.Context) ([]*domain.Profile, error) {
	return s.profiles.List(ctx)
}

func (s *PostgresStore) AppendActivity(ctx context.Context, rec domain.ActivityRecord) error {
	stamp(&rec.ID, &rec.Timestamp, s.now)
	return s.activities.Append(ctx, &rec)
}

func (s *PostgresStore) ListActivities(ctx context.Context, actor string, limit int) ([]*domain.ActivityRecord, error) {
	return s.activities.ListByActor(ctx, actor, activityLimit(limit))
}

func (s *PostgresStore) AppendPageView(ctx context.Context, view domain.PageView) error {
	stamp(&view.ID, &view.Timestamp, s.now)
	return s.pageViews.Append(ctx, &view)
}

func (s *PostgresStore) SaveContactSubmission(ctx context.Context, sub *domain.ContactSubmission) error {
	stamp(&sub.ID, &sub.Timestamp, s.now)
	if sub.Status == "" {
		sub.Status = domain.ContactStatusNew
	}
	return s.contacts.Create(ctx, sub)
}

func (s *PostgresStore) AppendPasswordResetRequest(ctx context.Context, req domain.PasswordResetRequest) error {
	stamp(&req.ID, &req.Timestamp, s.now)
	if req.Status == "" {
		req.Status = domain.PasswordResetStatusRequested
	}
	return s.resets.Append(ctx, &req)
}
