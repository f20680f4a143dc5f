package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amjido-01/cegnal/internal/domain"
)

// OnboardingRepository persists per-user onboarding state.
type OnboardingRepository struct {
	db *pgxpool.Pool
}

// NewOnboardingRepository creates a new onboarding repository.
func NewOnboardingRepository(db *pgxpool.Pool) *OnboardingRepository {
	return &OnboardingRepository{db: db}
}

// GetState returns the stored onboarding state, or the initial state when
// none has been saved yet.
func (r *OnboardingRepository) GetState(ctx context.Context, userID string) (domain.OnboardingState, error) {
	var s domain.OnboardingState
	var role *string
	query := `SELECT stage, slide, role FROM onboarding_states WHERE user_id = $1`
	err := r.db.QueryRow(ctx, query, userID).Scan(&s.Stage, &s.Slide, &role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewOnboardingState(), nil
		}
		return domain.OnboardingState{}, err
	}
	if role != nil {
		s.Role = domain.Role(*role)
	}
	return s, nil
}

// SaveState upserts the onboarding state for a user.
func (r *OnboardingRepository) SaveState(ctx context.Context, userID string, s domain.OnboardingState) error {
	var role *string
	if s.Role != "" {
		v := string(s.Role)
		role = &v
	}
	query := `
        INSERT INTO onboarding_states (user_id, stage, slide, role)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id) DO UPDATE SET
            stage = EXCLUDED.stage,
            slide = EXCLUDED.slide,
            role = EXCLUDED.role,
            updated_at = NOW()
    `
	_, err := r.db.Exec(ctx, query, userID, s.Stage, s.Slide, role)
	return err
}
