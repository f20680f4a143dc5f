package app

import (
	"context"
	"fmt"

	"github.com/amjido-01/cegnal/internal/domain"
)

// OnboardingRepository persists onboarding state per user.
type OnboardingRepository interface {
	GetState(ctx context.Context, userID string) (domain.OnboardingState, error)
	SaveState(ctx context.Context, userID string, s domain.OnboardingState) error
}

// Onboarding transition names accepted by PUT /user/onboarding.
const (
	OnboardingBegin      = "begin"
	OnboardingAdvance    = "advance"
	OnboardingBack       = "back"
	OnboardingSkip       = "skip"
	OnboardingSelectRole = "select_role"
	OnboardingComplete   = "complete"
)

// OnboardingService applies onboarding transitions against stored state.
type OnboardingService struct {
	repo OnboardingRepository
}

// NewOnboardingService creates a new onboarding service.
func NewOnboardingService(repo OnboardingRepository) *OnboardingService {
	return &OnboardingService{repo: repo}
}

// Get returns the current onboarding state for a user.
func (s *OnboardingService) Get(ctx context.Context, userID string) (domain.OnboardingState, error) {
	return s.repo.GetState(ctx, userID)
}

// Apply runs one named transition and persists the result. Invalid
// transitions leave the stored state untouched.
func (s *OnboardingService) Apply(ctx context.Context, userID, action string, role domain.Role) (domain.OnboardingState, error) {
	state, err := s.repo.GetState(ctx, userID)
	if err != nil {
		return domain.OnboardingState{}, err
	}

	var next domain.OnboardingState
	switch action {
	case OnboardingBegin:
		next, err = state.Begin()
	case OnboardingAdvance:
		next, err = state.Advance()
	case OnboardingBack:
		next, err = state.Back()
	case OnboardingSkip:
		next, err = state.Skip()
	case OnboardingSelectRole:
		next, err = state.SelectRole(role)
	case OnboardingComplete:
		next, err = state.Complete()
	default:
		return state, fmt.Errorf("unknown onboarding action %q", action)
	}
	if err != nil {
		return state, err
	}

	if err := s.repo.SaveState(ctx, userID, next); err != nil {
		return state, err
	}
	return next, nil
}
