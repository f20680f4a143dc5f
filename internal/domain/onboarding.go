package domain

import (
	"errors"
	"fmt"
)

// OnboardingStage is the current phase of the device onboarding flow.
type OnboardingStage string

const (
	StageSplash        OnboardingStage = "splash"
	StageSlides        OnboardingStage = "onboarding"
	StageRoleSelection OnboardingStage = "role_selection"
	StageComplete      OnboardingStage = "complete"
)

// OnboardingSlideCount is the number of intro slides shown before role
// selection.
const OnboardingSlideCount = 3

// ErrOnboardingTransition is returned when a transition is requested from a
// stage that does not allow it.
var ErrOnboardingTransition = errors.New("invalid onboarding transition")

// OnboardingState is the persisted onboarding position for a user. The flow
// is linear: splash -> slides -> role selection -> complete. Completion flags
// are only ever set by the Complete transition, so a failed registration
// leaves the state untouched.
type OnboardingState struct {
	Stage OnboardingStage `json:"stage"`
	Slide int             `json:"slide"`
	Role  Role            `json:"role,omitempty"`
}

// NewOnboardingState returns the initial state for a fresh device.
func NewOnboardingState() OnboardingState {
	return OnboardingState{Stage: StageSplash}
}

// Begin leaves the splash screen for the first slide.
func (s OnboardingState) Begin() (OnboardingState, error) {
	if s.Stage != StageSplash {
		return s, fmt.Errorf("%w: begin from %s", ErrOnboardingTransition, s.Stage)
	}
	s.Stage = StageSlides
	s.Slide = 0
	return s, nil
}

// Advance moves to the next slide; past the last slide it lands on role
// selection.
func (s OnboardingState) Advance() (OnboardingState, error) {
	if s.Stage != StageSlides {
		return s, fmt.Errorf("%w: advance from %s", ErrOnboardingTransition, s.Stage)
	}
	if s.Slide+1 >= OnboardingSlideCount {
		s.Stage = StageRoleSelection
		s.Slide = 0
		return s, nil
	}
	s.Slide++
	return s, nil
}

// Back steps to the previous slide, never past slide zero.
func (s OnboardingState) Back() (OnboardingState, error) {
	if s.Stage != StageSlides {
		return s, fmt.Errorf("%w: back from %s", ErrOnboardingTransition, s.Stage)
	}
	if s.Slide > 0 {
		s.Slide--
	}
	return s, nil
}

// Skip jumps straight to role selection from the splash or any slide.
func (s OnboardingState) Skip() (OnboardingState, error) {
	if s.Stage != StageSplash && s.Stage != StageSlides {
		return s, fmt.Errorf("%w: skip from %s", ErrOnboardingTransition, s.Stage)
	}
	s.Stage = StageRoleSelection
	s.Slide = 0
	return s, nil
}

// SelectRole records the chosen role while staying on role selection; the
// flow only completes once registration succeeds.
func (s OnboardingState) SelectRole(role Role) (OnboardingState, error) {
	if s.Stage != StageRoleSelection {
		return s, fmt.Errorf("%w: select role from %s", ErrOnboardingTransition, s.Stage)
	}
	if !role.Valid() {
		return s, fmt.Errorf("unknown role %q", role)
	}
	s.Role = role
	return s, nil
}

// Complete marks onboarding finished. It requires a selected role.
func (s OnboardingState) Complete() (OnboardingState, error) {
	if s.Stage != StageRoleSelection {
		return s, fmt.Errorf("%w: complete from %s", ErrOnboardingTransition, s.Stage)
	}
	if s.Role == "" {
		return s, fmt.Errorf("%w: complete without role", ErrOnboardingTransition)
	}
	s.Stage = StageComplete
	return s, nil
}

// Completed reports whether the device has finished onboarding.
func (s OnboardingState) Completed() bool {
	return s.Stage == StageComplete
}
