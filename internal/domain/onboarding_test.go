package domain

import (
	"errors"
	"testing"
)

func TestOnboardingHappyPath(t *testing.T) {
	s := NewOnboardingState()
	if s.Stage != StageSplash {
		t.Fatalf("expected fresh state on splash, got %s", s.Stage)
	}

	s, err := s.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if s.Stage != StageSlides || s.Slide != 0 {
		t.Fatalf("expected first slide, got stage=%s slide=%d", s.Stage, s.Slide)
	}

	// Walk through every slide; the final advance lands on role selection.
	for i := 1; i < OnboardingSlideCount; i++ {
		s, err = s.Advance()
		if err != nil {
			t.Fatalf("advance to slide %d: %v", i, err)
		}
		if s.Slide != i {
			t.Fatalf("expected slide %d, got %d", i, s.Slide)
		}
	}
	s, err = s.Advance()
	if err != nil {
		t.Fatalf("advance past last slide: %v", err)
	}
	if s.Stage != StageRoleSelection {
		t.Fatalf("expected role selection, got %s", s.Stage)
	}

	s, err = s.SelectRole(RoleTrader)
	if err != nil {
		t.Fatalf("select role: %v", err)
	}
	if s.Stage != StageRoleSelection {
		t.Fatalf("selecting a role must stay on role selection, got %s", s.Stage)
	}

	s, err = s.Complete()
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !s.Completed() {
		t.Fatalf("expected completed state, got %s", s.Stage)
	}
}

func TestOnboardingBackStopsAtFirstSlide(t *testing.T) {
	s, err := NewOnboardingState().Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	s, err = s.Back()
	if err != nil {
		t.Fatalf("back on first slide: %v", err)
	}
	if s.Slide != 0 {
		t.Fatalf("back must clamp at slide 0, got %d", s.Slide)
	}
}

func TestOnboardingSkip(t *testing.T) {
	tests := []struct {
		name    string
		state   OnboardingState
		wantErr bool
	}{
		{name: "skip from splash", state: OnboardingState{Stage: StageSplash}},
		{name: "skip from a slide", state: OnboardingState{Stage: StageSlides, Slide: 1}},
		{name: "skip from role selection rejected", state: OnboardingState{Stage: StageRoleSelection}, wantErr: true},
		{name: "skip after completion rejected", state: OnboardingState{Stage: StageComplete}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.state.Skip()
			if tt.wantErr {
				if !errors.Is(err, ErrOnboardingTransition) {
					t.Fatalf("expected transition error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("skip: %v", err)
			}
			if got.Stage != StageRoleSelection || got.Slide != 0 {
				t.Fatalf("expected role selection after skip, got stage=%s slide=%d", got.Stage, got.Slide)
			}
		})
	}
}

func TestOnboardingInvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		run  func() error
	}{
		{name: "begin twice", run: func() error {
			s, _ := NewOnboardingState().Begin()
			_, err := s.Begin()
			return err
		}},
		{name: "advance from splash", run: func() error {
			_, err := NewOnboardingState().Advance()
			return err
		}},
		{name: "complete without role", run: func() error {
			_, err := OnboardingState{Stage: StageRoleSelection}.Complete()
			return err
		}},
		{name: "select role after completion", run: func() error {
			_, err := OnboardingState{Stage: StageComplete, Role: RoleTrader}.SelectRole(RoleAnalyst)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, ErrOnboardingTransition) {
				t.Fatalf("expected transition error, got %v", err)
			}
		})
	}
}

func TestSelectRoleRejectsUnknownRole(t *testing.T) {
	_, err := OnboardingState{Stage: StageRoleSelection}.SelectRole("ADMIN")
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}
