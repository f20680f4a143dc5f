package app

import (
	"context"
	"log/slog"

	"github.com/amjido-01/cegnal/internal/domain"
)

// ProfileRepository defines the read-only profile queries.
type ProfileRepository interface {
	GetAnalystByID(ctx context.Context, id string) (*domain.Profile, error)
	TopProfiles(ctx context.Context, role domain.Role, limit int) ([]domain.Profile, error)
}

// AnalystDetail pairs an analyst profile with their published zones, tagged
// with the caller's membership.
type AnalystDetail struct {
	Analyst domain.Profile `json:"analyst"`
	Zones   []domain.Zone  `json:"zones"`
}

// ProfileService serves analyst and trader display data.
type ProfileService struct {
	profiles ProfileRepository
	zones    ZoneRepository
	logger   *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(profiles ProfileRepository, zones ZoneRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{profiles: profiles, zones: zones, logger: logger}
}

// GetAnalyst returns an analyst and their zones for the given caller.
func (s *ProfileService) GetAnalyst(ctx context.Context, callerID, analystID string) (*AnalystDetail, error) {
	analyst, err := s.profiles.GetAnalystByID(ctx, analystID)
	if err != nil {
		return nil, err
	}
	zones, err := s.zones.ListZonesByOwner(ctx, callerID, analystID)
	if err != nil {
		return nil, err
	}
	return &AnalystDetail{Analyst: *analyst, Zones: zones}, nil
}

// TopAnalysts lists the analysts with the widest membership reach.
func (s *ProfileService) TopAnalysts(ctx context.Context, limit int) ([]domain.Profile, error) {
	return s.profiles.TopProfiles(ctx, domain.RoleAnalyst, limit)
}

// TopTraders lists the most followed traders.
func (s *ProfileService) TopTraders(ctx context.Context, limit int) ([]domain.Profile, error) {
	return s.profiles.TopProfiles(ctx, domain.RoleTrader, limit)
}
