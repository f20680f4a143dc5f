/**
 * @description
 * Business logic for the zone directory, zone detail resolution and the
 * access gate. The service prefers cached directory entries, enforces the
 * gate rules on join, and keeps the cache coherent with membership changes.
 */
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/amjido-01/cegnal/internal/domain"
	"github.com/amjido-01/cegnal/pkg/rabbitmq"
)

// ZoneRepository defines the zone/membership storage the service needs.
type ZoneRepository interface {
	ListZones(ctx context.Context, userID string, includeAll bool) ([]domain.Zone, error)
	GetZone(ctx context.Context, userID, zoneID string) (*domain.Zone, error)
	AddMember(ctx context.Context, userID, zoneID string) error
	IsMember(ctx context.Context, userID, zoneID string) (bool, error)
	ListZonesByOwner(ctx context.Context, userID, ownerID string) ([]domain.Zone, error)
}

// ZoneEventsExchange is the topic exchange for membership events.
const ZoneEventsExchange = "zone_events"

// ZoneService provides the zone directory, resolver and join operations.
type ZoneService struct {
	repo     ZoneRepository
	cache    DirectoryCache
	producer rabbitmq.Publisher
	logger   *slog.Logger
}

// NewZoneService creates a new zone service. cache and producer may be nil
// in tests; a nil cache disables caching.
func NewZoneService(repo ZoneRepository, cache DirectoryCache, producer rabbitmq.Publisher, logger *slog.Logger) *ZoneService {
	return &ZoneService{repo: repo, cache: cache, producer: producer, logger: logger}
}

// ListZones returns the directory for a scope: ScopeAll tags every zone with
// the caller's membership, ScopeMine returns only joined zones. Results are
// served from the cache within its freshness window.
func (s *ZoneService) ListZones(ctx context.Context, userID, scope string) ([]domain.Zone, error) {
	if scope != ScopeAll {
		scope = ScopeMine
	}
	if s.cache != nil {
		if zones, ok := s.cache.Get(ctx, userID, scope); ok {
			return zones, nil
		}
	}

	zones, err := s.repo.ListZones(ctx, userID, scope == ScopeAll)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, userID, scope, zones)
	}
	return zones, nil
}

// GetZone resolves one zone, preferring an already-cached directory entry
// over a direct fetch. A cached entry may be stale; membership-sensitive
// operations re-check the store instead of calling this.
func (s *ZoneService) GetZone(ctx context.Context, userID, zoneID string) (*domain.Zone, error) {
	if zoneID == "" {
		return nil, fmt.Errorf("zone id is required")
	}
	if s.cache != nil {
		for _, scope := range []string{ScopeAll, ScopeMine} {
			if zones, ok := s.cache.Get(ctx, userID, scope); ok {
				for i := range zones {
					if zones[i].ID == zoneID {
						return &zones[i], nil
					}
				}
			}
		}
	}
	return s.repo.GetZone(ctx, userID, zoneID)
}

// ResolveAccess evaluates the access gate for a zone. Membership is read
// from the store, never from the cache, so the decision is authoritative.
func (s *ZoneService) ResolveAccess(ctx context.Context, userID, zoneID string) (*domain.AccessDecision, error) {
	zone, err := s.repo.GetZone(ctx, userID, zoneID)
	if err != nil {
		return nil, err
	}
	decision := domain.ResolveAccess(*zone)
	return &decision, nil
}

// JoinZone performs the free-join operation under the gate rules: an
// already-joined zone is a no-op success, a paid unjoined zone is refused
// with ErrPaymentRequired. On success the user's directory cache is
// invalidated so hasJoined flips on the next read.
func (s *ZoneService) JoinZone(ctx context.Context, userID, zoneID string) error {
	zone, err := s.repo.GetZone(ctx, userID, zoneID)
	if err != nil {
		return err
	}

	decision := domain.ResolveAccess(*zone)
	switch decision.State {
	case domain.AccessJoined:
		return nil
	case domain.AccessPaidUnjoined:
		return ErrPaymentRequired
	}

	if err := s.repo.AddMember(ctx, userID, zoneID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	s.publishJoined(ctx, userID, zoneID, false)
	return nil
}

// GrantMembership records a paid membership after a verified payment. The
// verify flow owns the payment session; this only handles the membership
// side effects.
func (s *ZoneService) GrantMembership(ctx context.Context, userID, zoneID string) error {
	if err := s.repo.AddMember(ctx, userID, zoneID); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
	s.publishJoined(ctx, userID, zoneID, true)
	return nil
}

// IsMember reports authoritative membership, for chat access checks.
func (s *ZoneService) IsMember(ctx context.Context, userID, zoneID string) (bool, error) {
	return s.repo.IsMember(ctx, userID, zoneID)
}

func (s *ZoneService) publishJoined(ctx context.Context, userID, zoneID string, paid bool) {
	if s.producer == nil {
		return
	}
	event := domain.ZoneJoinedEvent{
		UserID:   userID,
		ZoneID:   zoneID,
		Paid:     paid,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.producer.Publish(ctx, ZoneEventsExchange, "zone.member.joined", event); err != nil {
		s.logger.Error("failed to publish zone.member.joined", "zone_id", zoneID, "error", err)
	}
}
