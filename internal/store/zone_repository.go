package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amjido-01/cegnal/internal/domain"
)

// ZoneRepository handles zone and membership queries.
type ZoneRepository struct {
	db *pgxpool.Pool
}

// NewZoneRepository creates a new zone repository.
func NewZoneRepository(db *pgxpool.Pool) *ZoneRepository {
	return &ZoneRepository{db: db}
}

const zoneColumns = `
    z.id, z.zone_name, z.description, z.is_paid, z.price, z.owner_id,
    (SELECT COUNT(*) FROM zone_members m WHERE m.zone_id = z.id) AS no_of_members,
    EXISTS (SELECT 1 FROM zone_members m WHERE m.zone_id = z.id AND m.user_id = $1) AS has_joined
`

func scanZone(row pgx.Row) (*domain.Zone, error) {
	var z domain.Zone
	err := row.Scan(
		&z.ID,
		&z.ZoneName,
		&z.Description,
		&z.IsPaid,
		&z.Price,
		&z.OwnerID,
		&z.NoOfMembers,
		&z.HasJoined,
	)
	if err != nil {
		return nil, err
	}
	return &z, nil
}

// ListZones returns zones visible to the user. With includeAll true every
// zone is returned, each tagged with the caller's membership; otherwise only
// the zones the caller has joined. Order is stable and server-determined.
func (r *ZoneRepository) ListZones(ctx context.Context, userID string, includeAll bool) ([]domain.Zone, error) {
	query := fmt.Sprintf(`SELECT %s FROM zones z`, zoneColumns)
	if !includeAll {
		query += ` WHERE EXISTS (SELECT 1 FROM zone_members m WHERE m.zone_id = z.id AND m.user_id = $1)`
	}
	query += ` ORDER BY z.created_at DESC, z.id`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	zones := []domain.Zone{}
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, *z)
	}
	return zones, rows.Err()
}

// GetZone fetches one zone by id with the caller's membership flag.
func (r *ZoneRepository) GetZone(ctx context.Context, userID, zoneID string) (*domain.Zone, error) {
	query := fmt.Sprintf(`SELECT %s FROM zones z WHERE z.id = $2`, zoneColumns)
	z, err := scanZone(r.db.QueryRow(ctx, query, userID, zoneID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrZoneNotFound
		}
		return nil, err
	}
	return z, nil
}

// AddMember records the user's membership of a zone. Re-joining is a no-op,
// which keeps the join operation safely retriable.
func (r *ZoneRepository) AddMember(ctx context.Context, userID, zoneID string) error {
	query := `
        INSERT INTO zone_members (zone_id, user_id)
        VALUES ($1, $2)
        ON CONFLICT (zone_id, user_id) DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, zoneID, userID)
	return err
}

// IsMember reports whether the user has joined the zone.
func (r *ZoneRepository) IsMember(ctx context.Context, userID, zoneID string) (bool, error) {
	var joined bool
	query := `SELECT EXISTS (SELECT 1 FROM zone_members WHERE zone_id = $1 AND user_id = $2)`
	if err := r.db.QueryRow(ctx, query, zoneID, userID).Scan(&joined); err != nil {
		return false, err
	}
	return joined, nil
}

// ListZonesByOwner returns the zones published by an analyst, with the
// caller's membership flags.
func (r *ZoneRepository) ListZonesByOwner(ctx context.Context, userID, ownerID string) ([]domain.Zone, error) {
	query := fmt.Sprintf(`SELECT %s FROM zones z WHERE z.owner_id = $2 ORDER BY z.created_at DESC, z.id`, zoneColumns)
	rows, err := r.db.Query(ctx, query, userID, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	zones := []domain.Zone{}
	for rows.Next() {
		z, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, *z)
	}
	return zones, rows.Err()
}
