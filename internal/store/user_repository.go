package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amjido-01/cegnal/internal/domain"
)

// UserRepository handles account and profile queries.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, username, phone, role, password_hash, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.Phone,
		&u.Role,
		&u.PasswordHash,
		&u.IsActive,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new inactive account and returns its id. A duplicate
// email or username surfaces as ErrDuplicate for the handler's 409.
func (r *UserRepository) CreateUser(ctx context.Context, u *domain.User) (string, error) {
	query := `
        INSERT INTO users (email, username, phone, role, password_hash, is_active)
        VALUES ($1, $2, $3, $4, $5, FALSE)
        RETURNING id
    `
	var id string
	err := r.db.QueryRow(ctx, query, u.Email, u.Username, u.Phone, u.Role, u.PasswordHash).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrDuplicate
		}
		return "", err
	}
	return id, nil
}

// GetUserByEmail fetches an account by email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// GetUserByID fetches an account by id.
func (r *UserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// ActivateUser flips the account active after OTP verification.
func (r *UserRepository) ActivateUser(ctx context.Context, email string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET is_active = TRUE, updated_at = NOW() WHERE email = $1`, email)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, userID, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// GetAnalystByID fetches an analyst profile.
func (r *UserRepository) GetAnalystByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `
        SELECT u.id, u.username, u.email, u.role,
               (SELECT COUNT(*) FROM zones z WHERE z.owner_id = u.id) AS zone_count,
               (SELECT COUNT(*) FROM zone_members m JOIN zones z ON z.id = m.zone_id WHERE z.owner_id = u.id) AS reach
        FROM users u
        WHERE u.id = $1 AND u.role = $2
    `
	var p domain.Profile
	err := r.db.QueryRow(ctx, query, id, domain.RoleAnalyst).Scan(
		&p.ID, &p.Username, &p.Email, &p.Role, &p.ZoneCount, &p.Reach,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &p, nil
}

// TopProfiles lists active profiles of a role ordered by total membership
// reach across their zones.
func (r *UserRepository) TopProfiles(ctx context.Context, role domain.Role, limit int) ([]domain.Profile, error) {
	query := `
        SELECT u.id, u.username, u.email, u.role,
               (SELECT COUNT(*) FROM zones z WHERE z.owner_id = u.id) AS zone_count,
               (SELECT COUNT(*) FROM zone_members m JOIN zones z ON z.id = m.zone_id WHERE z.owner_id = u.id) AS reach
        FROM users u
        WHERE u.role = $1 AND u.is_active
        ORDER BY reach DESC, u.username
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, role, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := []domain.Profile{}
	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.Email, &p.Role, &p.ZoneCount, &p.Reach); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
