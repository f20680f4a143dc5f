package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amjido-01/cegnal/internal/domain"
)

// PaymentRepository persists payment sessions keyed by provider reference.
type PaymentRepository struct {
	db *pgxpool.Pool
}

// NewPaymentRepository creates a new payment repository.
func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{db: db}
}

const sessionColumns = `id, user_id, zone_id, reference, amount, status, authorization_url, access_code, paid_at, created_at, updated_at`

func scanSession(row pgx.Row) (*domain.PaymentSession, error) {
	var s domain.PaymentSession
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.ZoneID,
		&s.Reference,
		&s.Amount,
		&s.Status,
		&s.AuthorizationURL,
		&s.AccessCode,
		&s.PaidAt,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSession inserts a new initialized session and returns it.
func (r *PaymentRepository) CreateSession(ctx context.Context, s *domain.PaymentSession) (*domain.PaymentSession, error) {
	query := `
        INSERT INTO payment_sessions (user_id, zone_id, reference, amount, status, authorization_url, access_code)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + sessionColumns
	created, err := scanSession(r.db.QueryRow(ctx, query,
		s.UserID, s.ZoneID, s.Reference, s.Amount, s.Status, s.AuthorizationURL, s.AccessCode,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return created, nil
}

// GetSessionByReference looks up a session by its provider reference.
func (r *PaymentRepository) GetSessionByReference(ctx context.Context, reference string) (*domain.PaymentSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM payment_sessions WHERE reference = $1`
	s, err := scanSession(r.db.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentSessionNotFound
		}
		return nil, err
	}
	return s, nil
}

// ResolveSession records the outcome of a verification. Terminal sessions
// are never overwritten, so replaying a verify keeps its first result.
func (r *PaymentRepository) ResolveSession(ctx context.Context, reference string, status domain.PaymentStatus, paidAt *time.Time) error {
	query := `
        UPDATE payment_sessions
        SET status = $2, paid_at = COALESCE($3, paid_at), updated_at = NOW()
        WHERE reference = $1 AND status = $4
    `
	// A zero-row update means the reference is unknown or already terminal;
	// callers distinguish the two via GetSessionByReference.
	_, err := r.db.Exec(ctx, query, reference, status, paidAt, domain.PaymentInitialized)
	return err
}

// ListStaleInitialized returns sessions still initialized after the cutoff,
// for the reconciliation job.
func (r *PaymentRepository) ListStaleInitialized(ctx context.Context, olderThan time.Time, limit int) ([]domain.PaymentSession, error) {
	query := `
        SELECT ` + sessionColumns + `
        FROM payment_sessions
        WHERE status = $1 AND created_at < $2
        ORDER BY created_at
        LIMIT $3
    `
	rows, err := r.db.Query(ctx, query, domain.PaymentInitialized, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []domain.PaymentSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}
