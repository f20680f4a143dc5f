package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amjido-01/cegnal/internal/domain"
)

// ChatRepository persists zone chat messages.
type ChatRepository struct {
	db *pgxpool.Pool
}

// NewChatRepository creates a new chat repository.
func NewChatRepository(db *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{db: db}
}

// InsertMessage stores one chat message.
func (r *ChatRepository) InsertMessage(ctx context.Context, m *domain.ChatMessage) error {
	query := `
        INSERT INTO chat_messages (id, zone_id, user_id, body, sent_at)
        VALUES ($1, $2, $3, $4, $5)
    `
	_, err := r.db.Exec(ctx, query, m.ID, m.ZoneID, m.UserID, m.Body, m.SentAt)
	return err
}

// ListRecentMessages returns the latest messages for a zone in chronological
// order.
func (r *ChatRepository) ListRecentMessages(ctx context.Context, zoneID string, limit int) ([]domain.ChatMessage, error) {
	query := `
        SELECT c.id, c.zone_id, c.user_id, u.username, c.body, c.sent_at
        FROM (
            SELECT id, zone_id, user_id, body, sent_at
            FROM chat_messages
            WHERE zone_id = $1
            ORDER BY sent_at DESC
            LIMIT $2
        ) c
        JOIN users u ON u.id = c.user_id
        ORDER BY c.sent_at
    `
	rows, err := r.db.Query(ctx, query, zoneID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []domain.ChatMessage{}
	for rows.Next() {
		var m domain.ChatMessage
		if err := rows.Scan(&m.ID, &m.ZoneID, &m.UserID, &m.Username, &m.Body, &m.SentAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
