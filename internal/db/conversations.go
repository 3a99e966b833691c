package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Conversation is one entry of the correlation index.
type Conversation struct {
	ConversationID  string
	RowID           int
	CandidateName   string
	ConversationURL string
	CreatedAt       time.Time
}

// SaveConversation records the provider conversation against its sheet row.
// A redelivered trigger for the same conversation updates the existing entry.
func (db *DB) SaveConversation(ctx context.Context, conv Conversation) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO conversations (conversation_id, row_id, candidate_name, conversation_url)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (conversation_id) DO UPDATE
		 SET row_id = $2, candidate_name = $3, conversation_url = $4`,
		conv.ConversationID, conv.RowID, conv.CandidateName, conv.ConversationURL,
	)
	if err != nil {
		return fmt.Errorf("failed to save conversation %s: %w", conv.ConversationID, err)
	}
	return nil
}

// FindRowByConversationID resolves a provider conversation ID to its sheet
// row. Unknown IDs yield found == false, not an error.
func (db *DB) FindRowByConversationID(ctx context.Context, conversationID string) (int, bool, error) {
	var rowID int
	err := db.pool.QueryRow(ctx,
		`SELECT row_id FROM conversations WHERE conversation_id = $1`,
		conversationID,
	).Scan(&rowID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to look up conversation %s: %w", conversationID, err)
	}
	return rowID, true, nil
}

// GetConversation returns the full index entry, or nil when not found.
func (db *DB) GetConversation(ctx context.Context, conversationID string) (*Conversation, error) {
	var conv Conversation
	err := db.pool.QueryRow(ctx,
		`SELECT conversation_id, row_id, candidate_name, conversation_url, created_at
		 FROM conversations WHERE conversation_id = $1`,
		conversationID,
	).Scan(&conv.ConversationID, &conv.RowID, &conv.CandidateName, &conv.ConversationURL, &conv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation %s: %w", conversationID, err)
	}
	return &conv, nil
}
