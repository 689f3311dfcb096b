package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"warbler/internal/model"
)

const messageSelect = `
	SELECT m.id, m.text, m.timestamp, m.user_id,
	       u.username AS author_username, u.image_url AS author_image_url
	FROM messages m
	JOIN users u ON u.id = m.user_id
`

// messageRow is a message joined with its author's display fields.
type messageRow struct {
	model.Message
	AuthorUsername string `db:"author_username"`
	AuthorImageURL string `db:"author_image_url"`
}

func (row messageRow) toModel() model.Message {
	m := row.Message
	m.Author = &model.UserSummary{
		ID:       row.UserID,
		Username: row.AuthorUsername,
		ImageURL: row.AuthorImageURL,
	}
	return m
}

func toMessages(rows []messageRow) []model.Message {
	messages := make([]model.Message, len(rows))
	for i, row := range rows {
		messages[i] = row.toModel()
	}
	return messages
}

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) MessageRepository {
	return &messageRepository{db: db}
}

// Create inserts a message and returns it without author fields.
func (r *messageRepository) Create(ctx context.Context, userID int64, text string) (*model.Message, error) {
	query := `
		INSERT INTO messages (text, user_id)
		VALUES ($1, $2)
		RETURNING id, text, timestamp, user_id
	`
	var m model.Message
	if err := r.db.GetContext(ctx, &m, query, text, userID); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return &m, nil
}

func (r *messageRepository) GetByID(ctx context.Context, messageID int64) (*model.Message, error) {
	var row messageRow
	err := r.db.GetContext(ctx, &row, messageSelect+` WHERE m.id = $1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	m := row.toModel()
	return &m, nil
}

// GetByIDs retrieves messages in the order of messageIDs. Missing IDs are skipped.
// Used for hydrating the home timeline from cache.
func (r *messageRepository) GetByIDs(ctx context.Context, messageIDs []int64) ([]model.Message, error) {
	if len(messageIDs) == 0 {
		return []model.Message{}, nil
	}

	var rows []messageRow
	err := r.db.SelectContext(ctx, &rows, messageSelect+` WHERE m.id = ANY($1)`, pq.Array(messageIDs))
	if err != nil {
		return nil, fmt.Errorf("get messages by ids: %w", err)
	}

	byID := make(map[int64]model.Message, len(rows))
	for _, row := range rows {
		byID[row.ID] = row.toModel()
	}
	ordered := make([]model.Message, 0, len(messageIDs))
	for _, id := range messageIDs {
		if m, ok := byID[id]; ok {
			ordered = append(ordered, m)
		}
	}
	return ordered, nil
}

func (r *messageRepository) GetAuthorID(ctx context.Context, messageID int64) (int64, error) {
	var authorID int64
	err := r.db.GetContext(ctx, &authorID, `SELECT user_id FROM messages WHERE id = $1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, model.ErrMessageNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get author id: %w", err)
	}
	return authorID, nil
}

// ListByUser returns userID's messages, newest first.
func (r *messageRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Message, error) {
	query := messageSelect + `
		WHERE m.user_id = $1
		ORDER BY m.timestamp DESC, m.id DESC
		LIMIT $2
	`
	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, query, userID, limit); err != nil {
		return nil, fmt.Errorf("list messages by user: %w", err)
	}
	return toMessages(rows), nil
}

// ListByAuthors returns messages written by any of authorIDs, newest first.
func (r *messageRepository) ListByAuthors(ctx context.Context, authorIDs []int64, limit int) ([]model.Message, error) {
	if len(authorIDs) == 0 {
		return []model.Message{}, nil
	}

	query := messageSelect + `
		WHERE m.user_id = ANY($1)
		ORDER BY m.timestamp DESC, m.id DESC
		LIMIT $2
	`
	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(authorIDs), limit); err != nil {
		return nil, fmt.Errorf("list messages by authors: %w", err)
	}
	return toMessages(rows), nil
}

// ListLikedBy returns the messages userID has liked, most recently liked first.
func (r *messageRepository) ListLikedBy(ctx context.Context, userID int64) ([]model.Message, error) {
	query := `
		SELECT m.id, m.text, m.timestamp, m.user_id,
		       u.username AS author_username, u.image_url AS author_image_url
		FROM likes l
		JOIN messages m ON m.id = l.message_id
		JOIN users u ON u.id = m.user_id
		WHERE l.user_id = $1
		ORDER BY l.created_at DESC, l.id DESC
	`
	var rows []messageRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("list liked messages: %w", err)
	}
	return toMessages(rows), nil
}

// Delete removes a single message. Its likes must already be gone.
func (r *messageRepository) Delete(ctx context.Context, tx *sqlx.Tx, messageID int64) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, messageID)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrMessageNotFound
	}
	return nil
}

func (r *messageRepository) DeleteByUser(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error) {
	result, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete messages by user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return rows, nil
}
