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

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle flips the (userID, messageID) like inside tx.
// A concurrent duplicate insert is absorbed by likes_user_message_key.
func (r *likeRepository) Toggle(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) (bool, error) {
	result, err := tx.ExecContext(ctx,
		`DELETE FROM likes WHERE user_id = $1 AND message_id = $2`, userID, messageID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	if rows > 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO likes (user_id, message_id)
		VALUES ($1, $2)
		ON CONFLICT ON CONSTRAINT likes_user_message_key DO NOTHING
	`, userID, messageID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}
	return true, nil
}

func (r *likeRepository) Exists(ctx context.Context, userID, messageID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM likes WHERE user_id = $1 AND message_id = $2)`, userID, messageID)
	if err != nil {
		return false, fmt.Errorf("check like existence: %w", err)
	}
	return exists, nil
}

func (r *likeRepository) ListByUser(ctx context.Context, userID int64) ([]model.Like, error) {
	query := `
		SELECT id, user_id, message_id, created_at
		FROM likes
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	var likes []model.Like
	if err := r.db.SelectContext(ctx, &likes, query, userID); err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	return likes, nil
}

// CheckLikes checks which messages the user has liked.
// Returns a map of message_id -> liked (true/false).
func (r *likeRepository) CheckLikes(ctx context.Context, userID int64, messageIDs []int64) (map[int64]bool, error) {
	if len(messageIDs) == 0 {
		return make(map[int64]bool), nil
	}

	query := `SELECT message_id FROM likes WHERE user_id = $1 AND message_id = ANY($2)`
	var likedIDs []int64
	err := r.db.SelectContext(ctx, &likedIDs, query, userID, pq.Array(messageIDs))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("check likes: %w", err)
	}

	result := make(map[int64]bool)
	for _, id := range messageIDs {
		result[id] = false
	}
	for _, id := range likedIDs {
		result[id] = true
	}
	return result, nil
}

func (r *likeRepository) DeleteByUser(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error) {
	return execCount(ctx, tx, `DELETE FROM likes WHERE user_id = $1`, userID)
}

func (r *likeRepository) DeleteByMessage(ctx context.Context, tx *sqlx.Tx, messageID int64) (int64, error) {
	return execCount(ctx, tx, `DELETE FROM likes WHERE message_id = $1`, messageID)
}

func (r *likeRepository) DeleteOnMessagesOf(ctx context.Context, tx *sqlx.Tx, authorID int64) (int64, error) {
	query := `DELETE FROM likes WHERE message_id IN (SELECT id FROM messages WHERE user_id = $1)`
	return execCount(ctx, tx, query, authorID)
}

func execCount(ctx context.Context, tx *sqlx.Tx, query string, args ...interface{}) (int64, error) {
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete likes: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return rows, nil
}
