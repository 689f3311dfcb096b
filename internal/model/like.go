package model

import (
	"errors"
	"time"
)

// Like marks a message as liked by a user. One row per (user, message) pair.
type Like struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	MessageID int64     `db:"message_id" json:"message_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

var (
	ErrCannotLikeOwnMessage = errors.New("cannot like your own message")
)
