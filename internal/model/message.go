package model

import (
	"errors"
	"time"
)

// Message is a short post ("warble") owned by exactly one user.
type Message struct {
	ID        int64     `db:"id" json:"id"`
	Text      string    `db:"text" json:"text"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
	UserID    int64     `db:"user_id" json:"user_id"`

	// Joined fields (not in messages table)
	Author  *UserSummary `json:"author,omitempty"`
	IsLiked bool         `json:"is_liked"`
}

// CreateMessageRequest is the new-message form.
type CreateMessageRequest struct {
	Text string `validate:"required,max=140"`
}

// MaxMessageLength matches the messages.text column width.
const MaxMessageLength = 140

// TimelineLimit is the number of messages on the home page.
const TimelineLimit = 100

// Message errors
var (
	ErrMessageNotFound     = errors.New("message not found")
	ErrNotMessageOwner     = errors.New("not the owner of this message")
	ErrMessageTextRequired = errors.New("message text is required")
	ErrMessageTooLong      = errors.New("message text too long")
)
