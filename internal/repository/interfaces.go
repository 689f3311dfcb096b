package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"warbler/internal/model"
)

// Transactor runs fn inside a database transaction. The transaction is committed
// when fn returns nil and rolled back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	Search(ctx context.Context, query string) ([]model.UserSummary, error)
	Update(ctx context.Context, user *model.User) error
	GetStats(ctx context.Context, userID int64) (*model.UserStats, error)
	Delete(ctx context.Context, tx *sqlx.Tx, id int64) error
}

type FollowRepository interface {
	// Create inserts the edge; false means it already existed.
	Create(ctx context.Context, followerID, followedID int64) (bool, error)
	// Delete removes the edge; false means there was nothing to remove.
	Delete(ctx context.Context, followerID, followedID int64) (bool, error)
	Exists(ctx context.Context, followerID, followedID int64) (bool, error)
	GetFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error)
	GetFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error)
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	GetFollowingIDs(ctx context.Context, userID int64) ([]int64, error)
	CheckFollows(ctx context.Context, followerID int64, followedIDs []int64) (map[int64]bool, error)
	DeleteAllForUser(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error)
}

type MessageRepository interface {
	Create(ctx context.Context, userID int64, text string) (*model.Message, error)
	GetByID(ctx context.Context, messageID int64) (*model.Message, error)
	GetByIDs(ctx context.Context, messageIDs []int64) ([]model.Message, error)
	GetAuthorID(ctx context.Context, messageID int64) (int64, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.Message, error)
	ListByAuthors(ctx context.Context, authorIDs []int64, limit int) ([]model.Message, error)
	ListLikedBy(ctx context.Context, userID int64) ([]model.Message, error)
	Delete(ctx context.Context, tx *sqlx.Tx, messageID int64) error
	DeleteByUser(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error)
}

type LikeRepository interface {
	// Toggle removes the like if present, otherwise adds it. Returns true when the
	// message is liked after the call.
	Toggle(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) (bool, error)
	Exists(ctx context.Context, userID, messageID int64) (bool, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Like, error)
	CheckLikes(ctx context.Context, userID int64, messageIDs []int64) (map[int64]bool, error)
	DeleteByUser(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error)
	DeleteByMessage(ctx context.Context, tx *sqlx.Tx, messageID int64) (int64, error)
	// DeleteOnMessagesOf removes every like placed on messages written by authorID.
	DeleteOnMessagesOf(ctx context.Context, tx *sqlx.Tx, authorID int64) (int64, error)
}
