package service

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"warbler/internal/logging"
	"warbler/internal/model"
	"warbler/internal/repository"
)

type LikeService struct {
	likeRepo    repository.LikeRepository
	messageRepo repository.MessageRepository
	tx          repository.Transactor
	logger      *zap.Logger
}

func NewLikeService(
	likeRepo repository.LikeRepository,
	messageRepo repository.MessageRepository,
	tx repository.Transactor,
) *LikeService {
	return &LikeService{
		likeRepo:    likeRepo,
		messageRepo: messageRepo,
		tx:          tx,
		logger:      logging.WithComponent("like_service"),
	}
}

// ToggleLike likes messageID for userID, or removes the like if it exists.
// Returns whether the message is liked after the call.
func (s *LikeService) ToggleLike(ctx context.Context, userID, messageID int64) (bool, error) {
	authorID, err := s.messageRepo.GetAuthorID(ctx, messageID)
	if err != nil {
		return false, err
	}
	if authorID == userID {
		return false, model.ErrCannotLikeOwnMessage
	}

	var liked bool
	err = s.tx.WithinTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		liked, err = s.likeRepo.Toggle(ctx, tx, userID, messageID)
		return err
	})
	if err != nil {
		return false, err
	}

	s.logger.Debug("like toggled",
		zap.Int64("user_id", userID),
		zap.Int64("message_id", messageID),
		zap.Bool("liked", liked))
	return liked, nil
}

// IsLiked reports whether userID has liked messageID.
func (s *LikeService) IsLiked(ctx context.Context, userID, messageID int64) (bool, error) {
	return s.likeRepo.Exists(ctx, userID, messageID)
}

// ListByUser returns the like edges placed by userID, newest first.
func (s *LikeService) ListByUser(ctx context.Context, userID int64) ([]model.Like, error) {
	return s.likeRepo.ListByUser(ctx, userID)
}
