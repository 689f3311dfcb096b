package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"warbler/internal/logging"
	"warbler/internal/model"
	"warbler/internal/repository"
)

type MessageService struct {
	messageRepo repository.MessageRepository
	likeRepo    repository.LikeRepository
	tx          repository.Transactor
	timelines   TimelineInvalidator
	logger      *zap.Logger
}

func NewMessageService(
	messageRepo repository.MessageRepository,
	likeRepo repository.LikeRepository,
	tx repository.Transactor,
	timelines TimelineInvalidator,
) *MessageService {
	return &MessageService{
		messageRepo: messageRepo,
		likeRepo:    likeRepo,
		tx:          tx,
		timelines:   timelines,
		logger:      logging.WithComponent("message_service"),
	}
}

// Create posts a message for userID. Surrounding whitespace is dropped.
func (s *MessageService) Create(ctx context.Context, userID int64, text string) (*model.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, model.ErrMessageTextRequired
	}
	if utf8.RuneCountInString(text) > model.MaxMessageLength {
		return nil, model.ErrMessageTooLong
	}

	msg, err := s.messageRepo.Create(ctx, userID, text)
	if err != nil {
		return nil, err
	}

	if s.timelines != nil {
		s.timelines.InvalidateAudience(ctx, userID)
	}

	s.logger.Info("message created", zap.Int64("message_id", msg.ID), zap.Int64("user_id", userID))
	return msg, nil
}

// GetByID returns the message with its author. IsLiked is set when viewerID is given.
func (s *MessageService) GetByID(ctx context.Context, messageID int64, viewerID *int64) (*model.Message, error) {
	msg, err := s.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	if viewerID != nil {
		liked, err := s.likeRepo.Exists(ctx, *viewerID, messageID)
		if err == nil {
			msg.IsLiked = liked
		}
	}
	return msg, nil
}

// Delete removes a message owned by userID together with its likes.
func (s *MessageService) Delete(ctx context.Context, messageID, userID int64) error {
	authorID, err := s.messageRepo.GetAuthorID(ctx, messageID)
	if err != nil {
		return err
	}
	if authorID != userID {
		return model.ErrNotMessageOwner
	}

	err = s.tx.WithinTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.likeRepo.DeleteByMessage(ctx, tx, messageID); err != nil {
			return err
		}
		return s.messageRepo.Delete(ctx, tx, messageID)
	})
	if err != nil {
		return err
	}

	if s.timelines != nil {
		s.timelines.InvalidateAudience(ctx, userID)
	}

	s.logger.Info("message deleted", zap.Int64("message_id", messageID), zap.Int64("user_id", userID))
	return nil
}

// markLiked sets IsLiked on messages for viewerID with one batch query.
// On failure the messages are left unmarked.
func markLiked(ctx context.Context, likeRepo repository.LikeRepository, viewerID int64, messages []model.Message) {
	if len(messages) == 0 {
		return
	}

	ids := make([]int64, len(messages))
	for i, m := range messages {
		ids[i] = m.ID
	}

	liked, err := likeRepo.CheckLikes(ctx, viewerID, ids)
	if err != nil {
		return
	}
	for i := range messages {
		messages[i].IsLiked = liked[messages[i].ID]
	}
}
