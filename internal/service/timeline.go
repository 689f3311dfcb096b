package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"

	"warbler/internal/cache"
	"warbler/internal/logging"
	"warbler/internal/metrics"
	"warbler/internal/model"
	"warbler/internal/repository"
)

// TimelineInvalidator drops cached home timelines after writes.
type TimelineInvalidator interface {
	Invalidate(ctx context.Context, userIDs ...int64)
	// InvalidateAudience drops every timeline that can show authorID's messages.
	InvalidateAudience(ctx context.Context, authorID int64)
}

// TimelineService builds the home timeline: the user's own messages plus
// those of everyone they follow, newest first.
type TimelineService struct {
	cache       cache.TimelineCache // nil without Redis
	messageRepo repository.MessageRepository
	followRepo  repository.FollowRepository
	likeRepo    repository.LikeRepository
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewTimelineService(
	timelineCache cache.TimelineCache,
	messageRepo repository.MessageRepository,
	followRepo repository.FollowRepository,
	likeRepo repository.LikeRepository,
	m *metrics.Metrics,
) *TimelineService {
	return &TimelineService{
		cache:       timelineCache,
		messageRepo: messageRepo,
		followRepo:  followRepo,
		likeRepo:    likeRepo,
		metrics:     m,
		logger:      logging.WithComponent("timeline_service"),
	}
}

// Home returns up to model.TimelineLimit messages with IsLiked set for userID.
//
// Flow:
// 1. Without a cache, query Postgres directly
// 2. Cache hit -> hydrate the cached ids
// 3. Cache miss -> query Postgres and warm the cache
// Any cache error falls back to Postgres.
func (s *TimelineService) Home(ctx context.Context, userID int64) ([]model.Message, error) {
	startTime := time.Now()

	messages, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	markLiked(ctx, s.likeRepo, userID, messages)

	s.logger.Debug("home timeline",
		zap.Int64("user_id", userID),
		zap.Int("messages", len(messages)),
		zap.Duration("duration", time.Since(startTime)))
	return messages, nil
}

func (s *TimelineService) load(ctx context.Context, userID int64) ([]model.Message, error) {
	if s.cache == nil {
		return s.query(ctx, userID)
	}

	exists, err := s.cache.Exists(ctx, userID)
	if err != nil {
		s.logger.Warn("cache check failed, using database", zap.Int64("user_id", userID), zap.Error(err))
		s.metrics.RecordTimelineCache("error")
		return s.query(ctx, userID)
	}

	if exists {
		ids, err := s.cache.Get(ctx, userID, model.TimelineLimit)
		if err != nil {
			s.logger.Warn("cache read failed, using database", zap.Int64("user_id", userID), zap.Error(err))
			s.metrics.RecordTimelineCache("error")
			return s.query(ctx, userID)
		}
		s.metrics.RecordTimelineCache("hit")
		messages, err := s.messageRepo.GetByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		sortNewestFirst(messages)
		return messages, nil
	}

	s.metrics.RecordTimelineCache("miss")
	messages, err := s.query(ctx, userID)
	if err != nil {
		return nil, err
	}

	entries := make([]cache.MessageScore, len(messages))
	for i, m := range messages {
		entries[i] = cache.MessageScore{MessageID: m.ID, Timestamp: m.Timestamp.UnixMicro()}
	}
	if err := s.cache.Warm(ctx, userID, entries); err != nil {
		s.logger.Warn("cache warm failed", zap.Int64("user_id", userID), zap.Error(err))
	}
	return messages, nil
}

// sortNewestFirst orders messages the way ListByAuthors does: timestamp
// descending, then id descending.
func sortNewestFirst(messages []model.Message) {
	slices.SortFunc(messages, func(a, b model.Message) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
}

func (s *TimelineService) query(ctx context.Context, userID int64) ([]model.Message, error) {
	authorIDs, err := s.followRepo.GetFollowingIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get following ids: %w", err)
	}
	authorIDs = append(authorIDs, userID)

	messages, err := s.messageRepo.ListByAuthors(ctx, authorIDs, model.TimelineLimit)
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Invalidate drops the cached timelines of userIDs. Failures are logged only;
// the cache TTL bounds any staleness.
func (s *TimelineService) Invalidate(ctx context.Context, userIDs ...int64) {
	if s.cache == nil || len(userIDs) == 0 {
		return
	}
	if err := s.cache.Invalidate(ctx, userIDs...); err != nil {
		s.logger.Warn("cache invalidate failed", zap.Int64s("user_ids", userIDs), zap.Error(err))
	}
}

func (s *TimelineService) InvalidateAudience(ctx context.Context, authorID int64) {
	if s.cache == nil {
		return
	}
	followerIDs, err := s.followRepo.GetFollowerIDs(ctx, authorID)
	if err != nil {
		s.logger.Warn("get follower ids failed", zap.Int64("author_id", authorID), zap.Error(err))
	}
	s.Invalidate(ctx, append(followerIDs, authorID)...)
}
