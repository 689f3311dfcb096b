package service

import (
	"context"

	"go.uber.org/zap"

	"warbler/internal/logging"
	"warbler/internal/model"
	"warbler/internal/repository"
)

type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	timelines  TimelineInvalidator
	logger     *zap.Logger
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	timelines TimelineInvalidator,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		timelines:  timelines,
		logger:     logging.WithComponent("follow_service"),
	}
}

// Follow makes followerID follow followedID. Following someone twice is not an error.
func (s *FollowService) Follow(ctx context.Context, followerID, followedID int64) error {
	if followerID == followedID {
		return model.ErrCannotFollowSelf
	}

	if _, err := s.userRepo.GetByID(ctx, followedID); err != nil {
		return err
	}

	inserted, err := s.followRepo.Create(ctx, followerID, followedID)
	if err != nil {
		return err
	}

	if inserted {
		if s.timelines != nil {
			s.timelines.Invalidate(ctx, followerID)
		}
		s.logger.Info("user followed",
			zap.Int64("follower_id", followerID),
			zap.Int64("followed_id", followedID))
	}
	return nil
}

// Unfollow removes the edge if present. Unfollowing a stranger is not an error.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID int64) error {
	removed, err := s.followRepo.Delete(ctx, followerID, followedID)
	if err != nil {
		return err
	}

	if removed {
		if s.timelines != nil {
			s.timelines.Invalidate(ctx, followerID)
		}
		s.logger.Info("user unfollowed",
			zap.Int64("follower_id", followerID),
			zap.Int64("followed_id", followedID))
	}
	return nil
}

// enrichWithFollowStatus performs one batch check (ANY($2)) to mark which users
// the viewer follows. If the check fails the users are returned unmarked.
func enrichWithFollowStatus(ctx context.Context, followRepo repository.FollowRepository, viewerID int64, users []model.UserSummary) []model.UserSummary {
	if len(users) == 0 {
		return users
	}

	userIDs := make([]int64, len(users))
	for i, user := range users {
		userIDs[i] = user.ID
	}

	followMap, err := followRepo.CheckFollows(ctx, viewerID, userIDs)
	if err != nil {
		return users
	}

	for i := range users {
		users[i].IsFollowing = followMap[users[i].ID]
	}
	return users
}
