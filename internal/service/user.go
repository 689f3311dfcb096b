package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"warbler/internal/logging"
	"warbler/internal/model"
	"warbler/internal/repository"
)

// UserService handles business logic for user operations
type UserService struct {
	repo        repository.UserRepository
	followRepo  repository.FollowRepository
	messageRepo repository.MessageRepository
	likeRepo    repository.LikeRepository
	tx          repository.Transactor
	timelines   TimelineInvalidator
	logger      *zap.Logger
}

func NewUserService(
	repo repository.UserRepository,
	followRepo repository.FollowRepository,
	messageRepo repository.MessageRepository,
	likeRepo repository.LikeRepository,
	tx repository.Transactor,
	timelines TimelineInvalidator,
) *UserService {
	return &UserService{
		repo:        repo,
		followRepo:  followRepo,
		messageRepo: messageRepo,
		likeRepo:    likeRepo,
		tx:          tx,
		timelines:   timelines,
		logger:      logging.WithComponent("user_service"),
	}
}

// Signup hashes the password and creates the account.
// A taken username or email yields ErrUsernameExists or ErrEmailExists.
func (s *UserService) Signup(ctx context.Context, req *model.SignupRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if len(req.Password) < model.MinPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters", model.MinPasswordLength)
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:       username,
		Email:          strings.TrimSpace(req.Email),
		PasswordHashed: hashedPassword,
		ImageURL:       orDefault(req.ImageURL, model.DefaultImageURL),
		HeaderImageURL: model.DefaultHeaderImageURL,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrUsernameExists) || errors.Is(err, model.ErrEmailExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user signed up", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

// Authenticate returns the user whose username and password match.
// Every failure, including lookup errors, is reported as ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			s.logger.Error("user lookup failed", zap.String("username", username), zap.Error(err))
		}
		return nil, model.ErrInvalidCredentials
	}

	if !CheckPassword(user.PasswordHashed, password) {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// IsFollowing reports whether userID follows otherID.
func (s *UserService) IsFollowing(ctx context.Context, userID, otherID int64) (bool, error) {
	return s.followRepo.Exists(ctx, userID, otherID)
}

// IsFollowedBy reports whether otherID follows userID.
func (s *UserService) IsFollowedBy(ctx context.Context, userID, otherID int64) (bool, error) {
	return s.followRepo.Exists(ctx, otherID, userID)
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Messages returns the user's newest messages.
func (s *UserService) Messages(ctx context.Context, userID int64, viewerID *int64) ([]model.Message, error) {
	messages, err := s.messageRepo.ListByUser(ctx, userID, model.TimelineLimit)
	if err != nil {
		return nil, err
	}
	if viewerID != nil {
		markLiked(ctx, s.likeRepo, *viewerID, messages)
	}
	return messages, nil
}

// Followers returns the users following userID.
func (s *UserService) Followers(ctx context.Context, userID int64, viewerID *int64) ([]model.UserSummary, error) {
	users, err := s.followRepo.GetFollowers(ctx, userID)
	if err != nil {
		return nil, err
	}
	if viewerID != nil {
		users = enrichWithFollowStatus(ctx, s.followRepo, *viewerID, users)
	}
	return users, nil
}

// Following returns the users userID follows.
func (s *UserService) Following(ctx context.Context, userID int64, viewerID *int64) ([]model.UserSummary, error) {
	users, err := s.followRepo.GetFollowing(ctx, userID)
	if err != nil {
		return nil, err
	}
	if viewerID != nil {
		users = enrichWithFollowStatus(ctx, s.followRepo, *viewerID, users)
	}
	return users, nil
}

// Likes returns the messages userID has liked, most recently liked first.
func (s *UserService) Likes(ctx context.Context, userID int64, viewerID *int64) ([]model.Message, error) {
	messages, err := s.messageRepo.ListLikedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	if viewerID != nil {
		markLiked(ctx, s.likeRepo, *viewerID, messages)
	}
	return messages, nil
}

// GetProfile retrieves a user with their counters and, for a logged-in viewer,
// whether the viewer follows them. A failed follow check leaves IsFollowing false.
func (s *UserService) GetProfile(ctx context.Context, userID int64, viewerID *int64) (*model.Profile, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.repo.GetStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{
		User:  user,
		Stats: *stats,
	}

	if viewerID != nil {
		profile.IsSelf = *viewerID == userID
		if !profile.IsSelf {
			isFollowing, err := s.followRepo.Exists(ctx, *viewerID, userID)
			if err == nil {
				profile.IsFollowing = isFollowing
			}
		}
	}

	return profile, nil
}

// Search finds users whose username starts with query.
func (s *UserService) Search(ctx context.Context, query string, viewerID *int64) ([]model.UserSummary, error) {
	users, err := s.repo.Search(ctx, strings.TrimSpace(query))
	if err != nil {
		return nil, err
	}
	if viewerID != nil {
		users = enrichWithFollowStatus(ctx, s.followRepo, *viewerID, users)
	}
	return users, nil
}

// UpdateProfile applies the edit form after re-checking the user's password.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !CheckPassword(user.PasswordHashed, req.Password) {
		return nil, model.ErrIncorrectPassword
	}

	user.Username = strings.TrimSpace(req.Username)
	user.Email = strings.TrimSpace(req.Email)
	user.ImageURL = orDefault(req.ImageURL, model.DefaultImageURL)
	user.HeaderImageURL = orDefault(req.HeaderImageURL, model.DefaultHeaderImageURL)
	user.Bio = optional(req.Bio)
	user.Location = optional(req.Location)

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("profile updated", zap.Int64("user_id", userID))
	return user, nil
}

// Delete removes the user and everything that references them in one transaction:
// likes they placed, likes on their messages, follow edges in both directions,
// their messages, then the user row.
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		return err
	}

	// Followers' timelines show this user's messages
	followerIDs, err := s.followRepo.GetFollowerIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("get follower ids: %w", err)
	}

	var counts struct{ likesGiven, likesReceived, follows, messages int64 }
	err = s.tx.WithinTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if counts.likesGiven, err = s.likeRepo.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		if counts.likesReceived, err = s.likeRepo.DeleteOnMessagesOf(ctx, tx, userID); err != nil {
			return err
		}
		if counts.follows, err = s.followRepo.DeleteAllForUser(ctx, tx, userID); err != nil {
			return err
		}
		if counts.messages, err = s.messageRepo.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		return s.repo.Delete(ctx, tx, userID)
	})
	if err != nil {
		return err
	}

	if s.timelines != nil {
		s.timelines.Invalidate(ctx, append(followerIDs, userID)...)
	}

	s.logger.Info("user deleted",
		zap.Int64("user_id", userID),
		zap.Int64("likes_given", counts.likesGiven),
		zap.Int64("likes_received", counts.likesReceived),
		zap.Int64("follows", counts.follows),
		zap.Int64("messages", counts.messages))
	return nil
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func optional(value string) *string {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}
	return &v
}
