package service

import (
	"context"

	"github.com/jmoiron/sqlx"

	"warbler/internal/model"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Each mock implements a repository interface with optional function fields.
// A test sets only the functions it cares about; the rest return zero values.
// Calls that matter for ordering are appended to a shared callLog.

type callLog []string

func (l *callLog) add(name string) {
	if l != nil {
		*l = append(*l, name)
	}
}

type mockUserRepository struct {
	createFn        func(ctx context.Context, user *model.User) error
	getByIDFn       func(ctx context.Context, id int64) (*model.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*model.User, error)
	searchFn        func(ctx context.Context, query string) ([]model.UserSummary, error)
	updateFn        func(ctx context.Context, user *model.User) error
	getStatsFn      func(ctx context.Context, userID int64) (*model.UserStats, error)
	deleteFn        func(ctx context.Context, tx *sqlx.Tx, id int64) error

	calls       *callLog
	createCalls []*model.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) Search(ctx context.Context, query string) ([]model.UserSummary, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query)
	}
	return nil, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *model.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetStats(ctx context.Context, userID int64) (*model.UserStats, error) {
	if m.getStatsFn != nil {
		return m.getStatsFn(ctx, userID)
	}
	return &model.UserStats{}, nil
}

func (m *mockUserRepository) Delete(ctx context.Context, tx *sqlx.Tx, id int64) error {
	m.calls.add("users.Delete")
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, id)
	}
	return nil
}

type mockFollowRepository struct {
	createFn           func(ctx context.Context, followerID, followedID int64) (bool, error)
	deleteFn           func(ctx context.Context, followerID, followedID int64) (bool, error)
	existsFn           func(ctx context.Context, followerID, followedID int64) (bool, error)
	getFollowersFn     func(ctx context.Context, userID int64) ([]model.UserSummary, error)
	getFollowingFn     func(ctx context.Context, userID int64) ([]model.UserSummary, error)
	getFollowerIDsFn   func(ctx context.Context, userID int64) ([]int64, error)
	getFollowingIDsFn  func(ctx context.Context, userID int64) ([]int64, error)
	checkFollowsFn     func(ctx context.Context, followerID int64, followedIDs []int64) (map[int64]bool, error)
	deleteAllForUserFn func(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error)

	calls *callLog
}

func (m *mockFollowRepository) Create(ctx context.Context, followerID, followedID int64) (bool, error) {
	if m.createFn != nil {
		return m.createFn(ctx, followerID, followedID)
	}
	return true, nil
}

func (m *mockFollowRepository) Delete(ctx context.Context, followerID, followedID int64) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, followerID, followedID)
	}
	return true, nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followedID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followedID)
	}
	return false, nil
}

func (m *mockFollowRepository) GetFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	if m.getFollowersFn != nil {
		return m.getFollowersFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) GetFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	if m.getFollowingFn != nil {
		return m.getFollowingFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFollowerIDsFn != nil {
		return m.getFollowerIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) GetFollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFollowingIDsFn != nil {
		return m.getFollowingIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) CheckFollows(ctx context.Context, followerID int64, followedIDs []int64) (map[int64]bool, error) {
	if m.checkFollowsFn != nil {
		return m.checkFollowsFn(ctx, followerID, followedIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockFollowRepository) DeleteAllForUser(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error) {
	m.calls.add("follows.DeleteAllForUser")
	if m.deleteAllForUserFn != nil {
		return m.deleteAllForUserFn(ctx, tx, userID)
	}
	return 0, nil
}

type mockMessageRepository struct {
	createFn        func(ctx context.Context, userID int64, text string) (*model.Message, error)
	getByIDFn       func(ctx context.Context, messageID int64) (*model.Message, error)
	getByIDsFn      func(ctx context.Context, messageIDs []int64) ([]model.Message, error)
	getAuthorIDFn   func(ctx context.Context, messageID int64) (int64, error)
	listByUserFn    func(ctx context.Context, userID int64, limit int) ([]model.Message, error)
	listByAuthorsFn func(ctx context.Context, authorIDs []int64, limit int) ([]model.Message, error)
	listLikedByFn   func(ctx context.Context, userID int64) ([]model.Message, error)
	deleteFn        func(ctx context.Context, tx *sqlx.Tx, messageID int64) error
	deleteByUserFn  func(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error)

	calls *callLog
}

func (m *mockMessageRepository) Create(ctx context.Context, userID int64, text string) (*model.Message, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, text)
	}
	return &model.Message{ID: 1, UserID: userID, Text: text}, nil
}

func (m *mockMessageRepository) GetByID(ctx context.Context, messageID int64) (*model.Message, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, messageID)
	}
	return nil, model.ErrMessageNotFound
}

func (m *mockMessageRepository) GetByIDs(ctx context.Context, messageIDs []int64) ([]model.Message, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, messageIDs)
	}
	return []model.Message{}, nil
}

func (m *mockMessageRepository) GetAuthorID(ctx context.Context, messageID int64) (int64, error) {
	if m.getAuthorIDFn != nil {
		return m.getAuthorIDFn(ctx, messageID)
	}
	return 0, model.ErrMessageNotFound
}

func (m *mockMessageRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Message, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockMessageRepository) ListByAuthors(ctx context.Context, authorIDs []int64, limit int) ([]model.Message, error) {
	if m.listByAuthorsFn != nil {
		return m.listByAuthorsFn(ctx, authorIDs, limit)
	}
	return []model.Message{}, nil
}

func (m *mockMessageRepository) ListLikedBy(ctx context.Context, userID int64) ([]model.Message, error) {
	if m.listLikedByFn != nil {
		return m.listLikedByFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockMessageRepository) Delete(ctx context.Context, tx *sqlx.Tx, messageID int64) error {
	m.calls.add("messages.Delete")
	if m.deleteFn != nil {
		return m.deleteFn(ctx, tx, messageID)
	}
	return nil
}

func (m *mockMessageRepository) DeleteByUser(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error) {
	m.calls.add("messages.DeleteByUser")
	if m.deleteByUserFn != nil {
		return m.deleteByUserFn(ctx, tx, userID)
	}
	return 0, nil
}

type mockLikeRepository struct {
	toggleFn             func(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) (bool, error)
	existsFn             func(ctx context.Context, userID, messageID int64) (bool, error)
	listByUserFn         func(ctx context.Context, userID int64) ([]model.Like, error)
	checkLikesFn         func(ctx context.Context, userID int64, messageIDs []int64) (map[int64]bool, error)
	deleteByUserFn       func(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error)
	deleteByMessageFn    func(ctx context.Context, tx *sqlx.Tx, messageID int64) (int64, error)
	deleteOnMessagesOfFn func(ctx context.Context, tx *sqlx.Tx, authorID int64) (int64, error)

	calls *callLog
}

func (m *mockLikeRepository) Toggle(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) (bool, error) {
	if m.toggleFn != nil {
		return m.toggleFn(ctx, tx, userID, messageID)
	}
	return true, nil
}

func (m *mockLikeRepository) Exists(ctx context.Context, userID, messageID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, userID, messageID)
	}
	return false, nil
}

func (m *mockLikeRepository) ListByUser(ctx context.Context, userID int64) ([]model.Like, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockLikeRepository) CheckLikes(ctx context.Context, userID int64, messageIDs []int64) (map[int64]bool, error) {
	if m.checkLikesFn != nil {
		return m.checkLikesFn(ctx, userID, messageIDs)
	}
	return map[int64]bool{}, nil
}

func (m *mockLikeRepository) DeleteByUser(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error) {
	m.calls.add("likes.DeleteByUser")
	if m.deleteByUserFn != nil {
		return m.deleteByUserFn(ctx, tx, userID)
	}
	return 0, nil
}

func (m *mockLikeRepository) DeleteByMessage(ctx context.Context, tx *sqlx.Tx, messageID int64) (int64, error) {
	m.calls.add("likes.DeleteByMessage")
	if m.deleteByMessageFn != nil {
		return m.deleteByMessageFn(ctx, tx, messageID)
	}
	return 0, nil
}

func (m *mockLikeRepository) DeleteOnMessagesOf(ctx context.Context, tx *sqlx.Tx, authorID int64) (int64, error) {
	m.calls.add("likes.DeleteOnMessagesOf")
	if m.deleteOnMessagesOfFn != nil {
		return m.deleteOnMessagesOfFn(ctx, tx, authorID)
	}
	return 0, nil
}

// mockTransactor runs fn with a nil tx. The mocks above never touch it.
type mockTransactor struct {
	calls    *callLog
	commits  int
	rollback int
}

func (m *mockTransactor) WithinTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	m.calls.add("tx.Begin")
	if err := fn(nil); err != nil {
		m.rollback++
		m.calls.add("tx.Rollback")
		return err
	}
	m.commits++
	m.calls.add("tx.Commit")
	return nil
}

// recordingInvalidator captures timeline invalidations.
type recordingInvalidator struct {
	invalidated []int64
	audiences   []int64
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, userIDs ...int64) {
	r.invalidated = append(r.invalidated, userIDs...)
}

func (r *recordingInvalidator) InvalidateAudience(ctx context.Context, authorID int64) {
	r.audiences = append(r.audiences, authorID)
}
