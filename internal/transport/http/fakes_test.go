package http

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"warbler/internal/model"
)

// memStore is an in-memory stand-in for Postgres shared by the fake repositories.
type memStore struct {
	mu sync.Mutex

	seq      int64
	clock    time.Time
	users    map[int64]*model.User
	messages map[int64]*model.Message
	follows  map[[2]int64]time.Time // {follower, followed}
	likes    map[[2]int64]*model.Like
}

func newMemStore() *memStore {
	return &memStore{
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:    make(map[int64]*model.User),
		messages: make(map[int64]*model.Message),
		follows:  make(map[[2]int64]time.Time),
		likes:    make(map[[2]int64]*model.Like),
	}
}

// tick returns a fresh id and a strictly increasing timestamp. Callers hold mu.
func (s *memStore) tick() (int64, time.Time) {
	s.seq++
	s.clock = s.clock.Add(time.Second)
	return s.seq, s.clock
}

func (s *memStore) summary(userID int64) *model.UserSummary {
	u, ok := s.users[userID]
	if !ok {
		return nil
	}
	sum := u.Summary()
	return &sum
}

func (s *memStore) withAuthor(m *model.Message) model.Message {
	out := *m
	out.Author = s.summary(m.UserID)
	return out
}

func newestFirst(messages []model.Message) {
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Timestamp.After(messages[j].Timestamp)
	})
}

type fakeTransactor struct{}

func (fakeTransactor) WithinTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

// ===== users =====

type fakeUserRepo struct{ s *memStore }

func (r fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.unique(user); err != nil {
		return err
	}
	user.ID, user.CreatedAt = r.s.tick()
	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

func (r fakeUserRepo) unique(user *model.User) error {
	for _, u := range r.s.users {
		if u.ID == user.ID {
			continue
		}
		if u.Username == user.Username {
			return model.ErrUsernameExists
		}
		if u.Email == user.Email {
			return model.ErrEmailExists
		}
	}
	return nil
}

func (r fakeUserRepo) GetByID(ctx context.Context, id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (r fakeUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (r fakeUserRepo) Search(ctx context.Context, query string) ([]model.UserSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []model.UserSummary
	for _, u := range r.s.users {
		if strings.HasPrefix(strings.ToLower(u.Username), strings.ToLower(query)) {
			out = append(out, u.Summary())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return model.ErrUserNotFound
	}
	if err := r.unique(user); err != nil {
		return err
	}
	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

func (r fakeUserRepo) GetStats(ctx context.Context, userID int64) (*model.UserStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var stats model.UserStats
	for _, m := range r.s.messages {
		if m.UserID == userID {
			stats.Messages++
		}
	}
	for edge := range r.s.follows {
		if edge[0] == userID {
			stats.Following++
		}
		if edge[1] == userID {
			stats.Followers++
		}
	}
	for edge := range r.s.likes {
		if edge[0] == userID {
			stats.Likes++
		}
	}
	return &stats, nil
}

func (r fakeUserRepo) Delete(ctx context.Context, tx *sqlx.Tx, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(r.s.users, id)
	return nil
}

// ===== follows =====

type fakeFollowRepo struct{ s *memStore }

func (r fakeFollowRepo) Create(ctx context.Context, followerID, followedID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := [2]int64{followerID, followedID}
	if _, ok := r.s.follows[key]; ok {
		return false, nil
	}
	_, at := r.s.tick()
	r.s.follows[key] = at
	return true, nil
}

func (r fakeFollowRepo) Delete(ctx context.Context, followerID, followedID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := [2]int64{followerID, followedID}
	if _, ok := r.s.follows[key]; !ok {
		return false, nil
	}
	delete(r.s.follows, key)
	return true, nil
}

func (r fakeFollowRepo) Exists(ctx context.Context, followerID, followedID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, ok := r.s.follows[[2]int64{followerID, followedID}]
	return ok, nil
}

// edges returns the other side of every edge where userID sits at position side, newest first.
func (r fakeFollowRepo) edges(userID int64, side int) []int64 {
	type edge struct {
		other int64
		at    time.Time
	}
	var found []edge
	for key, at := range r.s.follows {
		if key[side] == userID {
			found = append(found, edge{other: key[1-side], at: at})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].at.After(found[j].at) })

	ids := make([]int64, 0, len(found))
	for _, e := range found {
		ids = append(ids, e.other)
	}
	return ids
}

func (r fakeFollowRepo) summaries(ids []int64) []model.UserSummary {
	out := make([]model.UserSummary, 0, len(ids))
	for _, id := range ids {
		if sum := r.s.summary(id); sum != nil {
			out = append(out, *sum)
		}
	}
	return out
}

func (r fakeFollowRepo) GetFollowers(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.summaries(r.edges(userID, 1)), nil
}

func (r fakeFollowRepo) GetFollowing(ctx context.Context, userID int64) ([]model.UserSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.summaries(r.edges(userID, 0)), nil
}

func (r fakeFollowRepo) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.edges(userID, 1), nil
}

func (r fakeFollowRepo) GetFollowingIDs(ctx context.Context, userID int64) ([]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.edges(userID, 0), nil
}

func (r fakeFollowRepo) CheckFollows(ctx context.Context, followerID int64, followedIDs []int64) (map[int64]bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make(map[int64]bool, len(followedIDs))
	for _, id := range followedIDs {
		_, out[id] = r.s.follows[[2]int64{followerID, id}]
	}
	return out, nil
}

func (r fakeFollowRepo) DeleteAllForUser(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for key := range r.s.follows {
		if key[0] == userID || key[1] == userID {
			delete(r.s.follows, key)
			n++
		}
	}
	return n, nil
}

// ===== messages =====

type fakeMessageRepo struct{ s *memStore }

func (r fakeMessageRepo) Create(ctx context.Context, userID int64, text string) (*model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	id, at := r.s.tick()
	m := &model.Message{ID: id, Text: text, Timestamp: at, UserID: userID}
	r.s.messages[id] = m
	out := *m
	return &out, nil
}

func (r fakeMessageRepo) GetByID(ctx context.Context, messageID int64) (*model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.messages[messageID]
	if !ok {
		return nil, model.ErrMessageNotFound
	}
	out := r.s.withAuthor(m)
	return &out, nil
}

func (r fakeMessageRepo) GetByIDs(ctx context.Context, messageIDs []int64) ([]model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]model.Message, 0, len(messageIDs))
	for _, id := range messageIDs {
		if m, ok := r.s.messages[id]; ok {
			out = append(out, r.s.withAuthor(m))
		}
	}
	return out, nil
}

func (r fakeMessageRepo) GetAuthorID(ctx context.Context, messageID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	m, ok := r.s.messages[messageID]
	if !ok {
		return 0, model.ErrMessageNotFound
	}
	return m.UserID, nil
}

func (r fakeMessageRepo) list(keep func(m *model.Message) bool, limit int) []model.Message {
	var out []model.Message
	for _, m := range r.s.messages {
		if keep(m) {
			out = append(out, r.s.withAuthor(m))
		}
	}
	newestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r fakeMessageRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.list(func(m *model.Message) bool { return m.UserID == userID }, limit), nil
}

func (r fakeMessageRepo) ListByAuthors(ctx context.Context, authorIDs []int64, limit int) ([]model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	authors := make(map[int64]bool, len(authorIDs))
	for _, id := range authorIDs {
		authors[id] = true
	}
	return r.list(func(m *model.Message) bool { return authors[m.UserID] }, limit), nil
}

func (r fakeMessageRepo) ListLikedBy(ctx context.Context, userID int64) ([]model.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	return r.list(func(m *model.Message) bool {
		_, ok := r.s.likes[[2]int64{userID, m.ID}]
		return ok
	}, 0), nil
}

func (r fakeMessageRepo) Delete(ctx context.Context, tx *sqlx.Tx, messageID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.messages[messageID]; !ok {
		return model.ErrMessageNotFound
	}
	delete(r.s.messages, messageID)
	return nil
}

func (r fakeMessageRepo) DeleteByUser(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, m := range r.s.messages {
		if m.UserID == userID {
			delete(r.s.messages, id)
			n++
		}
	}
	return n, nil
}

// ===== likes =====

type fakeLikeRepo struct{ s *memStore }

func (r fakeLikeRepo) Toggle(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := [2]int64{userID, messageID}
	if _, ok := r.s.likes[key]; ok {
		delete(r.s.likes, key)
		return false, nil
	}
	id, at := r.s.tick()
	r.s.likes[key] = &model.Like{ID: id, UserID: userID, MessageID: messageID, CreatedAt: at}
	return true, nil
}

func (r fakeLikeRepo) Exists(ctx context.Context, userID, messageID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, ok := r.s.likes[[2]int64{userID, messageID}]
	return ok, nil
}

func (r fakeLikeRepo) ListByUser(ctx context.Context, userID int64) ([]model.Like, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []model.Like
	for key, l := range r.s.likes {
		if key[0] == userID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r fakeLikeRepo) CheckLikes(ctx context.Context, userID int64, messageIDs []int64) (map[int64]bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make(map[int64]bool, len(messageIDs))
	for _, id := range messageIDs {
		_, out[id] = r.s.likes[[2]int64{userID, id}]
	}
	return out, nil
}

func (r fakeLikeRepo) deleteWhere(match func(key [2]int64) bool) int64 {
	var n int64
	for key := range r.s.likes {
		if match(key) {
			delete(r.s.likes, key)
			n++
		}
	}
	return n
}

func (r fakeLikeRepo) DeleteByUser(ctx context.Context, tx *sqlx.Tx, userID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.deleteWhere(func(key [2]int64) bool { return key[0] == userID }), nil
}

func (r fakeLikeRepo) DeleteByMessage(ctx context.Context, tx *sqlx.Tx, messageID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.deleteWhere(func(key [2]int64) bool { return key[1] == messageID }), nil
}

func (r fakeLikeRepo) DeleteOnMessagesOf(ctx context.Context, tx *sqlx.Tx, authorID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.deleteWhere(func(key [2]int64) bool {
		m, ok := r.s.messages[key[1]]
		return ok && m.UserID == authorID
	}), nil
}
