package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"warbler/internal/model"
)

// messages 10 and 11 are written by user 2
func authoredBy2() *mockMessageRepository {
	return &mockMessageRepository{
		getAuthorIDFn: func(ctx context.Context, messageID int64) (int64, error) {
			if messageID == 10 || messageID == 11 {
				return 2, nil
			}
			return 0, model.ErrMessageNotFound
		},
	}
}

func memoryLikes() (*mockLikeRepository, map[[2]int64]bool) {
	edges := make(map[[2]int64]bool)
	return &mockLikeRepository{
		toggleFn: func(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) (bool, error) {
			key := [2]int64{userID, messageID}
			if edges[key] {
				delete(edges, key)
				return false, nil
			}
			edges[key] = true
			return true, nil
		},
		existsFn: func(ctx context.Context, userID, messageID int64) (bool, error) {
			return edges[[2]int64{userID, messageID}], nil
		},
	}, edges
}

func TestLikeService_ToggleLike(t *testing.T) {
	likes, edges := memoryLikes()
	tx := &mockTransactor{}
	svc := NewLikeService(likes, authoredBy2(), tx)
	ctx := context.Background()

	liked, err := svc.ToggleLike(ctx, 1, 10)
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !liked || len(edges) != 1 {
		t.Fatalf("after one toggle liked=%v edges=%d, want true/1", liked, len(edges))
	}
	if ok, _ := svc.IsLiked(ctx, 1, 10); !ok {
		t.Error("IsLiked should be true after one toggle")
	}

	liked, err = svc.ToggleLike(ctx, 1, 10)
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if liked || len(edges) != 0 {
		t.Errorf("after two toggles liked=%v edges=%d, want false/0", liked, len(edges))
	}

	if tx.commits != 2 {
		t.Errorf("commits = %d, want 2", tx.commits)
	}
}

func TestLikeService_ToggleLike_Errors(t *testing.T) {
	tests := []struct {
		name      string
		userID    int64
		messageID int64
		wantErr   error
	}{
		{"own message is refused", 2, 10, model.ErrCannotLikeOwnMessage},
		{"missing message", 1, 99, model.ErrMessageNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			likes, edges := memoryLikes()
			tx := &mockTransactor{}
			svc := NewLikeService(likes, authoredBy2(), tx)

			_, err := svc.ToggleLike(context.Background(), tt.userID, tt.messageID)

			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if len(edges) != 0 || tx.commits != 0 {
				t.Error("no like should be written")
			}
		})
	}
}

func TestLikeService_ToggleLike_RepositoryError(t *testing.T) {
	dbError := errors.New("deadlock detected")
	likes := &mockLikeRepository{
		toggleFn: func(ctx context.Context, tx *sqlx.Tx, userID, messageID int64) (bool, error) {
			return false, dbError
		},
	}
	tx := &mockTransactor{}
	svc := NewLikeService(likes, authoredBy2(), tx)

	_, err := svc.ToggleLike(context.Background(), 1, 11)

	if !errors.Is(err, dbError) {
		t.Errorf("error = %v, want %v", err, dbError)
	}
	if tx.rollback != 1 {
		t.Errorf("rollbacks = %d, want 1", tx.rollback)
	}
}

func TestLikeService_ListByUser(t *testing.T) {
	likes := &mockLikeRepository{
		listByUserFn: func(ctx context.Context, userID int64) ([]model.Like, error) {
			if userID != 1 {
				return nil, nil
			}
			return []model.Like{{UserID: 1, MessageID: 11}, {UserID: 1, MessageID: 10}}, nil
		},
	}
	svc := NewLikeService(likes, authoredBy2(), &mockTransactor{})

	got, err := svc.ListByUser(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 2 || got[0].MessageID != 11 {
		t.Errorf("likes = %+v, want messages 11 then 10", got)
	}
}
