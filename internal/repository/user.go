package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"warbler/internal/model"
)

// Unique constraint names from schema.sql
const (
	constraintUsername = "users_username_key"
	constraintEmail    = "users_email_key"
)

// likeEscaper quotes LIKE wildcards so user input only ever matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const userColumns = `id, username, email, password, image_url, header_image_url, bio, location, created_at`

// userRepository implements UserRepository using sqlx
type userRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// Create inserts a new user into the database
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (username, email, password, image_url, header_image_url, bio, location)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		u.Username,
		u.Email,
		u.PasswordHashed,
		u.ImageURL,
		u.HeaderImageURL,
		u.Bio,
		u.Location,
	)

	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		if uniqueErr := uniqueViolation(err); uniqueErr != nil {
			return uniqueErr
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return &u, nil
}

// GetByUsername retrieves a user by their username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	var u model.User
	err := r.db.GetContext(ctx, &u, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}

	return &u, nil
}

// Search lists users whose username starts with query. An empty query lists everyone.
func (r *userRepository) Search(ctx context.Context, query string) ([]model.UserSummary, error) {
	searchQuery := `
		SELECT id, username, image_url, bio
		FROM users
		WHERE username ILIKE $1 ESCAPE '\'
		ORDER BY username
	`

	var users []model.UserSummary
	err := r.db.SelectContext(ctx, &users, searchQuery, likeEscaper.Replace(query)+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}

	return users, nil
}

// Update writes the editable profile fields.
func (r *userRepository) Update(ctx context.Context, u *model.User) error {
	query := `
		UPDATE users
		SET username = $1, email = $2, image_url = $3, header_image_url = $4, bio = $5, location = $6
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		u.Username, u.Email, u.ImageURL, u.HeaderImageURL, u.Bio, u.Location, u.ID)
	if err != nil {
		if uniqueErr := uniqueViolation(err); uniqueErr != nil {
			return uniqueErr
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) GetStats(ctx context.Context, userID int64) (*model.UserStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM messages WHERE user_id = $1) AS messages,
			(SELECT COUNT(*) FROM follows WHERE user_following_id = $1) AS following,
			(SELECT COUNT(*) FROM follows WHERE user_being_followed_id = $1) AS followers,
			(SELECT COUNT(*) FROM likes WHERE user_id = $1) AS likes
	`
	var stats model.UserStats
	if err := r.db.GetContext(ctx, &stats, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user stats: %w", err)
	}
	return &stats, nil
}

// Delete removes the user row only. Dependent rows must already be gone.
func (r *userRepository) Delete(ctx context.Context, tx *sqlx.Tx, id int64) error {
	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// uniqueViolation maps a users unique-constraint failure to its domain error.
// It returns nil for any other error.
func uniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	switch pqErr.Constraint {
	case constraintUsername:
		return model.ErrUsernameExists
	case constraintEmail:
		return model.ErrEmailExists
	}
	return nil
}
