package model

import (
	"errors"
	"time"
)

// Profile defaults used when a user leaves the image fields empty.
const (
	DefaultImageURL       = "/static/images/default-pic.png"
	DefaultHeaderImageURL = "/static/images/warbler-hero.png"
)

// MinPasswordLength is enforced on signup and login forms.
const MinPasswordLength = 6

// User represents an account in the system
type User struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	Email          string    `db:"email" json:"email"`
	PasswordHashed string    `db:"password" json:"-"` // "-" hides from JSON output
	ImageURL       string    `db:"image_url" json:"image_url"`
	HeaderImageURL string    `db:"header_image_url" json:"header_image_url"`
	Bio            *string   `db:"bio" json:"bio"`
	Location       *string   `db:"location" json:"location"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Summary returns the short form of the user shown in lists and message cards.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		Username: u.Username,
		ImageURL: u.ImageURL,
		Bio:      u.Bio,
	}
}

// UserStats holds the counters shown in a profile header.
type UserStats struct {
	Messages  int `db:"messages" json:"messages"`
	Following int `db:"following" json:"following"`
	Followers int `db:"followers" json:"followers"`
	Likes     int `db:"likes" json:"likes"`
}

// Profile is a user page as seen by an (optional) viewer.
type Profile struct {
	User        *User     `json:"user"`
	Stats       UserStats `json:"stats"`
	IsFollowing bool      `json:"is_following"`
	IsSelf      bool      `json:"is_self"`
}

// SignupRequest represents the data needed to create a new account
type SignupRequest struct {
	Username string `validate:"required,max=50"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
	ImageURL string `validate:"omitempty,url|startswith=/"`
}

// LoginRequest represents the data needed to log in
type LoginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required,min=6"`
}

// UpdateProfileRequest is the edit-profile form. Password must match the stored one.
type UpdateProfileRequest struct {
	Username       string `validate:"required,max=50"`
	Email          string `validate:"required,email"`
	ImageURL       string `validate:"omitempty,url|startswith=/"`
	HeaderImageURL string `validate:"omitempty,url|startswith=/"`
	Bio            string `validate:"max=500"`
	Location       string `validate:"max=100"`
	Password       string `validate:"required"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameExists is returned when attempting to create a user with a taken username
	ErrUsernameExists = errors.New("username already taken")

	// ErrEmailExists is returned when the email address belongs to another account
	ErrEmailExists = errors.New("email already taken")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrIncorrectPassword is returned by profile edit when the confirmation password is wrong
	ErrIncorrectPassword = errors.New("incorrect password")
)
