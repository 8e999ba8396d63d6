package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// User represents an authenticated community member.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	DisplayName  string     `json:"display_name,omitempty"`
	Email        string     `json:"email,omitempty"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	ClaimsCount  int        `json:"claims_count"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
	RoleUser      = "user"
)

// UnknownUserName is shown in place of a user record that no longer exists.
const UnknownUserName = "Unknown User"

// RoleAtLeast checks if role meets or exceeds the minimum required role.
func RoleAtLeast(role, minimum string) bool {
	levels := map[string]int{
		RoleAdmin:     3,
		RoleModerator: 2,
		RoleUser:      1,
	}
	return levels[role] >= levels[minimum] && levels[minimum] > 0
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleModerator || role == RoleUser
}

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// ValidatePassword checks password strength requirements.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// Display name length bounds, counted in characters after trimming.
const (
	MinDisplayNameLength = 2
	MaxDisplayNameLength = 50
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateProfile checks the self-service profile fields. Both are required.
func ValidateProfile(displayName, email string) error {
	name := strings.TrimSpace(displayName)
	switch n := len([]rune(name)); {
	case n == 0:
		return errors.New("display name is required")
	case n < MinDisplayNameLength:
		return fmt.Errorf("display name must be at least %d characters", MinDisplayNameLength)
	case n > MaxDisplayNameLength:
		return fmt.Errorf("display name must be at most %d characters", MaxDisplayNameLength)
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("email is required")
	}
	if !emailPattern.MatchString(email) {
		return errors.New("invalid email address")
	}
	return nil
}

// AccountStatistics summarises a user's activity for their profile.
type AccountStatistics struct {
	ItemsReported    int `json:"items_reported"`
	ItemsClaimed     int `json:"items_claimed"`
	SuccessfulClaims int `json:"successful_claims"`
	PendingClaims    int `json:"pending_claims"`
}

// PlaceholderUser returns the record substituted for a missing user.
func PlaceholderUser(id int64) *User {
	return &User{ID: id, Username: UnknownUserName, DisplayName: UnknownUserName, Role: RoleUser}
}
