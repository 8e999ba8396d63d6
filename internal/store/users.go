package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

const userColumns = `id, username, display_name, email, password_hash, role, claims_count, created_at, deleted_at`

// CreateUser creates a new user.
func CreateUser(ctx context.Context, db Querier, username, displayName, email, passwordHash, role string) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (username, display_name, email, password_hash, role) VALUES (?, ?, ?, ?, ?)`,
		username, displayName, email, passwordHash, role,
	)
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

func scanUser(row scanner) (*model.User, error) {
	u := &model.User{}
	var displayName, email sql.NullString
	if err := row.Scan(&u.ID, &u.Username, &displayName, &email, &u.PasswordHash, &u.Role,
		&u.ClaimsCount, &u.CreatedAt, &u.DeletedAt); err != nil {
		return nil, err
	}
	u.DisplayName = displayName.String
	u.Email = email.String
	return u, nil
}

// GetUser returns a user by ID.
func GetUser(ctx context.Context, db Querier, id int64) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByUsername returns an active user by username, or a soft-deleted one
// when no active user holds the name (used by auth checks).
func GetUserByUsername(ctx context.Context, db Querier, username string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = ?
		 ORDER BY deleted_at IS NOT NULL, id DESC LIMIT 1`, username,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by username: %w", err)
	}
	return u, nil
}

// ListUsers returns non-deleted users, optionally only those with the given role.
func ListUsers(ctx context.Context, db Querier, role string) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE deleted_at IS NULL`
	var args []any
	if role != "" {
		query += ` AND role = ?`
		args = append(args, role)
	}
	query += ` ORDER BY id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUser updates a user's role.
func UpdateUser(ctx context.Context, db Querier, id int64, role string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE id = ? AND deleted_at IS NULL`,
		role, id,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	return nil
}

// UpdateUserProfile sets a user's display name and email. It reports false
// when the user does not exist or was deleted.
func UpdateUserProfile(ctx context.Context, db Querier, id int64, displayName, email string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET display_name = ?, email = ? WHERE id = ? AND deleted_at IS NULL`,
		displayName, email, id,
	)
	if err != nil {
		return false, fmt.Errorf("updating user profile: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating user profile: %w", err)
	}
	return n == 1, nil
}

// GetAccountStatistics counts the items a user reported and the claims they
// filed. Deleted items still count as reported.
func GetAccountStatistics(ctx context.Context, db Querier, userID int64) (*model.AccountStatistics, error) {
	s := &model.AccountStatistics{}
	err := db.QueryRowContext(ctx,
		`SELECT
		     (SELECT COUNT(*) FROM items WHERE reported_by = ?),
		     (SELECT COUNT(*) FROM claims WHERE claimant_id = ?),
		     (SELECT COUNT(*) FROM claims WHERE claimant_id = ? AND status = ?),
		     (SELECT COUNT(*) FROM claims WHERE claimant_id = ? AND status = ?)`,
		userID, userID, userID, model.ClaimStatusApproved, userID, model.ClaimStatusPending,
	).Scan(&s.ItemsReported, &s.ItemsClaimed, &s.SuccessfulClaims, &s.PendingClaims)
	if err != nil {
		return nil, fmt.Errorf("counting account statistics: %w", err)
	}
	return s, nil
}

// UpdateUserPassword updates a user's password hash.
func UpdateUserPassword(ctx context.Context, db Querier, id int64, passwordHash string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// IncrementClaimsCount atomically bumps the user's claims counter.
func IncrementClaimsCount(ctx context.Context, db Querier, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET claims_count = claims_count + 1 WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("incrementing claims count: %w", err)
	}
	return nil
}

// DeleteUser soft-deletes a user.
func DeleteUser(ctx context.Context, db Querier, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}
