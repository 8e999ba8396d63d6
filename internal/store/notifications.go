package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

const notificationColumns = `id, user_id, type, title, message, related_item_id, related_claim_id,
	response_details, is_read, created_at, read_at`

// CreateNotification inserts an unread notification and returns its ID.
func CreateNotification(ctx context.Context, db Querier, n *model.Notification) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, type, title, message, related_item_id, related_claim_id, response_details)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.UserID, n.Type, n.Title, n.Message, n.RelatedItemID, n.RelatedClaimID, nullString(n.ResponseDetails),
	)
	if err != nil {
		return 0, fmt.Errorf("creating notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting notification id: %w", err)
	}
	return id, nil
}

// ListNotifications returns a user's notifications, newest first.
func ListNotifications(ctx context.Context, db Querier, userID int64, limit int) ([]model.Notification, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	defer rows.Close()

	var notifications []model.Notification
	for rows.Next() {
		var n model.Notification
		var details sql.NullString
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&n.RelatedItemID, &n.RelatedClaimID, &details, &n.IsRead, &n.CreatedAt, &n.ReadAt); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.ResponseDetails = details.String
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// CountUnread returns the number of unread notifications for a user.
func CountUnread(ctx context.Context, db Querier, userID int64) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

// MarkNotificationRead marks one of the user's notifications as read. It
// reports false when the notification does not belong to the user.
func MarkNotificationRead(ctx context.Context, db Querier, id, userID int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1, read_at = COALESCE(read_at, CURRENT_TIMESTAMP)
		 WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return false, fmt.Errorf("marking notification read: %w", err)
	}
	return affected(result)
}

// MarkAllNotificationsRead marks every unread notification of the user as read.
func MarkAllNotificationsRead(ctx context.Context, db Querier, userID int64) (int64, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1, read_at = CURRENT_TIMESTAMP
		 WHERE user_id = ? AND is_read = 0`,
		userID,
	)
	if err != nil {
		return 0, fmt.Errorf("marking notifications read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reading rows affected: %w", err)
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
