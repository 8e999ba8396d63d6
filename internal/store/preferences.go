package store

import (
	"context"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

// GetNotificationPreferences returns the user's preferences, creating the
// defaults on first access.
func GetNotificationPreferences(ctx context.Context, db Querier, userID int64) (*model.NotificationPreferences, error) {
	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO notification_preferences (user_id) VALUES (?)`, userID,
	); err != nil {
		return nil, fmt.Errorf("creating notification preferences: %w", err)
	}

	p := &model.NotificationPreferences{}
	err := db.QueryRowContext(ctx,
		`SELECT user_id, email_notifications, push_notifications, notify_on_new_claims,
		        notify_on_claim_updates, notify_on_messages, notify_on_system_updates,
		        email_frequency, updated_at
		 FROM notification_preferences WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.EmailNotifications, &p.PushNotifications, &p.NotifyOnNewClaims,
		&p.NotifyOnClaimUpdates, &p.NotifyOnMessages, &p.NotifyOnSystemUpdates,
		&p.EmailFrequency, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting notification preferences: %w", err)
	}
	return p, nil
}

// UpdateNotificationPreferences replaces the user's preferences.
func UpdateNotificationPreferences(ctx context.Context, db Querier, p model.NotificationPreferences) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO notification_preferences (user_id, email_notifications, push_notifications,
		        notify_on_new_claims, notify_on_claim_updates, notify_on_messages,
		        notify_on_system_updates, email_frequency)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		        email_notifications = excluded.email_notifications,
		        push_notifications = excluded.push_notifications,
		        notify_on_new_claims = excluded.notify_on_new_claims,
		        notify_on_claim_updates = excluded.notify_on_claim_updates,
		        notify_on_messages = excluded.notify_on_messages,
		        notify_on_system_updates = excluded.notify_on_system_updates,
		        email_frequency = excluded.email_frequency,
		        updated_at = CURRENT_TIMESTAMP`,
		p.UserID, p.EmailNotifications, p.PushNotifications, p.NotifyOnNewClaims,
		p.NotifyOnClaimUpdates, p.NotifyOnMessages, p.NotifyOnSystemUpdates, p.EmailFrequency,
	)
	if err != nil {
		return fmt.Errorf("updating notification preferences: %w", err)
	}
	return nil
}
