package model

import "time"

// Notification is an in-app message delivered to a user.
type Notification struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"user_id"`
	Type            string     `json:"type"`
	Title           string     `json:"title"`
	Message         string     `json:"message"`
	RelatedItemID   *int64     `json:"related_item_id,omitempty"`
	RelatedClaimID  *int64     `json:"related_claim_id,omitempty"`
	ResponseDetails string     `json:"response_details,omitempty"`
	IsRead          bool       `json:"is_read"`
	CreatedAt       time.Time  `json:"created_at"`
	ReadAt          *time.Time `json:"read_at,omitempty"`
}

// Notification event types.
const (
	EventNewClaim           = "new_claim"
	EventClaimApproved      = "claim_approved"
	EventClaimRejected      = "claim_rejected"
	EventClaimFlagged       = "claim_flagged"
	EventClaimMoreInfo      = "claim_more_info"
	EventMoreInfoResponse   = "more_info_response"
	EventVerificationUpdate = "verification_update"
	EventDisputeResolution  = "dispute_resolution"
	EventMessage            = "message"
	EventSystemUpdate       = "system_update"
)

// NotificationPayload carries the event context handed to the dispatcher.
type NotificationPayload struct {
	ItemID   int64
	ClaimID  int64
	ItemName string
	Notes    string
	Response string

	// Resolution is set for dispute outcomes (approved, rejected, moreInfo).
	Resolution string
}

// NotificationPreferences controls which events reach a user.
type NotificationPreferences struct {
	UserID                int64     `json:"user_id"`
	EmailNotifications    bool      `json:"email_notifications"`
	PushNotifications     bool      `json:"push_notifications"`
	NotifyOnNewClaims     bool      `json:"notify_on_new_claims"`
	NotifyOnClaimUpdates  bool      `json:"notify_on_claim_updates"`
	NotifyOnMessages      bool      `json:"notify_on_messages"`
	NotifyOnSystemUpdates bool      `json:"notify_on_system_updates"`
	EmailFrequency        string    `json:"email_frequency"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// Email frequencies.
const (
	FrequencyImmediate = "immediate"
	FrequencyDaily     = "daily"
	FrequencyWeekly    = "weekly"
)

// ValidFrequency reports whether f is a known email frequency.
func ValidFrequency(f string) bool {
	return f == FrequencyImmediate || f == FrequencyDaily || f == FrequencyWeekly
}

// DefaultNotificationPreferences returns the preferences of a user who never
// changed them.
func DefaultNotificationPreferences(userID int64) NotificationPreferences {
	return NotificationPreferences{
		UserID:                userID,
		EmailNotifications:    true,
		PushNotifications:     false,
		NotifyOnNewClaims:     true,
		NotifyOnClaimUpdates:  true,
		NotifyOnMessages:      true,
		NotifyOnSystemUpdates: false,
		EmailFrequency:        FrequencyImmediate,
	}
}

// ShouldNotify reports whether an event of the given type may be delivered.
// Nothing is delivered when every channel is off. Unknown event types are
// delivered.
func (p NotificationPreferences) ShouldNotify(eventType string) bool {
	if !p.EmailNotifications && !p.PushNotifications {
		return false
	}

	switch eventType {
	case EventNewClaim, EventClaimApproved, EventClaimRejected, EventClaimFlagged:
		return p.NotifyOnNewClaims
	case EventClaimMoreInfo, EventMoreInfoResponse, EventVerificationUpdate, EventDisputeResolution:
		return p.NotifyOnClaimUpdates
	case EventMessage:
		return p.NotifyOnMessages
	case EventSystemUpdate:
		return p.NotifyOnSystemUpdates
	default:
		return true
	}
}
