package store

import (
	"context"
	"testing"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
)

func TestNotificationInbox(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, database, "inbox")
	other := createTestUser(t, database, "other")

	itemID := int64(3)
	first, err := CreateNotification(ctx, database, &model.Notification{
		UserID: user.ID, Type: model.EventNewClaim, Title: "New claim", Message: "m1",
		RelatedItemID: &itemID,
	})
	if err != nil {
		t.Fatalf("CreateNotification: %v", err)
	}
	CreateNotification(ctx, database, &model.Notification{
		UserID: user.ID, Type: model.EventClaimApproved, Title: "Approved", Message: "m2",
	})
	CreateNotification(ctx, database, &model.Notification{
		UserID: other.ID, Type: model.EventClaimRejected, Title: "Rejected", Message: "m3",
	})

	list, err := ListNotifications(ctx, database, user.ID, 50)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(list))
	}
	if list[1].RelatedItemID == nil || *list[1].RelatedItemID != itemID {
		t.Errorf("expected related item %d, got %v", itemID, list[1].RelatedItemID)
	}

	unread, _ := CountUnread(ctx, database, user.ID)
	if unread != 2 {
		t.Errorf("expected 2 unread, got %d", unread)
	}

	// Another user's notification cannot be marked.
	ok, _ := MarkNotificationRead(ctx, database, first, other.ID)
	if ok {
		t.Error("expected marking a foreign notification to fail")
	}

	ok, err = MarkNotificationRead(ctx, database, first, user.ID)
	if err != nil || !ok {
		t.Fatalf("MarkNotificationRead: ok=%v err=%v", ok, err)
	}
	unread, _ = CountUnread(ctx, database, user.ID)
	if unread != 1 {
		t.Errorf("expected 1 unread, got %d", unread)
	}

	n, err := MarkAllNotificationsRead(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("MarkAllNotificationsRead: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 notification marked, got %d", n)
	}
	unread, _ = CountUnread(ctx, database, other.ID)
	if unread != 1 {
		t.Errorf("expected other user's inbox untouched, got %d unread", unread)
	}
}

func TestNotificationPreferences(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, database, "prefs")

	p, err := GetNotificationPreferences(ctx, database, user.ID)
	if err != nil {
		t.Fatalf("GetNotificationPreferences: %v", err)
	}
	want := model.DefaultNotificationPreferences(user.ID)
	if p.EmailNotifications != want.EmailNotifications || p.PushNotifications != want.PushNotifications ||
		p.NotifyOnSystemUpdates != want.NotifyOnSystemUpdates || p.EmailFrequency != want.EmailFrequency {
		t.Errorf("expected defaults %+v, got %+v", want, p)
	}

	p.NotifyOnNewClaims = false
	p.EmailFrequency = model.FrequencyWeekly
	if err := UpdateNotificationPreferences(ctx, database, *p); err != nil {
		t.Fatalf("UpdateNotificationPreferences: %v", err)
	}

	got, _ := GetNotificationPreferences(ctx, database, user.ID)
	if got.NotifyOnNewClaims {
		t.Error("expected notify_on_new_claims to be off")
	}
	if got.EmailFrequency != model.FrequencyWeekly {
		t.Errorf("expected weekly frequency, got %q", got.EmailFrequency)
	}
}
