package notify

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

func newUser(t *testing.T, database *sql.DB, name string) int64 {
	t.Helper()
	u, err := store.CreateUser(context.Background(), database, name, "", "", "hash", model.RoleUser)
	require.NoError(t, err)
	return u.ID
}

func TestDispatcherDeliversToInbox(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID := newUser(t, database, "finder")

	d := New(database, 2, 16)
	ok := d.Notify(ctx, userID, model.EventNewClaim, model.NotificationPayload{ItemID: 7, ClaimID: 3, ItemName: "Red scarf"})
	require.True(t, ok)
	d.Close()

	list, err := store.ListNotifications(ctx, database, userID, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)

	n := list[0]
	assert.Equal(t, model.EventNewClaim, n.Type)
	assert.Equal(t, "New Claim Submitted", n.Title)
	assert.Contains(t, n.Message, "Red scarf")
	require.NotNil(t, n.RelatedItemID)
	assert.Equal(t, int64(7), *n.RelatedItemID)
	require.NotNil(t, n.RelatedClaimID)
	assert.Equal(t, int64(3), *n.RelatedClaimID)
	assert.False(t, n.IsRead)
}

func TestDispatcherHonoursPreferences(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	quiet := newUser(t, database, "quiet")
	muted := newUser(t, database, "muted")

	p := model.DefaultNotificationPreferences(quiet)
	p.NotifyOnNewClaims = false
	require.NoError(t, store.UpdateNotificationPreferences(ctx, database, p))

	m := model.DefaultNotificationPreferences(muted)
	m.EmailNotifications = false
	m.PushNotifications = false
	require.NoError(t, store.UpdateNotificationPreferences(ctx, database, m))

	d := New(database, 1, 16)
	d.Notify(ctx, quiet, model.EventNewClaim, model.NotificationPayload{ItemName: "Keys"})
	d.Notify(ctx, quiet, model.EventClaimMoreInfo, model.NotificationPayload{ItemName: "Keys", Notes: "Which ring?"})
	d.Notify(ctx, muted, model.EventClaimMoreInfo, model.NotificationPayload{ItemName: "Keys"})
	d.Close()

	list, err := store.ListNotifications(ctx, database, quiet, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, model.EventClaimMoreInfo, list[0].Type)
	assert.Contains(t, list[0].Message, "Which ring?")

	list, err = store.ListNotifications(ctx, database, muted, 10)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDispatcherCreatesDefaultPreferences(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID := newUser(t, database, "fresh")

	d := New(database, 1, 4)
	d.Notify(ctx, userID, model.EventSystemUpdate, model.NotificationPayload{})
	d.Close()

	// System updates are off by default.
	unread, err := store.CountUnread(ctx, database, userID)
	require.NoError(t, err)
	assert.Equal(t, 0, unread)

	p, err := store.GetNotificationPreferences(ctx, database, userID)
	require.NoError(t, err)
	assert.Equal(t, model.FrequencyImmediate, p.EmailFrequency)
}

func TestNotifyFullQueue(t *testing.T) {
	database := db.NewTestDB(t)

	// No workers: nothing drains the queue.
	d := &Dispatcher{db: database, queue: make(chan job, 1)}

	assert.True(t, d.Notify(context.Background(), 1, model.EventNewClaim, model.NotificationPayload{}))
	assert.False(t, d.Notify(context.Background(), 1, model.EventNewClaim, model.NotificationPayload{}))
}

func TestNotifyAfterClose(t *testing.T) {
	database := db.NewTestDB(t)

	d := New(database, 1, 4)
	d.Close()
	d.Close()

	assert.False(t, d.Notify(context.Background(), 1, model.EventNewClaim, model.NotificationPayload{}))
}

func TestCloseDrainsQueue(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	userID := newUser(t, database, "busy")

	d := New(database, 3, 64)
	for range 20 {
		require.True(t, d.Notify(ctx, userID, model.EventClaimApproved, model.NotificationPayload{ItemName: "Phone"}))
	}
	d.Close()

	unread, err := store.CountUnread(ctx, database, userID)
	require.NoError(t, err)
	assert.Equal(t, 20, unread)
}

func TestRender(t *testing.T) {
	tests := []struct {
		event     string
		payload   model.NotificationPayload
		wantTitle string
		wantIn    string
	}{
		{model.EventClaimApproved, model.NotificationPayload{ItemName: "Bag"}, "Claim Approved", "arrange pickup"},
		{model.EventClaimApproved, model.NotificationPayload{ItemName: "Bag", Resolution: "approved"}, "Claim Approved by Admin", "Bag"},
		{model.EventClaimRejected, model.NotificationPayload{ItemName: "Bag", Notes: "wrong brand"}, "Claim Rejected", "Reason: wrong brand"},
		{model.EventClaimMoreInfo, model.NotificationPayload{ItemName: "Bag", Notes: "receipt", Resolution: "moreInfo"}, "More Information Needed", "receipt"},
		{model.EventMoreInfoResponse, model.NotificationPayload{ItemName: "Bag"}, "Additional Information Provided", "Bag"},
		{model.EventDisputeResolution, model.NotificationPayload{ItemName: "Bag", Resolution: "rejected"}, "Claim Rejected by Admin", "rejected a claim"},
		{model.EventNewClaim, model.NotificationPayload{}, "New Claim Submitted", model.UnavailableItemName},
	}

	for _, tt := range tests {
		t.Run(tt.event, func(t *testing.T) {
			title, message := render(tt.event, tt.payload)
			assert.Equal(t, tt.wantTitle, title)
			assert.Contains(t, message, tt.wantIn)
		})
	}
}
