package claims

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

func auditActions(t *testing.T, f *fixture) []string {
	t.Helper()
	entries, err := store.ListRecentAuditLogs(context.Background(), f.db, MaxAuditLimit)
	require.NoError(t, err)
	var actions []string
	// Oldest first reads more naturally in assertions.
	for i := len(entries) - 1; i >= 0; i-- {
		actions = append(actions, entries[i].Action)
	}
	return actions
}

func TestFlagThenResolveRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.submit(t)

	require.NoError(t, f.disputes.FlagClaimForReview(ctx, id, "suspected fraud", f.admin))
	c := f.claim(t, id)
	assert.Equal(t, model.ClaimStatusFlagged, c.Status)
	assert.Equal(t, []string{"suspected fraud"}, c.Flags)
	assert.Equal(t, []string{model.AuditFlagClaim}, auditActions(t, f))

	f.notifier.reset()
	require.NoError(t, f.disputes.ResolveDispute(ctx, id, ResolutionRejected, "insufficient proof", f.admin))

	c = f.claim(t, id)
	assert.Equal(t, model.ClaimStatusRejected, c.Status)
	assert.Equal(t, "insufficient proof", c.ResolutionNotes)
	assert.Empty(t, c.Flags)
	require.NotNil(t, c.ResolvedBy)
	assert.Equal(t, f.admin.ID, *c.ResolvedBy)
	assert.NotNil(t, c.ResolvedAt)
	assert.Equal(t, []string{model.AuditFlagClaim, model.AuditResolveDispute}, auditActions(t, f))
	assert.Equal(t, model.ItemStatusFound, f.itemNow(t).Status)

	assert.Equal(t, []string{model.EventClaimRejected, model.EventDisputeResolution}, f.notifier.events())
	assert.Equal(t, f.claimant.ID, f.notifier.sent[0].userID)
	assert.Equal(t, f.reporter.ID, f.notifier.sent[1].userID)
	assert.Equal(t, ResolutionRejected, f.notifier.sent[0].payload.Resolution)

	entries, err := f.disputes.GetRecentAuditLogs(ctx, 1, f.moderator)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	var details model.DisputeResolutionDetails
	require.NoError(t, json.Unmarshal(entries[0].Details, &details))
	assert.Equal(t, model.DisputeResolutionDetails{DisputeID: id, Resolution: ResolutionRejected, Notes: "insufficient proof"}, details)
	assert.Equal(t, f.admin.ID, entries[0].PerformedBy)
}

func TestResolveApproved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.submit(t)
	require.NoError(t, f.disputes.FlagClaimForReview(ctx, id, "", f.reporter))
	assert.Equal(t, []string{model.DefaultFlag}, f.claim(t, id).Flags)

	require.NoError(t, f.disputes.ResolveDispute(ctx, id, ResolutionApproved, "", f.admin))

	assert.Equal(t, model.ClaimStatusApproved, f.claim(t, id).Status)
	item := f.itemNow(t)
	assert.Equal(t, model.ItemStatusReturned, item.Status)
	require.NotNil(t, item.ReturnedTo)
	assert.Equal(t, f.claimant.ID, *item.ReturnedTo)
}

func TestResolveMoreInfo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.submit(t)
	require.NoError(t, f.disputes.FlagClaimForReview(ctx, id, "unclear", f.moderator))
	f.notifier.reset()

	require.NoError(t, f.disputes.ResolveDispute(ctx, id, ResolutionMoreInfo, "Send a photo of the receipt", f.admin))

	c := f.claim(t, id)
	assert.Equal(t, model.ClaimStatusPendingMoreInfo, c.Status)
	assert.Equal(t, "Send a photo of the receipt", c.MoreInfoRequestMessage)
	assert.Empty(t, c.Flags)
	assert.Equal(t, model.EventClaimMoreInfo, f.notifier.events()[0])

	// The claimant answers through the regular path.
	require.NoError(t, f.engine.RespondToMoreInfo(ctx, id, "attached", f.claimant))
	assert.Equal(t, model.ClaimStatusPending, f.claim(t, id).Status)
}

func TestResolveDisputeGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.submit(t)

	// Not flagged yet.
	assert.ErrorIs(t, f.disputes.ResolveDispute(ctx, id, ResolutionApproved, "", f.admin), ErrInvalidState)

	require.NoError(t, f.disputes.FlagClaimForReview(ctx, id, "check", f.moderator))

	assert.ErrorIs(t, f.disputes.ResolveDispute(ctx, id, ResolutionApproved, "", f.moderator), ErrPermission)
	assert.ErrorIs(t, f.disputes.ResolveDispute(ctx, id, ResolutionRejected, "", f.admin), ErrValidation)
	assert.ErrorIs(t, f.disputes.ResolveDispute(ctx, id, ResolutionMoreInfo, " ", f.admin), ErrValidation)
	assert.ErrorIs(t, f.disputes.ResolveDispute(ctx, id, "escalate", "x", f.admin), ErrValidation)
	assert.ErrorIs(t, f.disputes.ResolveDispute(ctx, 9999, ResolutionApproved, "", f.admin), ErrNotFound)

	// Failed attempts leave no audit trail.
	assert.Equal(t, []string{model.AuditFlagClaim}, auditActions(t, f))
	assert.Equal(t, model.ClaimStatusFlagged, f.claim(t, id).Status)

	require.NoError(t, f.disputes.ResolveDispute(ctx, id, ResolutionApproved, "", f.admin))
	assert.ErrorIs(t, f.disputes.ResolveDispute(ctx, id, ResolutionApproved, "", f.admin), ErrAlreadyResolved)
	assert.Equal(t, []string{model.AuditFlagClaim, model.AuditResolveDispute}, auditActions(t, f))
}

func TestFlagClaimForReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.submit(t)

	assert.ErrorIs(t, f.disputes.FlagClaimForReview(ctx, id, "hmm", f.other), ErrPermission)
	assert.ErrorIs(t, f.disputes.FlagClaimForReview(ctx, id, "hmm", f.claimant), ErrPermission)

	require.NoError(t, f.engine.RequestMoreInfo(ctx, id, "more?", f.reporter))
	require.NoError(t, f.disputes.FlagClaimForReview(ctx, id, "first", f.reporter))

	// Re-flagging replaces the reason.
	require.NoError(t, f.disputes.FlagClaimForReview(ctx, id, "second", f.moderator))
	c := f.claim(t, id)
	assert.Equal(t, []string{"second"}, c.Flags)
	require.NotNil(t, c.FlaggedBy)
	assert.Equal(t, f.moderator.ID, *c.FlaggedBy)
	assert.Equal(t, []string{model.AuditFlagClaim, model.AuditFlagClaim}, auditActions(t, f))
}

func TestListFlagged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []int64
	for _, name := range []string{"Scarf", "Hat", "Glove"} {
		item, err := store.CreateItem(ctx, f.db, &model.Item{Name: name, ReportedBy: f.reporter.ID})
		require.NoError(t, err)
		id, err := f.engine.SubmitClaim(ctx, item.ID, f.claimant, model.ClaimFields{Description: "mine"})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, f.disputes.FlagClaimForReview(ctx, ids[2], "", f.moderator))
	require.NoError(t, f.disputes.FlagClaimForReview(ctx, ids[0], "", f.moderator))

	_, err := f.disputes.ListFlagged(ctx, f.reporter)
	assert.ErrorIs(t, err, ErrPermission)

	flagged, err := f.disputes.ListFlagged(ctx, f.moderator)
	require.NoError(t, err)
	require.Len(t, flagged, 2)
	assert.Equal(t, ids[0], flagged[0].ID)
	assert.Equal(t, ids[2], flagged[1].ID)
}

func TestAuditLogLimits(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for range MaxAuditLimit + 5 {
		_, err := store.AppendAuditLog(ctx, f.db, model.AuditFlagClaim, model.FlagClaimDetails{ClaimID: 1}, f.admin.ID)
		require.NoError(t, err)
	}

	tests := []struct {
		limit int
		want  int
	}{
		{0, DefaultAuditLimit},
		{-3, DefaultAuditLimit},
		{5, 5},
		{MaxAuditLimit + 50, MaxAuditLimit},
	}
	for _, tt := range tests {
		entries, err := f.disputes.GetRecentAuditLogs(ctx, tt.limit, f.admin)
		require.NoError(t, err)
		assert.Len(t, entries, tt.want, "limit %d", tt.limit)
	}

	_, err := f.disputes.GetRecentAuditLogs(ctx, 10, f.reporter)
	assert.ErrorIs(t, err, ErrPermission)
}

func TestStatistics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := f.submit(t)
	require.NoError(t, f.engine.DecideClaim(ctx, first, DecisionRejected, "no", f.reporter))
	second := f.submit(t)
	require.NoError(t, f.disputes.FlagClaimForReview(ctx, second, "", f.reporter))

	s, err := f.disputes.Statistics(ctx, f.moderator)
	require.NoError(t, err)
	assert.Equal(t, model.DisputeStatistics{Flagged: 1, Approved: 0, Rejected: 1, Total: 2}, *s)

	_, err = f.disputes.Statistics(ctx, f.claimant)
	assert.ErrorIs(t, err, ErrPermission)
}
