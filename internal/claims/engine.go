// Package claims owns the claim lifecycle. Every status change of a claim,
// and the item and counter writes that go with it, happens here.
package claims

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/erazemk/najdeno/internal/metrics"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// DefaultStoreTimeout bounds a single store interaction.
const DefaultStoreTimeout = 10 * time.Second

// Notifier delivers best-effort notifications. A false return means the
// notification was not dispatched; the engine logs it and moves on.
type Notifier interface {
	Notify(ctx context.Context, userID int64, eventType string, payload model.NotificationPayload) bool
}

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID   int64
	Role string
}

// AtLeast reports whether the actor holds the given role or a higher one.
func (a Actor) AtLeast(role string) bool {
	return model.RoleAtLeast(a.Role, role)
}

// Engine applies claim transitions against the database.
type Engine struct {
	DB       *sql.DB
	Notifier Notifier

	// StoreTimeout bounds each store interaction. Zero means DefaultStoreTimeout.
	StoreTimeout time.Duration
}

// NewEngine returns an engine using the given database and notifier.
func NewEngine(db *sql.DB, notifier Notifier, storeTimeout time.Duration) *Engine {
	return &Engine{DB: db, Notifier: notifier, StoreTimeout: storeTimeout}
}

func (e *Engine) timeout() time.Duration {
	if e.StoreTimeout > 0 {
		return e.StoreTimeout
	}
	return DefaultStoreTimeout
}

// notice is a notification queued until the transaction that caused it commits.
type notice struct {
	userID  int64
	event   string
	payload model.NotificationPayload
}

// inTx runs fn in a write transaction bounded by the store timeout. Notices
// returned by fn are dispatched only after a successful commit.
func (e *Engine) inTx(ctx context.Context, op Transition, fn func(ctx context.Context, tx *sql.Tx) ([]notice, error)) error {
	err := e.runTx(ctx, op, fn)
	observe(op, err)
	return err
}

func (e *Engine) runTx(ctx context.Context, op Transition, fn func(ctx context.Context, tx *sql.Tx) ([]notice, error)) error {
	txCtx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	tx, err := e.DB.BeginTx(txCtx, nil)
	if err != nil {
		return storeError(string(op), err)
	}
	defer tx.Rollback()

	notices, err := fn(txCtx, tx)
	if err != nil {
		return storeError(string(op), err)
	}
	if err := tx.Commit(); err != nil {
		return storeError(string(op), err)
	}

	for _, n := range notices {
		e.notify(ctx, n)
	}
	return nil
}

// read runs fn under the store timeout.
func (e *Engine) read(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout())
	defer cancel()

	if err := fn(ctx); err != nil {
		return storeError(op, err)
	}
	return nil
}

func (e *Engine) notify(ctx context.Context, n notice) {
	if e.Notifier == nil {
		return
	}
	if !e.Notifier.Notify(ctx, n.userID, n.event, n.payload) {
		slog.Warn("notification not dispatched", "event", n.event, "recipient", n.userID,
			"claim", n.payload.ClaimID, "error", ErrNotification)
	}
}

func observe(op Transition, err error) {
	result := metrics.ResultOK
	switch {
	case err == nil:
	case errors.Is(err, ErrStoreUnavailable):
		result = metrics.ResultError
	default:
		result = metrics.ResultRejected
	}
	metrics.ClaimTransitions.WithLabelValues(string(op), result).Inc()
}

// loadClaim returns the claim or ErrNotFound.
func loadClaim(ctx context.Context, q store.Querier, id int64) (*model.Claim, error) {
	c, err := store.GetClaim(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("%w: claim %d", ErrNotFound, id)
	}
	return c, nil
}

// loadItem returns the claim's item, or nil when it no longer exists.
func loadItem(ctx context.Context, q store.Querier, id int64) (*model.Item, error) {
	item, err := store.GetItem(ctx, q, id)
	if err != nil {
		return nil, err
	}
	if item == nil || item.DeletedAt != nil {
		return nil, nil
	}
	return item, nil
}

// canReview reports whether the actor may drive a claim on item. Moderators
// and admins always may; otherwise only the item's reporter.
func canReview(a Actor, item *model.Item) bool {
	if a.AtLeast(model.RoleModerator) {
		return true
	}
	return item != nil && item.ReportedBy == a.ID
}

func payloadFor(c *model.Claim, item *model.Item) model.NotificationPayload {
	p := model.NotificationPayload{ItemID: c.ItemID, ClaimID: c.ID, ItemName: c.ItemName}
	if item != nil {
		p.ItemName = item.Name
	}
	if p.ItemName == "" {
		p.ItemName = model.UnavailableItemName
	}
	return p
}

// transition checks the table and writes the new status with a
// compare-and-set on the status c was read with.
func transition(ctx context.Context, q store.Querier, c *model.Claim, t Transition, u store.ClaimUpdate) error {
	to, err := nextStatus(c, t)
	if err != nil {
		return err
	}
	u.Status = to

	ok, err := store.TransitionClaim(ctx, q, c.ID, c.Status, u)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: claim %d changed concurrently", ErrInvalidState, c.ID)
	}
	c.Status = to
	return nil
}

// SubmitClaim files a claim against a found item and marks the item claimed.
func (e *Engine) SubmitClaim(ctx context.Context, itemID int64, claimant Actor, f model.ClaimFields) (int64, error) {
	f.Description = strings.TrimSpace(f.Description)
	if f.Description == "" {
		observe(TransitionSubmit, ErrValidation)
		return 0, fmt.Errorf("%w: description is required", ErrValidation)
	}

	var claimID int64
	err := e.inTx(ctx, TransitionSubmit, func(ctx context.Context, tx *sql.Tx) ([]notice, error) {
		item, err := loadItem(ctx, tx, itemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, fmt.Errorf("%w: item %d", ErrNotFound, itemID)
		}
		if item.ReportedBy == claimant.ID {
			return nil, fmt.Errorf("%w: cannot claim an item you reported", ErrValidation)
		}
		if item.Status != model.ItemStatusFound {
			return nil, fmt.Errorf("%w: item %d is %s", ErrInvalidState, itemID, item.Status)
		}

		ok, err := store.SetItemStatusIf(ctx, tx, itemID, model.ItemStatusFound, model.ItemStatusClaimed)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: item %d was claimed concurrently", ErrInvalidState, itemID)
		}
		if err := store.IncrementClaimCount(ctx, tx, itemID); err != nil {
			return nil, err
		}
		if err := store.IncrementClaimsCount(ctx, tx, claimant.ID); err != nil {
			return nil, err
		}

		claimID, err = store.CreateClaim(ctx, tx, itemID, claimant.ID, f)
		if err != nil {
			return nil, err
		}

		return []notice{{
			userID:  item.ReportedBy,
			event:   model.EventNewClaim,
			payload: model.NotificationPayload{ItemID: itemID, ClaimID: claimID, ItemName: item.Name},
		}}, nil
	})
	if err != nil {
		return 0, err
	}
	return claimID, nil
}

// RequestMoreInfo asks the claimant for more detail on a pending claim.
func (e *Engine) RequestMoreInfo(ctx context.Context, claimID int64, message string, actor Actor) error {
	message = strings.TrimSpace(message)
	if message == "" {
		observe(TransitionRequestMoreInfo, ErrValidation)
		return fmt.Errorf("%w: message is required", ErrValidation)
	}

	return e.inTx(ctx, TransitionRequestMoreInfo, func(ctx context.Context, tx *sql.Tx) ([]notice, error) {
		c, err := loadClaim(ctx, tx, claimID)
		if err != nil {
			return nil, err
		}
		item, err := loadItem(ctx, tx, c.ItemID)
		if err != nil {
			return nil, err
		}
		if !canReview(actor, item) {
			return nil, fmt.Errorf("%w: only the item's reporter or a moderator can request more information", ErrPermission)
		}

		if err := transition(ctx, tx, c, TransitionRequestMoreInfo, store.ClaimUpdate{MoreInfoRequest: &message}); err != nil {
			return nil, err
		}

		p := payloadFor(c, item)
		p.Notes = message
		return []notice{{userID: c.ClaimantID, event: model.EventClaimMoreInfo, payload: p}}, nil
	})
}

// RespondToMoreInfo records the claimant's answer and returns the claim to
// pending. The answer is stored even when the item is gone.
func (e *Engine) RespondToMoreInfo(ctx context.Context, claimID int64, response string, actor Actor) error {
	response = strings.TrimSpace(response)
	if response == "" {
		observe(TransitionRespond, ErrValidation)
		return fmt.Errorf("%w: response is required", ErrValidation)
	}

	return e.inTx(ctx, TransitionRespond, func(ctx context.Context, tx *sql.Tx) ([]notice, error) {
		c, err := loadClaim(ctx, tx, claimID)
		if err != nil {
			return nil, err
		}
		if c.ClaimantID != actor.ID {
			return nil, fmt.Errorf("%w: only the claimant can respond", ErrPermission)
		}

		if err := transition(ctx, tx, c, TransitionRespond, store.ClaimUpdate{MoreInfoResponse: &response}); err != nil {
			return nil, err
		}

		item, err := loadItem(ctx, tx, c.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			slog.Warn("item missing, skipping reporter notification", "claim", c.ID, "item", c.ItemID)
			return nil, nil
		}

		p := payloadFor(c, item)
		p.Response = response
		return []notice{{userID: item.ReportedBy, event: model.EventMoreInfoResponse, payload: p}}, nil
	})
}

// Claim decisions.
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
	DecisionFlagged  = "flagged"
)

// DecideClaim approves, rejects, or flags a claim.
func (e *Engine) DecideClaim(ctx context.Context, claimID int64, decision, notes string, actor Actor) error {
	notes = strings.TrimSpace(notes)

	var t Transition
	switch decision {
	case DecisionApproved:
		t = TransitionApprove
	case DecisionRejected:
		t = TransitionReject
	case DecisionFlagged:
		t = TransitionDecideFlag
	default:
		return fmt.Errorf("%w: unknown decision %q", ErrValidation, decision)
	}

	if t == TransitionReject && notes == "" {
		observe(t, ErrValidation)
		return fmt.Errorf("%w: rejection notes are required", ErrValidation)
	}

	return e.inTx(ctx, t, func(ctx context.Context, tx *sql.Tx) ([]notice, error) {
		c, err := loadClaim(ctx, tx, claimID)
		if err != nil {
			return nil, err
		}
		item, err := loadItem(ctx, tx, c.ItemID)
		if err != nil {
			return nil, err
		}
		if !canReview(actor, item) {
			return nil, fmt.Errorf("%w: only the item's reporter, a moderator, or an admin can decide", ErrPermission)
		}

		p := payloadFor(c, item)
		p.Notes = notes

		switch t {
		case TransitionApprove:
			u := store.ClaimUpdate{}
			if notes != "" {
				u.StatusNotes = &notes
			}
			if err := transition(ctx, tx, c, t, u); err != nil {
				return nil, err
			}
			if err := returnItem(ctx, tx, c, item); err != nil {
				return nil, err
			}
			return []notice{{userID: c.ClaimantID, event: model.EventClaimApproved, payload: p}}, nil

		case TransitionReject:
			if err := transition(ctx, tx, c, t, store.ClaimUpdate{StatusNotes: &notes}); err != nil {
				return nil, err
			}
			if err := releaseItem(ctx, tx, item); err != nil {
				return nil, err
			}
			return []notice{{userID: c.ClaimantID, event: model.EventClaimRejected, payload: p}}, nil

		default:
			if err := flag(ctx, tx, c, t, notes, actor); err != nil {
				return nil, err
			}
			return []notice{{userID: c.ClaimantID, event: model.EventClaimFlagged, payload: p}}, nil
		}
	})
}

// flag moves c to flagged under t with a single reason and records the audit
// entry. DecideClaim uses TransitionDecideFlag, FlagClaimForReview TransitionFlag.
func flag(ctx context.Context, q store.Querier, c *model.Claim, t Transition, reason string, actor Actor) error {
	if reason == "" {
		reason = model.DefaultFlag
	}

	err := transition(ctx, q, c, t, store.ClaimUpdate{
		Flags:     []string{reason},
		FlaggedBy: &actor.ID,
	})
	if err != nil {
		return err
	}

	_, err = store.AppendAuditLog(ctx, q, model.AuditFlagClaim,
		model.FlagClaimDetails{ClaimID: c.ID, Reason: reason}, actor.ID)
	return err
}

// returnItem hands the item to the approved claimant. A missing item is
// tolerated so claims outlive their items.
func returnItem(ctx context.Context, q store.Querier, c *model.Claim, item *model.Item) error {
	if item == nil {
		slog.Warn("approving claim for missing item", "claim", c.ID, "item", c.ItemID)
		return nil
	}

	ok, err := store.MarkItemReturned(ctx, q, item.ID, c.ClaimantID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: item %d is %s, not claimed", ErrInvalidState, item.ID, item.Status)
	}
	return nil
}

// releaseItem makes a claimed item claimable again after its claim was rejected.
func releaseItem(ctx context.Context, q store.Querier, item *model.Item) error {
	if item == nil {
		return nil
	}
	_, err := store.SetItemStatusIf(ctx, q, item.ID, model.ItemStatusClaimed, model.ItemStatusFound)
	return err
}
