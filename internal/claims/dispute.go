package claims

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// Audit log limits.
const (
	DefaultAuditLimit = 20
	MaxAuditLimit     = 100
)

// Dispute resolutions.
const (
	ResolutionApproved = "approved"
	ResolutionRejected = "rejected"
	ResolutionMoreInfo = "moreInfo"
)

// Disputes is the administrative review of flagged claims. It shares the
// engine's database, notifier and transition table.
type Disputes struct {
	*Engine
}

// NewDisputes returns the dispute layer on top of e.
func NewDisputes(e *Engine) *Disputes {
	return &Disputes{Engine: e}
}

func requireModerator(a Actor) error {
	if !a.AtLeast(model.RoleModerator) {
		return fmt.Errorf("%w: moderator role required", ErrPermission)
	}
	return nil
}

// ListFlagged returns every flagged claim ordered by ID.
func (d *Disputes) ListFlagged(ctx context.Context, actor Actor) ([]model.Claim, error) {
	if err := requireModerator(actor); err != nil {
		return nil, err
	}
	return d.list(ctx, "list flagged claims", store.ClaimFilter{
		Status:      model.ClaimStatusFlagged,
		OldestFirst: true,
	})
}

// ResolveDispute settles a flagged claim. The audit entry is written in the
// same transaction as the claim, so a committed resolution always has one.
func (d *Disputes) ResolveDispute(ctx context.Context, claimID int64, resolution, notes string, resolver Actor) error {
	notes = strings.TrimSpace(notes)

	var t Transition
	switch resolution {
	case ResolutionApproved:
		t = TransitionResolveApprove
	case ResolutionRejected:
		t = TransitionResolveReject
	case ResolutionMoreInfo:
		t = TransitionResolveMoreInfo
	default:
		return fmt.Errorf("%w: unknown resolution %q", ErrValidation, resolution)
	}

	if notes == "" && t != TransitionResolveApprove {
		observe(t, ErrValidation)
		return fmt.Errorf("%w: notes are required to %s", ErrValidation, t)
	}
	if resolver.Role != model.RoleAdmin {
		observe(t, ErrPermission)
		return fmt.Errorf("%w: only admins can resolve disputes", ErrPermission)
	}

	return d.inTx(ctx, t, func(ctx context.Context, tx *sql.Tx) ([]notice, error) {
		c, err := loadClaim(ctx, tx, claimID)
		if err != nil {
			return nil, err
		}
		item, err := loadItem(ctx, tx, c.ItemID)
		if err != nil {
			return nil, err
		}

		u := store.ClaimUpdate{
			ResolutionNotes: &notes,
			Flags:           []string{},
			ResolvedBy:      &resolver.ID,
		}
		var event string

		switch t {
		case TransitionResolveApprove:
			event = model.EventClaimApproved
			if err := transition(ctx, tx, c, t, u); err != nil {
				return nil, err
			}
			if err := returnItem(ctx, tx, c, item); err != nil {
				return nil, err
			}
		case TransitionResolveReject:
			event = model.EventClaimRejected
			u.StatusNotes = &notes
			if err := transition(ctx, tx, c, t, u); err != nil {
				return nil, err
			}
			if err := releaseItem(ctx, tx, item); err != nil {
				return nil, err
			}
		default:
			event = model.EventClaimMoreInfo
			u.MoreInfoRequest = &notes
			if err := transition(ctx, tx, c, t, u); err != nil {
				return nil, err
			}
		}

		_, err = store.AppendAuditLog(ctx, tx, model.AuditResolveDispute, model.DisputeResolutionDetails{
			DisputeID:  c.ID,
			Resolution: resolution,
			Notes:      notes,
		}, resolver.ID)
		if err != nil {
			return nil, err
		}

		p := payloadFor(c, item)
		p.Notes = notes
		p.Resolution = resolution

		notices := []notice{{userID: c.ClaimantID, event: event, payload: p}}
		if item != nil {
			notices = append(notices, notice{userID: item.ReportedBy, event: model.EventDisputeResolution, payload: p})
		}
		return notices, nil
	})
}

// FlagClaimForReview sends a non-terminal claim to dispute review.
func (d *Disputes) FlagClaimForReview(ctx context.Context, claimID int64, reason string, actor Actor) error {
	reason = strings.TrimSpace(reason)

	return d.inTx(ctx, TransitionFlag, func(ctx context.Context, tx *sql.Tx) ([]notice, error) {
		c, err := loadClaim(ctx, tx, claimID)
		if err != nil {
			return nil, err
		}
		item, err := loadItem(ctx, tx, c.ItemID)
		if err != nil {
			return nil, err
		}
		if !canReview(actor, item) {
			return nil, fmt.Errorf("%w: only the item's reporter or a moderator can flag a claim", ErrPermission)
		}

		if err := flag(ctx, tx, c, TransitionFlag, reason, actor); err != nil {
			return nil, err
		}

		p := payloadFor(c, item)
		p.Notes = reason
		return []notice{{userID: c.ClaimantID, event: model.EventClaimFlagged, payload: p}}, nil
	})
}

// GetRecentAuditLogs returns the newest audit entries. A limit outside
// 1..MaxAuditLimit falls back to the default or the maximum.
func (d *Disputes) GetRecentAuditLogs(ctx context.Context, limit int, actor Actor) ([]model.AuditLogEntry, error) {
	if err := requireModerator(actor); err != nil {
		return nil, err
	}

	switch {
	case limit <= 0:
		limit = DefaultAuditLimit
	case limit > MaxAuditLimit:
		limit = MaxAuditLimit
	}

	var entries []model.AuditLogEntry
	err := d.read(ctx, "list audit logs", func(ctx context.Context) error {
		var err error
		entries, err = store.ListRecentAuditLogs(ctx, d.DB, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []model.AuditLogEntry{}
	}
	return entries, nil
}

// Statistics counts claims that are flagged or were decided.
func (d *Disputes) Statistics(ctx context.Context, actor Actor) (*model.DisputeStatistics, error) {
	if err := requireModerator(actor); err != nil {
		return nil, err
	}

	var counts map[string]int
	err := d.read(ctx, "count claims", func(ctx context.Context) error {
		var err error
		counts, err = store.CountClaimsByStatus(ctx, d.DB)
		return err
	})
	if err != nil {
		return nil, err
	}

	s := &model.DisputeStatistics{
		Flagged:  counts[model.ClaimStatusFlagged],
		Approved: counts[model.ClaimStatusApproved],
		Rejected: counts[model.ClaimStatusRejected],
	}
	s.Total = s.Flagged + s.Approved + s.Rejected
	return s, nil
}
