package claims

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// DefaultListLimit caps the admin claim listing.
const DefaultListLimit = 100

// GetClaim returns a claim by ID.
func (e *Engine) GetClaim(ctx context.Context, claimID int64) (*model.Claim, error) {
	var c *model.Claim
	err := e.read(ctx, "get claim", func(ctx context.Context) error {
		var err error
		c, err = loadClaim(ctx, e.DB, claimID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetClaimDetails returns the claim with its item and claimant, loaded
// concurrently. Missing records are replaced by placeholders.
func (e *Engine) GetClaimDetails(ctx context.Context, claimID int64) (*model.ClaimDetails, error) {
	c, err := e.GetClaim(ctx, claimID)
	if err != nil {
		return nil, err
	}

	d := &model.ClaimDetails{Claim: c}
	err = e.read(ctx, "get claim details", func(ctx context.Context) error {
		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			item, err := store.GetItem(ctx, e.DB, c.ItemID)
			if err != nil {
				return err
			}
			switch {
			case item == nil:
				item = model.PlaceholderItem(c.ItemID)
			case item.DeletedAt != nil:
				item.IsDeleted = true
			}
			d.Item = item
			return nil
		})

		g.Go(func() error {
			u, err := store.GetUser(ctx, e.DB, c.ClaimantID)
			if err != nil {
				return err
			}
			if u == nil {
				u = model.PlaceholderUser(c.ClaimantID)
			}
			d.Claimant = u
			return nil
		})

		return g.Wait()
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (e *Engine) list(ctx context.Context, op string, f store.ClaimFilter) ([]model.Claim, error) {
	var claims []model.Claim
	err := e.read(ctx, op, func(ctx context.Context) error {
		var err error
		claims, err = store.ListClaims(ctx, e.DB, f)
		return err
	})
	if err != nil {
		return nil, err
	}
	if claims == nil {
		claims = []model.Claim{}
	}
	return claims, nil
}

// ListMyClaims returns the claims a user submitted.
func (e *Engine) ListMyClaims(ctx context.Context, claimantID int64) ([]model.Claim, error) {
	return e.list(ctx, "list own claims", store.ClaimFilter{ClaimantID: claimantID})
}

// ListClaimsForMyItems returns claims against items the user reported.
func (e *Engine) ListClaimsForMyItems(ctx context.Context, reporterID int64) ([]model.Claim, error) {
	return e.list(ctx, "list received claims", store.ClaimFilter{ReporterID: reporterID})
}

// ListItemClaims returns every claim on an item. Only the reporter and
// moderators may see them.
func (e *Engine) ListItemClaims(ctx context.Context, itemID int64, actor Actor) ([]model.Claim, error) {
	var item *model.Item
	err := e.read(ctx, "get item", func(ctx context.Context) error {
		var err error
		item, err = store.GetItem(ctx, e.DB, itemID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: item %d", ErrNotFound, itemID)
	}
	if !canReview(actor, item) {
		return nil, fmt.Errorf("%w: only the item's reporter or a moderator can list its claims", ErrPermission)
	}
	return e.list(ctx, "list item claims", store.ClaimFilter{ItemID: itemID})
}

// ListClaims returns the newest claims, optionally filtered by status.
func (e *Engine) ListClaims(ctx context.Context, status string, limit int) ([]model.Claim, error) {
	if status != "" && !model.ValidClaimStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}
	return e.list(ctx, "list claims", store.ClaimFilter{Status: status, Limit: limit})
}

// CanView reports whether the actor may read the claim's details.
func CanView(a Actor, d *model.ClaimDetails) bool {
	if a.AtLeast(model.RoleModerator) || d.Claim.ClaimantID == a.ID {
		return true
	}
	return d.Item != nil && d.Item.ReportedBy == a.ID
}
