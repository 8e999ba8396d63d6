package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/najdeno/internal/model"
)

const itemColumns = `id, name, category, description, location, image_url, status, reported_by,
	reported_at, claim_count, returned_to, returned_at, updated_at, deleted_at`

// CreateItem records a newly reported item. Status defaults to found.
func CreateItem(ctx context.Context, db Querier, item *model.Item) (*model.Item, error) {
	status := item.Status
	if status == "" {
		status = model.ItemStatusFound
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, category, description, location, image_url, status, reported_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.Name, item.Category, item.Description, item.Location, item.ImageURL, status, item.ReportedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

func scanItem(row scanner) (*model.Item, error) {
	item := &model.Item{}
	var category, description, location, imageURL sql.NullString
	if err := row.Scan(&item.ID, &item.Name, &category, &description, &location, &imageURL,
		&item.Status, &item.ReportedBy, &item.ReportedAt, &item.ClaimCount,
		&item.ReturnedTo, &item.ReturnedAt, &item.UpdatedAt, &item.DeletedAt); err != nil {
		return nil, err
	}
	item.Category = category.String
	item.Description = description.String
	item.Location = location.String
	item.ImageURL = imageURL.String
	return item, nil
}

// GetItem returns an item by ID, including soft-deleted ones.
func GetItem(ctx context.Context, db Querier, id int64) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns non-deleted items, newest first, optionally filtered by
// status and reporter.
func ListItems(ctx context.Context, db Querier, status string, reportedBy int64) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE deleted_at IS NULL`
	var args []any

	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	if reportedBy > 0 {
		query += ` AND reported_by = ?`
		args = append(args, reportedBy)
	}

	query += ` ORDER BY reported_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem rewrites the descriptive fields of an active item. Status is
// owned by the claim lifecycle and is never written here. It reports false
// when the item does not exist or was deleted.
func UpdateItem(ctx context.Context, db Querier, item *model.Item) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, category = ?, description = ?, location = ?, image_url = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND deleted_at IS NULL`,
		item.Name, item.Category, item.Description, item.Location, item.ImageURL, item.ID,
	)
	if err != nil {
		return false, fmt.Errorf("updating item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating item: %w", err)
	}
	return n == 1, nil
}

// DeleteItem soft-deletes an item. Rows are kept so claims can still
// reference them.
func DeleteItem(ctx context.Context, db Querier, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// SetItemStatusIf moves an active item from one status to another. It reports
// false when the item was not in the expected status.
func SetItemStatusIf(ctx context.Context, db Querier, id int64, from, to string) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ? AND deleted_at IS NULL`,
		to, id, from,
	)
	if err != nil {
		return false, fmt.Errorf("updating item status: %w", err)
	}
	return affected(result)
}

// MarkItemReturned moves a claimed item to returned and records the claimant.
func MarkItemReturned(ctx context.Context, db Querier, id, returnedTo int64) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET status = ?, returned_to = ?, returned_at = CURRENT_TIMESTAMP,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND status = ? AND deleted_at IS NULL`,
		model.ItemStatusReturned, returnedTo, id, model.ItemStatusClaimed,
	)
	if err != nil {
		return false, fmt.Errorf("marking item returned: %w", err)
	}
	return affected(result)
}

// IncrementClaimCount atomically bumps the item's claim counter.
func IncrementClaimCount(ctx context.Context, db Querier, id int64) error {
	_, err := db.ExecContext(ctx,
		`UPDATE items SET claim_count = claim_count + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("incrementing claim count: %w", err)
	}
	return nil
}
