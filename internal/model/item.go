package model

import "time"

// Item is a lost or found object reported by a community member.
type Item struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category,omitempty"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	Status      string     `json:"status"`
	ReportedBy  int64      `json:"reported_by"`
	ReportedAt  time.Time  `json:"reported_at"`
	ClaimCount  int        `json:"claim_count"`
	ReturnedTo  *int64     `json:"returned_to,omitempty"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`

	// IsDeleted is set on claim detail reads when the item is gone or soft-deleted.
	IsDeleted bool `json:"is_deleted,omitempty"`
}

// Item statuses.
const (
	ItemStatusLost     = "lost"
	ItemStatusFound    = "found"
	ItemStatusClaimed  = "claimed"
	ItemStatusReturned = "returned"
)

// UnavailableItemName is shown in place of an item that no longer exists.
const UnavailableItemName = "Item Not Available"

// ValidReportStatus reports whether status is accepted when reporting an item.
func ValidReportStatus(status string) bool {
	return status == ItemStatusLost || status == ItemStatusFound
}

// ValidItemStatus reports whether status is a known item status.
func ValidItemStatus(status string) bool {
	switch status {
	case ItemStatusLost, ItemStatusFound, ItemStatusClaimed, ItemStatusReturned:
		return true
	}
	return false
}

// PlaceholderItem returns the record substituted for a missing item so that
// claim history stays inspectable.
func PlaceholderItem(id int64) *Item {
	return &Item{ID: id, Name: UnavailableItemName, IsDeleted: true}
}
