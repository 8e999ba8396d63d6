package model

import (
	"encoding/json"
	"time"
)

// AuditLogEntry records one administrative action. Entries are never updated.
type AuditLogEntry struct {
	ID          int64           `json:"id"`
	Action      string          `json:"action"`
	Details     json.RawMessage `json:"details"`
	PerformedBy int64           `json:"performed_by"`
	Timestamp   time.Time       `json:"timestamp"`
}

// Audit actions.
const (
	AuditResolveDispute = "resolve_dispute"
	AuditFlagClaim      = "flag_claim"
)

// DisputeResolutionDetails is the payload of a resolve_dispute entry.
type DisputeResolutionDetails struct {
	DisputeID  int64  `json:"disputeId"`
	Resolution string `json:"resolution"`
	Notes      string `json:"notes"`
}

// FlagClaimDetails is the payload of a flag_claim entry.
type FlagClaimDetails struct {
	ClaimID int64  `json:"claimId"`
	Reason  string `json:"reason"`
}

// DisputeStatistics summarizes claims that went through review.
type DisputeStatistics struct {
	Flagged  int `json:"flagged"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}
