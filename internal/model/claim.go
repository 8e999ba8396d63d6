package model

import "time"

// Claim is a user's assertion that they own a found item.
type Claim struct {
	ID                  int64  `json:"id"`
	ItemID              int64  `json:"item_id"`
	ClaimantID          int64  `json:"claimant_id"`
	Description         string `json:"description"`
	IdentifyingFeatures string `json:"identifying_features,omitempty"`
	ProofOfOwnership    string `json:"proof_of_ownership,omitempty"`
	DateLastSeen        string `json:"date_last_seen,omitempty"`
	LocationLastSeen    string `json:"location_last_seen,omitempty"`
	AdditionalInfo      string `json:"additional_info,omitempty"`

	Status             string `json:"status"`
	VerificationStatus string `json:"verification_status"`

	VerificationQuestions []string `json:"verification_questions,omitempty"`
	VerificationAnswers   []string `json:"verification_answers,omitempty"`

	MoreInfoRequestMessage string     `json:"more_info_request_message,omitempty"`
	MoreInfoRequestedAt    *time.Time `json:"more_info_requested_at,omitempty"`
	MoreInfoResponse       string     `json:"more_info_response,omitempty"`
	MoreInfoRespondedAt    *time.Time `json:"more_info_responded_at,omitempty"`

	StatusNotes     string     `json:"status_notes,omitempty"`
	ResolutionNotes string     `json:"resolution_notes,omitempty"`
	Flags           []string   `json:"flags"`
	FlaggedBy       *int64     `json:"flagged_by,omitempty"`
	FlaggedAt       *time.Time `json:"flagged_at,omitempty"`
	ResolvedBy      *int64     `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Joined fields (not always populated).
	ItemName string `json:"item_name,omitempty"`
}

// ClaimFields holds the claimant-supplied part of a claim.
type ClaimFields struct {
	Description         string `json:"description"`
	IdentifyingFeatures string `json:"identifying_features"`
	ProofOfOwnership    string `json:"proof_of_ownership"`
	DateLastSeen        string `json:"date_last_seen"`
	LocationLastSeen    string `json:"location_last_seen"`
	AdditionalInfo      string `json:"additional_info"`
}

// Claim statuses.
const (
	ClaimStatusPending         = "pending"
	ClaimStatusPendingMoreInfo = "pending_more_info"
	ClaimStatusApproved        = "approved"
	ClaimStatusRejected        = "rejected"
	ClaimStatusFlagged         = "flagged"
)

// Verification statuses.
const (
	VerificationNotStarted       = "not_started"
	VerificationQuestionsSent    = "questions_sent"
	VerificationAnswersSubmitted = "answers_submitted"
)

// DefaultFlag is recorded when a claim is flagged without a reason.
const DefaultFlag = "manual_review"

// ClaimTerminal reports whether status admits no further transitions.
func ClaimTerminal(status string) bool {
	return status == ClaimStatusApproved || status == ClaimStatusRejected
}

// ValidClaimStatus reports whether status is one of the five claim statuses.
func ValidClaimStatus(status string) bool {
	switch status {
	case ClaimStatusPending, ClaimStatusPendingMoreInfo, ClaimStatusApproved,
		ClaimStatusRejected, ClaimStatusFlagged:
		return true
	}
	return false
}

// ClaimDetails bundles a claim with its related records. Item and Claimant
// are placeholders when the referenced rows are missing.
type ClaimDetails struct {
	Claim    *Claim `json:"claim"`
	Item     *Item  `json:"item"`
	Claimant *User  `json:"claimant"`
}
