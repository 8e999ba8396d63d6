package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/najdeno/internal/model"
)

const claimColumns = `c.id, c.item_id, c.claimant_id, c.description, c.identifying_features,
	c.proof_of_ownership, c.date_last_seen, c.location_last_seen, c.additional_info,
	c.status, c.verification_status, c.verification_questions, c.verification_answers,
	c.more_info_request_message, c.more_info_requested_at, c.more_info_response, c.more_info_responded_at,
	c.status_notes, c.resolution_notes, c.flags, c.flagged_by, c.flagged_at,
	c.resolved_by, c.resolved_at, c.created_at, c.updated_at,
	COALESCE(i.name, '') AS item_name`

const claimFrom = ` FROM claims c LEFT JOIN items i ON i.id = c.item_id`

// CreateClaim inserts a pending claim and returns its ID.
func CreateClaim(ctx context.Context, db Querier, itemID, claimantID int64, f model.ClaimFields) (int64, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO claims (item_id, claimant_id, description, identifying_features, proof_of_ownership,
		                     date_last_seen, location_last_seen, additional_info, status, verification_status)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		itemID, claimantID, f.Description, f.IdentifyingFeatures, f.ProofOfOwnership,
		f.DateLastSeen, f.LocationLastSeen, f.AdditionalInfo,
		model.ClaimStatusPending, model.VerificationNotStarted,
	)
	if err != nil {
		return 0, fmt.Errorf("creating claim: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting claim id: %w", err)
	}
	return id, nil
}

func scanClaim(row scanner) (*model.Claim, error) {
	c := &model.Claim{}
	var features, proof, dateSeen, locationSeen, additional sql.NullString
	var requestMsg, response, statusNotes, resolutionNotes sql.NullString
	var questions, answers, flags string

	if err := row.Scan(&c.ID, &c.ItemID, &c.ClaimantID, &c.Description, &features,
		&proof, &dateSeen, &locationSeen, &additional,
		&c.Status, &c.VerificationStatus, &questions, &answers,
		&requestMsg, &c.MoreInfoRequestedAt, &response, &c.MoreInfoRespondedAt,
		&statusNotes, &resolutionNotes, &flags, &c.FlaggedBy, &c.FlaggedAt,
		&c.ResolvedBy, &c.ResolvedAt, &c.CreatedAt, &c.UpdatedAt,
		&c.ItemName); err != nil {
		return nil, err
	}

	c.IdentifyingFeatures = features.String
	c.ProofOfOwnership = proof.String
	c.DateLastSeen = dateSeen.String
	c.LocationLastSeen = locationSeen.String
	c.AdditionalInfo = additional.String
	c.MoreInfoRequestMessage = requestMsg.String
	c.MoreInfoResponse = response.String
	c.StatusNotes = statusNotes.String
	c.ResolutionNotes = resolutionNotes.String

	var err error
	if c.Flags, err = decodeList(flags); err != nil {
		return nil, err
	}
	if c.VerificationQuestions, err = decodeList(questions); err != nil {
		return nil, err
	}
	if c.VerificationAnswers, err = decodeList(answers); err != nil {
		return nil, err
	}
	return c, nil
}

// GetClaim returns a claim by ID.
func GetClaim(ctx context.Context, db Querier, id int64) (*model.Claim, error) {
	c, err := scanClaim(db.QueryRowContext(ctx,
		`SELECT `+claimColumns+claimFrom+` WHERE c.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return c, nil
}

// ClaimFilter narrows ListClaims. Zero values match everything.
type ClaimFilter struct {
	ItemID     int64
	ClaimantID int64
	// ReporterID selects claims against items reported by this user.
	ReporterID int64
	Status     string
	Limit      int
	// OldestFirst orders by ID ascending instead of newest first.
	OldestFirst bool
}

// ListClaims returns claims matching the filter.
func ListClaims(ctx context.Context, db Querier, f ClaimFilter) ([]model.Claim, error) {
	query := `SELECT ` + claimColumns + claimFrom + ` WHERE 1=1`
	var args []any

	if f.ItemID > 0 {
		query += ` AND c.item_id = ?`
		args = append(args, f.ItemID)
	}
	if f.ClaimantID > 0 {
		query += ` AND c.claimant_id = ?`
		args = append(args, f.ClaimantID)
	}
	if f.ReporterID > 0 {
		query += ` AND i.reported_by = ?`
		args = append(args, f.ReporterID)
	}
	if f.Status != "" {
		query += ` AND c.status = ?`
		args = append(args, f.Status)
	}

	if f.OldestFirst {
		query += ` ORDER BY c.id ASC`
	} else {
		query += ` ORDER BY c.created_at DESC, c.id DESC`
	}
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning claim: %w", err)
		}
		claims = append(claims, *c)
	}
	return claims, rows.Err()
}

// ClaimUpdate describes the columns written by a status transition. Nil
// fields are left untouched.
type ClaimUpdate struct {
	Status          string
	StatusNotes     *string
	ResolutionNotes *string

	// MoreInfoRequest records a new request and clears any earlier response.
	MoreInfoRequest *string
	// MoreInfoResponse records the claimant's answer to the open request.
	MoreInfoResponse *string

	// Flags replaces the flag set. A non-nil empty slice clears it.
	Flags     []string
	FlaggedBy *int64

	ResolvedBy *int64
}

// TransitionClaim applies u to a claim that is currently in status from.
// It reports false, without writing, when the claim is in any other status.
func TransitionClaim(ctx context.Context, db Querier, id int64, from string, u ClaimUpdate) (bool, error) {
	sets := []string{"status = ?", "updated_at = CURRENT_TIMESTAMP"}
	args := []any{u.Status}

	if u.StatusNotes != nil {
		sets = append(sets, "status_notes = ?")
		args = append(args, *u.StatusNotes)
	}
	if u.ResolutionNotes != nil {
		sets = append(sets, "resolution_notes = ?")
		args = append(args, *u.ResolutionNotes)
	}
	if u.MoreInfoRequest != nil {
		sets = append(sets, "more_info_request_message = ?", "more_info_requested_at = CURRENT_TIMESTAMP",
			"more_info_response = NULL", "more_info_responded_at = NULL")
		args = append(args, *u.MoreInfoRequest)
	}
	if u.MoreInfoResponse != nil {
		sets = append(sets, "more_info_response = ?", "more_info_responded_at = CURRENT_TIMESTAMP")
		args = append(args, *u.MoreInfoResponse)
	}
	if u.Flags != nil {
		flags, err := encodeList(u.Flags)
		if err != nil {
			return false, err
		}
		sets = append(sets, "flags = ?")
		args = append(args, flags)
	}
	if u.FlaggedBy != nil {
		sets = append(sets, "flagged_by = ?", "flagged_at = CURRENT_TIMESTAMP")
		args = append(args, *u.FlaggedBy)
	}
	if u.ResolvedBy != nil {
		sets = append(sets, "resolved_by = ?", "resolved_at = CURRENT_TIMESTAMP")
		args = append(args, *u.ResolvedBy)
	}

	args = append(args, id, from)
	result, err := db.ExecContext(ctx,
		`UPDATE claims SET `+strings.Join(sets, ", ")+` WHERE id = ? AND status = ?`,
		args...,
	)
	if err != nil {
		return false, fmt.Errorf("updating claim: %w", err)
	}
	return affected(result)
}

// UpdateVerification moves the verification axis of a claim. The write only
// happens while the claim still has the given status and verification status.
func UpdateVerification(ctx context.Context, db Querier, id int64, status, fromVerification, toVerification string, questions, answers []string) (bool, error) {
	sets := []string{"verification_status = ?", "updated_at = CURRENT_TIMESTAMP"}
	args := []any{toVerification}

	if questions != nil {
		q, err := encodeList(questions)
		if err != nil {
			return false, err
		}
		sets = append(sets, "verification_questions = ?", "verification_answers = '[]'")
		args = append(args, q)
	}
	if answers != nil {
		a, err := encodeList(answers)
		if err != nil {
			return false, err
		}
		sets = append(sets, "verification_answers = ?")
		args = append(args, a)
	}

	args = append(args, id, status, fromVerification)
	result, err := db.ExecContext(ctx,
		`UPDATE claims SET `+strings.Join(sets, ", ")+`
		 WHERE id = ? AND status = ? AND verification_status = ?`,
		args...,
	)
	if err != nil {
		return false, fmt.Errorf("updating claim verification: %w", err)
	}
	return affected(result)
}

// CountClaimsByStatus returns the number of claims per status.
func CountClaimsByStatus(ctx context.Context, db Querier) (map[string]int, error) {
	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*) FROM claims GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting claims: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scanning claim count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
