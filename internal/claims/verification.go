package claims

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

func cleanList(list []string) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SendVerificationQuestions asks the claimant to answer questions only the
// owner would know. Questions can be re-sent after answers came back.
func (e *Engine) SendVerificationQuestions(ctx context.Context, claimID int64, questions []string, actor Actor) error {
	questions = cleanList(questions)
	if len(questions) == 0 {
		observe(TransitionSendQuestions, ErrValidation)
		return fmt.Errorf("%w: at least one question is required", ErrValidation)
	}

	return e.inTx(ctx, TransitionSendQuestions, func(ctx context.Context, tx *sql.Tx) ([]notice, error) {
		c, err := loadClaim(ctx, tx, claimID)
		if err != nil {
			return nil, err
		}
		item, err := loadItem(ctx, tx, c.ItemID)
		if err != nil {
			return nil, err
		}
		if !canReview(actor, item) {
			return nil, fmt.Errorf("%w: only the item's reporter or a moderator can send questions", ErrPermission)
		}
		if model.ClaimTerminal(c.Status) {
			return nil, fmt.Errorf("%w: claim %d is %s", ErrAlreadyResolved, c.ID, c.Status)
		}
		if c.VerificationStatus == model.VerificationQuestionsSent {
			return nil, fmt.Errorf("%w: claim %d already has unanswered questions", ErrInvalidState, c.ID)
		}

		ok, err := store.UpdateVerification(ctx, tx, c.ID, c.Status, c.VerificationStatus,
			model.VerificationQuestionsSent, questions, nil)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: claim %d changed concurrently", ErrInvalidState, c.ID)
		}

		return []notice{{userID: c.ClaimantID, event: model.EventVerificationUpdate, payload: payloadFor(c, item)}}, nil
	})
}

// SubmitVerificationAnswers records the claimant's answers, one per question.
func (e *Engine) SubmitVerificationAnswers(ctx context.Context, claimID int64, answers []string, actor Actor) error {
	answers = cleanList(answers)
	if len(answers) == 0 {
		observe(TransitionSubmitAnswers, ErrValidation)
		return fmt.Errorf("%w: answers are required", ErrValidation)
	}

	return e.inTx(ctx, TransitionSubmitAnswers, func(ctx context.Context, tx *sql.Tx) ([]notice, error) {
		c, err := loadClaim(ctx, tx, claimID)
		if err != nil {
			return nil, err
		}
		if c.ClaimantID != actor.ID {
			return nil, fmt.Errorf("%w: only the claimant can answer", ErrPermission)
		}
		if model.ClaimTerminal(c.Status) {
			return nil, fmt.Errorf("%w: claim %d is %s", ErrAlreadyResolved, c.ID, c.Status)
		}
		if c.VerificationStatus != model.VerificationQuestionsSent {
			return nil, fmt.Errorf("%w: claim %d has no open questions", ErrInvalidState, c.ID)
		}
		if len(answers) != len(c.VerificationQuestions) {
			return nil, fmt.Errorf("%w: expected %d answers, got %d", ErrValidation, len(c.VerificationQuestions), len(answers))
		}

		ok, err := store.UpdateVerification(ctx, tx, c.ID, c.Status, c.VerificationStatus,
			model.VerificationAnswersSubmitted, nil, answers)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: claim %d changed concurrently", ErrInvalidState, c.ID)
		}

		item, err := loadItem(ctx, tx, c.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, nil
		}
		return []notice{{userID: item.ReportedBy, event: model.EventVerificationUpdate, payload: payloadFor(c, item)}}, nil
	})
}
