package claims

import (
	"fmt"
	"slices"

	"github.com/erazemk/najdeno/internal/model"
)

// Transition names a claim status change. The names double as metric labels.
type Transition string

const (
	TransitionSubmit          Transition = "submit"
	TransitionRequestMoreInfo Transition = "request_more_info"
	TransitionRespond         Transition = "respond"
	TransitionApprove         Transition = "approve"
	TransitionReject          Transition = "reject"
	TransitionDecideFlag      Transition = "decide_flag"
	TransitionFlag            Transition = "flag"
	TransitionResolveApprove  Transition = "resolve_approve"
	TransitionResolveReject   Transition = "resolve_reject"
	TransitionResolveMoreInfo Transition = "resolve_more_info"

	// Verification transitions leave the primary status alone.
	TransitionSendQuestions Transition = "send_questions"
	TransitionSubmitAnswers Transition = "submit_answers"
)

type edge struct {
	from []string
	to   string
}

// transitions is the only place that decides which status changes are legal.
var transitions = map[Transition]edge{
	TransitionRequestMoreInfo: {
		from: []string{model.ClaimStatusPending},
		to:   model.ClaimStatusPendingMoreInfo,
	},
	TransitionRespond: {
		from: []string{model.ClaimStatusPendingMoreInfo},
		to:   model.ClaimStatusPending,
	},
	TransitionApprove: {
		from: []string{model.ClaimStatusPending, model.ClaimStatusPendingMoreInfo},
		to:   model.ClaimStatusApproved,
	},
	TransitionReject: {
		from: []string{model.ClaimStatusPending, model.ClaimStatusPendingMoreInfo},
		to:   model.ClaimStatusRejected,
	},
	TransitionDecideFlag: {
		from: []string{model.ClaimStatusPending, model.ClaimStatusPendingMoreInfo},
		to:   model.ClaimStatusFlagged,
	},
	TransitionFlag: {
		from: []string{model.ClaimStatusPending, model.ClaimStatusPendingMoreInfo, model.ClaimStatusFlagged},
		to:   model.ClaimStatusFlagged,
	},
	TransitionResolveApprove: {
		from: []string{model.ClaimStatusFlagged},
		to:   model.ClaimStatusApproved,
	},
	TransitionResolveReject: {
		from: []string{model.ClaimStatusFlagged},
		to:   model.ClaimStatusRejected,
	},
	TransitionResolveMoreInfo: {
		from: []string{model.ClaimStatusFlagged},
		to:   model.ClaimStatusPendingMoreInfo,
	},
}

// nextStatus returns the status c moves to under t, or the reason it cannot.
func nextStatus(c *model.Claim, t Transition) (string, error) {
	if model.ClaimTerminal(c.Status) {
		return "", fmt.Errorf("%w: claim %d is %s", ErrAlreadyResolved, c.ID, c.Status)
	}

	e, ok := transitions[t]
	if !ok {
		return "", fmt.Errorf("%w: unknown transition %q", ErrInvalidState, t)
	}
	if !slices.Contains(e.from, c.Status) {
		return "", fmt.Errorf("%w: cannot %s a %s claim", ErrInvalidState, t, c.Status)
	}

	// A claim waiting on the claimant can only be decided once they answered.
	decision := t == TransitionApprove || t == TransitionReject || t == TransitionDecideFlag
	if decision &&
		c.Status == model.ClaimStatusPendingMoreInfo && c.MoreInfoResponse == "" {
		return "", fmt.Errorf("%w: claim %d is awaiting the claimant's response", ErrInvalidState, c.ID)
	}

	return e.to, nil
}
