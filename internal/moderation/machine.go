// Package moderation implements the listing status state machine. Transition
// is a pure function of (actor, current state, requested state); the service
// layer persists whatever change it returns.
package moderation

import (
	"fmt"
	"strings"

	"github.com/William19D/rv-parks-for-sale-sub001/internal/apperr"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/model"
)

// DefaultRejectionReason is stored when an admin rejects a listing without
// giving a reason. Rejections always carry a non-empty reason.
const DefaultRejectionReason = "Does not meet listing guidelines"

// Change is the persistable outcome of a transition. NoOp marks a
// self-transition; the caller must not write anything for it.
type Change struct {
	Status          model.Status
	RejectionReason string
	NoOp            bool
}

// allowed enumerates the legal transitions. A rejected listing cannot be
// approved directly; it goes back through pending for re-review.
var allowed = map[model.Status][]model.Status{
	model.StatusPending:  {model.StatusApproved, model.StatusRejected},
	model.StatusApproved: {model.StatusPending, model.StatusRejected},
	model.StatusRejected: {model.StatusPending},
}

// Transition decides the status change for a listing currently in state
// current (with currentReason stored, if any) when actor requests target.
// Only admins may transition; everyone else gets apperr.ErrForbidden before
// the request is looked at. An unknown target is a validation error naming
// the value. Transitions to rejected carry reason, substituting
// DefaultRejectionReason when the supplied one is blank; transitions to any
// other state clear the reason.
func Transition(actor model.Actor, current model.Status, currentReason string, target model.Status, reason string) (Change, error) {
	if !actor.IsAdmin() {
		return Change{}, apperr.ErrForbidden
	}
	if !target.Valid() {
		return Change{}, apperr.Validation("status", fmt.Sprintf("unknown status %q", string(target)))
	}

	// Rows written before moderation existed have no status and are
	// publicly visible, so for transition purposes they sit in approved.
	if current == "" {
		current = model.StatusApproved
	}

	if target == current {
		return Change{Status: current, RejectionReason: currentReason, NoOp: true}, nil
	}

	if !transitionAllowed(current, target) {
		return Change{}, apperr.Validation("status",
			fmt.Sprintf("cannot move a %s listing to %s", string(current), string(target)))
	}

	if target == model.StatusRejected {
		r := strings.TrimSpace(reason)
		if r == "" {
			r = DefaultRejectionReason
		}
		return Change{Status: target, RejectionReason: r}, nil
	}
	return Change{Status: target}, nil
}

func transitionAllowed(from, to model.Status) bool {
	for _, t := range allowed[from] {
		if t == to {
			return true
		}
	}
	return false
}
