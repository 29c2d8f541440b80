package applications

import (
	"fmt"
	"strings"

	"jobkonnect.org/internal/errs"
)

// Status is the review state of an application.
//
//	submitted -> under_review -> accepted | rejected
//
// The arrows document the usual progression only. Employers may set any
// status at any time; see CanTransition.
type Status string

const (
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusRejected    Status = "rejected"
	StatusAccepted    Status = "accepted"
)

// Statuses lists every valid status in progression order.
var Statuses = []Status{StatusSubmitted, StatusUnderReview, StatusRejected, StatusAccepted}

// ParseStatus accepts exactly the four status values.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.TrimSpace(s))
	if !st.Valid() {
		return "", fmt.Errorf("%w: status must be one of submitted, under_review, rejected, accepted", errs.ErrValidation)
	}
	return st, nil
}

func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusRejected, StatusAccepted:
		return true
	}
	return false
}

// Terminal reports whether s ends the usual progression.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// CanTransition reports whether an application in from may be moved to to.
// Every pair of valid statuses is allowed, including leaving a terminal
// status and rewriting the same status.
func CanTransition(from, to Status) bool {
	return from.Valid() && to.Valid()
}
