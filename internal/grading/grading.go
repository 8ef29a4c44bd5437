// Package grading holds the pure grade-parsing and display-status rules.
package grading

import (
	"strconv"
	"strings"
	"time"

	"classwork_service/internal/domain"
	"classwork_service/internal/errdefs"
)

// ParseDraftGrade parses a teacher-entered draft grade. An empty or
// unparseable input yields nil; the value is advisory until the return
// action revalidates it against the ceiling.
func ParseDraftGrade(text string) *int {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	grade, err := strconv.Atoi(text)
	if err != nil {
		return nil
	}
	return &grade
}

// ValidateGrade checks a confirmed grade against the course work ceiling.
// Out-of-range grades are rejected, never clamped.
func ValidateGrade(grade int, maxPoints *int) error {
	if grade < 0 {
		return errdefs.ErrGradeOutOfRange
	}
	if maxPoints != nil && grade > *maxPoints {
		return errdefs.ErrGradeOutOfRange
	}
	return nil
}

// Status is the derived per-render label of a submission.
type Status string

const (
	StatusGraded   Status = "graded"
	StatusTurnedIn Status = "turned in"
	StatusReturned Status = "returned"
	StatusMissing  Status = "missing"
	StatusAssigned Status = "assigned"
)

// DisplayStatus computes the label in strict priority order; the first
// matching rule wins. A graded submission reports "graded" even while its
// state is still TURNED_IN.
func DisplayStatus(sub *domain.StudentSubmission, work *domain.CourseWork, now time.Time) Status {
	switch {
	case sub.AssignedGrade != nil && work.Graded():
		return StatusGraded
	case sub.State == domain.StateTurnedIn:
		return StatusTurnedIn
	case !work.Graded() && sub.State == domain.StateReturned:
		return StatusReturned
	case work.DueDate != nil && work.DueDate.Before(now):
		return StatusMissing
	default:
		return StatusAssigned
	}
}
