package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"classwork_service/internal/errdefs"
)

type SubmissionState string

const (
	StateAssigned  SubmissionState = "ASSIGNED"
	StateTurnedIn  SubmissionState = "TURNED_IN"
	StateReturned  SubmissionState = "RETURNED"
	StateReclaimed SubmissionState = "RECLAIMED_BY_STUDENT"
)

func (s SubmissionState) IsValid() bool {
	switch s {
	case StateAssigned, StateTurnedIn, StateReturned, StateReclaimed:
		return true
	default:
		return false
	}
}

// MaxAnswerAttachments caps an assignment answer's attachment list.
const MaxAnswerAttachments = 20

// StudentSubmission is the single response record of one student to one
// course work item. Exactly one answer payload is populated, selected by the
// parent's kind.
type StudentSubmission struct {
	ID                   uuid.UUID
	CourseID             uuid.UUID
	CourseWorkID         uuid.UUID
	StudentID            uuid.UUID
	State                SubmissionState
	AssignmentAnswer     []Attachment
	ShortAnswer          *string
	MultipleChoiceAnswer *string
	AssignedGrade        *int
	CreatedAt            time.Time
	EditedAt             time.Time
}

// NewStudentSubmission builds the implicit initial record created when a
// student first opens a course work item.
func NewStudentSubmission(courseID, courseWorkID, studentID uuid.UUID) *StudentSubmission {
	return &StudentSubmission{
		CourseID:     courseID,
		CourseWorkID: courseWorkID,
		StudentID:    studentID,
		State:        StateAssigned,
	}
}

// ValidateAgainst checks the answer payload against the parent's kind:
// at most the payload matching the kind may be set.
func (s *StudentSubmission) ValidateAgainst(work *CourseWork) error {
	if s.CourseWorkID != work.ID {
		return fmt.Errorf("submission does not belong to course work: %w", errdefs.ErrInvalidArgument)
	}
	if work.Kind != WorkKindAssignment && len(s.AssignmentAnswer) > 0 {
		return fmt.Errorf("assignment answer on %s work: %w", work.Kind, errdefs.ErrValidation)
	}
	if work.Kind != WorkKindShortAnswer && s.ShortAnswer != nil {
		return fmt.Errorf("short answer on %s work: %w", work.Kind, errdefs.ErrValidation)
	}
	if work.Kind != WorkKindMultipleChoice && s.MultipleChoiceAnswer != nil {
		return fmt.Errorf("multiple choice answer on %s work: %w", work.Kind, errdefs.ErrValidation)
	}
	if len(s.AssignmentAnswer) > MaxAnswerAttachments {
		return errdefs.ErrTooManyAttachments
	}
	if s.MultipleChoiceAnswer != nil && !work.HasChoice(*s.MultipleChoiceAnswer) {
		return fmt.Errorf("answer is not one of the offered choices: %w", errdefs.ErrValidation)
	}
	for _, a := range s.AssignmentAnswer {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// TurnIn moves the submission to TURNED_IN. Allowed from ASSIGNED and
// RECLAIMED_BY_STUDENT, and also from RETURNED: re-submitting after a return
// re-enters TURNED_IN directly because the grade was already communicated.
// A blank assignment answer is accepted; the source system allows it.
func (s *StudentSubmission) TurnIn() error {
	switch s.State {
	case StateAssigned, StateReclaimed, StateReturned:
		s.State = StateTurnedIn
		return nil
	case StateTurnedIn:
		return fmt.Errorf("already turned in: %w", errdefs.ErrInvalidTransition)
	default:
		return fmt.Errorf("cannot turn in from %s: %w", s.State, errdefs.ErrInvalidTransition)
	}
}

// Reclaim withdraws a turned-in submission for further editing. A returned
// submission cannot be reclaimed; the grade has already been handed back.
func (s *StudentSubmission) Reclaim() error {
	if s.State != StateTurnedIn {
		return fmt.Errorf("cannot reclaim from %s: %w", s.State, errdefs.ErrInvalidTransition)
	}
	s.State = StateReclaimed
	return nil
}

// Return hands the submission back, optionally recording a grade. Allowed
// from TURNED_IN and from RETURNED (re-grading). The grade is validated
// against the ceiling before the transition; a rejected grade leaves state
// and answer untouched. Only State and AssignedGrade ever change here.
func (s *StudentSubmission) Return(grade *int, work *CourseWork) error {
	if s.State != StateTurnedIn && s.State != StateReturned {
		return fmt.Errorf("cannot return from %s: %w", s.State, errdefs.ErrInvalidTransition)
	}
	if grade != nil {
		if *grade < 0 {
			return errdefs.ErrGradeOutOfRange
		}
		if work.MaxPoints != nil && *grade > *work.MaxPoints {
			return errdefs.ErrGradeOutOfRange
		}
	}
	if grade != nil {
		g := *grade
		s.AssignedGrade = &g
	}
	s.State = StateReturned
	return nil
}
