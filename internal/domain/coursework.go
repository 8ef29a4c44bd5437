package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"classwork_service/internal/errdefs"
)

type WorkKind string

const (
	WorkKindUnspecified    WorkKind = "UNSPECIFIED"
	WorkKindAssignment     WorkKind = "ASSIGNMENT"
	WorkKindMaterial       WorkKind = "MATERIAL"
	WorkKindShortAnswer    WorkKind = "SHORT_ANSWER_QUESTION"
	WorkKindMultipleChoice WorkKind = "MULTIPLE_CHOICE_QUESTION"
)

func (k WorkKind) IsValid() bool {
	switch k {
	case WorkKindAssignment, WorkKindMaterial, WorkKindShortAnswer, WorkKindMultipleChoice:
		return true
	default:
		return false
	}
}

func ToWorkKind(kind string) WorkKind {
	switch kind {
	case "ASSIGNMENT":
		return WorkKindAssignment
	case "MATERIAL":
		return WorkKindMaterial
	case "SHORT_ANSWER_QUESTION":
		return WorkKindShortAnswer
	case "MULTIPLE_CHOICE_QUESTION":
		return WorkKindMultipleChoice
	default:
		return WorkKindUnspecified
	}
}

// Gradable reports whether MaxPoints is meaningful for this kind.
// MATERIAL items are never graded.
func (k WorkKind) Gradable() bool {
	return k == WorkKindAssignment || k == WorkKindShortAnswer || k == WorkKindMultipleChoice
}

type CourseWork struct {
	ID          uuid.UUID
	CourseID    uuid.UUID
	CreatorID   uuid.UUID
	Title       string
	Description *string
	Kind        WorkKind
	DueDate     *time.Time
	MaxPoints   *int
	Attachments []Attachment
	Choices     []string
	CreatedAt   time.Time
	EditedAt    time.Time
}

func (w *CourseWork) Validate() error {
	if strings.TrimSpace(w.Title) == "" {
		return fmt.Errorf("course work title is empty: %w", errdefs.ErrValidation)
	}
	if !w.Kind.IsValid() {
		return fmt.Errorf("course work kind %q: %w", w.Kind, errdefs.ErrValidation)
	}
	if w.MaxPoints != nil && *w.MaxPoints < 0 {
		return fmt.Errorf("max points must be >= 0: %w", errdefs.ErrValidation)
	}
	if w.Kind == WorkKindMultipleChoice && len(w.Choices) == 0 {
		return fmt.Errorf("multiple choice question needs at least one choice: %w", errdefs.ErrValidation)
	}
	if w.Kind != WorkKindMultipleChoice && len(w.Choices) > 0 {
		return fmt.Errorf("choices are only valid for multiple choice questions: %w", errdefs.ErrValidation)
	}
	for _, a := range w.Attachments {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Normalize trims the title and clears fields that are meaningless for the
// kind, so two logically equal items compare equal.
func (w *CourseWork) Normalize() {
	w.Title = strings.TrimSpace(w.Title)
	if !w.Kind.Gradable() {
		w.MaxPoints = nil
	}
	if w.Kind != WorkKindMultipleChoice {
		w.Choices = nil
	}
}

// Graded reports whether the item carries a point ceiling.
func (w *CourseWork) Graded() bool {
	return w.Kind.Gradable() && w.MaxPoints != nil
}

// HasChoice reports whether answer matches one of the choice strings.
// Order matters for display; matching is by exact string equality.
func (w *CourseWork) HasChoice(answer string) bool {
	for _, c := range w.Choices {
		if c == answer {
			return true
		}
	}
	return false
}

type WorkFilter struct {
	Kinds     []WorkKind
	DueBefore *time.Time
}
