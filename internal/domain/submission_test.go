package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classwork_service/internal/domain"
	"classwork_service/internal/errdefs"
)

func newAssignmentWork(maxPoints *int) *domain.CourseWork {
	return &domain.CourseWork{
		ID:        uuid.New(),
		CourseID:  uuid.New(),
		Title:     "Essay",
		Kind:      domain.WorkKindAssignment,
		MaxPoints: maxPoints,
	}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestTurnIn(t *testing.T) {
	t.Run("FromAssigned", func(t *testing.T) {
		sub := domain.NewStudentSubmission(uuid.New(), uuid.New(), uuid.New())
		require.NoError(t, sub.TurnIn())
		assert.Equal(t, domain.StateTurnedIn, sub.State)
	})

	t.Run("FromReclaimed", func(t *testing.T) {
		sub := domain.NewStudentSubmission(uuid.New(), uuid.New(), uuid.New())
		sub.State = domain.StateReclaimed
		require.NoError(t, sub.TurnIn())
		assert.Equal(t, domain.StateTurnedIn, sub.State)
	})

	t.Run("FromReturnedReentersDirectly", func(t *testing.T) {
		sub := domain.NewStudentSubmission(uuid.New(), uuid.New(), uuid.New())
		sub.State = domain.StateReturned
		require.NoError(t, sub.TurnIn())
		assert.Equal(t, domain.StateTurnedIn, sub.State)
	})

	t.Run("AlreadyTurnedIn", func(t *testing.T) {
		sub := domain.NewStudentSubmission(uuid.New(), uuid.New(), uuid.New())
		sub.State = domain.StateTurnedIn
		err := sub.TurnIn()
		assert.ErrorIs(t, err, errdefs.ErrInvalidTransition)
		assert.Equal(t, domain.StateTurnedIn, sub.State)
	})

	t.Run("BlankAssignmentAllowed", func(t *testing.T) {
		// The source system accepts a turn-in with zero attachments.
		sub := domain.NewStudentSubmission(uuid.New(), uuid.New(), uuid.New())
		require.Empty(t, sub.AssignmentAnswer)
		require.NoError(t, sub.TurnIn())
	})
}

func TestReclaim(t *testing.T) {
	t.Run("FromTurnedIn", func(t *testing.T) {
		sub := domain.NewStudentSubmission(uuid.New(), uuid.New(), uuid.New())
		sub.State = domain.StateTurnedIn
		require.NoError(t, sub.Reclaim())
		assert.Equal(t, domain.StateReclaimed, sub.State)
	})

	t.Run("FromReturnedRejected", func(t *testing.T) {
		sub := domain.NewStudentSubmission(uuid.New(), uuid.New(), uuid.New())
		sub.State = domain.StateReturned
		err := sub.Reclaim()
		assert.ErrorIs(t, err, errdefs.ErrInvalidTransition)
		assert.Equal(t, domain.StateReturned, sub.State)
	})

	t.Run("FromAssignedRejected", func(t *testing.T) {
		sub := domain.NewStudentSubmission(uuid.New(), uuid.New(), uuid.New())
		err := sub.Reclaim()
		assert.ErrorIs(t, err, errdefs.ErrInvalidTransition)
		assert.Equal(t, domain.StateAssigned, sub.State)
	})
}

func TestReturn(t *testing.T) {
	t.Run("WithGrade", func(t *testing.T) {
		work := newAssignmentWork(intPtr(100))
		sub := domain.NewStudentSubmission(uuid.New(), work.ID, uuid.New())
		sub.State = domain.StateTurnedIn

		require.NoError(t, sub.Return(intPtr(95), work))
		assert.Equal(t, domain.StateReturned, sub.State)
		require.NotNil(t, sub.AssignedGrade)
		assert.Equal(t, 95, *sub.AssignedGrade)
	})

	t.Run("GradeAboveCeilingRejectedWithoutTransition", func(t *testing.T) {
		work := newAssignmentWork(intPtr(100))
		sub := domain.NewStudentSubmission(uuid.New(), work.ID, uuid.New())
		sub.State = domain.StateTurnedIn

		err := sub.Return(intPtr(105), work)
		assert.ErrorIs(t, err, errdefs.ErrGradeOutOfRange)
		assert.Equal(t, domain.StateTurnedIn, sub.State)
		assert.Nil(t, sub.AssignedGrade)
	})

	t.Run("NegativeGradeRejected", func(t *testing.T) {
		work := newAssignmentWork(nil)
		sub := domain.NewStudentSubmission(uuid.New(), work.ID, uuid.New())
		sub.State = domain.StateTurnedIn

		err := sub.Return(intPtr(-1), work)
		assert.ErrorIs(t, err, errdefs.ErrGradeOutOfRange)
		assert.Equal(t, domain.StateTurnedIn, sub.State)
	})

	t.Run("WithoutGrade", func(t *testing.T) {
		work := newAssignmentWork(intPtr(10))
		sub := domain.NewStudentSubmission(uuid.New(), work.ID, uuid.New())
		sub.State = domain.StateTurnedIn

		require.NoError(t, sub.Return(nil, work))
		assert.Equal(t, domain.StateReturned, sub.State)
		assert.Nil(t, sub.AssignedGrade)
	})

	t.Run("RegradeFromReturned", func(t *testing.T) {
		work := newAssignmentWork(intPtr(100))
		sub := domain.NewStudentSubmission(uuid.New(), work.ID, uuid.New())
		sub.State = domain.StateReturned
		sub.AssignedGrade = intPtr(80)

		require.NoError(t, sub.Return(intPtr(90), work))
		assert.Equal(t, domain.StateReturned, sub.State)
		assert.Equal(t, 90, *sub.AssignedGrade)
	})

	t.Run("FromAssignedRejected", func(t *testing.T) {
		work := newAssignmentWork(intPtr(100))
		sub := domain.NewStudentSubmission(uuid.New(), work.ID, uuid.New())

		err := sub.Return(intPtr(50), work)
		assert.ErrorIs(t, err, errdefs.ErrInvalidTransition)
		assert.Equal(t, domain.StateAssigned, sub.State)
	})

	t.Run("KeepsAnswerPayload", func(t *testing.T) {
		work := newAssignmentWork(intPtr(100))
		sub := domain.NewStudentSubmission(uuid.New(), work.ID, uuid.New())
		sub.AssignmentAnswer = []domain.Attachment{domain.NewLinkAttachment("http://example.com")}
		sub.State = domain.StateTurnedIn

		require.NoError(t, sub.Return(intPtr(50), work))
		assert.Len(t, sub.AssignmentAnswer, 1)
	})
}

func TestValidateAgainst(t *testing.T) {
	t.Run("AnswerMatchesKind", func(t *testing.T) {
		work := &domain.CourseWork{
			ID:      uuid.New(),
			Title:   "Quiz",
			Kind:    domain.WorkKindMultipleChoice,
			Choices: []string{"a", "b"},
		}
		sub := domain.NewStudentSubmission(uuid.New(), work.ID, uuid.New())
		sub.MultipleChoiceAnswer = strPtr("b")
		assert.NoError(t, sub.ValidateAgainst(work))
	})

	t.Run("AnswerNotAChoice", func(t *testing.T) {
		work := &domain.CourseWork{
			ID:      uuid.New(),
			Title:   "Quiz",
			Kind:    domain.WorkKindMultipleChoice,
			Choices: []string{"a", "b"},
		}
		sub := domain.NewStudentSubmission(uuid.New(), work.ID, uuid.New())
		sub.MultipleChoiceAnswer = strPtr("c")
		assert.ErrorIs(t, sub.ValidateAgainst(work), errdefs.ErrValidation)
	})

	t.Run("WrongPayloadForKind", func(t *testing.T) {
		work := newAssignmentWork(nil)
		sub := domain.NewStudentSubmission(uuid.New(), work.ID, uuid.New())
		sub.ShortAnswer = strPtr("an essay is not a short answer")
		assert.ErrorIs(t, sub.ValidateAgainst(work), errdefs.ErrValidation)
	})

	t.Run("AttachmentLimit", func(t *testing.T) {
		work := newAssignmentWork(nil)
		sub := domain.NewStudentSubmission(uuid.New(), work.ID, uuid.New())
		for i := 0; i < domain.MaxAnswerAttachments+1; i++ {
			sub.AssignmentAnswer = append(sub.AssignmentAnswer, domain.NewLinkAttachment("http://example.com"))
		}
		assert.ErrorIs(t, sub.ValidateAgainst(work), errdefs.ErrTooManyAttachments)
	})
}
