package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"classwork_service/internal/access"
	"classwork_service/internal/ctxdata"
	"classwork_service/internal/domain"
	"classwork_service/internal/errdefs"
	"classwork_service/internal/grading"
	"classwork_service/pkg/logger"
)

const (
	topicSubmissionTurnedIn = "submission-turned-in"
	topicSubmissionReturned = "submission-returned"
)

type SubmissionService struct {
	courseRepo     CourseRepository
	workRepo       CourseWorkRepository
	submissionRepo SubmissionRepository
	events         EventProducer
	log            *logger.Logger
}

func NewSubmissionService(
	courseRepo CourseRepository,
	workRepo CourseWorkRepository,
	submissionRepo SubmissionRepository,
	events EventProducer,
	log *logger.Logger,
) *SubmissionService {
	return &SubmissionService{
		courseRepo:     courseRepo,
		workRepo:       workRepo,
		submissionRepo: submissionRepo,
		events:         events,
		log:            log,
	}
}

// GetOrCreateSubmission returns the acting student's submission for a work
// item, creating the implicit ASSIGNED record on first access. A racing
// create loses to the unique key and falls back to a re-read, so exactly one
// submission exists per (course work, student) pair.
func (s *SubmissionService) GetOrCreateSubmission(ctx context.Context, courseWorkID uuid.UUID) (*domain.StudentSubmission, error) {
	work, course, err := s.workAndCourse(ctx, courseWorkID)
	if err != nil {
		return nil, err
	}

	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok || !course.IsMember(actorID) || course.IsTeacher(actorID) {
		return nil, errdefs.ErrPermissionDenied
	}

	sub, err := s.submissionRepo.GetByWorkAndStudent(ctx, courseWorkID, actorID)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, errdefs.ErrNotFound) {
		return nil, err
	}

	sub = domain.NewStudentSubmission(work.CourseID, courseWorkID, actorID)
	if err := s.submissionRepo.Create(ctx, sub); err != nil {
		if errors.Is(err, errdefs.ErrAlreadyExists) {
			return s.submissionRepo.GetByWorkAndStudent(ctx, courseWorkID, actorID)
		}
		return nil, err
	}
	return sub, nil
}

// GetSubmission fetches one submission by composite key, for teachers or the
// owning student.
func (s *SubmissionService) GetSubmission(ctx context.Context, courseWorkID, studentID uuid.UUID) (*domain.StudentSubmission, error) {
	_, course, err := s.workAndCourse(ctx, courseWorkID)
	if err != nil {
		return nil, err
	}

	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok || !access.CanViewSubmission(actorID, course, studentID) {
		return nil, errdefs.ErrPermissionDenied
	}
	return s.submissionRepo.GetByWorkAndStudent(ctx, courseWorkID, studentID)
}

type AnswerInput struct {
	ShortAnswer          *string
	MultipleChoiceAnswer *string
	AssignmentAnswer     []domain.Attachment
}

// UpdateAnswer replaces the answer payload while the submission is still
// editable by the student.
func (s *SubmissionService) UpdateAnswer(ctx context.Context, courseWorkID uuid.UUID, input AnswerInput) (*domain.StudentSubmission, error) {
	work, course, err := s.workAndCourse(ctx, courseWorkID)
	if err != nil {
		return nil, err
	}

	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok {
		return nil, errdefs.ErrPermissionDenied
	}

	sub, err := s.submissionRepo.GetByWorkAndStudent(ctx, courseWorkID, actorID)
	if err != nil {
		return nil, err
	}
	if !access.CanTurnIn(actorID, course, sub.StudentID) {
		return nil, errdefs.ErrPermissionDenied
	}
	if sub.State == domain.StateTurnedIn {
		return nil, fmt.Errorf("reclaim before editing a turned in submission: %w", errdefs.ErrInvalidTransition)
	}

	updated := *sub
	updated.ShortAnswer = input.ShortAnswer
	updated.MultipleChoiceAnswer = input.MultipleChoiceAnswer
	updated.AssignmentAnswer = input.AssignmentAnswer
	if err := updated.ValidateAgainst(work); err != nil {
		return nil, err
	}

	if err := s.submissionRepo.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// TurnIn submits the acting student's work. Allowed for every kind; an
// assignment may be turned in with an empty attachment list.
func (s *SubmissionService) TurnIn(ctx context.Context, courseWorkID uuid.UUID) (*domain.StudentSubmission, error) {
	sub, err := s.ownSubmission(ctx, courseWorkID)
	if err != nil {
		return nil, err
	}

	if err := sub.TurnIn(); err != nil {
		return nil, err
	}
	if err := s.submissionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.publish(ctx, topicSubmissionTurnedIn, sub)
	return sub, nil
}

// Reclaim withdraws a turned-in submission so the student can keep editing.
func (s *SubmissionService) Reclaim(ctx context.Context, courseWorkID uuid.UUID) (*domain.StudentSubmission, error) {
	sub, err := s.ownSubmission(ctx, courseWorkID)
	if err != nil {
		return nil, err
	}

	if err := sub.Reclaim(); err != nil {
		return nil, err
	}
	if err := s.submissionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Return hands a submission back with an optional grade. The grade is
// validated against the ceiling before any transition; an out-of-range
// grade surfaces as a distinct error and leaves the submission untouched.
func (s *SubmissionService) Return(ctx context.Context, courseWorkID, studentID uuid.UUID, grade *int) (*domain.StudentSubmission, error) {
	work, course, err := s.workAndCourse(ctx, courseWorkID)
	if err != nil {
		return nil, err
	}

	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok || !access.CanReturn(actorID, course) {
		return nil, errdefs.ErrPermissionDenied
	}

	if grade != nil {
		if err := grading.ValidateGrade(*grade, work.MaxPoints); err != nil {
			return nil, err
		}
	}

	sub, err := s.submissionRepo.GetByWorkAndStudent(ctx, courseWorkID, studentID)
	if err != nil {
		return nil, err
	}

	if err := sub.Return(grade, work); err != nil {
		return nil, err
	}
	if err := s.submissionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}

	s.publish(ctx, topicSubmissionReturned, sub)
	return sub, nil
}

// ReturnWithDraft parses a teacher-entered draft grade and confirms the
// return. An empty or unparseable draft returns without grading.
func (s *SubmissionService) ReturnWithDraft(ctx context.Context, courseWorkID, studentID uuid.UUID, draft string) (*domain.StudentSubmission, error) {
	return s.Return(ctx, courseWorkID, studentID, grading.ParseDraftGrade(draft))
}

// SubmissionView pairs a submission with its derived display status for the
// roster listing.
type SubmissionView struct {
	Submission *domain.StudentSubmission
	Status     grading.Status
}

// ListSubmissions returns the full roster of a work item. Teachers only;
// students never see other students' submissions.
func (s *SubmissionService) ListSubmissions(ctx context.Context, courseWorkID uuid.UUID) ([]SubmissionView, error) {
	work, course, err := s.workAndCourse(ctx, courseWorkID)
	if err != nil {
		return nil, err
	}

	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok || !course.IsTeacher(actorID) {
		return nil, errdefs.ErrPermissionDenied
	}

	subs, err := s.submissionRepo.ListByCourseWork(ctx, courseWorkID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	views := make([]SubmissionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, SubmissionView{
			Submission: sub,
			Status:     grading.DisplayStatus(sub, work, now),
		})
	}
	return views, nil
}

func (s *SubmissionService) workAndCourse(ctx context.Context, courseWorkID uuid.UUID) (*domain.CourseWork, *domain.Course, error) {
	work, err := s.workRepo.GetByID(ctx, courseWorkID)
	if err != nil {
		return nil, nil, err
	}
	course, err := s.courseRepo.GetByID(ctx, work.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return work, course, nil
}

func (s *SubmissionService) ownSubmission(ctx context.Context, courseWorkID uuid.UUID) (*domain.StudentSubmission, error) {
	_, course, err := s.workAndCourse(ctx, courseWorkID)
	if err != nil {
		return nil, err
	}

	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok {
		return nil, errdefs.ErrPermissionDenied
	}

	sub, err := s.submissionRepo.GetByWorkAndStudent(ctx, courseWorkID, actorID)
	if err != nil {
		return nil, err
	}
	if !access.CanTurnIn(actorID, course, sub.StudentID) {
		return nil, errdefs.ErrPermissionDenied
	}
	return sub, nil
}

func (s *SubmissionService) publish(ctx context.Context, topic string, sub *domain.StudentSubmission) {
	if s.events == nil {
		return
	}
	message := map[string]interface{}{
		"submission_id":  sub.ID,
		"course_id":      sub.CourseID,
		"course_work_id": sub.CourseWorkID,
		"student_id":     sub.StudentID,
		"state":          sub.State,
	}
	if err := s.events.Send(ctx, topic, message); err != nil {
		s.log.Warn("failed to publish submission event",
			zap.String("topic", topic), zap.Error(err))
	}
}
