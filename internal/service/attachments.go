package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"classwork_service/internal/access"
	"classwork_service/internal/ctxdata"
	"classwork_service/internal/domain"
	"classwork_service/internal/errdefs"
	"classwork_service/internal/reconcile"
	"classwork_service/pkg/logger"
)

// AttachmentService opens reconcile sessions for the attachment list of a
// course work item or of a student's assignment answer, and flushes the
// settled list back through the repository.
type AttachmentService struct {
	courseRepo     CourseRepository
	workRepo       CourseWorkRepository
	submissionRepo SubmissionRepository
	blob           BlobStore
	resolver       MetadataResolver
	log            *logger.Logger
}

func NewAttachmentService(
	courseRepo CourseRepository,
	workRepo CourseWorkRepository,
	submissionRepo SubmissionRepository,
	blob BlobStore,
	resolver MetadataResolver,
	log *logger.Logger,
) *AttachmentService {
	return &AttachmentService{
		courseRepo:     courseRepo,
		workRepo:       workRepo,
		submissionRepo: submissionRepo,
		blob:           blob,
		resolver:       resolver,
		log:            log,
	}
}

// OpenWorkSession starts an editing session on a course work item's
// attachments. Teachers only.
func (s *AttachmentService) OpenWorkSession(ctx context.Context, courseWorkID uuid.UUID) (*reconcile.Session, error) {
	work, err := s.workRepo.GetByID(ctx, courseWorkID)
	if err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, work.CourseID)
	if err != nil {
		return nil, err
	}

	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok || !access.CanEditWork(actorID, course) {
		return nil, errdefs.ErrPermissionDenied
	}

	owner := workBlobPrefix(work)
	return reconcile.NewSession(owner, work.Attachments, 0, s.blob, s.resolver, s.log), nil
}

// SaveWorkSession waits for background tasks to settle and persists the
// session's list as the item's attachment order.
func (s *AttachmentService) SaveWorkSession(ctx context.Context, courseWorkID uuid.UUID, session *reconcile.Session) (*domain.CourseWork, error) {
	session.Wait()

	work, err := s.workRepo.GetByID(ctx, courseWorkID)
	if err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, work.CourseID)
	if err != nil {
		return nil, err
	}

	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok || !access.CanEditWork(actorID, course) {
		return nil, errdefs.ErrPermissionDenied
	}

	work.Attachments = session.Attachments()
	if err := s.workRepo.Update(ctx, work); err != nil {
		return nil, err
	}
	return work, nil
}

// OpenAnswerSession starts an editing session on the acting student's
// assignment answer. The submission must still be editable.
func (s *AttachmentService) OpenAnswerSession(ctx context.Context, courseWorkID uuid.UUID) (*reconcile.Session, error) {
	work, err := s.workRepo.GetByID(ctx, courseWorkID)
	if err != nil {
		return nil, err
	}
	if work.Kind != domain.WorkKindAssignment {
		return nil, fmt.Errorf("only assignments take answer attachments: %w", errdefs.ErrValidation)
	}

	course, err := s.courseRepo.GetByID(ctx, work.CourseID)
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
	if sub.State == domain.StateTurnedIn || sub.State == domain.StateReturned {
		return nil, fmt.Errorf("submission is not editable in %s: %w", sub.State, errdefs.ErrInvalidTransition)
	}

	owner := answerBlobPrefix(work, sub)
	return reconcile.NewSession(owner, sub.AssignmentAnswer, domain.MaxAnswerAttachments, s.blob, s.resolver, s.log), nil
}

// SaveAnswerSession persists the settled list as the student's answer.
func (s *AttachmentService) SaveAnswerSession(ctx context.Context, courseWorkID uuid.UUID, session *reconcile.Session) (*domain.StudentSubmission, error) {
	session.Wait()

	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok {
		return nil, errdefs.ErrPermissionDenied
	}

	sub, err := s.submissionRepo.GetByWorkAndStudent(ctx, courseWorkID, actorID)
	if err != nil {
		return nil, err
	}

	sub.AssignmentAnswer = session.Attachments()
	if len(sub.AssignmentAnswer) > domain.MaxAnswerAttachments {
		return nil, errdefs.ErrTooManyAttachments
	}

	if err := s.submissionRepo.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func workBlobPrefix(work *domain.CourseWork) string {
	return "courses/" + work.CourseID.String() + "/work/" + work.ID.String()
}

func answerBlobPrefix(work *domain.CourseWork, sub *domain.StudentSubmission) string {
	return workBlobPrefix(work) + "/submissions/" + sub.ID.String()
}
