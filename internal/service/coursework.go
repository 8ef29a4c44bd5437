package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"classwork_service/internal/access"
	"classwork_service/internal/ctxdata"
	"classwork_service/internal/domain"
	"classwork_service/internal/errdefs"
)

type CourseWorkService struct {
	courseRepo     CourseRepository
	workRepo       CourseWorkRepository
	submissionRepo SubmissionRepository
}

func NewCourseWorkService(
	courseRepo CourseRepository,
	workRepo CourseWorkRepository,
	submissionRepo SubmissionRepository,
) *CourseWorkService {
	return &CourseWorkService{
		courseRepo:     courseRepo,
		workRepo:       workRepo,
		submissionRepo: submissionRepo,
	}
}

type CourseWorkInput struct {
	CourseID    uuid.UUID
	Title       string
	Description *string
	Kind        domain.WorkKind
	DueDate     *time.Time
	MaxPoints   *int
	Attachments []domain.Attachment
	Choices     []string
}

// CreateCourseWork publishes a new work item. Validation runs before the
// store call; a failed create leaves nothing behind.
func (s *CourseWorkService) CreateCourseWork(ctx context.Context, input CourseWorkInput) (*domain.CourseWork, error) {
	course, err := s.courseRepo.GetByID(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}

	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok || !access.CanEditWork(actorID, course) {
		return nil, errdefs.ErrPermissionDenied
	}

	work := &domain.CourseWork{
		CourseID:    input.CourseID,
		CreatorID:   actorID,
		Title:       input.Title,
		Description: input.Description,
		Kind:        input.Kind,
		DueDate:     input.DueDate,
		MaxPoints:   input.MaxPoints,
		Attachments: input.Attachments,
		Choices:     input.Choices,
	}
	work.Normalize()
	if err := work.Validate(); err != nil {
		return nil, err
	}

	if err := s.workRepo.Create(ctx, work); err != nil {
		return nil, err
	}
	return work, nil
}

func (s *CourseWorkService) GetCourseWork(ctx context.Context, id uuid.UUID) (*domain.CourseWork, error) {
	work, err := s.workRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	course, err := s.courseRepo.GetByID(ctx, work.CourseID)
	if err != nil {
		return nil, err
	}

	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok || !access.CanViewWork(actorID, course) {
		return nil, errdefs.ErrPermissionDenied
	}
	return work, nil
}

type CourseWorkPatch struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	ClearDue    bool
	MaxPoints   *int
	ClearPoints bool
	Choices     []string
}

// PatchCourseWork applies a partial update. A patch that changes nothing
// observable skips the store write entirely, so repeating an identical patch
// is a no-op. The kind of an item is fixed at creation.
func (s *CourseWorkService) PatchCourseWork(ctx context.Context, id uuid.UUID, patch CourseWorkPatch) (*domain.CourseWork, error) {
	work, err := s.workRepo.GetByID(ctx, id)
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

	patched := *work
	if patch.Title != nil {
		patched.Title = *patch.Title
	}
	if patch.Description != nil {
		patched.Description = patch.Description
	}
	if patch.DueDate != nil {
		patched.DueDate = patch.DueDate
	} else if patch.ClearDue {
		patched.DueDate = nil
	}
	if patch.MaxPoints != nil {
		patched.MaxPoints = patch.MaxPoints
	} else if patch.ClearPoints {
		patched.MaxPoints = nil
	}
	if patch.Choices != nil {
		patched.Choices = patch.Choices
	}

	patched.Normalize()
	if err := patched.Validate(); err != nil {
		return nil, err
	}

	if workContentEqual(work, &patched) {
		return work, nil
	}

	if err := s.workRepo.Update(ctx, &patched); err != nil {
		return nil, err
	}
	return &patched, nil
}

func (s *CourseWorkService) DeleteCourseWork(ctx context.Context, id uuid.UUID) error {
	work, err := s.workRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	course, err := s.courseRepo.GetByID(ctx, work.CourseID)
	if err != nil {
		return err
	}

	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok || !access.CanEditWork(actorID, course) {
		return errdefs.ErrPermissionDenied
	}

	// Submissions only die with their parent.
	if err := s.submissionRepo.DeleteByCourseWork(ctx, id); err != nil {
		return err
	}
	return s.workRepo.Delete(ctx, id)
}

func (s *CourseWorkService) ListCourseWork(ctx context.Context, courseID uuid.UUID, filter domain.WorkFilter) ([]*domain.CourseWork, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok || !access.CanViewWork(actorID, course) {
		return nil, errdefs.ErrPermissionDenied
	}
	return s.workRepo.ListByCourse(ctx, courseID, filter)
}

func workContentEqual(a, b *domain.CourseWork) bool {
	if a.Title != b.Title || a.Kind != b.Kind {
		return false
	}
	if !ptrEqual(a.Description, b.Description) || !ptrEqual(a.MaxPoints, b.MaxPoints) {
		return false
	}
	if (a.DueDate == nil) != (b.DueDate == nil) {
		return false
	}
	if a.DueDate != nil && !a.DueDate.Equal(*b.DueDate) {
		return false
	}
	if len(a.Choices) != len(b.Choices) || len(a.Attachments) != len(b.Attachments) {
		return false
	}
	for i := range a.Choices {
		if a.Choices[i] != b.Choices[i] {
			return false
		}
	}
	for i := range a.Attachments {
		if !attachmentEqual(a.Attachments[i], b.Attachments[i]) {
			return false
		}
	}
	return true
}

func attachmentEqual(a, b domain.Attachment) bool {
	return a.ID == b.ID && ptrEqual(a.DriveFile, b.DriveFile) && ptrEqual(a.Link, b.Link)
}

func ptrEqual[T comparable](a, b *T) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}
