package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"classwork_service/internal/domain"
	"classwork_service/internal/reconcile"
)

type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error)
	GetByJoinToken(ctx context.Context, token string) (*domain.Course, error)
	Update(ctx context.Context, course *domain.Course) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CourseWorkRepository interface {
	Create(ctx context.Context, work *domain.CourseWork) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.CourseWork, error)
	Update(ctx context.Context, work *domain.CourseWork) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByCourse(ctx context.Context, courseID uuid.UUID, filter domain.WorkFilter) ([]*domain.CourseWork, error)
	FindDueSoon(ctx context.Context, window time.Duration) ([]*domain.CourseWork, error)
}

type SubmissionRepository interface {
	Create(ctx context.Context, sub *domain.StudentSubmission) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StudentSubmission, error)
	GetByWorkAndStudent(ctx context.Context, courseWorkID, studentID uuid.UUID) (*domain.StudentSubmission, error)
	Update(ctx context.Context, sub *domain.StudentSubmission) error
	ListByCourseWork(ctx context.Context, courseWorkID uuid.UUID) ([]*domain.StudentSubmission, error)
	DeleteByCourseWork(ctx context.Context, courseWorkID uuid.UUID) error
	CountNotTurnedIn(ctx context.Context, courseWorkID uuid.UUID) (int, error)
}

// BlobStore and MetadataResolver are the external collaborators the
// reconcile sessions talk to.
type BlobStore = reconcile.BlobStore

type MetadataResolver = reconcile.MetadataResolver

// EventProducer publishes domain events. Delivery is best-effort; a publish
// failure never fails the command that caused it.
type EventProducer interface {
	Send(ctx context.Context, topic string, message interface{}) error
}
