package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"classwork_service/internal/domain"
	"classwork_service/internal/errdefs"
)

func intPtr(v int) *int { return &v }

// In-memory repositories backing the command-handler tests.

type memCourseRepo struct {
	mu      sync.Mutex
	courses map[uuid.UUID]*domain.Course
}

func newMemCourseRepo() *memCourseRepo {
	return &memCourseRepo{courses: make(map[uuid.UUID]*domain.Course)}
}

func (r *memCourseRepo) Create(ctx context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	course.ID = uuid.New()
	course.CreatedAt = time.Now()
	course.EditedAt = course.CreatedAt
	clone := *course
	r.courses[course.ID] = &clone
	return nil
}

func (r *memCourseRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	course, ok := r.courses[id]
	if !ok {
		return nil, errdefs.ErrNotFound
	}
	clone := *course
	clone.Members = append([]domain.Member(nil), course.Members...)
	return &clone, nil
}

func (r *memCourseRepo) GetByJoinToken(ctx context.Context, token string) (*domain.Course, error) {
	r.mu.Lock()
	var id uuid.UUID
	found := false
	for _, c := range r.courses {
		if c.JoinToken == token {
			id = c.ID
			found = true
			break
		}
	}
	r.mu.Unlock()
	if !found {
		return nil, errdefs.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *memCourseRepo) Update(ctx context.Context, course *domain.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[course.ID]; !ok {
		return errdefs.ErrNotFound
	}
	clone := *course
	clone.Members = append([]domain.Member(nil), course.Members...)
	r.courses[course.ID] = &clone
	return nil
}

func (r *memCourseRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.courses[id]; !ok {
		return errdefs.ErrNotFound
	}
	delete(r.courses, id)
	return nil
}

type memWorkRepo struct {
	mu      sync.Mutex
	works   map[uuid.UUID]*domain.CourseWork
	updates int
}

func newMemWorkRepo() *memWorkRepo {
	return &memWorkRepo{works: make(map[uuid.UUID]*domain.CourseWork)}
}

func (r *memWorkRepo) Create(ctx context.Context, work *domain.CourseWork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	work.ID = uuid.New()
	work.CreatedAt = time.Now()
	work.EditedAt = work.CreatedAt
	clone := *work
	r.works[work.ID] = &clone
	return nil
}

func (r *memWorkRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.CourseWork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	work, ok := r.works[id]
	if !ok {
		return nil, errdefs.ErrNotFound
	}
	clone := *work
	return &clone, nil
}

func (r *memWorkRepo) Update(ctx context.Context, work *domain.CourseWork) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.works[work.ID]; !ok {
		return errdefs.ErrNotFound
	}
	r.updates++
	clone := *work
	r.works[work.ID] = &clone
	return nil
}

func (r *memWorkRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.works[id]; !ok {
		return errdefs.ErrNotFound
	}
	delete(r.works, id)
	return nil
}

func (r *memWorkRepo) ListByCourse(ctx context.Context, courseID uuid.UUID, filter domain.WorkFilter) ([]*domain.CourseWork, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.CourseWork
	for _, w := range r.works {
		if w.CourseID != courseID {
			continue
		}
		if len(filter.Kinds) > 0 {
			match := false
			for _, k := range filter.Kinds {
				if w.Kind == k {
					match = true
					break
				}
			}
			if !match {
				continue
			}
		}
		if filter.DueBefore != nil && (w.DueDate == nil || !w.DueDate.Before(*filter.DueBefore)) {
			continue
		}
		clone := *w
		out = append(out, &clone)
	}
	return out, nil
}

func (r *memWorkRepo) FindDueSoon(ctx context.Context, window time.Duration) ([]*domain.CourseWork, error) {
	return nil, nil
}

type memSubmissionRepo struct {
	mu   sync.Mutex
	subs map[uuid.UUID]*domain.StudentSubmission
}

func newMemSubmissionRepo() *memSubmissionRepo {
	return &memSubmissionRepo{subs: make(map[uuid.UUID]*domain.StudentSubmission)}
}

func (r *memSubmissionRepo) Create(ctx context.Context, sub *domain.StudentSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.subs {
		if existing.CourseWorkID == sub.CourseWorkID && existing.StudentID == sub.StudentID {
			return errdefs.ErrAlreadyExists
		}
	}
	sub.ID = uuid.New()
	sub.CreatedAt = time.Now()
	sub.EditedAt = sub.CreatedAt
	clone := *sub
	r.subs[sub.ID] = &clone
	return nil
}

func (r *memSubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.StudentSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[id]
	if !ok {
		return nil, errdefs.ErrNotFound
	}
	clone := *sub
	return &clone, nil
}

func (r *memSubmissionRepo) GetByWorkAndStudent(ctx context.Context, courseWorkID, studentID uuid.UUID) (*domain.StudentSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.CourseWorkID == courseWorkID && sub.StudentID == studentID {
			clone := *sub
			return &clone, nil
		}
	}
	return nil, errdefs.ErrNotFound
}

func (r *memSubmissionRepo) Update(ctx context.Context, sub *domain.StudentSubmission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[sub.ID]; !ok {
		return errdefs.ErrNotFound
	}
	clone := *sub
	r.subs[sub.ID] = &clone
	return nil
}

func (r *memSubmissionRepo) ListByCourseWork(ctx context.Context, courseWorkID uuid.UUID) ([]*domain.StudentSubmission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.StudentSubmission
	for _, sub := range r.subs {
		if sub.CourseWorkID == courseWorkID {
			clone := *sub
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memSubmissionRepo) DeleteByCourseWork(ctx context.Context, courseWorkID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, sub := range r.subs {
		if sub.CourseWorkID == courseWorkID {
			delete(r.subs, id)
		}
	}
	return nil
}

func (r *memSubmissionRepo) CountNotTurnedIn(ctx context.Context, courseWorkID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, sub := range r.subs {
		if sub.CourseWorkID == courseWorkID &&
			(sub.State == domain.StateAssigned || sub.State == domain.StateReclaimed) {
			count++
		}
	}
	return count, nil
}

type MockEventProducer struct {
	mock.Mock
}

func (m *MockEventProducer) Send(ctx context.Context, topic string, message interface{}) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}
