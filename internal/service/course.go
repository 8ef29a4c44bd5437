package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"classwork_service/internal/access"
	"classwork_service/internal/ctxdata"
	"classwork_service/internal/domain"
	"classwork_service/internal/errdefs"
)

type CourseService struct {
	courseRepo CourseRepository
}

func NewCourseService(courseRepo CourseRepository) *CourseService {
	return &CourseService{courseRepo: courseRepo}
}

// CreateCourse creates a course owned by the acting user, who joins it as a
// teacher. A fresh join token is minted.
func (s *CourseService) CreateCourse(ctx context.Context, name string) (*domain.Course, error) {
	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok {
		return nil, errdefs.ErrPermissionDenied
	}

	course := &domain.Course{
		Name:      strings.TrimSpace(name),
		OwnerID:   actorID,
		Members:   []domain.Member{{UserID: actorID, Role: domain.RoleTeacher, Joined: true}},
		JoinToken: uuid.NewString(),
	}
	if err := course.Validate(); err != nil {
		return nil, err
	}

	if err := s.courseRepo.Create(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *CourseService) GetCourse(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok || !course.IsMember(actorID) {
		return nil, errdefs.ErrPermissionDenied
	}
	return course, nil
}

type CoursePatch struct {
	Name *string
}

// PatchCourse applies a partial update. Validation happens before the store
// write; a failed write leaves the prior state intact.
func (s *CourseService) PatchCourse(ctx context.Context, id uuid.UUID, patch CoursePatch) (*domain.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok || !course.IsTeacher(actorID) {
		return nil, errdefs.ErrPermissionDenied
	}

	changed := false
	if patch.Name != nil && strings.TrimSpace(*patch.Name) != course.Name {
		course.Name = strings.TrimSpace(*patch.Name)
		changed = true
	}
	if !changed {
		return course, nil
	}

	if err := course.Validate(); err != nil {
		return nil, err
	}
	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// AddMember invites a user into the course. Only teachers invite; the
// invitee stays Joined=false until they accept or join by token.
func (s *CourseService) AddMember(ctx context.Context, courseID, userID uuid.UUID, role domain.Role) (*domain.Course, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("role %q: %w", role, errdefs.ErrValidation)
	}

	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok || !course.IsTeacher(actorID) {
		return nil, errdefs.ErrPermissionDenied
	}

	if course.IsMember(userID) {
		return nil, errdefs.ErrAlreadyExists
	}

	course.Members = append(course.Members, domain.Member{UserID: userID, Role: role})
	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// JoinByToken adds the acting user as a joined student of the course the
// token belongs to. An invited member becomes joined instead.
func (s *CourseService) JoinByToken(ctx context.Context, token string) (*domain.Course, error) {
	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok {
		return nil, errdefs.ErrPermissionDenied
	}

	course, err := s.courseRepo.GetByJoinToken(ctx, token)
	if err != nil {
		return nil, err
	}

	joined := false
	for i := range course.Members {
		if course.Members[i].UserID == actorID {
			if course.Members[i].Joined {
				return nil, errdefs.ErrAlreadyExists
			}
			course.Members[i].Joined = true
			joined = true
			break
		}
	}
	if !joined {
		course.Members = append(course.Members, domain.Member{
			UserID: actorID,
			Role:   domain.RoleStudent,
			Joined: true,
		})
	}

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

// RemoveMember enforces the removal matrix from the access resolver.
func (s *CourseService) RemoveMember(ctx context.Context, courseID, userID uuid.UUID) (*domain.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, err
	}

	actorID, ok := ctxdata.GetUserID(ctx)
	if !ok {
		return nil, errdefs.ErrPermissionDenied
	}

	target, found := course.Member(userID)
	if !found {
		return nil, errdefs.ErrNotFound
	}
	if !access.CanRemoveMember(actorID, course, target) {
		return nil, errdefs.ErrPermissionDenied
	}

	members := course.Members[:0:0]
	for _, m := range course.Members {
		if m.UserID != userID {
			members = append(members, m)
		}
	}
	course.Members = members

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}
