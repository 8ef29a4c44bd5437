package service_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classwork_service/internal/domain"
	"classwork_service/internal/errdefs"
	"classwork_service/internal/service"
)

func TestCreateCourse(t *testing.T) {
	f := newFixture(t)

	course, err := f.courseSvc.GetCourse(f.as(f.teacherID), f.courseID)
	require.NoError(t, err)
	assert.Equal(t, f.teacherID, course.OwnerID)
	assert.Equal(t, domain.RoleTeacher, course.RoleOf(f.teacherID))
	assert.NotEmpty(t, course.JoinToken)

	t.Run("OutsiderCannotView", func(t *testing.T) {
		_, err := f.courseSvc.GetCourse(f.as(uuid.New()), f.courseID)
		assert.ErrorIs(t, err, errdefs.ErrPermissionDenied)
	})
}

func TestJoinByToken(t *testing.T) {
	f := newFixture(t)
	course, err := f.courseSvc.GetCourse(f.as(f.teacherID), f.courseID)
	require.NoError(t, err)

	t.Run("NewStudentJoins", func(t *testing.T) {
		newcomer := uuid.New()
		joined, err := f.courseSvc.JoinByToken(f.as(newcomer), course.JoinToken)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleStudent, joined.RoleOf(newcomer))
	})

	t.Run("SecondJoinRejected", func(t *testing.T) {
		_, err := f.courseSvc.JoinByToken(f.as(f.studentID), course.JoinToken)
		assert.ErrorIs(t, err, errdefs.ErrAlreadyExists)
	})

	t.Run("InviteeBecomesJoined", func(t *testing.T) {
		invitee := uuid.New()
		_, err := f.courseSvc.AddMember(f.as(f.teacherID), f.courseID, invitee, domain.RoleStudent)
		require.NoError(t, err)

		joined, err := f.courseSvc.JoinByToken(f.as(invitee), course.JoinToken)
		require.NoError(t, err)
		member, found := joined.Member(invitee)
		require.True(t, found)
		assert.True(t, member.Joined)
	})

	t.Run("BadToken", func(t *testing.T) {
		_, err := f.courseSvc.JoinByToken(f.as(uuid.New()), "nope")
		assert.ErrorIs(t, err, errdefs.ErrNotFound)
	})
}

func TestRemoveMember(t *testing.T) {
	f := newFixture(t)

	t.Run("StudentLeaves", func(t *testing.T) {
		course, err := f.courseSvc.RemoveMember(f.as(f.studentID), f.courseID, f.studentID)
		require.NoError(t, err)
		assert.False(t, course.IsMember(f.studentID))
	})

	t.Run("OwnerStays", func(t *testing.T) {
		_, err := f.courseSvc.RemoveMember(f.as(f.teacherID), f.courseID, f.teacherID)
		assert.ErrorIs(t, err, errdefs.ErrPermissionDenied)
	})
}

func TestPatchCourse(t *testing.T) {
	f := newFixture(t)

	name := "Advanced Biology"
	course, err := f.courseSvc.PatchCourse(f.as(f.teacherID), f.courseID, service.CoursePatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Advanced Biology", course.Name)

	_, err = f.courseSvc.PatchCourse(f.as(f.studentID), f.courseID, service.CoursePatch{Name: &name})
	assert.ErrorIs(t, err, errdefs.ErrPermissionDenied)
}
