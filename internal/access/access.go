// Package access is the pure role and visibility resolver. It maps the
// acting user, the course membership, and the work kind to permitted
// actions; it performs no IO and holds no state.
package access

import (
	"github.com/google/uuid"

	"classwork_service/internal/domain"
)

// CanViewWork: any course member may view the item body.
func CanViewWork(actorID uuid.UUID, course *domain.Course) bool {
	return course.IsMember(actorID)
}

// CanEditWork: any teacher of the course, not only the creator.
func CanEditWork(actorID uuid.UUID, course *domain.Course) bool {
	return course.IsTeacher(actorID)
}

// CanTurnIn: only the owning student of the submission.
func CanTurnIn(actorID uuid.UUID, course *domain.Course, submissionOwner uuid.UUID) bool {
	return actorID == submissionOwner && course.IsMember(actorID) && !course.IsTeacher(actorID)
}

// CanReclaim follows the same ownership rule as turn-in.
func CanReclaim(actorID uuid.UUID, course *domain.Course, submissionOwner uuid.UUID) bool {
	return CanTurnIn(actorID, course, submissionOwner)
}

// CanReturn: any teacher; the owner distinction does not restrict grading.
func CanReturn(actorID uuid.UUID, course *domain.Course) bool {
	return course.IsTeacher(actorID)
}

// CanViewSubmission: teachers see every submission; a student only their own.
// For question kinds this is what keeps other students' answers hidden.
func CanViewSubmission(actorID uuid.UUID, course *domain.Course, submissionOwner uuid.UUID) bool {
	if course.IsTeacher(actorID) {
		return true
	}
	return actorID == submissionOwner && course.IsMember(actorID)
}

// CanRemoveMember encodes the removal matrix:
//   - the owner may remove anyone,
//   - a non-owner teacher may remove students and not-yet-joined invitees,
//     but not other teachers,
//   - a student may only remove themselves (leave),
//   - nobody removes the owner.
func CanRemoveMember(actorID uuid.UUID, course *domain.Course, target domain.Member) bool {
	if course.IsOwner(target.UserID) {
		return false
	}
	if course.IsOwner(actorID) {
		return true
	}
	if course.IsTeacher(actorID) {
		if !target.Joined {
			return true
		}
		return target.Role != domain.RoleTeacher
	}
	return actorID == target.UserID && course.IsMember(actorID)
}

// Tab identifies a section of the course work screen.
type Tab string

const (
	TabInstructions Tab = "instructions"
	TabQuestion     Tab = "question"
	TabSubmissions  Tab = "submissions"
)

// VisibleTabs: a teacher gets the content tab plus the roster of
// submissions; a student only the single content tab for the kind.
func VisibleTabs(actorID uuid.UUID, course *domain.Course, kind domain.WorkKind) []Tab {
	content := TabInstructions
	if kind == domain.WorkKindShortAnswer || kind == domain.WorkKindMultipleChoice {
		content = TabQuestion
	}
	if course.IsTeacher(actorID) {
		return []Tab{content, TabSubmissions}
	}
	return []Tab{content}
}
