package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"classwork_service/internal/errdefs"
)

type Role string

const (
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleTeacher, RoleStudent:
		return true
	default:
		return false
	}
}

// Member is a course membership record. Joined is false for users who have
// been invited but have not accepted yet.
type Member struct {
	UserID uuid.UUID `json:"user_id"`
	Role   Role      `json:"role"`
	Joined bool      `json:"joined"`
}

type Course struct {
	ID        uuid.UUID
	Name      string
	OwnerID   uuid.UUID
	Members   []Member
	JoinToken string
	CreatedAt time.Time
	EditedAt  time.Time
}

func (c *Course) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("course name is empty: %w", errdefs.ErrValidation)
	}
	if role, ok := c.MemberRole(c.OwnerID); !ok || role != RoleTeacher {
		return fmt.Errorf("course owner must be a teacher member: %w", errdefs.ErrValidation)
	}
	return nil
}

func (c *Course) MemberRole(userID uuid.UUID) (Role, bool) {
	for _, m := range c.Members {
		if m.UserID == userID {
			return m.Role, true
		}
	}
	return "", false
}

func (c *Course) Member(userID uuid.UUID) (Member, bool) {
	for _, m := range c.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return Member{}, false
}

// RoleOf derives the acting role: TEACHER if the user is in the teacher set,
// STUDENT otherwise. Roles are never stored on users directly.
func (c *Course) RoleOf(userID uuid.UUID) Role {
	if role, ok := c.MemberRole(userID); ok && role == RoleTeacher {
		return RoleTeacher
	}
	return RoleStudent
}

func (c *Course) IsMember(userID uuid.UUID) bool {
	_, ok := c.MemberRole(userID)
	return ok
}

func (c *Course) IsTeacher(userID uuid.UUID) bool {
	role, ok := c.MemberRole(userID)
	return ok && role == RoleTeacher
}

func (c *Course) IsOwner(userID uuid.UUID) bool {
	return c.OwnerID == userID
}
