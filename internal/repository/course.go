package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"classwork_service/internal/domain"
	"classwork_service/internal/errdefs"
)

// ErrNotFound aliases the shared sentinel so callers can match either.
var ErrNotFound = errdefs.ErrNotFound

type CourseRepository struct {
	db *sql.DB
}

func NewCourseRepository(db *sql.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) error {
	query := `
		INSERT INTO courses (id, name, owner_id, members, join_token, created_at, edited_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate UUID: %w", err)
	}

	members, err := json.Marshal(course.Members)
	if err != nil {
		return fmt.Errorf("failed to marshal members: %w", err)
	}

	now := time.Now()
	_, err = r.db.ExecContext(ctx, query,
		id,
		course.Name,
		course.OwnerID,
		members,
		course.JoinToken,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}

	course.ID = id
	course.CreatedAt = now
	course.EditedAt = now
	return nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	query := `
		SELECT id, name, owner_id, members, join_token, created_at, edited_at
		FROM courses
		WHERE id = $1
	`

	var course domain.Course
	var members []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&course.ID,
		&course.Name,
		&course.OwnerID,
		&members,
		&course.JoinToken,
		&course.CreatedAt,
		&course.EditedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	if err := json.Unmarshal(members, &course.Members); err != nil {
		return nil, fmt.Errorf("failed to unmarshal members: %w", err)
	}
	return &course, nil
}

func (r *CourseRepository) GetByJoinToken(ctx context.Context, token string) (*domain.Course, error) {
	query := `SELECT id FROM courses WHERE join_token = $1`

	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, query, token).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up join token: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *CourseRepository) Update(ctx context.Context, course *domain.Course) error {
	query := `
		UPDATE courses
		SET name = $1, owner_id = $2, members = $3, join_token = $4, edited_at = $5
		WHERE id = $6
	`

	members, err := json.Marshal(course.Members)
	if err != nil {
		return fmt.Errorf("failed to marshal members: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query,
		course.Name,
		course.OwnerID,
		members,
		course.JoinToken,
		time.Now(),
		course.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
