package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"classwork_service/internal/domain"
)

type CourseWorkRepository struct {
	db *sql.DB
}

func NewCourseWorkRepository(db *sql.DB) *CourseWorkRepository {
	return &CourseWorkRepository{db: db}
}

const courseWorkColumns = `id, course_id, creator_id, title, description, kind,
due_date, max_points, attachments, choices, created_at, edited_at`

func (r *CourseWorkRepository) Create(ctx context.Context, work *domain.CourseWork) error {
	query := `
		INSERT INTO course_works
			(id, course_id, creator_id, title, description, kind, due_date,
			 max_points, attachments, choices, created_at, edited_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate UUID: %w", err)
	}

	attachments, choices, err := marshalWorkLists(work)
	if err != nil {
		return err
	}

	now := time.Now()
	_, err = r.db.ExecContext(ctx, query,
		id,
		work.CourseID,
		work.CreatorID,
		work.Title,
		work.Description,
		work.Kind,
		work.DueDate,
		work.MaxPoints,
		attachments,
		choices,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create course work: %w", err)
	}

	work.ID = id
	work.CreatedAt = now
	work.EditedAt = now
	return nil
}

func (r *CourseWorkRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.CourseWork, error) {
	query := `SELECT ` + courseWorkColumns + ` FROM course_works WHERE id = $1`

	work, err := scanCourseWork(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get course work: %w", err)
	}
	return work, nil
}

func (r *CourseWorkRepository) Update(ctx context.Context, work *domain.CourseWork) error {
	query := `
		UPDATE course_works
		SET title = $1, description = $2, kind = $3, due_date = $4,
		    max_points = $5, attachments = $6, choices = $7, edited_at = $8
		WHERE id = $9
	`

	attachments, choices, err := marshalWorkLists(work)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, query,
		work.Title,
		work.Description,
		work.Kind,
		work.DueDate,
		work.MaxPoints,
		attachments,
		choices,
		time.Now(),
		work.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update course work: %w", err)
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

func (r *CourseWorkRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM course_works WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete course work: %w", err)
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

func (r *CourseWorkRepository) ListByCourse(ctx context.Context, courseID uuid.UUID, filter domain.WorkFilter) ([]*domain.CourseWork, error) {
	query := `SELECT ` + courseWorkColumns + ` FROM course_works WHERE course_id = $1`
	args := []interface{}{courseID}
	argsCount := 2

	if len(filter.Kinds) > 0 {
		placeholders := make([]string, len(filter.Kinds))
		for i := range filter.Kinds {
			placeholders[i] = fmt.Sprintf("$%d", argsCount)
			args = append(args, filter.Kinds[i])
			argsCount++
		}
		query += fmt.Sprintf(" AND kind IN (%s)", strings.Join(placeholders, ", "))
	}

	if filter.DueBefore != nil {
		query += fmt.Sprintf(" AND due_date IS NOT NULL AND due_date < $%d", argsCount)
		args = append(args, *filter.DueBefore)
		argsCount++
	}

	query += " ORDER BY created_at"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list course works: %w", err)
	}
	defer rows.Close()

	var works []*domain.CourseWork
	for rows.Next() {
		work, err := scanCourseWork(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course work: %w", err)
		}
		works = append(works, work)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return works, nil
}

// FindDueSoon returns items whose due date falls inside the window from now,
// for the reminder worker.
func (r *CourseWorkRepository) FindDueSoon(ctx context.Context, window time.Duration) ([]*domain.CourseWork, error) {
	query := `SELECT ` + courseWorkColumns + `
		FROM course_works
		WHERE due_date BETWEEN NOW() AND $1
	`

	rows, err := r.db.QueryContext(ctx, query, time.Now().Add(window))
	if err != nil {
		return nil, fmt.Errorf("failed to query due course works: %w", err)
	}
	defer rows.Close()

	var works []*domain.CourseWork
	for rows.Next() {
		work, err := scanCourseWork(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan course work: %w", err)
		}
		works = append(works, work)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return works, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCourseWork(row rowScanner) (*domain.CourseWork, error) {
	var work domain.CourseWork
	var attachments, choices []byte
	if err := row.Scan(
		&work.ID,
		&work.CourseID,
		&work.CreatorID,
		&work.Title,
		&work.Description,
		&work.Kind,
		&work.DueDate,
		&work.MaxPoints,
		&attachments,
		&choices,
		&work.CreatedAt,
		&work.EditedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(attachments, &work.Attachments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal attachments: %w", err)
	}
	if err := json.Unmarshal(choices, &work.Choices); err != nil {
		return nil, fmt.Errorf("failed to unmarshal choices: %w", err)
	}
	return &work, nil
}

func marshalWorkLists(work *domain.CourseWork) ([]byte, []byte, error) {
	attachments, err := json.Marshal(work.Attachments)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal attachments: %w", err)
	}
	choices, err := json.Marshal(work.Choices)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal choices: %w", err)
	}
	return attachments, choices, nil
}
