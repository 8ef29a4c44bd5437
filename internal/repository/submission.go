package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"classwork_service/internal/domain"
	"classwork_service/internal/errdefs"
)

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `id, course_id, course_work_id, student_id, state,
assignment_answer, short_answer, multiple_choice_answer, assigned_grade,
created_at, edited_at`

func (r *SubmissionRepository) Create(ctx context.Context, sub *domain.StudentSubmission) error {
	query := `
		INSERT INTO submissions
			(id, course_id, course_work_id, student_id, state, assignment_answer,
			 short_answer, multiple_choice_answer, assigned_grade, created_at, edited_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate UUID: %w", err)
	}

	answer, err := json.Marshal(sub.AssignmentAnswer)
	if err != nil {
		return fmt.Errorf("failed to marshal assignment answer: %w", err)
	}

	now := time.Now()
	_, err = r.db.ExecContext(ctx, query,
		id,
		sub.CourseID,
		sub.CourseWorkID,
		sub.StudentID,
		sub.State,
		answer,
		sub.ShortAnswer,
		sub.MultipleChoiceAnswer,
		sub.AssignedGrade,
		now,
		now,
	)
	if err != nil {
		// One submission per (course work, student); a racing create loses
		// to the unique index and the caller re-reads.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return errdefs.ErrAlreadyExists
		}
		return fmt.Errorf("failed to create submission: %w", err)
	}

	sub.ID = id
	sub.CreatedAt = now
	sub.EditedAt = now
	return nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.StudentSubmission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`

	sub, err := scanSubmission(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return sub, nil
}

// GetByWorkAndStudent looks a submission up by its composite key.
func (r *SubmissionRepository) GetByWorkAndStudent(ctx context.Context, courseWorkID, studentID uuid.UUID) (*domain.StudentSubmission, error) {
	query := `SELECT ` + submissionColumns + `
		FROM submissions WHERE course_work_id = $1 AND student_id = $2`

	sub, err := scanSubmission(r.db.QueryRowContext(ctx, query, courseWorkID, studentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return sub, nil
}

func (r *SubmissionRepository) Update(ctx context.Context, sub *domain.StudentSubmission) error {
	query := `
		UPDATE submissions
		SET state = $1, assignment_answer = $2, short_answer = $3,
		    multiple_choice_answer = $4, assigned_grade = $5, edited_at = $6
		WHERE id = $7
	`

	answer, err := json.Marshal(sub.AssignmentAnswer)
	if err != nil {
		return fmt.Errorf("failed to marshal assignment answer: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query,
		sub.State,
		answer,
		sub.ShortAnswer,
		sub.MultipleChoiceAnswer,
		sub.AssignedGrade,
		time.Now(),
		sub.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
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

func (r *SubmissionRepository) ListByCourseWork(ctx context.Context, courseWorkID uuid.UUID) ([]*domain.StudentSubmission, error) {
	query := `SELECT ` + submissionColumns + `
		FROM submissions WHERE course_work_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, courseWorkID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var subs []*domain.StudentSubmission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return subs, nil
}

// DeleteByCourseWork removes every submission of a course work item.
// Submissions are only destroyed with their parent.
func (r *SubmissionRepository) DeleteByCourseWork(ctx context.Context, courseWorkID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM submissions WHERE course_work_id = $1`, courseWorkID)
	if err != nil {
		return fmt.Errorf("failed to delete submissions: %w", err)
	}
	return nil
}

// CountNotTurnedIn counts submissions of a work item still editable by the
// student, for the reminder worker.
func (r *SubmissionRepository) CountNotTurnedIn(ctx context.Context, courseWorkID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM submissions
		WHERE course_work_id = $1 AND state IN ('ASSIGNED', 'RECLAIMED_BY_STUDENT')`

	var count int
	if err := r.db.QueryRowContext(ctx, query, courseWorkID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count submissions: %w", err)
	}
	return count, nil
}

func scanSubmission(row rowScanner) (*domain.StudentSubmission, error) {
	var sub domain.StudentSubmission
	var answer []byte
	if err := row.Scan(
		&sub.ID,
		&sub.CourseID,
		&sub.CourseWorkID,
		&sub.StudentID,
		&sub.State,
		&answer,
		&sub.ShortAnswer,
		&sub.MultipleChoiceAnswer,
		&sub.AssignedGrade,
		&sub.CreatedAt,
		&sub.EditedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(answer, &sub.AssignmentAnswer); err != nil {
		return nil, fmt.Errorf("failed to unmarshal assignment answer: %w", err)
	}
	return &sub, nil
}
