package main

import (
	"context"
	"time"

	"classwork_service/internal/repository"
	"classwork_service/pkg/kafka"
	"classwork_service/pkg/logger"
	"classwork_service/pkg/retry"
)

// ReminderWorker periodically publishes a due-soon event for every work item
// that still has submissions the student has not turned in.
type ReminderWorker struct {
	workRepo       *repository.CourseWorkRepository
	submissionRepo *repository.SubmissionRepository
	kafkaProducer  *kafka.Producer
	logger         *logger.Logger
	interval       time.Duration
	dueWindow      time.Duration
}

func NewReminderWorker(
	workRepo *repository.CourseWorkRepository,
	submissionRepo *repository.SubmissionRepository,
	kafkaProducer *kafka.Producer,
	logger *logger.Logger,
	interval time.Duration,
	dueWindow time.Duration,
) *ReminderWorker {
	return &ReminderWorker{
		workRepo:       workRepo,
		submissionRepo: submissionRepo,
		kafkaProducer:  kafkaProducer,
		logger:         logger,
		interval:       interval,
		dueWindow:      dueWindow,
	}
}

func (w *ReminderWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Reminder worker stopped")
			return
		case <-ticker.C:
			w.processReminders(ctx)
		}
	}
}

func (w *ReminderWorker) processReminders(ctx context.Context) {
	works, err := w.workRepo.FindDueSoon(ctx, w.dueWindow)
	if err != nil {
		w.logger.Errorf("Failed to get course work due soon: %v", err)
		return
	}

	for _, work := range works {
		outstanding, err := w.submissionRepo.CountNotTurnedIn(ctx, work.ID)
		if err != nil {
			w.logger.Errorf("Failed to count outstanding submissions for %s: %v", work.ID, err)
			continue
		}
		if outstanding == 0 {
			continue
		}

		message := map[string]interface{}{
			"course_work_id": work.ID,
			"course_id":      work.CourseID,
			"title":          work.Title,
			"due_date":       work.DueDate,
			"outstanding":    outstanding,
		}

		_, err = retry.WithBackoff(ctx, 3, 100*time.Millisecond, func() (struct{}, error) {
			return struct{}{}, w.kafkaProducer.Send(ctx, "coursework-due-soon", message)
		})
		if err != nil {
			w.logger.Errorf("Failed to send reminder for course work %s: %v", work.ID, err)
			continue
		}

		w.logger.Infof("Sent due-soon reminder for course work %s", work.ID)
	}
}
