package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/neilpimley/McKenziesPharmacy-backend/internal/reminders"
)

const (
	// TaskReminderDispatch scans for due reminders and queues their emails.
	TaskReminderDispatch = "reminders:dispatch"

	defaultDispatchBatch = 100
)

// ReminderDispatchPayload contains options for a dispatch run.
type ReminderDispatchPayload struct {
	BatchSize int `json:"batch_size"`
}

// NewReminderDispatchTask builds a dispatch task.
func NewReminderDispatchTask(batchSize int) (*asynq.Task, error) {
	payload := ReminderDispatchPayload{BatchSize: batchSize}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReminderDispatch, body, asynq.Queue(QueueDefault)), nil
}

// ReminderSource is the slice of the reminder service the dispatcher needs.
type ReminderSource interface {
	DueBefore(ctx context.Context, cutoff time.Time, limit int) ([]reminders.DueReminder, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
}

// DueNotifier queues the due-notice mail. Satisfied by notify.MailNotifier.
type DueNotifier interface {
	ReminderDue(ctx context.Context, email, name string) error
}

// ReminderDispatchJob emails customers whose repeat-prescription reminders
// have come due, then flags each reminder as sent.
type ReminderDispatchJob struct {
	Source   ReminderSource
	Notifier DueNotifier
	Logger   *slog.Logger
	clock    func() time.Time
}

// NewReminderDispatchJob initialises the dispatch handler.
func NewReminderDispatchJob(source ReminderSource, notifier DueNotifier, logger *slog.Logger) *ReminderDispatchJob {
	return &ReminderDispatchJob{
		Source:   source,
		Notifier: notifier,
		Logger:   logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes one dispatch run. A reminder is only marked sent after its
// email has been queued, so a failed enqueue leaves it for the next run.
func (j *ReminderDispatchJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("reminder dispatch: handler not configured")
	}
	var payload ReminderDispatchPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.BatchSize <= 0 {
		payload.BatchSize = defaultDispatchBatch
	}

	now := j.now()
	due, err := j.Source.DueBefore(ctx, now, payload.BatchSize)
	if err != nil {
		j.logger().Error("load due reminders", slog.Any("error", err))
		return err
	}

	sent := 0
	for _, rem := range due {
		if err := j.Notifier.ReminderDue(ctx, rem.Email, rem.FirstName); err != nil {
			j.logger().Error("queue reminder mail",
				slog.String("reminder_id", rem.ID.String()),
				slog.Any("error", err))
			continue
		}
		if err := j.Source.MarkSent(ctx, rem.ID); err != nil {
			j.logger().Error("mark reminder sent",
				slog.String("reminder_id", rem.ID.String()),
				slog.Any("error", err))
			continue
		}
		sent++
	}

	j.logger().Info("reminder dispatch complete",
		slog.Int("due", len(due)),
		slog.Int("sent", sent),
		slog.Duration("duration", time.Since(now)),
	)
	return nil
}

func (j *ReminderDispatchJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

func (j *ReminderDispatchJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
