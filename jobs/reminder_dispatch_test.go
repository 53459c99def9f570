package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilpimley/McKenziesPharmacy-backend/internal/reminders"
)

type fakeReminderSource struct {
	due        []reminders.DueReminder
	dueErr     error
	markedSent []uuid.UUID
	seenLimits []int
}

func (f *fakeReminderSource) DueBefore(ctx context.Context, cutoff time.Time, limit int) ([]reminders.DueReminder, error) {
	f.seenLimits = append(f.seenLimits, limit)
	if f.dueErr != nil {
		return nil, f.dueErr
	}
	return f.due, nil
}

func (f *fakeReminderSource) MarkSent(ctx context.Context, id uuid.UUID) error {
	f.markedSent = append(f.markedSent, id)
	return nil
}

type fakeDueNotifier struct {
	notified []string
	failFor  string
}

func (f *fakeDueNotifier) ReminderDue(ctx context.Context, email, name string) error {
	if f.failFor != "" && email == f.failFor {
		return errors.New("redis unavailable")
	}
	f.notified = append(f.notified, email)
	return nil
}

func dispatchTask(t *testing.T, batchSize int) *asynq.Task {
	t.Helper()
	task, err := NewReminderDispatchTask(batchSize)
	require.NoError(t, err)
	return task
}

func newDispatchJob(source *fakeReminderSource, notifier *fakeDueNotifier) *ReminderDispatchJob {
	job := NewReminderDispatchJob(source, notifier, slog.New(slog.NewTextHandler(io.Discard, nil)))
	job.clock = func() time.Time { return time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC) }
	return job
}

func TestReminderDispatch(t *testing.T) {
	due := []reminders.DueReminder{
		{ID: uuid.New(), CustomerID: uuid.New(), Email: "jane@example.com", FirstName: "Jane"},
		{ID: uuid.New(), CustomerID: uuid.New(), Email: "sam@example.com", FirstName: "Sam"},
	}
	source := &fakeReminderSource{due: due}
	notifier := &fakeDueNotifier{}
	job := newDispatchJob(source, notifier)

	require.NoError(t, job.Handle(context.Background(), dispatchTask(t, 50)))

	assert.Equal(t, []string{"jane@example.com", "sam@example.com"}, notifier.notified)

	require.Len(t, source.markedSent, 2)
	assert.Equal(t, due[0].ID, source.markedSent[0])

	require.Len(t, source.seenLimits, 1)
	assert.Equal(t, 50, source.seenLimits[0])
}

func TestReminderDispatchDefaultBatch(t *testing.T) {
	source := &fakeReminderSource{}
	job := newDispatchJob(source, &fakeDueNotifier{})

	require.NoError(t, job.Handle(context.Background(), dispatchTask(t, 0)))
	require.Len(t, source.seenLimits, 1)
	assert.Equal(t, defaultDispatchBatch, source.seenLimits[0])
}

func TestReminderDispatchNotifyFailureLeavesPending(t *testing.T) {
	due := []reminders.DueReminder{
		{ID: uuid.New(), Email: "jane@example.com", FirstName: "Jane"},
		{ID: uuid.New(), Email: "sam@example.com", FirstName: "Sam"},
	}
	source := &fakeReminderSource{due: due}
	notifier := &fakeDueNotifier{failFor: "jane@example.com"}
	job := newDispatchJob(source, notifier)

	require.NoError(t, job.Handle(context.Background(), dispatchTask(t, 50)))

	require.Len(t, source.markedSent, 1, "a reminder whose mail failed to queue stays pending")
	assert.Equal(t, due[1].ID, source.markedSent[0])
}

func TestReminderDispatchSourceFailure(t *testing.T) {
	source := &fakeReminderSource{dueErr: errors.New("connection refused")}
	job := newDispatchJob(source, &fakeDueNotifier{})

	err := job.Handle(context.Background(), dispatchTask(t, 50))
	assert.Error(t, err, "a failed scan is retried by the queue")
}

func TestReminderDispatchBadPayload(t *testing.T) {
	job := newDispatchJob(&fakeReminderSource{}, &fakeDueNotifier{})

	task := asynq.NewTask(TaskReminderDispatch, []byte("{not json"))
	err := job.Handle(context.Background(), task)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}
