package reminders

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilpimley/McKenziesPharmacy-backend/internal/platform/db"
	_ "github.com/neilpimley/McKenziesPharmacy-backend/testing"
)

type mockRepository struct {
	reminders map[uuid.UUID]*Reminder
	links     map[uuid.UUID]*ReminderOrder
	contacts  map[uuid.UUID]struct{ email, firstName string }

	insertLinkErr error
}

// snapshot captures the mutable maps so a failed save can restore them, the
// way a rolled-back transaction would.
func (m *mockRepository) snapshot() (restore func()) {
	reminders := make(map[uuid.UUID]*Reminder, len(m.reminders))
	for k, v := range m.reminders {
		copied := *v
		reminders[k] = &copied
	}
	links := make(map[uuid.UUID]*ReminderOrder, len(m.links))
	for k, v := range m.links {
		copied := *v
		links[k] = &copied
	}
	return func() {
		m.reminders = reminders
		m.links = links
	}
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		reminders: make(map[uuid.UUID]*Reminder),
		links:     make(map[uuid.UUID]*ReminderOrder),
		contacts:  make(map[uuid.UUID]struct{ email, firstName string }),
	}
}

func (m *mockRepository) Get(ctx context.Context, id uuid.UUID) (*Reminder, error) {
	r, ok := m.reminders[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *r
	return &copied, nil
}

func (m *mockRepository) LinksForReminder(ctx context.Context, reminderID uuid.UUID) ([]ReminderOrder, error) {
	var out []ReminderOrder
	for _, link := range m.links {
		if link.ReminderID == reminderID {
			out = append(out, *link)
		}
	}
	return out, nil
}

func (m *mockRepository) DueBefore(ctx context.Context, cutoff time.Time, limit int) ([]DueReminder, error) {
	var out []DueReminder
	for _, r := range m.reminders {
		if len(out) >= limit {
			break
		}
		if r.Sent != nil && *r.Sent {
			continue
		}
		if r.SendTime.After(cutoff) {
			continue
		}
		contact := m.contacts[r.CustomerID]
		out = append(out, DueReminder{
			ID:         r.ID,
			CustomerID: r.CustomerID,
			SendTime:   r.SendTime,
			Email:      contact.email,
			FirstName:  contact.firstName,
		})
	}
	return out, nil
}

func (m *mockRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	r, ok := m.reminders[id]
	if !ok {
		return ErrNotFound
	}
	sent := true
	r.Sent = &sent
	return nil
}

func (m *mockRepository) InsertOp(rem Reminder) db.Op {
	return func(ctx context.Context, _ pgx.Tx) error {
		m.reminders[rem.ID] = &rem
		return nil
	}
}

func (m *mockRepository) InsertLinkOp(link ReminderOrder) db.Op {
	return func(ctx context.Context, _ pgx.Tx) error {
		if m.insertLinkErr != nil {
			return m.insertLinkErr
		}
		m.links[link.ID] = &link
		return nil
	}
}

func (m *mockRepository) DeleteLinkOp(id uuid.UUID) db.Op {
	return func(ctx context.Context, _ pgx.Tx) error {
		delete(m.links, id)
		return nil
	}
}

func (m *mockRepository) DeleteOp(id uuid.UUID) db.Op {
	return func(ctx context.Context, _ pgx.Tx) error {
		delete(m.reminders, id)
		return nil
	}
}

type mockOrderSource struct {
	existing map[uuid.UUID]bool
	err      error
}

func (m *mockOrderSource) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.existing[id], nil
}

type fakeUnitSource struct {
	snapshot func() (restore func())
	saveErr  error
}

func (s *fakeUnitSource) NewUnit() db.UnitOfWork {
	return &fakeUnit{source: s}
}

type fakeUnit struct {
	source *fakeUnitSource
	ops    []db.Op
}

func (u *fakeUnit) Stage(op db.Op) { u.ops = append(u.ops, op) }

func (u *fakeUnit) Save(ctx context.Context) error {
	if len(u.ops) == 0 {
		return nil
	}
	if u.source.saveErr != nil {
		return &db.SaveError{Cause: u.source.saveErr}
	}
	var restore func()
	if u.source.snapshot != nil {
		restore = u.source.snapshot()
	}
	for _, op := range u.ops {
		if err := op(ctx, nil); err != nil {
			if restore != nil {
				restore()
			}
			return &db.SaveError{Cause: err}
		}
	}
	u.ops = nil
	return nil
}

const testLead = 14 * 24 * time.Hour

type fixture struct {
	repo   *mockRepository
	orders *mockOrderSource
	units  *fakeUnitSource
	svc    *Service
	now    time.Time
}

func newFixture() *fixture {
	repo := newMockRepository()
	orders := &mockOrderSource{existing: make(map[uuid.UUID]bool)}
	units := &fakeUnitSource{snapshot: repo.snapshot}
	svc := NewService(repo, orders, units, testLead, slog.New(slog.NewTextHandler(io.Discard, nil)))
	now := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return &fixture{repo: repo, orders: orders, units: units, svc: svc, now: now}
}

func TestAddReminder(t *testing.T) {
	f := newFixture()
	orderID := uuid.New()
	f.orders.existing[orderID] = true
	customerID := uuid.New()

	rem, link, err := f.svc.Add(context.Background(), AddReminderRequest{
		CustomerID: customerID.String(),
		OrderID:    orderID.String(),
	})
	require.NoError(t, err)

	assert.Equal(t, customerID, rem.CustomerID)
	assert.Equal(t, f.now.Add(testLead), rem.SendTime)
	require.NotNil(t, rem.Sent)
	assert.False(t, *rem.Sent)
	assert.Equal(t, f.now, rem.CreatedOn)

	assert.Equal(t, rem.ID, link.ReminderID)
	assert.Equal(t, orderID, link.OrderID)

	require.Contains(t, f.repo.reminders, rem.ID)
	require.Contains(t, f.repo.links, link.ID)
}

func TestAddReminderUnknownOrder(t *testing.T) {
	f := newFixture()

	_, _, err := f.svc.Add(context.Background(), AddReminderRequest{
		CustomerID: uuid.NewString(),
		OrderID:    uuid.NewString(),
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Empty(t, f.repo.reminders)
}

func TestAddReminderSaveFailureIsAtomic(t *testing.T) {
	f := newFixture()
	orderID := uuid.New()
	f.orders.existing[orderID] = true
	f.units.saveErr = errors.New("connection reset")

	_, _, err := f.svc.Add(context.Background(), AddReminderRequest{
		CustomerID: uuid.NewString(),
		OrderID:    orderID.String(),
	})

	var save *db.SaveError
	require.ErrorAs(t, err, &save)
	assert.Empty(t, f.repo.reminders)
	assert.Empty(t, f.repo.links)
}

func TestAddReminderLinkFailureRollsBackInsert(t *testing.T) {
	f := newFixture()
	orderID := uuid.New()
	f.orders.existing[orderID] = true
	f.repo.insertLinkErr = errors.New("foreign key violation")

	_, _, err := f.svc.Add(context.Background(), AddReminderRequest{
		CustomerID: uuid.NewString(),
		OrderID:    orderID.String(),
	})

	var save *db.SaveError
	require.ErrorAs(t, err, &save)
	assert.Empty(t, f.repo.reminders, "the reminder insert must not survive a failed link insert")
	assert.Empty(t, f.repo.links)
}

func TestDeleteReminderSweepsAllLinks(t *testing.T) {
	f := newFixture()
	sent := false
	rem := &Reminder{ID: uuid.New(), CustomerID: uuid.New(), SendTime: f.now, Sent: &sent, CreatedOn: f.now}
	f.repo.reminders[rem.ID] = rem
	for i := 0; i < 3; i++ {
		link := &ReminderOrder{ID: uuid.New(), ReminderID: rem.ID, OrderID: uuid.New()}
		f.repo.links[link.ID] = link
	}
	// A link belonging to another reminder stays.
	other := &ReminderOrder{ID: uuid.New(), ReminderID: uuid.New(), OrderID: uuid.New()}
	f.repo.links[other.ID] = other

	require.NoError(t, f.svc.Delete(context.Background(), rem.ID))

	assert.NotContains(t, f.repo.reminders, rem.ID)
	assert.Len(t, f.repo.links, 1)
	assert.Contains(t, f.repo.links, other.ID)
}

func TestDeleteReminderWithoutLinks(t *testing.T) {
	f := newFixture()
	rem := &Reminder{ID: uuid.New(), CustomerID: uuid.New(), SendTime: f.now, CreatedOn: f.now}
	f.repo.reminders[rem.ID] = rem

	require.NoError(t, f.svc.Delete(context.Background(), rem.ID))
	assert.NotContains(t, f.repo.reminders, rem.ID)
}

func TestDeleteUnknownReminder(t *testing.T) {
	f := newFixture()

	err := f.svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDueBeforeSkipsSent(t *testing.T) {
	f := newFixture()
	customerID := uuid.New()
	f.repo.contacts[customerID] = struct{ email, firstName string }{"jane@example.com", "Jane"}

	sent := true
	pending := false
	already := &Reminder{ID: uuid.New(), CustomerID: customerID, SendTime: f.now.Add(-time.Hour), Sent: &sent}
	f.repo.reminders[already.ID] = already
	due := &Reminder{ID: uuid.New(), CustomerID: customerID, SendTime: f.now.Add(-time.Hour), Sent: &pending}
	f.repo.reminders[due.ID] = due
	future := &Reminder{ID: uuid.New(), CustomerID: customerID, SendTime: f.now.Add(time.Hour), Sent: &pending}
	f.repo.reminders[future.ID] = future

	got, err := f.svc.DueBefore(context.Background(), f.now, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, due.ID, got[0].ID)
	assert.Equal(t, "jane@example.com", got[0].Email)
}

func TestMarkSent(t *testing.T) {
	f := newFixture()
	pending := false
	rem := &Reminder{ID: uuid.New(), CustomerID: uuid.New(), SendTime: f.now, Sent: &pending}
	f.repo.reminders[rem.ID] = rem

	require.NoError(t, f.svc.MarkSent(context.Background(), rem.ID))
	require.NotNil(t, f.repo.reminders[rem.ID].Sent)
	assert.True(t, *f.repo.reminders[rem.ID].Sent)
}
