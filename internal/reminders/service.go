package reminders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/neilpimley/McKenziesPharmacy-backend/internal/platform/db"
)

var (
	// ErrOrderNotFound indicates the order a reminder was scheduled against
	// does not exist.
	ErrOrderNotFound = errors.New("order not found")
)

// OrderSource answers whether an order exists. Satisfied by the orders
// repository.
type OrderSource interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// Service owns the reminder lifecycle from scheduling through dispatch.
type Service struct {
	repo   Repository
	orders OrderSource
	units  db.UnitSource
	logger *slog.Logger

	lead time.Duration
	now  func() time.Time
}

// NewService wires the reminder service. lead is how far ahead of the next
// repeat prescription a reminder is scheduled.
func NewService(repo Repository, orders OrderSource, units db.UnitSource, lead time.Duration, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		orders: orders,
		units:  units,
		logger: logger,
		lead:   lead,
		now:    time.Now,
	}
}

// Add schedules a reminder against an existing order. The reminder row and
// its order link are written in one transaction.
func (s *Service) Add(ctx context.Context, req AddReminderRequest) (*Reminder, *ReminderOrder, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, nil, fmt.Errorf("reminders: parse customer id: %w", err)
	}
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, nil, fmt.Errorf("reminders: parse order id: %w", err)
	}

	ok, err := s.orders.Exists(ctx, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("reminders: check order: %w", err)
	}
	if !ok {
		return nil, nil, ErrOrderNotFound
	}

	now := s.now()
	sent := false
	rem := Reminder{
		ID:         uuid.New(),
		CustomerID: customerID,
		SendTime:   now.Add(s.lead),
		Sent:       &sent,
		CreatedOn:  now,
	}
	link := ReminderOrder{
		ID:         uuid.New(),
		ReminderID: rem.ID,
		OrderID:    orderID,
	}

	unit := s.units.NewUnit()
	unit.Stage(s.repo.InsertOp(rem))
	unit.Stage(s.repo.InsertLinkOp(link))
	if err := unit.Save(ctx); err != nil {
		return nil, nil, err
	}
	return &rem, &link, nil
}

// Delete removes a reminder together with every order link that references
// it. A reminder with no links still has its row deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	links, err := s.repo.LinksForReminder(ctx, id)
	if err != nil {
		return fmt.Errorf("reminders: load links: %w", err)
	}

	unit := s.units.NewUnit()
	for _, link := range links {
		unit.Stage(s.repo.DeleteLinkOp(link.ID))
	}
	unit.Stage(s.repo.DeleteOp(id))
	return unit.Save(ctx)
}

// DueBefore lists pending reminders whose send time has passed.
func (s *Service) DueBefore(ctx context.Context, cutoff time.Time, limit int) ([]DueReminder, error) {
	return s.repo.DueBefore(ctx, cutoff, limit)
}

// MarkSent flags a reminder as delivered.
func (s *Service) MarkSent(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkSent(ctx, id)
}
