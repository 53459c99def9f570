package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/neilpimley/McKenziesPharmacy-backend/internal/platform/db"
)

// ErrInvalidStatus indicates a status transition the lifecycle does not allow.
var ErrInvalidStatus = errors.New("invalid status transition")

// Service exposes the order surface read by the API and by the reminder
// lifecycle.
type Service struct {
	repo  Repository
	units db.UnitSource

	now func() time.Time
}

// NewService constructs an order service.
func NewService(repo Repository, units db.UnitSource) *Service {
	return &Service{repo: repo, units: units, now: time.Now}
}

// Get returns the order with its lines attached.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.Lines(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	order.Lines = lines
	return order, nil
}

// Current returns the customer's in-basket order, ErrNotFound when none.
func (s *Service) Current(ctx context.Context, customerID uuid.UUID) (*Order, error) {
	order, err := s.repo.Current(ctx, customerID)
	if err != nil {
		return nil, err
	}
	lines, err := s.repo.Lines(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("load order lines: %w", err)
	}
	order.Lines = lines
	return order, nil
}

// ListForCustomer returns the customer's orders, newest first.
func (s *Service) ListForCustomer(ctx context.Context, customerID uuid.UUID, page, perPage int) ([]Order, Pagination, error) {
	pg := NewPagination(page, perPage, 0)
	list, total, err := s.repo.ListForCustomer(ctx, customerID, pg.PerPage, pg.Offset())
	if err != nil {
		return nil, Pagination{}, err
	}
	return list, NewPagination(pg.Page, pg.PerPage, total), nil
}

// Lines returns the drugs on an order.
func (s *Service) Lines(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error) {
	return s.repo.Lines(ctx, orderID)
}

// Exists reports whether the order is known. Used by the reminder lifecycle
// to validate a linkage target.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// Submit moves an in-basket order to submitted. Any other starting status is
// an invalid transition.
func (s *Service) Submit(ctx context.Context, id uuid.UUID) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Status != StatusInBasket {
		return nil, fmt.Errorf("%w: only in-basket orders can be submitted", ErrInvalidStatus)
	}

	at := s.now()
	unit := s.units.NewUnit()
	unit.Stage(s.repo.SubmitOp(id, at))
	if err := unit.Save(ctx); err != nil {
		return nil, fmt.Errorf("submit order: %w", err)
	}

	order.Status = StatusSubmitted
	order.SubmittedOn = &at
	return order, nil
}
