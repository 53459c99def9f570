package customers

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/neilpimley/McKenziesPharmacy-backend/internal/platform/db"
)

// ErrVerificationCode indicates the supplied activation code does not match
// the one issued at registration.
var ErrVerificationCode = errors.New("verification code mismatch")

// RejectedError reports the first failed eligibility check. The message is
// surfaced to the caller verbatim.
type RejectedError struct {
	Rejection Rejection
}

func (e *RejectedError) Error() string {
	return e.Rejection.Message
}

// Notifier is the notification collaborator consumed by the service.
// Failures are logged and never escalated to the caller.
type Notifier interface {
	PersonalDetailsAmended(ctx context.Context, c Customer) error
	ActivationCode(ctx context.Context, email, name, code string) error
}

// Service orchestrates the customer lifecycle: registration, reads with
// related-entity hydration, detail updates and activation.
type Service struct {
	repo     Repository
	units    db.UnitSource
	notifier Notifier
	logger   *slog.Logger

	now func() time.Time
}

// NewService constructs a customer lifecycle service.
func NewService(repo Repository, units db.UnitSource, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		units:    units,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// GetByID resolves a customer and hydrates title, address, shop and doctor.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Customer, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, c, true); err != nil {
		return nil, fmt.Errorf("hydrate customer: %w", err)
	}
	return c, nil
}

// GetByUserID resolves a customer by the external identity the API layer
// authenticated. Absence is ErrNotFound, not a failure.
func (s *Service) GetByUserID(ctx context.Context, userID string) (*Customer, error) {
	c, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, c, true); err != nil {
		return nil, fmt.Errorf("hydrate customer: %w", err)
	}
	return c, nil
}

// Register checks the candidate against the eligibility rules and, when
// eligible, commits the customer and their address as one unit. The first
// rejection aborts before anything is staged.
func (s *Service) Register(ctx context.Context, req RegisterCustomerRequest) (*Customer, error) {
	existing, err := s.repo.Candidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load existing customers: %w", err)
	}

	rejections := CheckEligibility(s.now(), Candidate{
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DateOfBirth,
		DoctorID:    req.DoctorID,
	}, existing)
	if len(rejections) > 0 {
		return nil, &RejectedError{Rejection: rejections[0]}
	}

	code, err := newActivationCode()
	if err != nil {
		return nil, fmt.Errorf("generate activation code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash activation code: %w", err)
	}

	now := s.now()
	customer := Customer{
		ID:             uuid.New(),
		UserID:         req.UserID,
		TitleID:        req.TitleID,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Mobile:         req.Mobile,
		DateOfBirth:    req.DateOfBirth,
		AddressID:      uuid.New(),
		ShopID:         req.ShopID,
		DoctorID:       req.DoctorID,
		Active:         false,
		ActivationHash: string(hash),
		CreatedOn:      now,
	}
	address := Address{
		ID:        customer.AddressID,
		Line1:     req.Address.Line1,
		Line2:     req.Address.Line2,
		City:      req.Address.City,
		Postcode:  req.Address.Postcode,
		CreatedOn: now,
	}

	unit := s.units.NewUnit()
	unit.Stage(s.repo.InsertOp(customer))
	unit.Stage(s.repo.InsertAddressOp(address))
	if err := unit.Save(ctx); err != nil {
		// A concurrent registration can slip past the eligibility read; the
		// unique indexes report it at commit time as the same rejection.
		if db.UniqueViolation(err, UniqueEmailConstraint) {
			return nil, &RejectedError{Rejection: Rejection{Reason: RejectDuplicateEmail, Message: msgDuplicateEmail}}
		}
		if db.UniqueViolation(err, UniqueIdentityConstraint) {
			return nil, &RejectedError{Rejection: Rejection{Reason: RejectDuplicateIdentity, Message: msgDuplicateIdentity}}
		}
		return nil, fmt.Errorf("register customer: %w", err)
	}

	customer.Address = &address
	if err := s.hydrate(ctx, &customer, false); err != nil {
		s.logger.Warn("hydrate after register", slog.Any("error", err), slog.String("customer_id", customer.ID.String()))
	}

	if err := s.notifier.ActivationCode(ctx, customer.Email, customer.FirstName, code); err != nil {
		s.logger.Warn("send activation code", slog.Any("error", err), slog.String("customer_id", customer.ID.String()))
	}

	return &customer, nil
}

// Update commits changed customer and address details as one unit, then
// notifies the customer that their details were amended. A notification
// failure is logged and does not affect the reported outcome; a commit
// failure prevents the notification entirely.
func (s *Service) Update(ctx context.Context, req UpdateCustomerRequest) error {
	existing, err := s.repo.GetByID(ctx, req.CustomerID)
	if err != nil {
		return err
	}

	customer := *existing
	customer.TitleID = req.TitleID
	customer.FirstName = req.FirstName
	customer.LastName = req.LastName
	customer.Email = req.Email
	customer.Mobile = req.Mobile
	customer.DateOfBirth = req.DateOfBirth
	customer.ShopID = req.ShopID
	customer.DoctorID = req.DoctorID

	address := Address{
		ID:       existing.AddressID,
		Line1:    req.Address.Line1,
		Line2:    req.Address.Line2,
		City:     req.Address.City,
		Postcode: req.Address.Postcode,
	}

	unit := s.units.NewUnit()
	unit.Stage(s.repo.UpdateOp(customer))
	unit.Stage(s.repo.UpdateAddressOp(address))
	if err := unit.Save(ctx); err != nil {
		return fmt.Errorf("update customer: %w", err)
	}

	customer.Address = &address
	if err := s.notifier.PersonalDetailsAmended(ctx, customer); err != nil {
		s.logger.Warn("send details amended notice", slog.Any("error", err), slog.String("customer_id", customer.ID.String()))
	}

	return nil
}

// Activate verifies the code issued at registration and marks the customer
// active.
func (s *Service) Activate(ctx context.Context, id uuid.UUID, verificationCode string) error {
	customer, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(customer.ActivationHash), []byte(verificationCode)) != nil {
		return ErrVerificationCode
	}

	unit := s.units.NewUnit()
	unit.Stage(s.repo.SetActiveOp(id))
	if err := unit.Save(ctx); err != nil {
		return fmt.Errorf("activate customer: %w", err)
	}
	return nil
}

// hydrate attaches the reference rows the customer's foreign keys point at.
// A dangling reference leaves the field nil rather than failing the read.
func (s *Service) hydrate(ctx context.Context, c *Customer, withAddress bool) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		t, err := s.repo.Title(gctx, c.TitleID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		c.Title = t
		return nil
	})
	g.Go(func() error {
		sh, err := s.repo.Shop(gctx, c.ShopID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		c.Shop = sh
		return nil
	})
	g.Go(func() error {
		d, err := s.repo.Doctor(gctx, c.DoctorID)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		c.Doctor = d
		return nil
	})
	if withAddress {
		g.Go(func() error {
			a, err := s.repo.Address(gctx, c.AddressID)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
			c.Address = a
			return nil
		})
	}

	return g.Wait()
}

func newActivationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
