package customers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/neilpimley/McKenziesPharmacy-backend/internal/platform/db"
	"github.com/neilpimley/McKenziesPharmacy-backend/internal/platform/httpx"
)

// CustomerService is the slice of the lifecycle service the handler consumes.
type CustomerService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)
	GetByUserID(ctx context.Context, userID string) (*Customer, error)
	Register(ctx context.Context, req RegisterCustomerRequest) (*Customer, error)
	Update(ctx context.Context, req UpdateCustomerRequest) error
	Activate(ctx context.Context, id uuid.UUID, verificationCode string) error
}

// Handler exposes the customer lifecycle over JSON.
type Handler struct {
	logger   *slog.Logger
	service  CustomerService
	validate *validator.Validate
}

// NewHandler constructs a customer handler.
func NewHandler(logger *slog.Logger, service CustomerService) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// MountRoutes attaches customer routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.GetByUser)
	r.Post("/", h.Register)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/activate", h.Activate)
}

func (h *Handler) GetByUser(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "user_id is required")
		return
	}

	customer, err := h.service.GetByUserID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "Customer has not registered yet")
			return
		}
		h.respondError(w, "get customer by user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer id")
		return
	}

	customer, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.respondError(w, "get customer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	customer, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.respondError(w, "register customer", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer id")
		return
	}

	var req UpdateCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if id != req.CustomerID {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "customer id mismatch")
		return
	}

	if err := h.service.Update(r.Context(), req); err != nil {
		h.respondError(w, "update customer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, req)
}

func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer id")
		return
	}

	var req ActivateCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := h.service.Activate(r.Context(), id, req.VerificationCode); err != nil {
		h.respondError(w, "activate customer", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"customer_id": id, "active": true})
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var rejected *RejectedError
	var save *db.SaveError
	switch {
	case errors.As(err, &rejected):
		httpx.Problem(w, http.StatusBadRequest, "Registration Rejected", rejected.Rejection.Message)
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "customer not found")
	case errors.Is(err, ErrVerificationCode):
		httpx.Problem(w, http.StatusForbidden, "Verification Failed", "verification code mismatch")
	case errors.As(err, &save):
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Persistence Failure", "the change was not saved")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
