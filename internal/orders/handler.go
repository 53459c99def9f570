package orders

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/neilpimley/McKenziesPharmacy-backend/internal/platform/db"
	"github.com/neilpimley/McKenziesPharmacy-backend/internal/platform/httpx"
)

// OrderService is the slice of the order service the handler consumes.
type OrderService interface {
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	Current(ctx context.Context, customerID uuid.UUID) (*Order, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, page, perPage int) ([]Order, Pagination, error)
	Lines(ctx context.Context, orderID uuid.UUID) ([]OrderLine, error)
	Submit(ctx context.Context, id uuid.UUID) (*Order, error)
}

// Handler exposes orders over JSON.
type Handler struct {
	logger  *slog.Logger
	service OrderService
}

// NewHandler constructs an order handler.
func NewHandler(logger *slog.Logger, service OrderService) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/current", h.Current)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/lines", h.Lines)
	r.Post("/{id}/submit", h.Submit)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(r.URL.Query().Get("customer_id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "customer_id is required")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	list, pg, err := h.service.ListForCustomer(r.Context(), customerID, page, perPage)
	if err != nil {
		h.respondError(w, "list orders", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": list, "pagination": pg})
}

func (h *Handler) Current(w http.ResponseWriter, r *http.Request) {
	customerID, err := uuid.Parse(r.URL.Query().Get("customer_id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "customer_id is required")
		return
	}

	order, err := h.service.Current(r.Context(), customerID)
	if err != nil {
		h.respondError(w, "current order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}

	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) Lines(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}

	lines, err := h.service.Lines(r.Context(), id)
	if err != nil {
		h.respondError(w, "order lines", err)
		return
	}
	httpx.JSON(w, http.StatusOK, lines)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid order id")
		return
	}

	order, err := h.service.Submit(r.Context(), id)
	if err != nil {
		h.respondError(w, "submit order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var save *db.SaveError
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "order not found")
	case errors.Is(err, ErrInvalidStatus):
		httpx.Problem(w, http.StatusConflict, "Invalid Status", err.Error())
	case errors.As(err, &save):
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Persistence Failure", "the change was not saved")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
