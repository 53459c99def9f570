package reminders

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

// ReminderService is the slice of the reminder service the handler consumes.
type ReminderService interface {
	Add(ctx context.Context, req AddReminderRequest) (*Reminder, *ReminderOrder, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler exposes reminders over JSON.
type Handler struct {
	logger   *slog.Logger
	service  ReminderService
	validate *validator.Validate
}

// NewHandler constructs a reminder handler.
func NewHandler(logger *slog.Logger, service ReminderService) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes attaches reminder routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.Add)
	r.Delete("/{id}", h.Delete)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req AddReminderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	rem, link, err := h.service.Add(r.Context(), req)
	if err != nil {
		h.respondError(w, "add reminder", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"reminder": rem, "order_link": link})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid reminder id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete reminder", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var save *db.SaveError
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "reminder not found")
	case errors.Is(err, ErrOrderNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "order not found")
	case errors.As(err, &save):
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Persistence Failure", "the change was not saved")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
