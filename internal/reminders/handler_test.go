package reminders

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockServiceForHandler struct {
	addErr    error
	deleteErr error
	deleted   []uuid.UUID
}

func (m *mockServiceForHandler) Add(ctx context.Context, req AddReminderRequest) (*Reminder, *ReminderOrder, error) {
	if m.addErr != nil {
		return nil, nil, m.addErr
	}
	sent := false
	rem := &Reminder{
		ID:         uuid.New(),
		CustomerID: uuid.MustParse(req.CustomerID),
		SendTime:   time.Now().Add(14 * 24 * time.Hour),
		Sent:       &sent,
		CreatedOn:  time.Now(),
	}
	link := &ReminderOrder{ID: uuid.New(), ReminderID: rem.ID, OrderID: uuid.MustParse(req.OrderID)}
	return rem, link, nil
}

func (m *mockServiceForHandler) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func newTestHandler(service ReminderService) http.Handler {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), service)
	r := chi.NewRouter()
	r.Route("/api/reminders", h.MountRoutes)
	return r
}

func TestHandlerAddReminder(t *testing.T) {
	svc := &mockServiceForHandler{}
	srv := newTestHandler(svc)

	body, _ := json.Marshal(AddReminderRequest{
		CustomerID: uuid.NewString(),
		OrderID:    uuid.NewString(),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/reminders/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var got struct {
		Reminder  Reminder      `json:"reminder"`
		OrderLink ReminderOrder `json:"order_link"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, got.Reminder.ID, got.OrderLink.ReminderID)
}

func TestHandlerAddReminderValidation(t *testing.T) {
	srv := newTestHandler(&mockServiceForHandler{})

	body, _ := json.Marshal(AddReminderRequest{CustomerID: "not-a-uuid"})
	req := httptest.NewRequest(http.MethodPost, "/api/reminders/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerAddReminderUnknownOrder(t *testing.T) {
	srv := newTestHandler(&mockServiceForHandler{addErr: ErrOrderNotFound})

	body, _ := json.Marshal(AddReminderRequest{
		CustomerID: uuid.NewString(),
		OrderID:    uuid.NewString(),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/reminders/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerDeleteReminder(t *testing.T) {
	svc := &mockServiceForHandler{}
	srv := newTestHandler(svc)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodDelete, "/api/reminders/"+id.String(), nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Len(t, svc.deleted, 1)
	assert.Equal(t, id, svc.deleted[0])
}

func TestHandlerDeleteUnknownReminder(t *testing.T) {
	srv := newTestHandler(&mockServiceForHandler{deleteErr: ErrNotFound})

	req := httptest.NewRequest(http.MethodDelete, "/api/reminders/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
