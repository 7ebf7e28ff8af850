package event

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/aburizalp/ministry-management/internal"
	"github.com/aburizalp/ministry-management/internal/auth"
	"github.com/aburizalp/ministry-management/internal/scope"
	"github.com/aburizalp/ministry-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, sc *scope.Context) ([]*Event, error)
	Get(ctx context.Context, sc *scope.Context, eventID int64) (*Event, error)
	Create(ctx context.Context, sc *scope.Context, dto CreateEventDTO) (*Event, error)
	Update(ctx context.Context, sc *scope.Context, eventID int64, dto UpdateEventDTO) (*Event, error)
	Delete(ctx context.Context, sc *scope.Context, eventID int64) error
	RecordAttendance(ctx context.Context, sc *scope.Context, eventID int64, dto RecordAttendanceDTO, recordedBy *int64) (*Attendance, error)
	ListAttendance(ctx context.Context, sc *scope.Context, eventID int64) ([]*Attendance, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     service,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	events, err := h.Service.List(r.Context(), sc)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, events, "")
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	found, err := h.Service.Get(r.Context(), sc, id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, found, "")
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	var dto CreateEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.Service.Create(r.Context(), sc, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, created, "event created")
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var dto UpdateEventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := h.Service.Update(r.Context(), sc, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, updated, "event updated")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), sc, id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, nil, "event deleted")
}

func (h *Handler) RecordAttendance(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	eventID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var dto RecordAttendanceDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var recordedBy *int64
	if caller, ok := auth.UserFromContext(r.Context()); ok {
		id := caller.ID
		recordedBy = &id
	}

	attendance, err := h.Service.RecordAttendance(r.Context(), sc, eventID, dto, recordedBy)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, attendance, "attendance recorded")
}

func (h *Handler) ListAttendance(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	eventID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	attendances, err := h.Service.ListAttendance(r.Context(), sc, eventID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, attendances, "")
}

func (h *Handler) callerScope(w http.ResponseWriter, r *http.Request) (*scope.Context, bool) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return nil, false
	}
	if caller.Scope == nil {
		h.HandleServiceError(w, internal.ErrNoScopeAssigned)
		return nil, false
	}
	return caller.Scope, true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid "+param)
		return 0, false
	}
	return id, true
}
