package member

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
	List(ctx context.Context, sc *scope.Context) ([]*Member, error)
	Get(ctx context.Context, sc *scope.Context, memberID int64) (*Member, error)
	Create(ctx context.Context, sc *scope.Context, dto CreateMemberDTO) (*Member, error)
	Update(ctx context.Context, sc *scope.Context, memberID int64, dto UpdateMemberDTO) (*Member, error)
	Delete(ctx context.Context, sc *scope.Context, memberID int64) error
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
	members, err := h.Service.List(r.Context(), sc)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, members, "")
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
	var dto CreateMemberDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.Service.Create(r.Context(), sc, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, created, "member created")
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
	var dto UpdateMemberDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	updated, err := h.Service.Update(r.Context(), sc, id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, updated, "member updated")
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
	h.WriteSuccess(w, http.StatusOK, nil, "member deleted")
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
