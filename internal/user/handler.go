package user

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/aburizalp/ministry-management/internal"
	"github.com/aburizalp/ministry-management/internal/auth"
	"github.com/aburizalp/ministry-management/internal/transport"
)

type ServiceAPI interface {
	ListUsers(ctx context.Context) ([]*User, error)
	CreateUser(ctx context.Context, dto CreateUserDTO) (*User, error)
	GetProfile(ctx context.Context, userID int64) (*Profile, error)
	AssignScope(ctx context.Context, targetUserID int64, dto AssignScopeDTO, assignedBy *int64) (*ScopeAssignment, error)
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

// ListUsers is restricted to unrestricted scopes; regional and below never
// see the user directory.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, users, "")
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	var dto CreateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.Service.CreateUser(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, created, "user created")
}

// Me returns the caller's profile with the resolved scope context.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return
	}
	profile, err := h.Service.GetProfile(r.Context(), caller.ID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, profile, "")
}

func (h *Handler) AssignScope(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	targetID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var dto AssignScopeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var assignedBy *int64
	if caller, ok := auth.UserFromContext(r.Context()); ok {
		id := caller.ID
		assignedBy = &id
	}

	assignment, err := h.Service.AssignScope(r.Context(), targetID, dto, assignedBy)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, assignment, "scope assigned")
}

func (h *Handler) requireUnrestricted(w http.ResponseWriter, r *http.Request) bool {
	caller, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, internal.ErrInvalidToken)
		return false
	}
	if caller.Scope == nil {
		h.HandleServiceError(w, internal.ErrNoScopeAssigned)
		return false
	}
	if !caller.Scope.Unrestricted() {
		h.HandleServiceError(w, internal.ErrPermissionDenied)
		return false
	}
	return true
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
