package rbac

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
	ListRoles(ctx context.Context) ([]*Role, error)
	CreateRole(ctx context.Context, dto CreateRoleDTO) (*Role, error)
	DeleteRole(ctx context.Context, roleID int64) error
	ListPermissions(ctx context.Context) ([]*Permission, error)
	CreatePermission(ctx context.Context, dto CreatePermissionDTO) (*Permission, error)
	DeletePermission(ctx context.Context, permissionID int64) error
	ListRolePermissions(ctx context.Context, roleID int64) ([]*Permission, error)
	Assign(ctx context.Context, roleID, permissionID int64, grantedBy *int64) (*RolePermission, error)
	Unassign(ctx context.Context, roleID, permissionID int64) error
	BulkReconcile(ctx context.Context, roleID int64, dto ReconcileDTO) (*ReconcileResult, error)
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

func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, roles, "")
}

// CreateRole and every other catalog mutation below are restricted to
// unrestricted scopes; scoped leaders could otherwise rewrite the
// bindings their own access is decided by.
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	var dto CreateRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.Service.CreateRole(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, role, "role created")
}

func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	roleID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteRole(r.Context(), roleID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, nil, "role deleted")
}

func (h *Handler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	permissions, err := h.Service.ListPermissions(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, permissions, "")
}

func (h *Handler) CreatePermission(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	var dto CreatePermissionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	permission, err := h.Service.CreatePermission(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, permission, "permission created")
}

func (h *Handler) DeletePermission(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	permissionID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.DeletePermission(r.Context(), permissionID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, nil, "permission deleted")
}

func (h *Handler) ListRolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	permissions, err := h.Service.ListRolePermissions(r.Context(), roleID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, permissions, "")
}

func (h *Handler) AssignPermission(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	roleID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	permissionID, ok := h.pathID(w, r, "permissionID")
	if !ok {
		return
	}

	binding, err := h.Service.Assign(r.Context(), roleID, permissionID, h.callerID(r))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, binding, "permission assigned")
}

func (h *Handler) UnassignPermission(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	roleID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	permissionID, ok := h.pathID(w, r, "permissionID")
	if !ok {
		return
	}

	if err := h.Service.Unassign(r.Context(), roleID, permissionID); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, nil, "permission unassigned")
}

// ReconcilePermissions handles PUT /roles/{id}/permissions. The whole
// desired set applies or none of it does.
func (h *Handler) ReconcilePermissions(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	roleID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	var dto ReconcileDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if dto.GrantedBy == nil {
		dto.GrantedBy = h.callerID(r)
	}

	result, err := h.Service.BulkReconcile(r.Context(), roleID, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, result, "role permissions reconciled")
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

func (h *Handler) callerID(r *http.Request) *int64 {
	if user, ok := auth.UserFromContext(r.Context()); ok && user != nil {
		id := user.ID
		return &id
	}
	return nil
}
