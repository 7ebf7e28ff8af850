package finance

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
	ListDesignations(ctx context.Context) ([]*Designation, error)
	CreateDesignation(ctx context.Context, dto CreateDesignationDTO) (*Designation, error)
	DeleteDesignation(ctx context.Context, designationID int64) error
	ListContributions(ctx context.Context, sc *scope.Context, designationID *int64) ([]*Contribution, error)
	RecordContribution(ctx context.Context, sc *scope.Context, dto RecordContributionDTO, recordedBy *int64) (*Contribution, error)
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

func (h *Handler) ListDesignations(w http.ResponseWriter, r *http.Request) {
	designations, err := h.Service.ListDesignations(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, designations, "")
}

func (h *Handler) CreateDesignation(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	var dto CreateDesignationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	created, err := h.Service.CreateDesignation(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, created, "designation created")
}

func (h *Handler) DeleteDesignation(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteDesignation(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, nil, "designation deleted")
}

func (h *Handler) ListContributions(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.callerScope(w, r)
	if !ok {
		return
	}

	var designationID *int64
	if raw := r.URL.Query().Get("designation_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.WriteError(w, http.StatusBadRequest, "invalid designation_id")
			return
		}
		designationID = &id
	}

	contributions, err := h.Service.ListContributions(r.Context(), sc, designationID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, contributions, "")
}

func (h *Handler) RecordContribution(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	var dto RecordContributionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var recordedBy *int64
	if caller, ok := auth.UserFromContext(r.Context()); ok {
		id := caller.ID
		recordedBy = &id
	}

	contribution, err := h.Service.RecordContribution(r.Context(), sc, dto, recordedBy)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, contribution, "contribution recorded")
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

func (h *Handler) requireUnrestricted(w http.ResponseWriter, r *http.Request) bool {
	sc, ok := h.callerScope(w, r)
	if !ok {
		return false
	}
	if !sc.Unrestricted() {
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
