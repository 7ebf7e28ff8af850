package hierarchy

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
	ListRegions(ctx context.Context) ([]*Region, error)
	CreateRegion(ctx context.Context, dto CreateRegionDTO) (*Region, error)
	DeleteRegion(ctx context.Context, regionID int64) error

	ListUniversities(ctx context.Context) ([]*University, error)
	UniversitiesFor(ctx context.Context, regionID int64) ([]*University, error)
	CreateUniversity(ctx context.Context, dto CreateUniversityDTO) (*University, error)
	DeleteUniversity(ctx context.Context, universityID int64) error

	SmallGroupsFor(ctx context.Context, universityID int64) ([]*SmallGroup, error)
	CreateSmallGroup(ctx context.Context, dto CreateSmallGroupDTO) (*SmallGroup, error)
	DeleteSmallGroup(ctx context.Context, smallGroupID int64) error

	AlumniGroupsFor(ctx context.Context, regionID int64) ([]*AlumniSmallGroup, error)
	CreateAlumniGroup(ctx context.Context, dto CreateAlumniGroupDTO) (*AlumniSmallGroup, error)
	DeleteAlumniGroup(ctx context.Context, groupID int64) error

	SelectRegion(ctx context.Context, sel Selection, regionID int64) (Selection, error)
	SelectUniversity(ctx context.Context, sel Selection, universityID int64) (Selection, error)
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

func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	regions, err := h.Service.ListRegions(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, regions, "")
}

// CreateRegion and the other hierarchy mutations are restricted to
// unrestricted scopes; the org structure is admin-managed.
func (h *Handler) CreateRegion(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	var dto CreateRegionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	region, err := h.Service.CreateRegion(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, region, "region created")
}

func (h *Handler) DeleteRegion(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteRegion(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, nil, "region deleted")
}

// ListUniversities serves both the full list and the cascading option set
// for a region via the region_id query parameter.
func (h *Handler) ListUniversities(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("region_id"); raw != "" {
		regionID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || regionID <= 0 {
			h.WriteError(w, http.StatusBadRequest, "invalid region_id")
			return
		}
		universities, err := h.Service.UniversitiesFor(r.Context(), regionID)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}
		h.WriteSuccess(w, http.StatusOK, universities, "")
		return
	}

	universities, err := h.Service.ListUniversities(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, universities, "")
}

func (h *Handler) CreateUniversity(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	var dto CreateUniversityDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	university, err := h.Service.CreateUniversity(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, university, "university created")
}

func (h *Handler) DeleteUniversity(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteUniversity(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, nil, "university deleted")
}

func (h *Handler) ListSmallGroups(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("university_id")
	universityID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || universityID <= 0 {
		h.WriteError(w, http.StatusBadRequest, "university_id is required")
		return
	}
	smallGroups, err := h.Service.SmallGroupsFor(r.Context(), universityID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, smallGroups, "")
}

func (h *Handler) CreateSmallGroup(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	var dto CreateSmallGroupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	smallGroup, err := h.Service.CreateSmallGroup(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, smallGroup, "small group created")
}

func (h *Handler) DeleteSmallGroup(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteSmallGroup(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, nil, "small group deleted")
}

func (h *Handler) ListAlumniGroups(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("region_id")
	regionID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || regionID <= 0 {
		h.WriteError(w, http.StatusBadRequest, "region_id is required")
		return
	}
	groups, err := h.Service.AlumniGroupsFor(r.Context(), regionID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, groups, "")
}

func (h *Handler) CreateAlumniGroup(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	var dto CreateAlumniGroupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	group, err := h.Service.CreateAlumniGroup(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusCreated, group, "alumni group created")
}

func (h *Handler) DeleteAlumniGroup(w http.ResponseWriter, r *http.Request) {
	if !h.requireUnrestricted(w, r) {
		return
	}
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.Service.DeleteAlumniGroup(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, nil, "alumni group deleted")
}

type selectRequest struct {
	Selection SelectionDTO `json:"selection"`
	RegionID  *int64       `json:"region_id,omitempty"`
	// UniversityID is the newly picked university when changing that level.
	UniversityID *int64 `json:"university_id,omitempty"`
}

// ApplySelection recomputes a cascading form selection after a parent
// level changes, clearing children that are no longer valid.
func (h *Handler) ApplySelection(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sel := req.Selection.ToSelection()
	var (
		next Selection
		err  error
	)
	switch {
	case req.RegionID != nil:
		next, err = h.Service.SelectRegion(r.Context(), sel, *req.RegionID)
	case req.UniversityID != nil:
		next, err = h.Service.SelectUniversity(r.Context(), sel, *req.UniversityID)
	default:
		h.WriteError(w, http.StatusBadRequest, "region_id or university_id is required")
		return
	}
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteSuccess(w, http.StatusOK, next, "")
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
