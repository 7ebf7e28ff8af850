package rbac

import (
	"context"
	"log/slog"

	"github.com/aburizalp/ministry-management/internal"
	rbacDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/rbac"
	"github.com/aburizalp/ministry-management/internal/core/events"
)

// RepositoryAPI persists roles, permissions and bindings. Lookups return
// (nil, nil) when the row is absent. CreateBinding maps the unique
// (role_id, permission_id) violation to internal.ErrAlreadyAssigned, and
// Reconcile runs inside a single transaction.
type RepositoryAPI interface {
	GetRole(ctx context.Context, id int64) (*rbacDatamodel.Role, error)
	ListRoles(ctx context.Context) ([]*rbacDatamodel.Role, error)
	CreateRole(ctx context.Context, role *rbacDatamodel.Role) error
	DeleteRole(ctx context.Context, id int64) error

	GetPermission(ctx context.Context, id int64) (*rbacDatamodel.Permission, error)
	ListPermissions(ctx context.Context) ([]*rbacDatamodel.Permission, error)
	CreatePermission(ctx context.Context, permission *rbacDatamodel.Permission) error
	DeletePermission(ctx context.Context, id int64) error

	GetBinding(ctx context.Context, roleID, permissionID int64) (*rbacDatamodel.RolePermission, error)
	CreateBinding(ctx context.Context, binding *rbacDatamodel.RolePermission) error
	DeleteBinding(ctx context.Context, roleID, permissionID int64) (bool, error)
	ListRolePermissions(ctx context.Context, roleID int64) ([]*rbacDatamodel.Permission, error)
	CountBindingsForRole(ctx context.Context, roleID int64) (int64, error)
	CountBindingsForPermission(ctx context.Context, permissionID int64) (int64, error)
	CountUserAssignmentsForRole(ctx context.Context, roleID int64) (int64, error)

	Reconcile(ctx context.Context, roleID int64, desired []DesiredBinding, grantedBy *int64) (*ReconcileResult, error)
}

type Service struct {
	repo   RepositoryAPI
	bus    *events.EventBus
	logger *slog.Logger
}

// NewService creates the role-permission binding service. bus may be nil.
func NewService(repo RepositoryAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

func (s *Service) ListRoles(ctx context.Context) ([]*Role, error) {
	dataRoles, err := s.repo.ListRoles(ctx)
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, internal.NewInternalError("failed to list roles", err)
	}
	roles := make([]*Role, 0, len(dataRoles))
	for _, r := range dataRoles {
		roles = append(roles, RoleFromDataModel(r))
	}
	return roles, nil
}

func (s *Service) CreateRole(ctx context.Context, dto CreateRoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	dataRole := &rbacDatamodel.Role{
		Name:        dto.Name,
		Description: dto.Description,
		Level:       dto.Level,
		IsActive:    true,
	}
	if err := s.repo.CreateRole(ctx, dataRole); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create role", "name", dto.Name, "error", err)
		return nil, internal.NewInternalError("failed to create role", err)
	}
	s.logger.Info("role created", "role_id", dataRole.ID, "name", dataRole.Name)
	return RoleFromDataModel(dataRole), nil
}

// DeleteRole removes a role with no remaining references. Bindings and
// user assignments block deletion; nothing cascades.
func (s *Service) DeleteRole(ctx context.Context, roleID int64) error {
	role, err := s.repo.GetRole(ctx, roleID)
	if err != nil {
		return internal.NewInternalError("failed to load role", err)
	}
	if role == nil {
		return internal.ErrRoleNotFound
	}

	bindings, err := s.repo.CountBindingsForRole(ctx, roleID)
	if err != nil {
		return internal.NewInternalError("failed to count role bindings", err)
	}
	assignments, err := s.repo.CountUserAssignmentsForRole(ctx, roleID)
	if err != nil {
		return internal.NewInternalError("failed to count user assignments", err)
	}
	if bindings > 0 || assignments > 0 {
		return internal.ErrHasActiveAssignment
	}

	if err := s.repo.DeleteRole(ctx, roleID); err != nil {
		return internal.NewInternalError("failed to delete role", err)
	}
	s.logger.Info("role deleted", "role_id", roleID)
	return nil
}

// ListPermissions returns the catalog in canonical order: resource
// ascending, then action ascending.
func (s *Service) ListPermissions(ctx context.Context) ([]*Permission, error) {
	dataPermissions, err := s.repo.ListPermissions(ctx)
	if err != nil {
		s.logger.Error("failed to list permissions", "error", err)
		return nil, internal.NewInternalError("failed to list permissions", err)
	}
	permissions := make([]*Permission, 0, len(dataPermissions))
	for _, p := range dataPermissions {
		permissions = append(permissions, PermissionFromDataModel(p))
	}
	return permissions, nil
}

func (s *Service) CreatePermission(ctx context.Context, dto CreatePermissionDTO) (*Permission, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	dataPermission := &rbacDatamodel.Permission{
		Name:        dto.Name,
		Description: dto.Description,
		Resource:    dto.Resource,
		Action:      dto.Action,
		Scope:       dto.Scope,
		IsActive:    true,
	}
	if err := s.repo.CreatePermission(ctx, dataPermission); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create permission", "name", dto.Name, "error", err)
		return nil, internal.NewInternalError("failed to create permission", err)
	}
	s.logger.Info("permission created",
		"permission_id", dataPermission.ID,
		"resource", dataPermission.Resource,
		"action", dataPermission.Action)
	return PermissionFromDataModel(dataPermission), nil
}

func (s *Service) DeletePermission(ctx context.Context, permissionID int64) error {
	permission, err := s.repo.GetPermission(ctx, permissionID)
	if err != nil {
		return internal.NewInternalError("failed to load permission", err)
	}
	if permission == nil {
		return internal.ErrPermissionNotFound
	}

	bindings, err := s.repo.CountBindingsForPermission(ctx, permissionID)
	if err != nil {
		return internal.NewInternalError("failed to count permission bindings", err)
	}
	if bindings > 0 {
		return internal.ErrHasActiveAssignment
	}

	if err := s.repo.DeletePermission(ctx, permissionID); err != nil {
		return internal.NewInternalError("failed to delete permission", err)
	}
	s.logger.Info("permission deleted", "permission_id", permissionID)
	return nil
}

func (s *Service) ListRolePermissions(ctx context.Context, roleID int64) ([]*Permission, error) {
	role, err := s.repo.GetRole(ctx, roleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role", err)
	}
	if role == nil {
		return nil, internal.ErrRoleNotFound
	}

	dataPermissions, err := s.repo.ListRolePermissions(ctx, roleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list role permissions", err)
	}
	permissions := make([]*Permission, 0, len(dataPermissions))
	for _, p := range dataPermissions {
		permissions = append(permissions, PermissionFromDataModel(p))
	}
	return permissions, nil
}

// Assign binds a permission to a role. Concurrent assigns of the same
// pair serialize on the unique constraint: one succeeds, the other
// reports AlreadyAssigned.
func (s *Service) Assign(ctx context.Context, roleID, permissionID int64, grantedBy *int64) (*RolePermission, error) {
	role, err := s.repo.GetRole(ctx, roleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role", err)
	}
	if role == nil {
		return nil, internal.ErrRoleNotFound
	}

	permission, err := s.repo.GetPermission(ctx, permissionID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load permission", err)
	}
	if permission == nil {
		return nil, internal.ErrPermissionNotFound
	}

	binding := &rbacDatamodel.RolePermission{
		RoleID:       roleID,
		PermissionID: permissionID,
		GrantedBy:    grantedBy,
	}
	if err := s.repo.CreateBinding(ctx, binding); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create binding", "role_id", roleID, "permission_id", permissionID, "error", err)
		return nil, internal.NewInternalError("failed to create binding", err)
	}

	s.publishBindingsChanged(ctx, roleID, 1, 0, 0)
	return BindingFromDataModel(binding), nil
}

func (s *Service) Unassign(ctx context.Context, roleID, permissionID int64) error {
	deleted, err := s.repo.DeleteBinding(ctx, roleID, permissionID)
	if err != nil {
		return internal.NewInternalError("failed to delete binding", err)
	}
	if !deleted {
		return internal.ErrAssignmentNotFound
	}
	s.publishBindingsChanged(ctx, roleID, 0, 1, 0)
	return nil
}

// BulkReconcile diffs a desired permission set against the stored one in
// a single transaction. Partial application never survives: any failure
// rolls the whole reconciliation back, so the client can retry the same
// payload safely.
func (s *Service) BulkReconcile(ctx context.Context, roleID int64, dto ReconcileDTO) (*ReconcileResult, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	role, err := s.repo.GetRole(ctx, roleID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load role", err)
	}
	if role == nil {
		return nil, internal.ErrRoleNotFound
	}

	result, err := s.repo.Reconcile(ctx, roleID, dto.ToDesired(), dto.GrantedBy)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("bulk reconciliation rolled back", "role_id", roleID, "error", err)
		return nil, internal.NewInternalError("bulk reconciliation failed", err).WithDetails(
			map[string]interface{}{"code": internal.ErrCodeTransactionFailed})
	}

	s.logger.Info("role permissions reconciled",
		"role_id", roleID,
		"added", result.Added,
		"removed", result.Removed,
		"unchanged", result.Unchanged)
	s.publishBindingsChanged(ctx, roleID, result.Added, result.Removed, result.Unchanged)
	return result, nil
}

func (s *Service) publishBindingsChanged(ctx context.Context, roleID int64, added, removed, unchanged int) {
	if s.bus == nil {
		return
	}
	event := events.NewRoleBindingsChangedEvent(roleID, added, removed, unchanged)
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish bindings changed event", "role_id", roleID, "error", err)
	}
}
