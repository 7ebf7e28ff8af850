package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aburizalp/ministry-management/internal"
	rbacDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/rbac"
	userDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/user"
	"github.com/aburizalp/ministry-management/internal/rbac"
)

// RBACRepository implements rbac.RepositoryAPI and gate.PolicyAPI on the
// same GORM handle. Requires TranslateError so unique violations surface
// as gorm.ErrDuplicatedKey.
type RBACRepository struct {
	db *gorm.DB
}

func NewRBACRepository(db *gorm.DB) *RBACRepository {
	return &RBACRepository{db: db}
}

func (r *RBACRepository) GetRole(ctx context.Context, id int64) (*rbacDatamodel.Role, error) {
	var role rbacDatamodel.Role
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &role, nil
}

func (r *RBACRepository) ListRoles(ctx context.Context) ([]*rbacDatamodel.Role, error) {
	var roles []*rbacDatamodel.Role
	err := r.db.WithContext(ctx).Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *RBACRepository) CreateRole(ctx context.Context, role *rbacDatamodel.Role) error {
	err := r.db.WithContext(ctx).Create(role).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("role name already exists", internal.ErrCodeDuplicateName)
	}
	return err
}

func (r *RBACRepository) DeleteRole(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&rbacDatamodel.Role{}, id).Error
}

func (r *RBACRepository) GetPermission(ctx context.Context, id int64) (*rbacDatamodel.Permission, error) {
	var permission rbacDatamodel.Permission
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&permission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &permission, nil
}

// ListPermissions returns the catalog in canonical order so grouped and
// paginated views stay stable across requests.
func (r *RBACRepository) ListPermissions(ctx context.Context) ([]*rbacDatamodel.Permission, error) {
	var permissions []*rbacDatamodel.Permission
	err := r.db.WithContext(ctx).Order("resource ASC, action ASC").Find(&permissions).Error
	return permissions, err
}

func (r *RBACRepository) CreatePermission(ctx context.Context, permission *rbacDatamodel.Permission) error {
	err := r.db.WithContext(ctx).Create(permission).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("permission name already exists", internal.ErrCodeDuplicateName)
	}
	return err
}

func (r *RBACRepository) DeletePermission(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&rbacDatamodel.Permission{}, id).Error
}

func (r *RBACRepository) GetBinding(ctx context.Context, roleID, permissionID int64) (*rbacDatamodel.RolePermission, error) {
	var binding rbacDatamodel.RolePermission
	err := r.db.WithContext(ctx).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		First(&binding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &binding, nil
}

// CreateBinding relies on the unique (role_id, permission_id) index: of
// two concurrent assigns exactly one row is stored and the loser reports
// AlreadyAssigned.
func (r *RBACRepository) CreateBinding(ctx context.Context, binding *rbacDatamodel.RolePermission) error {
	err := r.db.WithContext(ctx).Create(binding).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.ErrAlreadyAssigned
	}
	return err
}

func (r *RBACRepository) DeleteBinding(ctx context.Context, roleID, permissionID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("role_id = ? AND permission_id = ?", roleID, permissionID).
		Delete(&rbacDatamodel.RolePermission{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *RBACRepository) ListRolePermissions(ctx context.Context, roleID int64) ([]*rbacDatamodel.Permission, error) {
	var permissions []*rbacDatamodel.Permission
	err := r.db.WithContext(ctx).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Order("permissions.resource ASC, permissions.action ASC").
		Find(&permissions).Error
	return permissions, err
}

func (r *RBACRepository) CountBindingsForRole(ctx context.Context, roleID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&rbacDatamodel.RolePermission{}).
		Where("role_id = ?", roleID).
		Count(&count).Error
	return count, err
}

func (r *RBACRepository) CountBindingsForPermission(ctx context.Context, permissionID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&rbacDatamodel.RolePermission{}).
		Where("permission_id = ?", permissionID).
		Count(&count).Error
	return count, err
}

func (r *RBACRepository) CountUserAssignmentsForRole(ctx context.Context, roleID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.UserRole{}).
		Where("role_id = ?", roleID).
		Count(&count).Error
	return count, err
}

// Reconcile applies a desired binding set as one transaction. Any failure
// rolls back every add and delete so a retry of the same payload is safe.
func (r *RBACRepository) Reconcile(ctx context.Context, roleID int64, desired []rbac.DesiredBinding, grantedBy *int64) (*rbac.ReconcileResult, error) {
	result := &rbac.ReconcileResult{}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, entry := range desired {
			var permissionCount int64
			if err := tx.Model(&rbacDatamodel.Permission{}).
				Where("id = ?", entry.PermissionID).
				Count(&permissionCount).Error; err != nil {
				return err
			}
			if permissionCount == 0 {
				return internal.ErrPermissionNotFound
			}

			var existing rbacDatamodel.RolePermission
			err := tx.Where("role_id = ? AND permission_id = ?", roleID, entry.PermissionID).
				First(&existing).Error
			exists := err == nil
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			switch {
			case entry.IsAssigned && !exists:
				binding := rbacDatamodel.RolePermission{
					RoleID:       roleID,
					PermissionID: entry.PermissionID,
					GrantedBy:    grantedBy,
				}
				if err := tx.Create(&binding).Error; err != nil {
					return err
				}
				result.Added++
			case !entry.IsAssigned && exists:
				if err := tx.Delete(&rbacDatamodel.RolePermission{}, existing.ID).Error; err != nil {
					return err
				}
				result.Removed++
			default:
				result.Unchanged++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ----------------- gate.PolicyAPI -----------------

func (r *RBACRepository) ResourceHasPolicy(ctx context.Context, resource string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&rbacDatamodel.Permission{}).
		Where("resource = ? AND is_active = ?", resource, true).
		Count(&count).Error
	return count > 0, err
}

func (r *RBACRepository) ActivePermissionsFor(ctx context.Context, resource, action string) ([]*rbacDatamodel.Permission, error) {
	var permissions []*rbacDatamodel.Permission
	err := r.db.WithContext(ctx).
		Where("resource = ? AND action = ? AND is_active = ?", resource, action, true).
		Order("resource ASC, action ASC").
		Find(&permissions).Error
	return permissions, err
}

func (r *RBACRepository) RoleGranted(ctx context.Context, roleID int64, permissionIDs []int64) (bool, error) {
	if len(permissionIDs) == 0 {
		return false, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&rbacDatamodel.RolePermission{}).
		Where("role_id = ? AND permission_id IN ?", roleID, permissionIDs).
		Count(&count).Error
	return count > 0, err
}
