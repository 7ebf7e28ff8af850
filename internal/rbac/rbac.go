package rbac

import (
	"fmt"
	"time"

	rbacDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/rbac"
)

// RoleLevel classifies a named role by organizational tier. Display and
// grouping only; enforcement runs off the scope assignment.
type RoleLevel string

const (
	RoleLevelSystem          RoleLevel = "system"
	RoleLevelNational        RoleLevel = "national"
	RoleLevelRegional        RoleLevel = "regional"
	RoleLevelCampus          RoleLevel = "campus"
	RoleLevelSmallGroup      RoleLevel = "smallgroup"
	RoleLevelGraduateNetwork RoleLevel = "graduate_network"
	RoleLevelDepartment      RoleLevel = "department"
)

func ParseRoleLevel(s string) (RoleLevel, error) {
	switch RoleLevel(s) {
	case RoleLevelSystem, RoleLevelNational, RoleLevelRegional, RoleLevelCampus,
		RoleLevelSmallGroup, RoleLevelGraduateNetwork, RoleLevelDepartment:
		return RoleLevel(s), nil
	}
	return "", fmt.Errorf("unknown role level %q", s)
}

// PermissionScope is the breadth a permission applies at. It describes
// the permission record itself and never widens a caller's entity filter.
type PermissionScope string

const (
	PermissionScopeGlobal      PermissionScope = "global"
	PermissionScopeRegional    PermissionScope = "regional"
	PermissionScopeUniversity  PermissionScope = "university"
	PermissionScopeSmallGroup  PermissionScope = "smallgroup"
	PermissionScopeAlumniGroup PermissionScope = "alumni_group"
	PermissionScopePersonal    PermissionScope = "personal"
)

func ParsePermissionScope(s string) (PermissionScope, error) {
	switch PermissionScope(s) {
	case PermissionScopeGlobal, PermissionScopeRegional, PermissionScopeUniversity,
		PermissionScopeSmallGroup, PermissionScopeAlumniGroup, PermissionScopePersonal:
		return PermissionScope(s), nil
	}
	return "", fmt.Errorf("unknown permission scope %q", s)
}

type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Level       RoleLevel `json:"level"`
	IsActive    bool      `json:"is_active"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Permission struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Resource    string          `json:"resource"`
	Action      string          `json:"action"`
	Scope       PermissionScope `json:"scope"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type RolePermission struct {
	ID           int64     `json:"id"`
	RoleID       int64     `json:"role_id"`
	PermissionID int64     `json:"permission_id"`
	GrantedBy    *int64    `json:"granted_by,omitempty"`
	GrantedAt    time.Time `json:"granted_at"`
}

// DesiredBinding is one entry of a bulk reconciliation payload.
type DesiredBinding struct {
	PermissionID int64
	IsAssigned   bool
}

// ReconcileResult reports what a bulk reconciliation changed.
type ReconcileResult struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Unchanged int `json:"unchanged"`
}

func RoleFromDataModel(r *rbacDatamodel.Role) *Role {
	return &Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Level:       RoleLevel(r.Level),
		IsActive:    r.IsActive,
		IsSystem:    r.IsSystem,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func PermissionFromDataModel(p *rbacDatamodel.Permission) *Permission {
	return &Permission{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Resource:    p.Resource,
		Action:      p.Action,
		Scope:       PermissionScope(p.Scope),
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func BindingFromDataModel(b *rbacDatamodel.RolePermission) *RolePermission {
	return &RolePermission{
		ID:           b.ID,
		RoleID:       b.RoleID,
		PermissionID: b.PermissionID,
		GrantedBy:    b.GrantedBy,
		GrantedAt:    b.GrantedAt,
	}
}
