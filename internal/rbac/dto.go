package rbac

import (
	"github.com/aburizalp/ministry-management/internal"
)

type CreateRoleDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Level       string `json:"level"`
}

func (d CreateRoleDTO) Validate() *internal.AppError {
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if _, err := ParseRoleLevel(d.Level); err != nil {
		return internal.NewValidationFieldError("level", err.Error(), internal.ErrCodeValidationFailed)
	}
	return nil
}

type CreatePermissionDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	Scope       string `json:"scope"`
}

func (d CreatePermissionDTO) Validate() *internal.AppError {
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if d.Resource == "" {
		return internal.NewValidationFieldError("resource", "resource is required", internal.ErrCodeValidationFailed)
	}
	if d.Action == "" {
		return internal.NewValidationFieldError("action", "action is required", internal.ErrCodeValidationFailed)
	}
	if _, err := ParsePermissionScope(d.Scope); err != nil {
		return internal.NewValidationFieldError("scope", err.Error(), internal.ErrCodeValidationFailed)
	}
	return nil
}

// ReconcileDTO is the bulk reconciliation payload. Field names follow the
// published API contract for this endpoint.
type ReconcileDTO struct {
	Permissions []ReconcileEntryDTO `json:"permissions"`
	GrantedBy   *int64              `json:"grantedBy,omitempty"`
}

type ReconcileEntryDTO struct {
	PermissionID int64 `json:"permissionId"`
	IsAssigned   bool  `json:"isAssigned"`
}

func (d ReconcileDTO) Validate() *internal.AppError {
	if len(d.Permissions) == 0 {
		return internal.NewValidationFieldError("permissions", "permissions must not be empty", internal.ErrCodeValidationFailed)
	}
	seen := make(map[int64]bool, len(d.Permissions))
	for _, entry := range d.Permissions {
		if entry.PermissionID <= 0 {
			return internal.NewValidationFieldError("permissionId", "permissionId must be positive", internal.ErrCodeValidationFailed)
		}
		if seen[entry.PermissionID] {
			return internal.NewValidationFieldError("permissionId", "duplicate permissionId in payload", internal.ErrCodeValidationFailed)
		}
		seen[entry.PermissionID] = true
	}
	return nil
}

func (d ReconcileDTO) ToDesired() []DesiredBinding {
	desired := make([]DesiredBinding, 0, len(d.Permissions))
	for _, entry := range d.Permissions {
		desired = append(desired, DesiredBinding{
			PermissionID: entry.PermissionID,
			IsAssigned:   entry.IsAssigned,
		})
	}
	return desired
}
