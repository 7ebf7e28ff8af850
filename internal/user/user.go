package user

import (
	"time"

	userDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/user"
	"github.com/aburizalp/ministry-management/internal/scope"
)

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is a user plus their resolved scope context; Scope is nil when
// no assignment exists yet.
type Profile struct {
	User
	Scope *scope.Context `json:"scope,omitempty"`
}

// ScopeAssignment mirrors a user_roles row for API responses.
type ScopeAssignment struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Scope         string    `json:"scope"`
	RoleID        *int64    `json:"role_id,omitempty"`
	RegionID      *int64    `json:"region_id,omitempty"`
	UniversityID  *int64    `json:"university_id,omitempty"`
	SmallGroupID  *int64    `json:"small_group_id,omitempty"`
	AlumniGroupID *int64    `json:"alumni_group_id,omitempty"`
	AssignedBy    *int64    `json:"assigned_by,omitempty"`
	AssignedAt    time.Time `json:"assigned_at"`
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func AssignmentFromDataModel(ur *userDatamodel.UserRole) *ScopeAssignment {
	return &ScopeAssignment{
		ID:            ur.ID,
		UserID:        ur.UserID,
		Scope:         ur.Scope,
		RoleID:        ur.RoleID,
		RegionID:      ur.RegionID,
		UniversityID:  ur.UniversityID,
		SmallGroupID:  ur.SmallGroupID,
		AlumniGroupID: ur.AlumniGroupID,
		AssignedBy:    ur.AssignedBy,
		AssignedAt:    ur.AssignedAt,
	}
}
