package user

import (
	"strings"

	"github.com/aburizalp/ministry-management/internal"
	"github.com/aburizalp/ministry-management/internal/scope"
)

type CreateUserDTO struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (d CreateUserDTO) Validate() *internal.AppError {
	if d.Email == "" || !strings.Contains(d.Email, "@") {
		return internal.NewValidationFieldError("email", "a valid email is required", internal.ErrCodeValidationFailed)
	}
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if len(d.Password) < 8 {
		return internal.NewValidationFieldError("password", "password must be at least 8 characters", internal.ErrCodeValidationFailed)
	}
	return nil
}

// AssignScopeDTO is the payload of a scope assignment. Exactly the entity
// id matching the scope level must be set; the rest must be null.
type AssignScopeDTO struct {
	Scope         string `json:"scope"`
	RoleID        *int64 `json:"role_id,omitempty"`
	RegionID      *int64 `json:"region_id,omitempty"`
	UniversityID  *int64 `json:"university_id,omitempty"`
	SmallGroupID  *int64 `json:"small_group_id,omitempty"`
	AlumniGroupID *int64 `json:"alumni_group_id,omitempty"`
}

func (d AssignScopeDTO) Validate() *internal.AppError {
	level, err := scope.ParseLevel(d.Scope)
	if err != nil {
		return internal.NewValidationFieldError("scope", err.Error(), internal.ErrCodeInvalidScope)
	}

	var want string
	switch level {
	case scope.LevelSuperadmin, scope.LevelNational:
		want = ""
	case scope.LevelRegion:
		want = "region_id"
	case scope.LevelUniversity:
		want = "university_id"
	case scope.LevelSmallGroup:
		want = "small_group_id"
	case scope.LevelAlumniSmallGroup:
		want = "alumni_group_id"
	}

	fields := map[string]*int64{
		"region_id":       d.RegionID,
		"university_id":   d.UniversityID,
		"small_group_id":  d.SmallGroupID,
		"alumni_group_id": d.AlumniGroupID,
	}
	for name, value := range fields {
		if name == want {
			if value == nil || *value <= 0 {
				return internal.NewValidationFieldError(name,
					name+" is required for scope "+d.Scope, internal.ErrCodeInvalidScope)
			}
			continue
		}
		if value != nil {
			return internal.NewValidationFieldError(name,
				name+" must not be set for scope "+d.Scope, internal.ErrCodeInvalidScope)
		}
	}
	return nil
}
