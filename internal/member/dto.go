package member

import (
	"github.com/aburizalp/ministry-management/internal"
)

type CreateMemberDTO struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Status        string `json:"status"`
	SmallGroupID  *int64 `json:"small_group_id,omitempty"`
	AlumniGroupID *int64 `json:"alumni_group_id,omitempty"`
}

func (d CreateMemberDTO) Validate() *internal.AppError {
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if d.Status != "" {
		if _, ok := ParseStatus(d.Status); !ok {
			return internal.NewValidationFieldError("status", "unknown status "+d.Status, internal.ErrCodeValidationFailed)
		}
	}
	if d.SmallGroupID == nil && d.AlumniGroupID == nil {
		return internal.NewValidationFieldError("small_group_id",
			"a member belongs to a small group or an alumni group", internal.ErrCodeValidationFailed)
	}
	if d.SmallGroupID != nil && d.AlumniGroupID != nil {
		return internal.NewValidationFieldError("alumni_group_id",
			"a member cannot belong to both tracks", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateMemberDTO struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Phone  *string `json:"phone,omitempty"`
	Status *string `json:"status,omitempty"`
}

func (d UpdateMemberDTO) Validate() *internal.AppError {
	if d.Name != nil && *d.Name == "" {
		return internal.NewValidationFieldError("name", "name must not be empty", internal.ErrCodeValidationFailed)
	}
	if d.Status != nil {
		if _, ok := ParseStatus(*d.Status); !ok {
			return internal.NewValidationFieldError("status", "unknown status "+*d.Status, internal.ErrCodeValidationFailed)
		}
	}
	return nil
}
