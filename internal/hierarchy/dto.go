package hierarchy

import (
	"github.com/aburizalp/ministry-management/internal"
)

type CreateRegionDTO struct {
	Name string `json:"name"`
}

func (d CreateRegionDTO) Validate() *internal.AppError {
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type CreateUniversityDTO struct {
	Name     string `json:"name"`
	RegionID int64  `json:"region_id"`
}

func (d CreateUniversityDTO) Validate() *internal.AppError {
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if d.RegionID <= 0 {
		return internal.NewValidationFieldError("region_id", "region_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type CreateSmallGroupDTO struct {
	Name         string `json:"name"`
	UniversityID int64  `json:"university_id"`
	RegionID     int64  `json:"region_id"`
}

func (d CreateSmallGroupDTO) Validate() *internal.AppError {
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if d.UniversityID <= 0 {
		return internal.NewValidationFieldError("university_id", "university_id is required", internal.ErrCodeValidationFailed)
	}
	if d.RegionID <= 0 {
		return internal.NewValidationFieldError("region_id", "region_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type CreateAlumniGroupDTO struct {
	Name     string `json:"name"`
	RegionID int64  `json:"region_id"`
}

func (d CreateAlumniGroupDTO) Validate() *internal.AppError {
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	if d.RegionID <= 0 {
		return internal.NewValidationFieldError("region_id", "region_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// SelectionDTO carries a cascading form's current picks plus the level
// being changed.
type SelectionDTO struct {
	RegionID      *int64 `json:"region_id,omitempty"`
	UniversityID  *int64 `json:"university_id,omitempty"`
	SmallGroupID  *int64 `json:"small_group_id,omitempty"`
	AlumniGroupID *int64 `json:"alumni_group_id,omitempty"`
}

func (d SelectionDTO) ToSelection() Selection {
	return Selection{
		RegionID:      d.RegionID,
		UniversityID:  d.UniversityID,
		SmallGroupID:  d.SmallGroupID,
		AlumniGroupID: d.AlumniGroupID,
	}
}
