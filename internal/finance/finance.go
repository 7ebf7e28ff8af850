package finance

import (
	"time"

	financeDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/finance"
)

type Designation struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Contribution amounts are stored in minor units; currency handling
// stays out of the core.
type Contribution struct {
	ID            int64     `json:"id"`
	MemberID      int64     `json:"member_id"`
	DesignationID int64     `json:"designation_id"`
	AmountMinor   int64     `json:"amount_minor"`
	GivenAt       time.Time `json:"given_at"`
	RegionID      *int64    `json:"region_id,omitempty"`
	UniversityID  *int64    `json:"university_id,omitempty"`
	SmallGroupID  *int64    `json:"small_group_id,omitempty"`
	AlumniGroupID *int64    `json:"alumni_group_id,omitempty"`
	RecordedBy    *int64    `json:"recorded_by,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func DesignationFromDataModel(d *financeDatamodel.Designation) *Designation {
	return &Designation{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		IsActive:    d.IsActive,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func ContributionFromDataModel(c *financeDatamodel.Contribution) *Contribution {
	return &Contribution{
		ID:            c.ID,
		MemberID:      c.MemberID,
		DesignationID: c.DesignationID,
		AmountMinor:   c.AmountMinor,
		GivenAt:       c.GivenAt,
		RegionID:      c.RegionID,
		UniversityID:  c.UniversityID,
		SmallGroupID:  c.SmallGroupID,
		AlumniGroupID: c.AlumniGroupID,
		RecordedBy:    c.RecordedBy,
		CreatedAt:     c.CreatedAt,
	}
}
