package member

import (
	"time"

	memberDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/member"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusGraduate Status = "graduate"
)

func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusActive, StatusInactive, StatusGraduate:
		return Status(s), true
	}
	return "", false
}

type Member struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	Status        Status    `json:"status"`
	RegionID      *int64    `json:"region_id,omitempty"`
	UniversityID  *int64    `json:"university_id,omitempty"`
	SmallGroupID  *int64    `json:"small_group_id,omitempty"`
	AlumniGroupID *int64    `json:"alumni_group_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func FromDataModel(m *memberDatamodel.Member) *Member {
	return &Member{
		ID:            m.ID,
		Name:          m.Name,
		Email:         m.Email,
		Phone:         m.Phone,
		Status:        Status(m.Status),
		RegionID:      m.RegionID,
		UniversityID:  m.UniversityID,
		SmallGroupID:  m.SmallGroupID,
		AlumniGroupID: m.AlumniGroupID,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
