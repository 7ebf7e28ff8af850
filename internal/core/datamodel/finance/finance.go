package finance

import "time"

type Designation struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	IsActive    bool      `gorm:"column:is_active;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Designation) TableName() string { return "designations" }

type Contribution struct {
	ID            int64     `gorm:"primaryKey"`
	MemberID      int64     `gorm:"column:member_id;not null;index"`
	DesignationID int64     `gorm:"column:designation_id;not null;index"`
	AmountMinor   int64     `gorm:"column:amount_minor;not null"`
	GivenAt       time.Time `gorm:"column:given_at;type:date;not null"`
	RegionID      *int64    `gorm:"column:region_id;index"`
	UniversityID  *int64    `gorm:"column:university_id;index"`
	SmallGroupID  *int64    `gorm:"column:small_group_id;index"`
	AlumniGroupID *int64    `gorm:"column:alumni_group_id;index"`
	RecordedBy    *int64    `gorm:"column:recorded_by"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Contribution) TableName() string { return "contributions" }
