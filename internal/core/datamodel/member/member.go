package member

import "time"

type Member struct {
	ID            int64     `gorm:"primaryKey"`
	Name          string    `gorm:"column:name;not null"`
	Email         string    `gorm:"column:email"`
	Phone         string    `gorm:"column:phone"`
	Status        string    `gorm:"column:status;default:active"`
	RegionID      *int64    `gorm:"column:region_id;index"`
	UniversityID  *int64    `gorm:"column:university_id;index"`
	SmallGroupID  *int64    `gorm:"column:small_group_id;index"`
	AlumniGroupID *int64    `gorm:"column:alumni_group_id;index"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Member) TableName() string { return "members" }
