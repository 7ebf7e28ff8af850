package event

import "time"

type Event struct {
	ID            int64     `gorm:"primaryKey"`
	Title         string    `gorm:"column:title;not null"`
	EventType     string    `gorm:"column:event_type;default:service"`
	Location      string    `gorm:"column:location"`
	StartsAt      time.Time `gorm:"column:starts_at;not null"`
	RegionID      *int64    `gorm:"column:region_id;index"`
	UniversityID  *int64    `gorm:"column:university_id;index"`
	SmallGroupID  *int64    `gorm:"column:small_group_id;index"`
	AlumniGroupID *int64    `gorm:"column:alumni_group_id;index"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Event) TableName() string { return "events" }

type Attendance struct {
	ID         int64     `gorm:"primaryKey"`
	EventID    int64     `gorm:"column:event_id;not null;uniqueIndex:idx_event_member"`
	MemberID   int64     `gorm:"column:member_id;not null;uniqueIndex:idx_event_member"`
	Status     string    `gorm:"column:status;default:present"`
	RecordedBy *int64    `gorm:"column:recorded_by"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Attendance) TableName() string { return "attendances" }
