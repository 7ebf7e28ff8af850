package hierarchy

import "time"

type Region struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Region) TableName() string { return "regions" }

type University struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	RegionID  int64     `gorm:"column:region_id;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (University) TableName() string { return "universities" }

// SmallGroup carries region_id as a cached derived field. It must always
// equal the region of university_id; the write path verifies it.
type SmallGroup struct {
	ID           int64     `gorm:"primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	UniversityID int64     `gorm:"column:university_id;not null;index"`
	RegionID     int64     `gorm:"column:region_id;not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (SmallGroup) TableName() string { return "small_groups" }

type AlumniSmallGroup struct {
	ID        int64     `gorm:"primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	RegionID  int64     `gorm:"column:region_id;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (AlumniSmallGroup) TableName() string { return "alumni_small_groups" }
