package user

import "time"

type User struct {
	ID           int64     `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;uniqueIndex;not null"`
	Name         string    `gorm:"column:name;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	IsActive     bool      `gorm:"column:is_active;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

// UserRole is the single scope assignment for a user. The unique index on
// user_id makes duplicate assignments unrepresentable; reassigning a scope
// replaces the row.
type UserRole struct {
	ID            int64     `gorm:"primaryKey"`
	UserID        int64     `gorm:"column:user_id;uniqueIndex;not null"`
	Scope         string    `gorm:"column:scope;not null"`
	RoleID        *int64    `gorm:"column:role_id"`
	RegionID      *int64    `gorm:"column:region_id"`
	UniversityID  *int64    `gorm:"column:university_id"`
	SmallGroupID  *int64    `gorm:"column:small_group_id"`
	AlumniGroupID *int64    `gorm:"column:alumni_group_id"`
	AssignedBy    *int64    `gorm:"column:assigned_by"`
	AssignedAt    time.Time `gorm:"column:assigned_at;autoCreateTime"`
}

func (UserRole) TableName() string { return "user_roles" }
