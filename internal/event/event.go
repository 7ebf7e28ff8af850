package event

import (
	"time"

	eventDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/event"
)

// Type classifies a gathering. Trainings and outreaches share the event
// shape and gating rather than a module of their own.
type Type string

const (
	TypeService  Type = "service"
	TypeTraining Type = "training"
	TypeOutreach Type = "outreach"
)

func ParseType(s string) (Type, bool) {
	switch Type(s) {
	case TypeService, TypeTraining, TypeOutreach:
		return Type(s), true
	}
	return "", false
}

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceExcused AttendanceStatus = "excused"
)

func ParseAttendanceStatus(s string) (AttendanceStatus, bool) {
	switch AttendanceStatus(s) {
	case AttendancePresent, AttendanceAbsent, AttendanceExcused:
		return AttendanceStatus(s), true
	}
	return "", false
}

type Event struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	EventType     Type      `json:"event_type"`
	Location      string    `json:"location,omitempty"`
	StartsAt      time.Time `json:"starts_at"`
	RegionID      *int64    `json:"region_id,omitempty"`
	UniversityID  *int64    `json:"university_id,omitempty"`
	SmallGroupID  *int64    `json:"small_group_id,omitempty"`
	AlumniGroupID *int64    `json:"alumni_group_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Attendance struct {
	ID         int64            `json:"id"`
	EventID    int64            `json:"event_id"`
	MemberID   int64            `json:"member_id"`
	Status     AttendanceStatus `json:"status"`
	RecordedBy *int64           `json:"recorded_by,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

func FromDataModel(e *eventDatamodel.Event) *Event {
	return &Event{
		ID:            e.ID,
		Title:         e.Title,
		EventType:     Type(e.EventType),
		Location:      e.Location,
		StartsAt:      e.StartsAt,
		RegionID:      e.RegionID,
		UniversityID:  e.UniversityID,
		SmallGroupID:  e.SmallGroupID,
		AlumniGroupID: e.AlumniGroupID,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

func AttendanceFromDataModel(a *eventDatamodel.Attendance) *Attendance {
	return &Attendance{
		ID:         a.ID,
		EventID:    a.EventID,
		MemberID:   a.MemberID,
		Status:     AttendanceStatus(a.Status),
		RecordedBy: a.RecordedBy,
		CreatedAt:  a.CreatedAt,
	}
}
