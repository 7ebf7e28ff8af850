package event

import (
	"time"

	"github.com/aburizalp/ministry-management/internal"
)

type CreateEventDTO struct {
	Title         string    `json:"title"`
	EventType     string    `json:"event_type"`
	Location      string    `json:"location"`
	StartsAt      time.Time `json:"starts_at"`
	SmallGroupID  *int64    `json:"small_group_id,omitempty"`
	UniversityID  *int64    `json:"university_id,omitempty"`
	RegionID      *int64    `json:"region_id,omitempty"`
	AlumniGroupID *int64    `json:"alumni_group_id,omitempty"`
}

func (d CreateEventDTO) Validate() *internal.AppError {
	if d.Title == "" {
		return internal.NewValidationFieldError("title", "title is required", internal.ErrCodeValidationFailed)
	}
	if d.EventType != "" {
		if _, ok := ParseType(d.EventType); !ok {
			return internal.NewValidationFieldError("event_type", "unknown event_type "+d.EventType, internal.ErrCodeValidationFailed)
		}
	}
	if d.StartsAt.IsZero() {
		return internal.NewValidationFieldError("starts_at", "starts_at is required", internal.ErrCodeValidationFailed)
	}

	// An event hangs off exactly one hierarchy level.
	set := 0
	for _, id := range []*int64{d.SmallGroupID, d.UniversityID, d.RegionID, d.AlumniGroupID} {
		if id != nil {
			set++
		}
	}
	if set != 1 {
		return internal.NewValidationFieldError("small_group_id",
			"exactly one of small_group_id, university_id, region_id, alumni_group_id is required",
			internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateEventDTO struct {
	Title     *string    `json:"title,omitempty"`
	EventType *string    `json:"event_type,omitempty"`
	Location  *string    `json:"location,omitempty"`
	StartsAt  *time.Time `json:"starts_at,omitempty"`
}

func (d UpdateEventDTO) Validate() *internal.AppError {
	if d.Title != nil && *d.Title == "" {
		return internal.NewValidationFieldError("title", "title must not be empty", internal.ErrCodeValidationFailed)
	}
	if d.EventType != nil {
		if _, ok := ParseType(*d.EventType); !ok {
			return internal.NewValidationFieldError("event_type", "unknown event_type "+*d.EventType, internal.ErrCodeValidationFailed)
		}
	}
	if d.StartsAt != nil && d.StartsAt.IsZero() {
		return internal.NewValidationFieldError("starts_at", "starts_at must not be zero", internal.ErrCodeValidationFailed)
	}
	return nil
}

type RecordAttendanceDTO struct {
	MemberID int64  `json:"member_id"`
	Status   string `json:"status"`
}

func (d RecordAttendanceDTO) Validate() *internal.AppError {
	if d.MemberID <= 0 {
		return internal.NewValidationFieldError("member_id", "member_id is required", internal.ErrCodeValidationFailed)
	}
	if d.Status != "" {
		if _, ok := ParseAttendanceStatus(d.Status); !ok {
			return internal.NewValidationFieldError("status", "unknown status "+d.Status, internal.ErrCodeValidationFailed)
		}
	}
	return nil
}
