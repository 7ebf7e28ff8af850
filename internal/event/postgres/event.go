package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aburizalp/ministry-management/internal"
	eventDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/event"
	"github.com/aburizalp/ministry-management/internal/gate"
)

// EventRepository implements event.RepositoryAPI on GORM.
type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) List(ctx context.Context, filter *gate.EntityFilter) ([]*eventDatamodel.Event, error) {
	var events []*eventDatamodel.Event
	err := r.db.WithContext(ctx).
		Scopes(filter.Scope()).
		Order("starts_at DESC").
		Find(&events).Error
	return events, err
}

func (r *EventRepository) Get(ctx context.Context, id int64, filter *gate.EntityFilter) (*eventDatamodel.Event, error) {
	var event eventDatamodel.Event
	err := r.db.WithContext(ctx).
		Scopes(filter.Scope()).
		Where("id = ?", id).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) Create(ctx context.Context, event *eventDatamodel.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *EventRepository) Update(ctx context.Context, event *eventDatamodel.Event) error {
	return r.db.WithContext(ctx).Save(event).Error
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).
			Delete(&eventDatamodel.Attendance{}).Error; err != nil {
			return err
		}
		return tx.Delete(&eventDatamodel.Event{}, id).Error
	})
}

// CreateAttendance relies on the unique (event_id, member_id) index; a
// second record for the same pair surfaces as a conflict.
func (r *EventRepository) CreateAttendance(ctx context.Context, attendance *eventDatamodel.Attendance) error {
	err := r.db.WithContext(ctx).Create(attendance).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("attendance already recorded for this member", internal.ErrCodeDuplicateAttendance)
	}
	return err
}

func (r *EventRepository) ListAttendance(ctx context.Context, eventID int64) ([]*eventDatamodel.Attendance, error) {
	var attendances []*eventDatamodel.Attendance
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("member_id ASC").
		Find(&attendances).Error
	return attendances, err
}
