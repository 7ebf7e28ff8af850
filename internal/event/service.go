package event

import (
	"context"
	"log/slog"

	"github.com/aburizalp/ministry-management/internal"
	eventDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/event"
	hierarchyDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/hierarchy"
	memberDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/member"
	"github.com/aburizalp/ministry-management/internal/gate"
	"github.com/aburizalp/ministry-management/internal/scope"
)

const resource = "event"

// RepositoryAPI persists events and attendance. Read methods apply the
// entity filter; CreateAttendance maps the unique (event_id, member_id)
// violation to a DuplicateAttendance conflict.
type RepositoryAPI interface {
	List(ctx context.Context, filter *gate.EntityFilter) ([]*eventDatamodel.Event, error)
	Get(ctx context.Context, id int64, filter *gate.EntityFilter) (*eventDatamodel.Event, error)
	Create(ctx context.Context, event *eventDatamodel.Event) error
	Update(ctx context.Context, event *eventDatamodel.Event) error
	Delete(ctx context.Context, id int64) error

	CreateAttendance(ctx context.Context, attendance *eventDatamodel.Attendance) error
	ListAttendance(ctx context.Context, eventID int64) ([]*eventDatamodel.Attendance, error)
}

type HierarchyAPI interface {
	GetRegion(ctx context.Context, id int64) (*hierarchyDatamodel.Region, error)
	GetUniversity(ctx context.Context, id int64) (*hierarchyDatamodel.University, error)
	GetSmallGroup(ctx context.Context, id int64) (*hierarchyDatamodel.SmallGroup, error)
	GetAlumniGroup(ctx context.Context, id int64) (*hierarchyDatamodel.AlumniSmallGroup, error)
}

// MemberAPI checks that an attendee is a visible member under the
// caller's filter.
type MemberAPI interface {
	Get(ctx context.Context, id int64, filter *gate.EntityFilter) (*memberDatamodel.Member, error)
}

type GateAPI interface {
	Authorize(ctx context.Context, sc *scope.Context, resource, action string) (gate.Decision, error)
	CheckWrite(ctx context.Context, sc *scope.Context, resource string, refs gate.EntityRefs) error
}

type Service struct {
	repo      RepositoryAPI
	hierarchy HierarchyAPI
	members   MemberAPI
	gate      GateAPI
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, hierarchy HierarchyAPI, members MemberAPI, g GateAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		hierarchy: hierarchy,
		members:   members,
		gate:      g,
		logger:    logger,
	}
}

func (s *Service) List(ctx context.Context, sc *scope.Context) ([]*Event, error) {
	decision, err := s.gate.Authorize(ctx, sc, resource, "read")
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, internal.ErrPermissionDenied
	}

	dataEvents, err := s.repo.List(ctx, decision.Filter)
	if err != nil {
		s.logger.Error("failed to list events", "error", err)
		return nil, internal.NewInternalError("failed to list events", err)
	}
	events := make([]*Event, 0, len(dataEvents))
	for _, e := range dataEvents {
		events = append(events, FromDataModel(e))
	}
	return events, nil
}

func (s *Service) Get(ctx context.Context, sc *scope.Context, eventID int64) (*Event, error) {
	decision, err := s.gate.Authorize(ctx, sc, resource, "read")
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, internal.ErrPermissionDenied
	}

	dataEvent, err := s.repo.Get(ctx, eventID, decision.Filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to load event", err)
	}
	if dataEvent == nil {
		return nil, internal.ErrEventNotFound
	}
	return FromDataModel(dataEvent), nil
}

func (s *Service) Create(ctx context.Context, sc *scope.Context, dto CreateEventDTO) (*Event, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	chain, err := s.resolveChain(ctx, dto)
	if err != nil {
		return nil, err
	}
	if err := s.gate.CheckWrite(ctx, sc, resource, chain); err != nil {
		return nil, err
	}

	eventType := dto.EventType
	if eventType == "" {
		eventType = string(TypeService)
	}
	dataEvent := &eventDatamodel.Event{
		Title:         dto.Title,
		EventType:     eventType,
		Location:      dto.Location,
		StartsAt:      dto.StartsAt,
		RegionID:      chain.RegionID,
		UniversityID:  chain.UniversityID,
		SmallGroupID:  chain.SmallGroupID,
		AlumniGroupID: chain.AlumniGroupID,
	}
	if err := s.repo.Create(ctx, dataEvent); err != nil {
		s.logger.Error("failed to create event", "title", dto.Title, "error", err)
		return nil, internal.NewInternalError("failed to create event", err)
	}
	s.logger.Info("event created", "event_id", dataEvent.ID, "event_type", dataEvent.EventType)
	return FromDataModel(dataEvent), nil
}

// Update mutates the descriptive fields; moving an event to another
// hierarchy level is a delete and re-create, keeping the parent chain
// immutable.
func (s *Service) Update(ctx context.Context, sc *scope.Context, eventID int64, dto UpdateEventDTO) (*Event, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	decision, err := s.gate.Authorize(ctx, sc, resource, "read")
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, internal.ErrPermissionDenied
	}
	dataEvent, err := s.repo.Get(ctx, eventID, decision.Filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to load event", err)
	}
	if dataEvent == nil {
		return nil, internal.ErrEventNotFound
	}

	refs := gate.EntityRefs{
		RegionID:      dataEvent.RegionID,
		UniversityID:  dataEvent.UniversityID,
		SmallGroupID:  dataEvent.SmallGroupID,
		AlumniGroupID: dataEvent.AlumniGroupID,
	}
	if err := s.gate.CheckWrite(ctx, sc, resource, refs); err != nil {
		return nil, err
	}

	if dto.Title != nil {
		dataEvent.Title = *dto.Title
	}
	if dto.EventType != nil {
		dataEvent.EventType = *dto.EventType
	}
	if dto.Location != nil {
		dataEvent.Location = *dto.Location
	}
	if dto.StartsAt != nil {
		dataEvent.StartsAt = *dto.StartsAt
	}
	if err := s.repo.Update(ctx, dataEvent); err != nil {
		return nil, internal.NewInternalError("failed to update event", err)
	}
	s.logger.Info("event updated", "event_id", eventID)
	return FromDataModel(dataEvent), nil
}

func (s *Service) Delete(ctx context.Context, sc *scope.Context, eventID int64) error {
	decision, err := s.gate.Authorize(ctx, sc, resource, "read")
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return internal.ErrPermissionDenied
	}
	dataEvent, err := s.repo.Get(ctx, eventID, decision.Filter)
	if err != nil {
		return internal.NewInternalError("failed to load event", err)
	}
	if dataEvent == nil {
		return internal.ErrEventNotFound
	}

	refs := gate.EntityRefs{
		RegionID:      dataEvent.RegionID,
		UniversityID:  dataEvent.UniversityID,
		SmallGroupID:  dataEvent.SmallGroupID,
		AlumniGroupID: dataEvent.AlumniGroupID,
	}
	if err := s.gate.CheckWrite(ctx, sc, resource, refs); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, eventID); err != nil {
		return internal.NewInternalError("failed to delete event", err)
	}
	s.logger.Info("event deleted", "event_id", eventID)
	return nil
}

// RecordAttendance marks a member's presence at an event. Both the event
// and the member must be visible under the caller's filter; a second
// record for the same pair conflicts.
func (s *Service) RecordAttendance(ctx context.Context, sc *scope.Context, eventID int64, dto RecordAttendanceDTO, recordedBy *int64) (*Attendance, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	decision, err := s.gate.Authorize(ctx, sc, resource, "read")
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, internal.ErrPermissionDenied
	}

	dataEvent, err := s.repo.Get(ctx, eventID, decision.Filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to load event", err)
	}
	if dataEvent == nil {
		return nil, internal.ErrEventNotFound
	}

	refs := gate.EntityRefs{
		RegionID:      dataEvent.RegionID,
		UniversityID:  dataEvent.UniversityID,
		SmallGroupID:  dataEvent.SmallGroupID,
		AlumniGroupID: dataEvent.AlumniGroupID,
	}
	if err := s.gate.CheckWrite(ctx, sc, resource, refs); err != nil {
		return nil, err
	}

	attendee, err := s.members.Get(ctx, dto.MemberID, decision.Filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to load member", err)
	}
	if attendee == nil {
		return nil, internal.ErrMemberNotFound
	}

	status := dto.Status
	if status == "" {
		status = string(AttendancePresent)
	}
	attendance := &eventDatamodel.Attendance{
		EventID:    eventID,
		MemberID:   dto.MemberID,
		Status:     status,
		RecordedBy: recordedBy,
	}
	if err := s.repo.CreateAttendance(ctx, attendance); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to record attendance", "event_id", eventID, "member_id", dto.MemberID, "error", err)
		return nil, internal.NewInternalError("failed to record attendance", err)
	}
	s.logger.Info("attendance recorded", "event_id", eventID, "member_id", dto.MemberID)
	return AttendanceFromDataModel(attendance), nil
}

func (s *Service) ListAttendance(ctx context.Context, sc *scope.Context, eventID int64) ([]*Attendance, error) {
	decision, err := s.gate.Authorize(ctx, sc, resource, "read")
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, internal.ErrPermissionDenied
	}

	dataEvent, err := s.repo.Get(ctx, eventID, decision.Filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to load event", err)
	}
	if dataEvent == nil {
		return nil, internal.ErrEventNotFound
	}

	dataAttendances, err := s.repo.ListAttendance(ctx, eventID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list attendance", err)
	}
	attendances := make([]*Attendance, 0, len(dataAttendances))
	for _, a := range dataAttendances {
		attendances = append(attendances, AttendanceFromDataModel(a))
	}
	return attendances, nil
}

// resolveChain fills the ancestor columns from whichever single level the
// event is attached to.
func (s *Service) resolveChain(ctx context.Context, dto CreateEventDTO) (gate.EntityRefs, error) {
	switch {
	case dto.SmallGroupID != nil:
		smallGroup, err := s.hierarchy.GetSmallGroup(ctx, *dto.SmallGroupID)
		if err != nil {
			return gate.EntityRefs{}, internal.NewInternalError("failed to load small group", err)
		}
		if smallGroup == nil {
			return gate.EntityRefs{}, internal.ErrSmallGroupNotFound
		}
		return gate.EntityRefs{
			RegionID:     &smallGroup.RegionID,
			UniversityID: &smallGroup.UniversityID,
			SmallGroupID: &smallGroup.ID,
		}, nil

	case dto.UniversityID != nil:
		university, err := s.hierarchy.GetUniversity(ctx, *dto.UniversityID)
		if err != nil {
			return gate.EntityRefs{}, internal.NewInternalError("failed to load university", err)
		}
		if university == nil {
			return gate.EntityRefs{}, internal.ErrUniversityNotFound
		}
		return gate.EntityRefs{
			RegionID:     &university.RegionID,
			UniversityID: &university.ID,
		}, nil

	case dto.AlumniGroupID != nil:
		group, err := s.hierarchy.GetAlumniGroup(ctx, *dto.AlumniGroupID)
		if err != nil {
			return gate.EntityRefs{}, internal.NewInternalError("failed to load alumni group", err)
		}
		if group == nil {
			return gate.EntityRefs{}, internal.ErrAlumniGroupNotFound
		}
		return gate.EntityRefs{
			RegionID:      &group.RegionID,
			AlumniGroupID: &group.ID,
		}, nil

	case dto.RegionID != nil:
		region, err := s.hierarchy.GetRegion(ctx, *dto.RegionID)
		if err != nil {
			return gate.EntityRefs{}, internal.NewInternalError("failed to load region", err)
		}
		if region == nil {
			return gate.EntityRefs{}, internal.ErrRegionNotFound
		}
		return gate.EntityRefs{RegionID: &region.ID}, nil
	}
	return gate.EntityRefs{}, internal.NewValidationError("an entity id is required", internal.ErrCodeValidationFailed)
}
