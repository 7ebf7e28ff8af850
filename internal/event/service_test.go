package event_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/aburizalp/ministry-management/internal"
	eventDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/event"
	hierarchyDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/hierarchy"
	memberDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/member"
	"github.com/aburizalp/ministry-management/internal/event"
	"github.com/aburizalp/ministry-management/internal/gate"
	"github.com/aburizalp/ministry-management/internal/scope"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestEventService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Event Service Suite")
}

type attendanceKey struct {
	eventID  int64
	memberID int64
}

// MockRepository implements event.RepositoryAPI for testing
type MockRepository struct {
	events      map[int64]*eventDatamodel.Event
	attendances map[attendanceKey]*eventDatamodel.Attendance
	nextID      int64
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		events:      make(map[int64]*eventDatamodel.Event),
		attendances: make(map[attendanceKey]*eventDatamodel.Attendance),
	}
}

func matchesFilter(e *eventDatamodel.Event, filter *gate.EntityFilter) bool {
	if filter == nil {
		return true
	}
	if filter.RegionID != nil && (e.RegionID == nil || *e.RegionID != *filter.RegionID) {
		return false
	}
	if filter.UniversityID != nil && (e.UniversityID == nil || *e.UniversityID != *filter.UniversityID) {
		return false
	}
	if filter.SmallGroupID != nil && (e.SmallGroupID == nil || *e.SmallGroupID != *filter.SmallGroupID) {
		return false
	}
	if filter.AlumniGroupID != nil && (e.AlumniGroupID == nil || *e.AlumniGroupID != *filter.AlumniGroupID) {
		return false
	}
	return true
}

func (m *MockRepository) List(ctx context.Context, filter *gate.EntityFilter) ([]*eventDatamodel.Event, error) {
	var result []*eventDatamodel.Event
	for _, row := range m.events {
		if matchesFilter(row, filter) {
			result = append(result, row)
		}
	}
	return result, nil
}

func (m *MockRepository) Get(ctx context.Context, id int64, filter *gate.EntityFilter) (*eventDatamodel.Event, error) {
	row, exists := m.events[id]
	if !exists || !matchesFilter(row, filter) {
		return nil, nil
	}
	return row, nil
}

func (m *MockRepository) Create(ctx context.Context, row *eventDatamodel.Event) error {
	m.nextID++
	row.ID = m.nextID
	m.events[row.ID] = row
	return nil
}

func (m *MockRepository) Update(ctx context.Context, row *eventDatamodel.Event) error {
	m.events[row.ID] = row
	return nil
}

func (m *MockRepository) Delete(ctx context.Context, id int64) error {
	delete(m.events, id)
	return nil
}

func (m *MockRepository) CreateAttendance(ctx context.Context, attendance *eventDatamodel.Attendance) error {
	key := attendanceKey{attendance.EventID, attendance.MemberID}
	if _, exists := m.attendances[key]; exists {
		return internal.NewConflictError("attendance already recorded for this member", internal.ErrCodeDuplicateAttendance)
	}
	m.nextID++
	attendance.ID = m.nextID
	m.attendances[key] = attendance
	return nil
}

func (m *MockRepository) ListAttendance(ctx context.Context, eventID int64) ([]*eventDatamodel.Attendance, error) {
	var result []*eventDatamodel.Attendance
	for key, row := range m.attendances {
		if key.eventID == eventID {
			result = append(result, row)
		}
	}
	return result, nil
}

// MockHierarchy implements event.HierarchyAPI for testing
type MockHierarchy struct {
	regions      map[int64]*hierarchyDatamodel.Region
	universities map[int64]*hierarchyDatamodel.University
	smallGroups  map[int64]*hierarchyDatamodel.SmallGroup
	alumniGroups map[int64]*hierarchyDatamodel.AlumniSmallGroup
}

func NewMockHierarchy() *MockHierarchy {
	return &MockHierarchy{
		regions:      make(map[int64]*hierarchyDatamodel.Region),
		universities: make(map[int64]*hierarchyDatamodel.University),
		smallGroups:  make(map[int64]*hierarchyDatamodel.SmallGroup),
		alumniGroups: make(map[int64]*hierarchyDatamodel.AlumniSmallGroup),
	}
}

func (m *MockHierarchy) GetRegion(ctx context.Context, id int64) (*hierarchyDatamodel.Region, error) {
	return m.regions[id], nil
}

func (m *MockHierarchy) GetUniversity(ctx context.Context, id int64) (*hierarchyDatamodel.University, error) {
	return m.universities[id], nil
}

func (m *MockHierarchy) GetSmallGroup(ctx context.Context, id int64) (*hierarchyDatamodel.SmallGroup, error) {
	return m.smallGroups[id], nil
}

func (m *MockHierarchy) GetAlumniGroup(ctx context.Context, id int64) (*hierarchyDatamodel.AlumniSmallGroup, error) {
	return m.alumniGroups[id], nil
}

// MockMembers implements event.MemberAPI for testing
type MockMembers struct {
	members map[int64]*memberDatamodel.Member
}

func (m *MockMembers) Get(ctx context.Context, id int64, filter *gate.EntityFilter) (*memberDatamodel.Member, error) {
	row, exists := m.members[id]
	if !exists {
		return nil, nil
	}
	if filter != nil {
		if filter.RegionID != nil && (row.RegionID == nil || *row.RegionID != *filter.RegionID) {
			return nil, nil
		}
		if filter.SmallGroupID != nil && (row.SmallGroupID == nil || *row.SmallGroupID != *filter.SmallGroupID) {
			return nil, nil
		}
	}
	return row, nil
}

// MockGate implements event.GateAPI with scope-only enforcement
type MockGate struct{}

func (m *MockGate) Authorize(ctx context.Context, sc *scope.Context, resource, action string) (gate.Decision, error) {
	if sc == nil {
		return gate.Decision{}, internal.ErrNoScopeAssigned
	}
	switch sc.Level {
	case scope.LevelSuperadmin, scope.LevelNational:
		return gate.Decision{Allowed: true, Policy: gate.PolicyNone}, nil
	case scope.LevelRegion:
		return gate.Decision{Allowed: true, Filter: &gate.EntityFilter{RegionID: &sc.Region.ID}, Policy: gate.PolicyNone}, nil
	case scope.LevelSmallGroup:
		return gate.Decision{Allowed: true, Filter: &gate.EntityFilter{SmallGroupID: &sc.SmallGroup.ID}, Policy: gate.PolicyNone}, nil
	}
	return gate.Decision{}, internal.ErrPermissionDenied
}

func (m *MockGate) CheckWrite(ctx context.Context, sc *scope.Context, resource string, refs gate.EntityRefs) error {
	decision, err := m.Authorize(ctx, sc, resource, "write")
	if err != nil {
		return err
	}
	if !decision.Filter.Permits(refs) {
		return internal.ErrScopeViolation
	}
	return nil
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(s string) *string { return &s }

func regionContext(regionID int64) *scope.Context {
	return &scope.Context{
		UserID: 1,
		Level:  scope.LevelRegion,
		Region: &scope.RegionRef{ID: regionID},
	}
}

var superadminContext = &scope.Context{UserID: 1, Level: scope.LevelSuperadmin}

var _ = Describe("Event Service", func() {
	var (
		mockRepo      *MockRepository
		mockHierarchy *MockHierarchy
		mockMembers   *MockMembers
		service       *event.Service
		ctx           context.Context
		startsAt      time.Time
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		mockHierarchy = NewMockHierarchy()
		mockMembers = &MockMembers{members: make(map[int64]*memberDatamodel.Member)}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = event.NewService(mockRepo, mockHierarchy, mockMembers, &MockGate{}, logger)
		ctx = context.Background()
		startsAt = time.Date(2025, 9, 14, 10, 0, 0, 0, time.UTC)

		mockHierarchy.regions[1] = &hierarchyDatamodel.Region{ID: 1, Name: "Jabodetabek"}
		mockHierarchy.regions[2] = &hierarchyDatamodel.Region{ID: 2, Name: "Jawa Barat"}
		mockHierarchy.universities[10] = &hierarchyDatamodel.University{ID: 10, Name: "UI", RegionID: 1}
		mockHierarchy.smallGroups[100] = &hierarchyDatamodel.SmallGroup{ID: 100, Name: "KK Yohanes", UniversityID: 10, RegionID: 1}
		mockHierarchy.alumniGroups[200] = &hierarchyDatamodel.AlumniSmallGroup{ID: 200, Name: "Alumni Pusat", RegionID: 1}
	})

	Describe("Create", func() {
		It("should derive the full chain for a small group event", func() {
			created, err := service.Create(ctx, superadminContext, event.CreateEventDTO{
				Title:        "Weekly Gathering",
				StartsAt:     startsAt,
				SmallGroupID: int64Ptr(100),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.SmallGroupID).To(HaveValue(Equal(int64(100))))
			Expect(created.UniversityID).To(HaveValue(Equal(int64(10))))
			Expect(created.RegionID).To(HaveValue(Equal(int64(1))))
			Expect(created.EventType).To(Equal(event.TypeService))
		})

		It("should attach a university event without a small group", func() {
			created, err := service.Create(ctx, superadminContext, event.CreateEventDTO{
				Title:        "Campus Training",
				EventType:    "training",
				StartsAt:     startsAt,
				UniversityID: int64Ptr(10),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.UniversityID).To(HaveValue(Equal(int64(10))))
			Expect(created.RegionID).To(HaveValue(Equal(int64(1))))
			Expect(created.SmallGroupID).To(BeNil())
			Expect(created.EventType).To(Equal(event.TypeTraining))
		})

		It("should attach an alumni event to region and alumni group", func() {
			created, err := service.Create(ctx, superadminContext, event.CreateEventDTO{
				Title:         "Alumni Retreat",
				StartsAt:      startsAt,
				AlumniGroupID: int64Ptr(200),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.AlumniGroupID).To(HaveValue(Equal(int64(200))))
			Expect(created.RegionID).To(HaveValue(Equal(int64(1))))
			Expect(created.UniversityID).To(BeNil())
		})

		It("should reject an event outside the caller's region", func() {
			_, err := service.Create(ctx, regionContext(2), event.CreateEventDTO{
				Title:        "Weekly Gathering",
				StartsAt:     startsAt,
				SmallGroupID: int64Ptr(100),
			})
			Expect(err).To(Equal(internal.ErrScopeViolation))
		})

		It("should require exactly one hierarchy level", func() {
			_, err := service.Create(ctx, superadminContext, event.CreateEventDTO{
				Title:    "Weekly Gathering",
				StartsAt: startsAt,
			})
			Expect(err).To(HaveOccurred())

			_, err = service.Create(ctx, superadminContext, event.CreateEventDTO{
				Title:        "Weekly Gathering",
				StartsAt:     startsAt,
				RegionID:     int64Ptr(1),
				SmallGroupID: int64Ptr(100),
			})
			Expect(err).To(HaveOccurred())
		})

		It("should reject an unknown event type", func() {
			_, err := service.Create(ctx, superadminContext, event.CreateEventDTO{
				Title:     "Weekly Gathering",
				EventType: "banquet",
				StartsAt:  startsAt,
				RegionID:  int64Ptr(1),
			})
			Expect(err).To(HaveOccurred())
		})

		It("should fail for a missing small group", func() {
			_, err := service.Create(ctx, superadminContext, event.CreateEventDTO{
				Title:        "Weekly Gathering",
				StartsAt:     startsAt,
				SmallGroupID: int64Ptr(999),
			})
			Expect(err).To(Equal(internal.ErrSmallGroupNotFound))
		})
	})

	Describe("List and Get", func() {
		BeforeEach(func() {
			for _, dto := range []event.CreateEventDTO{
				{Title: "Region One Rally", StartsAt: startsAt, RegionID: int64Ptr(1)},
				{Title: "Region Two Rally", StartsAt: startsAt, RegionID: int64Ptr(2)},
			} {
				_, err := service.Create(ctx, superadminContext, dto)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("should filter the list by the caller's region", func() {
			events, err := service.List(ctx, regionContext(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(HaveLen(1))
			Expect(events[0].Title).To(Equal("Region One Rally"))
		})

		It("should hide an out-of-scope event as not found", func() {
			all, err := service.List(ctx, superadminContext)
			Expect(err).NotTo(HaveOccurred())
			var otherRegionID int64
			for _, e := range all {
				if e.Title == "Region Two Rally" {
					otherRegionID = e.ID
				}
			}

			_, err = service.Get(ctx, regionContext(1), otherRegionID)
			Expect(err).To(Equal(internal.ErrEventNotFound))
		})
	})

	Describe("RecordAttendance", func() {
		var eventID int64

		BeforeEach(func() {
			created, err := service.Create(ctx, superadminContext, event.CreateEventDTO{
				Title:        "Weekly Gathering",
				StartsAt:     startsAt,
				SmallGroupID: int64Ptr(100),
			})
			Expect(err).NotTo(HaveOccurred())
			eventID = created.ID

			mockMembers.members[5] = &memberDatamodel.Member{
				ID: 5, Name: "Budi",
				RegionID: int64Ptr(1), UniversityID: int64Ptr(10), SmallGroupID: int64Ptr(100),
			}
			mockMembers.members[6] = &memberDatamodel.Member{
				ID: 6, Name: "Andi",
				RegionID: int64Ptr(2),
			}
		})

		It("should record presence with the default status", func() {
			recorded, err := service.RecordAttendance(ctx, regionContext(1), eventID, event.RecordAttendanceDTO{MemberID: 5}, int64Ptr(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(recorded.Status).To(Equal(event.AttendancePresent))
			Expect(recorded.RecordedBy).To(HaveValue(Equal(int64(1))))
		})

		It("should conflict on a second record for the same member", func() {
			_, err := service.RecordAttendance(ctx, regionContext(1), eventID, event.RecordAttendanceDTO{MemberID: 5}, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.RecordAttendance(ctx, regionContext(1), eventID, event.RecordAttendanceDTO{MemberID: 5, Status: "excused"}, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateAttendance))
		})

		It("should not record a member the caller cannot see", func() {
			_, err := service.RecordAttendance(ctx, regionContext(1), eventID, event.RecordAttendanceDTO{MemberID: 6}, nil)
			Expect(err).To(Equal(internal.ErrMemberNotFound))
		})

		It("should reject an unknown attendance status", func() {
			_, err := service.RecordAttendance(ctx, regionContext(1), eventID, event.RecordAttendanceDTO{MemberID: 5, Status: "late"}, nil)
			Expect(err).To(HaveOccurred())
		})

		It("should hide the event from another region's caller", func() {
			_, err := service.RecordAttendance(ctx, regionContext(2), eventID, event.RecordAttendanceDTO{MemberID: 5}, nil)
			Expect(err).To(Equal(internal.ErrEventNotFound))
		})
	})

	Describe("ListAttendance", func() {
		It("should return records for a visible event", func() {
			created, err := service.Create(ctx, superadminContext, event.CreateEventDTO{
				Title:        "Weekly Gathering",
				StartsAt:     startsAt,
				SmallGroupID: int64Ptr(100),
			})
			Expect(err).NotTo(HaveOccurred())

			mockMembers.members[5] = &memberDatamodel.Member{ID: 5, Name: "Budi", RegionID: int64Ptr(1), SmallGroupID: int64Ptr(100)}
			_, err = service.RecordAttendance(ctx, superadminContext, created.ID, event.RecordAttendanceDTO{MemberID: 5}, nil)
			Expect(err).NotTo(HaveOccurred())

			records, err := service.ListAttendance(ctx, regionContext(1), created.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(records).To(HaveLen(1))
			Expect(records[0].MemberID).To(Equal(int64(5)))
		})
	})

	Describe("Update", func() {
		var eventID int64

		BeforeEach(func() {
			created, err := service.Create(ctx, superadminContext, event.CreateEventDTO{
				Title:        "Weekly Gathering",
				StartsAt:     startsAt,
				SmallGroupID: int64Ptr(100),
			})
			Expect(err).NotTo(HaveOccurred())
			eventID = created.ID
		})

		It("should mutate the descriptive fields and keep the chain", func() {
			rescheduled := startsAt.Add(48 * time.Hour)
			updated, err := service.Update(ctx, regionContext(1), eventID, event.UpdateEventDTO{
				Title:    strPtr("Weekly Gathering (moved)"),
				Location: strPtr("Aula Barat"),
				StartsAt: &rescheduled,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Title).To(Equal("Weekly Gathering (moved)"))
			Expect(updated.Location).To(Equal("Aula Barat"))
			Expect(updated.StartsAt).To(Equal(rescheduled))
			Expect(updated.SmallGroupID).To(HaveValue(Equal(int64(100))))
			Expect(updated.RegionID).To(HaveValue(Equal(int64(1))))
		})

		It("should change the event type when valid", func() {
			updated, err := service.Update(ctx, superadminContext, eventID, event.UpdateEventDTO{
				EventType: strPtr("training"),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.EventType).To(Equal(event.TypeTraining))
		})

		It("should reject an unknown event type", func() {
			_, err := service.Update(ctx, superadminContext, eventID, event.UpdateEventDTO{
				EventType: strPtr("banquet"),
			})
			Expect(err).To(HaveOccurred())
		})

		It("should reject an empty title", func() {
			_, err := service.Update(ctx, superadminContext, eventID, event.UpdateEventDTO{
				Title: strPtr(""),
			})
			Expect(err).To(HaveOccurred())
		})

		It("should hide an out-of-scope event as not found", func() {
			_, err := service.Update(ctx, regionContext(2), eventID, event.UpdateEventDTO{
				Title: strPtr("Intrusion"),
			})
			Expect(err).To(Equal(internal.ErrEventNotFound))
		})
	})

	Describe("Delete", func() {
		It("should delete an event inside the caller's scope", func() {
			created, err := service.Create(ctx, superadminContext, event.CreateEventDTO{
				Title:    "Region One Rally",
				StartsAt: startsAt,
				RegionID: int64Ptr(1),
			})
			Expect(err).NotTo(HaveOccurred())

			Expect(service.Delete(ctx, regionContext(1), created.ID)).To(Succeed())

			_, err = service.Get(ctx, superadminContext, created.ID)
			Expect(err).To(Equal(internal.ErrEventNotFound))
		})
	})
})
