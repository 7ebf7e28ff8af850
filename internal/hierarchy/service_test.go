package hierarchy_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/aburizalp/ministry-management/internal"
	hierarchyDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/hierarchy"
	"github.com/aburizalp/ministry-management/internal/hierarchy"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestHierarchyService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Hierarchy Service Suite")
}

// MockRepository implements hierarchy.RepositoryAPI for testing
type MockRepository struct {
	regions      map[int64]*hierarchyDatamodel.Region
	universities map[int64]*hierarchyDatamodel.University
	smallGroups  map[int64]*hierarchyDatamodel.SmallGroup
	alumniGroups map[int64]*hierarchyDatamodel.AlumniSmallGroup
	assignments  map[string]map[int64]int64
	nextID       int64
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		regions:      make(map[int64]*hierarchyDatamodel.Region),
		universities: make(map[int64]*hierarchyDatamodel.University),
		smallGroups:  make(map[int64]*hierarchyDatamodel.SmallGroup),
		alumniGroups: make(map[int64]*hierarchyDatamodel.AlumniSmallGroup),
		assignments:  make(map[string]map[int64]int64),
		nextID:       1000,
	}
}

func (m *MockRepository) GetRegion(ctx context.Context, id int64) (*hierarchyDatamodel.Region, error) {
	return m.regions[id], nil
}

func (m *MockRepository) ListRegions(ctx context.Context) ([]*hierarchyDatamodel.Region, error) {
	var result []*hierarchyDatamodel.Region
	for _, r := range m.regions {
		result = append(result, r)
	}
	return result, nil
}

func (m *MockRepository) CreateRegion(ctx context.Context, region *hierarchyDatamodel.Region) error {
	for _, r := range m.regions {
		if r.Name == region.Name {
			return internal.NewConflictError("region name already exists", internal.ErrCodeDuplicateName)
		}
	}
	m.nextID++
	region.ID = m.nextID
	m.regions[region.ID] = region
	return nil
}

func (m *MockRepository) DeleteRegion(ctx context.Context, id int64) error {
	delete(m.regions, id)
	return nil
}

func (m *MockRepository) GetUniversity(ctx context.Context, id int64) (*hierarchyDatamodel.University, error) {
	return m.universities[id], nil
}

func (m *MockRepository) ListUniversities(ctx context.Context, regionID *int64) ([]*hierarchyDatamodel.University, error) {
	var result []*hierarchyDatamodel.University
	for _, u := range m.universities {
		if regionID == nil || u.RegionID == *regionID {
			result = append(result, u)
		}
	}
	return result, nil
}

func (m *MockRepository) CreateUniversity(ctx context.Context, university *hierarchyDatamodel.University) error {
	m.nextID++
	university.ID = m.nextID
	m.universities[university.ID] = university
	return nil
}

func (m *MockRepository) DeleteUniversity(ctx context.Context, id int64) error {
	delete(m.universities, id)
	return nil
}

func (m *MockRepository) GetSmallGroup(ctx context.Context, id int64) (*hierarchyDatamodel.SmallGroup, error) {
	return m.smallGroups[id], nil
}

func (m *MockRepository) ListSmallGroups(ctx context.Context, universityID *int64) ([]*hierarchyDatamodel.SmallGroup, error) {
	var result []*hierarchyDatamodel.SmallGroup
	for _, sg := range m.smallGroups {
		if universityID == nil || sg.UniversityID == *universityID {
			result = append(result, sg)
		}
	}
	return result, nil
}

func (m *MockRepository) CreateSmallGroup(ctx context.Context, smallGroup *hierarchyDatamodel.SmallGroup) error {
	m.nextID++
	smallGroup.ID = m.nextID
	m.smallGroups[smallGroup.ID] = smallGroup
	return nil
}

func (m *MockRepository) DeleteSmallGroup(ctx context.Context, id int64) error {
	delete(m.smallGroups, id)
	return nil
}

func (m *MockRepository) GetAlumniGroup(ctx context.Context, id int64) (*hierarchyDatamodel.AlumniSmallGroup, error) {
	return m.alumniGroups[id], nil
}

func (m *MockRepository) ListAlumniGroups(ctx context.Context, regionID *int64) ([]*hierarchyDatamodel.AlumniSmallGroup, error) {
	var result []*hierarchyDatamodel.AlumniSmallGroup
	for _, g := range m.alumniGroups {
		if regionID == nil || g.RegionID == *regionID {
			result = append(result, g)
		}
	}
	return result, nil
}

func (m *MockRepository) CreateAlumniGroup(ctx context.Context, group *hierarchyDatamodel.AlumniSmallGroup) error {
	m.nextID++
	group.ID = m.nextID
	m.alumniGroups[group.ID] = group
	return nil
}

func (m *MockRepository) DeleteAlumniGroup(ctx context.Context, id int64) error {
	delete(m.alumniGroups, id)
	return nil
}

func (m *MockRepository) CountUniversitiesInRegion(ctx context.Context, regionID int64) (int64, error) {
	var count int64
	for _, u := range m.universities {
		if u.RegionID == regionID {
			count++
		}
	}
	return count, nil
}

func (m *MockRepository) CountAlumniGroupsInRegion(ctx context.Context, regionID int64) (int64, error) {
	var count int64
	for _, g := range m.alumniGroups {
		if g.RegionID == regionID {
			count++
		}
	}
	return count, nil
}

func (m *MockRepository) CountSmallGroupsInUniversity(ctx context.Context, universityID int64) (int64, error) {
	var count int64
	for _, sg := range m.smallGroups {
		if sg.UniversityID == universityID {
			count++
		}
	}
	return count, nil
}

func (m *MockRepository) CountScopeAssignments(ctx context.Context, column string, entityID int64) (int64, error) {
	return m.assignments[column][entityID], nil
}

func (m *MockRepository) SetAssignments(column string, entityID, count int64) {
	if m.assignments[column] == nil {
		m.assignments[column] = make(map[int64]int64)
	}
	m.assignments[column][entityID] = count
}

func int64Ptr(v int64) *int64 { return &v }

var _ = Describe("Hierarchy Service", func() {
	var (
		mockRepo *MockRepository
		service  *hierarchy.Service
		ctx      context.Context
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = hierarchy.NewService(mockRepo, logger)
		ctx = context.Background()

		mockRepo.regions[1] = &hierarchyDatamodel.Region{ID: 1, Name: "Jabodetabek"}
		mockRepo.regions[2] = &hierarchyDatamodel.Region{ID: 2, Name: "Jawa Barat"}
		mockRepo.universities[10] = &hierarchyDatamodel.University{ID: 10, Name: "UI", RegionID: 1}
		mockRepo.universities[11] = &hierarchyDatamodel.University{ID: 11, Name: "ITB", RegionID: 2}
		mockRepo.smallGroups[100] = &hierarchyDatamodel.SmallGroup{ID: 100, Name: "KK Yohanes", UniversityID: 10, RegionID: 1}
		mockRepo.alumniGroups[200] = &hierarchyDatamodel.AlumniSmallGroup{ID: 200, Name: "Alumni Pusat", RegionID: 1}
	})

	Describe("CreateSmallGroup", func() {
		It("should create under the university with the denormalized region", func() {
			sg, err := service.CreateSmallGroup(ctx, hierarchy.CreateSmallGroupDTO{
				Name:         "KK Markus",
				UniversityID: 10,
				RegionID:     1,
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(sg.RegionID).To(Equal(int64(1)))
			Expect(sg.UniversityID).To(Equal(int64(10)))
		})

		It("should reject a region that diverges from the university's region", func() {
			_, err := service.CreateSmallGroup(ctx, hierarchy.CreateSmallGroupDTO{
				Name:         "KK Markus",
				UniversityID: 10,
				RegionID:     2,
			})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})

		It("should fail for a missing university", func() {
			_, err := service.CreateSmallGroup(ctx, hierarchy.CreateSmallGroupDTO{
				Name:         "KK Markus",
				UniversityID: 999,
				RegionID:     1,
			})
			Expect(err).To(Equal(internal.ErrUniversityNotFound))
		})
	})

	Describe("CreateRegion", func() {
		It("should reject a duplicate name", func() {
			_, err := service.CreateRegion(ctx, hierarchy.CreateRegionDTO{Name: "Jabodetabek"})
			Expect(err).To(HaveOccurred())
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateName))
		})
	})

	Describe("DeleteRegion", func() {
		It("should block deletion while universities exist", func() {
			err := service.DeleteRegion(ctx, 1)
			Expect(err).To(Equal(internal.ErrHasChildren))
		})

		It("should block deletion while scope assignments point at it", func() {
			mockRepo.nextID = 500
			region := &hierarchyDatamodel.Region{Name: "Sulawesi"}
			Expect(mockRepo.CreateRegion(ctx, region)).To(Succeed())
			mockRepo.SetAssignments("region_id", region.ID, 2)

			err := service.DeleteRegion(ctx, region.ID)
			Expect(err).To(Equal(internal.ErrHasActiveAssignment))
		})

		It("should delete an empty unreferenced region", func() {
			region := &hierarchyDatamodel.Region{Name: "Sulawesi"}
			Expect(mockRepo.CreateRegion(ctx, region)).To(Succeed())

			err := service.DeleteRegion(ctx, region.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(mockRepo.regions).NotTo(HaveKey(region.ID))
		})

		It("should fail for a missing region", func() {
			err := service.DeleteRegion(ctx, 999)
			Expect(err).To(Equal(internal.ErrRegionNotFound))
		})
	})

	Describe("DeleteUniversity", func() {
		It("should block deletion while small groups exist", func() {
			err := service.DeleteUniversity(ctx, 10)
			Expect(err).To(Equal(internal.ErrHasChildren))
		})

		It("should delete a university with no small groups", func() {
			err := service.DeleteUniversity(ctx, 11)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("DeleteSmallGroup", func() {
		It("should block deletion while a leader is assigned to it", func() {
			mockRepo.SetAssignments("small_group_id", 100, 1)
			err := service.DeleteSmallGroup(ctx, 100)
			Expect(err).To(Equal(internal.ErrHasActiveAssignment))
		})

		It("should delete an unreferenced small group", func() {
			err := service.DeleteSmallGroup(ctx, 100)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("SelectRegion", func() {
		It("should clear children that are invalid under the new region", func() {
			sel := hierarchy.Selection{
				RegionID:      int64Ptr(1),
				UniversityID:  int64Ptr(10),
				SmallGroupID:  int64Ptr(100),
				AlumniGroupID: int64Ptr(200),
			}

			next, err := service.SelectRegion(ctx, sel, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(next.RegionID).To(HaveValue(Equal(int64(2))))
			Expect(next.UniversityID).To(BeNil())
			Expect(next.SmallGroupID).To(BeNil())
			Expect(next.AlumniGroupID).To(BeNil())
		})

		It("should keep children still valid under the new region", func() {
			sel := hierarchy.Selection{
				RegionID:      int64Ptr(2),
				UniversityID:  int64Ptr(10),
				SmallGroupID:  int64Ptr(100),
				AlumniGroupID: int64Ptr(200),
			}

			next, err := service.SelectRegion(ctx, sel, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(next.UniversityID).To(HaveValue(Equal(int64(10))))
			Expect(next.SmallGroupID).To(HaveValue(Equal(int64(100))))
			Expect(next.AlumniGroupID).To(HaveValue(Equal(int64(200))))
		})

		It("should clear a small group whose university survived but no longer contains it", func() {
			// small group 101 lives under ITB; selection pairs it with UI
			mockRepo.smallGroups[101] = &hierarchyDatamodel.SmallGroup{ID: 101, Name: "KK Petrus", UniversityID: 11, RegionID: 2}
			sel := hierarchy.Selection{
				RegionID:     int64Ptr(2),
				UniversityID: int64Ptr(10),
				SmallGroupID: int64Ptr(101),
			}

			next, err := service.SelectRegion(ctx, sel, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(next.UniversityID).To(HaveValue(Equal(int64(10))))
			Expect(next.SmallGroupID).To(BeNil())
		})

		It("should fail for a missing region", func() {
			_, err := service.SelectRegion(ctx, hierarchy.Selection{}, 999)
			Expect(err).To(Equal(internal.ErrRegionNotFound))
		})
	})

	Describe("SelectUniversity", func() {
		It("should align the region with the new university", func() {
			sel := hierarchy.Selection{
				RegionID:     int64Ptr(1),
				UniversityID: int64Ptr(10),
				SmallGroupID: int64Ptr(100),
			}

			next, err := service.SelectUniversity(ctx, sel, 11)
			Expect(err).NotTo(HaveOccurred())
			Expect(next.RegionID).To(HaveValue(Equal(int64(2))))
			Expect(next.UniversityID).To(HaveValue(Equal(int64(11))))
			Expect(next.SmallGroupID).To(BeNil())
		})

		It("should keep a small group that belongs to the new university", func() {
			sel := hierarchy.Selection{
				RegionID:     int64Ptr(1),
				UniversityID: int64Ptr(10),
				SmallGroupID: int64Ptr(100),
			}

			next, err := service.SelectUniversity(ctx, sel, 10)
			Expect(err).NotTo(HaveOccurred())
			Expect(next.SmallGroupID).To(HaveValue(Equal(int64(100))))
		})
	})
})

var _ = Describe("Selection", func() {
	Describe("ApplyRegion", func() {
		It("should drop the small group together with its invalidated university", func() {
			sel := hierarchy.Selection{
				UniversityID: int64Ptr(10),
				SmallGroupID: int64Ptr(100),
			}
			next := sel.ApplyRegion(2, nil, nil)
			Expect(next.RegionID).To(HaveValue(Equal(int64(2))))
			Expect(next.UniversityID).To(BeNil())
			Expect(next.SmallGroupID).To(BeNil())
		})

		It("should keep an alumni group present in the new option set", func() {
			sel := hierarchy.Selection{AlumniGroupID: int64Ptr(200)}
			next := sel.ApplyRegion(1, nil, []*hierarchy.AlumniSmallGroup{{ID: 200, RegionID: 1}})
			Expect(next.AlumniGroupID).To(HaveValue(Equal(int64(200))))
		})
	})

	Describe("ApplyUniversity", func() {
		It("should clear the small group when absent from the option set", func() {
			sel := hierarchy.Selection{SmallGroupID: int64Ptr(100)}
			next := sel.ApplyUniversity(11, []*hierarchy.SmallGroup{{ID: 101, UniversityID: 11}})
			Expect(next.UniversityID).To(HaveValue(Equal(int64(11))))
			Expect(next.SmallGroupID).To(BeNil())
		})
	})
})
