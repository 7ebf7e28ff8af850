package finance_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/aburizalp/ministry-management/internal"
	financeDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/finance"
	memberDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/member"
	"github.com/aburizalp/ministry-management/internal/finance"
	"github.com/aburizalp/ministry-management/internal/gate"
	"github.com/aburizalp/ministry-management/internal/scope"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestFinanceService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Finance Service Suite")
}

// MockRepository implements finance.RepositoryAPI for testing
type MockRepository struct {
	designations  map[int64]*financeDatamodel.Designation
	contributions map[int64]*financeDatamodel.Contribution
	nextID        int64
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		designations:  make(map[int64]*financeDatamodel.Designation),
		contributions: make(map[int64]*financeDatamodel.Contribution),
	}
}

func (m *MockRepository) GetDesignation(ctx context.Context, id int64) (*financeDatamodel.Designation, error) {
	return m.designations[id], nil
}

func (m *MockRepository) ListDesignations(ctx context.Context) ([]*financeDatamodel.Designation, error) {
	var result []*financeDatamodel.Designation
	for _, row := range m.designations {
		result = append(result, row)
	}
	return result, nil
}

func (m *MockRepository) CreateDesignation(ctx context.Context, row *financeDatamodel.Designation) error {
	for _, existing := range m.designations {
		if existing.Name == row.Name {
			return internal.NewConflictError("designation name already exists", internal.ErrCodeDuplicateName)
		}
	}
	m.nextID++
	row.ID = m.nextID
	m.designations[row.ID] = row
	return nil
}

func (m *MockRepository) DeleteDesignation(ctx context.Context, id int64) error {
	delete(m.designations, id)
	return nil
}

func (m *MockRepository) CountContributionsForDesignation(ctx context.Context, designationID int64) (int64, error) {
	var count int64
	for _, row := range m.contributions {
		if row.DesignationID == designationID {
			count++
		}
	}
	return count, nil
}

func matchesFilter(c *financeDatamodel.Contribution, filter *gate.EntityFilter) bool {
	if filter == nil {
		return true
	}
	if filter.RegionID != nil && (c.RegionID == nil || *c.RegionID != *filter.RegionID) {
		return false
	}
	if filter.SmallGroupID != nil && (c.SmallGroupID == nil || *c.SmallGroupID != *filter.SmallGroupID) {
		return false
	}
	if filter.AlumniGroupID != nil && (c.AlumniGroupID == nil || *c.AlumniGroupID != *filter.AlumniGroupID) {
		return false
	}
	return true
}

func (m *MockRepository) ListContributions(ctx context.Context, filter *gate.EntityFilter, designationID *int64) ([]*financeDatamodel.Contribution, error) {
	var result []*financeDatamodel.Contribution
	for _, row := range m.contributions {
		if designationID != nil && row.DesignationID != *designationID {
			continue
		}
		if matchesFilter(row, filter) {
			result = append(result, row)
		}
	}
	return result, nil
}

func (m *MockRepository) CreateContribution(ctx context.Context, row *financeDatamodel.Contribution) error {
	m.nextID++
	row.ID = m.nextID
	m.contributions[row.ID] = row
	return nil
}

// MockMembers implements finance.MemberAPI for testing
type MockMembers struct {
	members map[int64]*memberDatamodel.Member
}

func (m *MockMembers) Get(ctx context.Context, id int64, filter *gate.EntityFilter) (*memberDatamodel.Member, error) {
	row, exists := m.members[id]
	if !exists {
		return nil, nil
	}
	if filter != nil && filter.RegionID != nil && (row.RegionID == nil || *row.RegionID != *filter.RegionID) {
		return nil, nil
	}
	if filter != nil && filter.SmallGroupID != nil && (row.SmallGroupID == nil || *row.SmallGroupID != *filter.SmallGroupID) {
		return nil, nil
	}
	return row, nil
}

// MockGate implements finance.GateAPI with scope-only enforcement
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

func regionContext(regionID int64) *scope.Context {
	return &scope.Context{
		UserID: 1,
		Level:  scope.LevelRegion,
		Region: &scope.RegionRef{ID: regionID},
	}
}

var superadminContext = &scope.Context{UserID: 1, Level: scope.LevelSuperadmin}

var _ = Describe("Finance Service", func() {
	var (
		mockRepo    *MockRepository
		mockMembers *MockMembers
		service     *finance.Service
		ctx         context.Context
		givenAt     time.Time
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		mockMembers = &MockMembers{members: make(map[int64]*memberDatamodel.Member)}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = finance.NewService(mockRepo, mockMembers, &MockGate{}, logger)
		ctx = context.Background()
		givenAt = time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)

		mockMembers.members[5] = &memberDatamodel.Member{
			ID: 5, Name: "Budi",
			RegionID: int64Ptr(1), UniversityID: int64Ptr(10), SmallGroupID: int64Ptr(100),
		}
		mockMembers.members[6] = &memberDatamodel.Member{
			ID: 6, Name: "Andi",
			RegionID: int64Ptr(2),
		}
	})

	Describe("Designations", func() {
		It("should create and list designations", func() {
			created, err := service.CreateDesignation(ctx, finance.CreateDesignationDTO{Name: "umum"})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.IsActive).To(BeTrue())

			designations, err := service.ListDesignations(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(designations).To(HaveLen(1))
		})

		It("should reject a duplicate name", func() {
			_, err := service.CreateDesignation(ctx, finance.CreateDesignationDTO{Name: "umum"})
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateDesignation(ctx, finance.CreateDesignationDTO{Name: "umum"})
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateName))
		})

		It("should require a name", func() {
			_, err := service.CreateDesignation(ctx, finance.CreateDesignationDTO{})
			Expect(err).To(HaveOccurred())
		})

		Describe("Delete", func() {
			var designationID int64

			BeforeEach(func() {
				created, err := service.CreateDesignation(ctx, finance.CreateDesignationDTO{Name: "misi"})
				Expect(err).NotTo(HaveOccurred())
				designationID = created.ID
			})

			It("should delete an unused designation", func() {
				Expect(service.DeleteDesignation(ctx, designationID)).To(Succeed())

				designations, err := service.ListDesignations(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(designations).To(BeEmpty())
			})

			It("should be blocked while contributions reference it", func() {
				_, err := service.RecordContribution(ctx, superadminContext, finance.RecordContributionDTO{
					MemberID:      5,
					DesignationID: designationID,
					AmountMinor:   500000,
					GivenAt:       givenAt,
				}, nil)
				Expect(err).NotTo(HaveOccurred())

				Expect(service.DeleteDesignation(ctx, designationID)).To(Equal(internal.ErrDesignationInUse))
			})

			It("should fail for a missing designation", func() {
				Expect(service.DeleteDesignation(ctx, 999)).To(Equal(internal.ErrDesignationNotFound))
			})
		})
	})

	Describe("RecordContribution", func() {
		var designationID int64

		BeforeEach(func() {
			created, err := service.CreateDesignation(ctx, finance.CreateDesignationDTO{Name: "umum"})
			Expect(err).NotTo(HaveOccurred())
			designationID = created.ID
		})

		It("should copy the giver's hierarchy onto the contribution", func() {
			recorded, err := service.RecordContribution(ctx, regionContext(1), finance.RecordContributionDTO{
				MemberID:      5,
				DesignationID: designationID,
				AmountMinor:   250000,
				GivenAt:       givenAt,
			}, int64Ptr(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(recorded.RegionID).To(HaveValue(Equal(int64(1))))
			Expect(recorded.UniversityID).To(HaveValue(Equal(int64(10))))
			Expect(recorded.SmallGroupID).To(HaveValue(Equal(int64(100))))
			Expect(recorded.RecordedBy).To(HaveValue(Equal(int64(1))))
		})

		It("should not record for a member the caller cannot see", func() {
			_, err := service.RecordContribution(ctx, regionContext(1), finance.RecordContributionDTO{
				MemberID:      6,
				DesignationID: designationID,
				AmountMinor:   250000,
				GivenAt:       givenAt,
			}, nil)
			Expect(err).To(Equal(internal.ErrMemberNotFound))
		})

		It("should fail for a missing designation", func() {
			_, err := service.RecordContribution(ctx, regionContext(1), finance.RecordContributionDTO{
				MemberID:      5,
				DesignationID: 999,
				AmountMinor:   250000,
				GivenAt:       givenAt,
			}, nil)
			Expect(err).To(Equal(internal.ErrDesignationNotFound))
		})

		It("should reject an inactive designation", func() {
			mockRepo.designations[designationID].IsActive = false

			_, err := service.RecordContribution(ctx, regionContext(1), finance.RecordContributionDTO{
				MemberID:      5,
				DesignationID: designationID,
				AmountMinor:   250000,
				GivenAt:       givenAt,
			}, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
		})

		It("should reject a non-positive amount", func() {
			_, err := service.RecordContribution(ctx, regionContext(1), finance.RecordContributionDTO{
				MemberID:      5,
				DesignationID: designationID,
				AmountMinor:   0,
				GivenAt:       givenAt,
			}, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidAmount))
		})

		It("should require a given_at date", func() {
			_, err := service.RecordContribution(ctx, regionContext(1), finance.RecordContributionDTO{
				MemberID:      5,
				DesignationID: designationID,
				AmountMinor:   250000,
			}, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("ListContributions", func() {
		var umumID, misiID int64

		BeforeEach(func() {
			umum, err := service.CreateDesignation(ctx, finance.CreateDesignationDTO{Name: "umum"})
			Expect(err).NotTo(HaveOccurred())
			umumID = umum.ID
			misi, err := service.CreateDesignation(ctx, finance.CreateDesignationDTO{Name: "misi"})
			Expect(err).NotTo(HaveOccurred())
			misiID = misi.ID

			for _, dto := range []finance.RecordContributionDTO{
				{MemberID: 5, DesignationID: umumID, AmountMinor: 100000, GivenAt: givenAt},
				{MemberID: 5, DesignationID: misiID, AmountMinor: 200000, GivenAt: givenAt},
				{MemberID: 6, DesignationID: umumID, AmountMinor: 300000, GivenAt: givenAt},
			} {
				_, err := service.RecordContribution(ctx, superadminContext, dto, nil)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("should filter by the caller's region", func() {
			contributions, err := service.ListContributions(ctx, regionContext(1), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(contributions).To(HaveLen(2))
		})

		It("should filter by designation", func() {
			contributions, err := service.ListContributions(ctx, superadminContext, &umumID)
			Expect(err).NotTo(HaveOccurred())
			Expect(contributions).To(HaveLen(2))
			for _, c := range contributions {
				Expect(c.DesignationID).To(Equal(umumID))
			}
		})

		It("should fail without a scope context", func() {
			_, err := service.ListContributions(ctx, nil, nil)
			Expect(err).To(Equal(internal.ErrNoScopeAssigned))
		})
	})
})
