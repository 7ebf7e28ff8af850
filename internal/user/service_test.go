package user_test

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/aburizalp/ministry-management/internal"
	userDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/user"
	"github.com/aburizalp/ministry-management/internal/scope"
	"github.com/aburizalp/ministry-management/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestUserService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "User Service Suite")
}

// MockRepository implements user.RepositoryAPI for testing
type MockRepository struct {
	users        map[int64]*userDatamodel.User
	assignments  map[int64]*userDatamodel.UserRole
	roles        map[int64]bool
	regions      map[int64]bool
	universities map[int64]bool
	smallGroups  map[int64]bool
	alumniGroups map[int64]bool
	nextID       int64
}

func NewMockRepository() *MockRepository {
	return &MockRepository{
		users:        make(map[int64]*userDatamodel.User),
		assignments:  make(map[int64]*userDatamodel.UserRole),
		roles:        make(map[int64]bool),
		regions:      make(map[int64]bool),
		universities: make(map[int64]bool),
		smallGroups:  make(map[int64]bool),
		alumniGroups: make(map[int64]bool),
	}
}

func (m *MockRepository) GetUser(ctx context.Context, id int64) (*userDatamodel.User, error) {
	return m.users[id], nil
}

func (m *MockRepository) ListUsers(ctx context.Context) ([]*userDatamodel.User, error) {
	var result []*userDatamodel.User
	for _, row := range m.users {
		result = append(result, row)
	}
	return result, nil
}

func (m *MockRepository) CreateUser(ctx context.Context, row *userDatamodel.User) error {
	for _, existing := range m.users {
		if existing.Email == row.Email {
			return internal.NewConflictError("email already registered", internal.ErrCodeDuplicateName)
		}
	}
	m.nextID++
	row.ID = m.nextID
	m.users[row.ID] = row
	return nil
}

func (m *MockRepository) GetAssignment(ctx context.Context, userID int64) (*userDatamodel.UserRole, error) {
	return m.assignments[userID], nil
}

func (m *MockRepository) ReplaceAssignment(ctx context.Context, assignment *userDatamodel.UserRole) error {
	m.nextID++
	assignment.ID = m.nextID
	m.assignments[assignment.UserID] = assignment
	return nil
}

func (m *MockRepository) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	return m.roles[roleID], nil
}

func (m *MockRepository) RegionExists(ctx context.Context, id int64) (bool, error) {
	return m.regions[id], nil
}

func (m *MockRepository) UniversityExists(ctx context.Context, id int64) (bool, error) {
	return m.universities[id], nil
}

func (m *MockRepository) SmallGroupExists(ctx context.Context, id int64) (bool, error) {
	return m.smallGroups[id], nil
}

func (m *MockRepository) AlumniGroupExists(ctx context.Context, id int64) (bool, error) {
	return m.alumniGroups[id], nil
}

// MockResolver implements user.ScopeResolverAPI for testing
type MockResolver struct {
	contexts    map[int64]*scope.Context
	invalidated []int64
}

func (m *MockResolver) Resolve(ctx context.Context, userID int64) (*scope.Context, error) {
	sc, exists := m.contexts[userID]
	if !exists {
		return nil, internal.ErrNoScopeAssigned
	}
	return sc, nil
}

func (m *MockResolver) Invalidate(ctx context.Context, userID int64) {
	m.invalidated = append(m.invalidated, userID)
}

func int64Ptr(v int64) *int64 { return &v }

var _ = Describe("User Service", func() {
	var (
		mockRepo     *MockRepository
		mockResolver *MockResolver
		service      *user.Service
		ctx          context.Context
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		mockResolver = &MockResolver{contexts: make(map[int64]*scope.Context)}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = user.NewService(mockRepo, mockResolver, nil, bcrypt.MinCost, logger)
		ctx = context.Background()

		mockRepo.roles[1] = true
		mockRepo.regions[1] = true
		mockRepo.universities[10] = true
		mockRepo.smallGroups[100] = true
		mockRepo.alumniGroups[200] = true
	})

	Describe("CreateUser", func() {
		It("should create an active user with a hashed password", func() {
			created, err := service.CreateUser(ctx, user.CreateUserDTO{
				Email:    "budi@ministry.local",
				Name:     "Budi",
				Password: "password123",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(created.IsActive).To(BeTrue())

			stored := mockRepo.users[created.ID]
			Expect(stored.PasswordHash).NotTo(Equal("password123"))
			Expect(bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123"))).To(Succeed())
		})

		It("should reject a short password", func() {
			_, err := service.CreateUser(ctx, user.CreateUserDTO{
				Email:    "budi@ministry.local",
				Name:     "Budi",
				Password: "short",
			})
			Expect(err).To(HaveOccurred())
		})

		It("should reject an invalid email", func() {
			_, err := service.CreateUser(ctx, user.CreateUserDTO{
				Email:    "not-an-email",
				Name:     "Budi",
				Password: "password123",
			})
			Expect(err).To(HaveOccurred())
		})

		It("should conflict on a duplicate email", func() {
			dto := user.CreateUserDTO{Email: "budi@ministry.local", Name: "Budi", Password: "password123"}
			_, err := service.CreateUser(ctx, dto)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateUser(ctx, dto)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeDuplicateName))
		})
	})

	Describe("GetProfile", func() {
		var userID int64

		BeforeEach(func() {
			created, err := service.CreateUser(ctx, user.CreateUserDTO{
				Email:    "budi@ministry.local",
				Name:     "Budi",
				Password: "password123",
			})
			Expect(err).NotTo(HaveOccurred())
			userID = created.ID
		})

		It("should include the resolved scope context", func() {
			mockResolver.contexts[userID] = &scope.Context{
				UserID: userID,
				Level:  scope.LevelRegion,
				Region: &scope.RegionRef{ID: 1, Name: "Jabodetabek"},
			}

			profile, err := service.GetProfile(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Scope).NotTo(BeNil())
			Expect(profile.Scope.Level).To(Equal(scope.LevelRegion))
		})

		It("should return a nil scope when no assignment exists", func() {
			profile, err := service.GetProfile(ctx, userID)
			Expect(err).NotTo(HaveOccurred())
			Expect(profile.Scope).To(BeNil())
		})

		It("should fail for a missing user", func() {
			_, err := service.GetProfile(ctx, 999)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUserNotFound))
		})
	})

	Describe("AssignScope", func() {
		var userID int64

		BeforeEach(func() {
			created, err := service.CreateUser(ctx, user.CreateUserDTO{
				Email:    "budi@ministry.local",
				Name:     "Budi",
				Password: "password123",
			})
			Expect(err).NotTo(HaveOccurred())
			userID = created.ID
		})

		It("should assign a region scope and invalidate the cached context", func() {
			assignment, err := service.AssignScope(ctx, userID, user.AssignScopeDTO{
				Scope:    "region",
				RoleID:   int64Ptr(1),
				RegionID: int64Ptr(1),
			}, int64Ptr(99))
			Expect(err).NotTo(HaveOccurred())
			Expect(assignment.RegionID).To(HaveValue(Equal(int64(1))))
			Expect(assignment.AssignedBy).To(HaveValue(Equal(int64(99))))
			Expect(mockResolver.invalidated).To(ContainElement(userID))
		})

		It("should replace a previous assignment", func() {
			_, err := service.AssignScope(ctx, userID, user.AssignScopeDTO{
				Scope:    "region",
				RegionID: int64Ptr(1),
			}, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = service.AssignScope(ctx, userID, user.AssignScopeDTO{
				Scope:        "smallgroup",
				SmallGroupID: int64Ptr(100),
			}, nil)
			Expect(err).NotTo(HaveOccurred())

			stored := mockRepo.assignments[userID]
			Expect(stored.Scope).To(Equal("smallgroup"))
			Expect(stored.RegionID).To(BeNil())
		})

		It("should allow a superadmin scope with no entity id", func() {
			assignment, err := service.AssignScope(ctx, userID, user.AssignScopeDTO{Scope: "superadmin"}, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(assignment.RegionID).To(BeNil())
		})

		It("should fail for a missing user", func() {
			_, err := service.AssignScope(ctx, 999, user.AssignScopeDTO{Scope: "superadmin"}, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUserNotFound))
		})

		It("should fail for an unknown role", func() {
			_, err := service.AssignScope(ctx, userID, user.AssignScopeDTO{
				Scope:    "region",
				RoleID:   int64Ptr(42),
				RegionID: int64Ptr(1),
			}, nil)
			Expect(err).To(Equal(internal.ErrRoleNotFound))
		})

		It("should fail for a missing entity", func() {
			_, err := service.AssignScope(ctx, userID, user.AssignScopeDTO{
				Scope:    "region",
				RegionID: int64Ptr(42),
			}, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeEntityNotFound))
		})
	})

	Describe("AssignScopeDTO validation", func() {
		It("should reject an unknown scope", func() {
			err := user.AssignScopeDTO{Scope: "galaxy"}.Validate()
			Expect(err).NotTo(BeNil())
			Expect(err.Code).To(Equal(internal.ErrCodeInvalidScope))
		})

		It("should require the entity id matching the level", func() {
			err := user.AssignScopeDTO{Scope: "university"}.Validate()
			Expect(err).NotTo(BeNil())
			Expect(err.Code).To(Equal(internal.ErrCodeInvalidScope))
		})

		It("should reject entity ids for other levels", func() {
			err := user.AssignScopeDTO{
				Scope:        "region",
				RegionID:     int64Ptr(1),
				SmallGroupID: int64Ptr(100),
			}.Validate()
			Expect(err).NotTo(BeNil())
			Expect(err.Code).To(Equal(internal.ErrCodeInvalidScope))
		})

		It("should reject any entity id for national", func() {
			err := user.AssignScopeDTO{Scope: "national", RegionID: int64Ptr(1)}.Validate()
			Expect(err).NotTo(BeNil())
		})

		It("should accept a well-formed alumni assignment", func() {
			err := user.AssignScopeDTO{Scope: "alumnismallgroup", AlumniGroupID: int64Ptr(200)}.Validate()
			Expect(err).To(BeNil())
		})
	})
})
