package user

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"github.com/aburizalp/ministry-management/internal"
	userDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/user"
	"github.com/aburizalp/ministry-management/internal/core/events"
	"github.com/aburizalp/ministry-management/internal/scope"
)

// RepositoryAPI persists users and their scope assignments. Lookups return
// (nil, nil) when absent. ReplaceAssignment swaps the user's single
// assignment row inside one transaction.
type RepositoryAPI interface {
	GetUser(ctx context.Context, id int64) (*userDatamodel.User, error)
	ListUsers(ctx context.Context) ([]*userDatamodel.User, error)
	CreateUser(ctx context.Context, user *userDatamodel.User) error

	GetAssignment(ctx context.Context, userID int64) (*userDatamodel.UserRole, error)
	ReplaceAssignment(ctx context.Context, assignment *userDatamodel.UserRole) error

	RoleExists(ctx context.Context, roleID int64) (bool, error)
	RegionExists(ctx context.Context, id int64) (bool, error)
	UniversityExists(ctx context.Context, id int64) (bool, error)
	SmallGroupExists(ctx context.Context, id int64) (bool, error)
	AlumniGroupExists(ctx context.Context, id int64) (bool, error)
}

// ScopeResolverAPI is the slice of the scope resolver the user service
// needs: resolving for profile reads and dropping stale cache entries
// after reassignment.
type ScopeResolverAPI interface {
	Resolve(ctx context.Context, userID int64) (*scope.Context, error)
	Invalidate(ctx context.Context, userID int64)
}

type Service struct {
	repo       RepositoryAPI
	resolver   ScopeResolverAPI
	bus        *events.EventBus
	bcryptCost int
	logger     *slog.Logger
}

// NewService creates the user service. bus may be nil.
func NewService(repo RepositoryAPI, resolver ScopeResolverAPI, bus *events.EventBus, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		resolver:   resolver,
		bus:        bus,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) ListUsers(ctx context.Context) ([]*User, error) {
	dataUsers, err := s.repo.ListUsers(ctx)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewInternalError("failed to list users", err)
	}
	users := make([]*User, 0, len(dataUsers))
	for _, u := range dataUsers {
		users = append(users, FromDataModel(u))
	}
	return users, nil
}

func (s *Service) CreateUser(ctx context.Context, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	dataUser := &userDatamodel.User{
		Email:        dto.Email,
		Name:         dto.Name,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, dataUser); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create user", "email", dto.Email, "error", err)
		return nil, internal.NewInternalError("failed to create user", err)
	}
	s.logger.Info("user created", "user_id", dataUser.ID)
	return FromDataModel(dataUser), nil
}

// GetProfile returns the user with their resolved scope context. A user
// without a scope assignment gets a profile with Scope nil rather than an
// error; everything else from the resolver propagates.
func (s *Service) GetProfile(ctx context.Context, userID int64) (*Profile, error) {
	dataUser, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if dataUser == nil {
		return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	}

	profile := &Profile{User: *FromDataModel(dataUser)}

	sc, err := s.resolver.Resolve(ctx, userID)
	if err != nil {
		if appErr, ok := internal.IsAppError(err); ok && appErr.Code == internal.ErrCodeNoScopeAssigned {
			return profile, nil
		}
		return nil, err
	}
	profile.Scope = sc
	return profile, nil
}

// AssignScope sets or replaces the user's single scope assignment. The
// entity id matching the scope level must reference an existing entity;
// the swap is atomic so a concurrent resolve sees either the old or the
// new assignment, never both and never neither.
func (s *Service) AssignScope(ctx context.Context, targetUserID int64, dto AssignScopeDTO, assignedBy *int64) (*ScopeAssignment, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	target, err := s.repo.GetUser(ctx, targetUserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load user", err)
	}
	if target == nil {
		return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
	}

	if dto.RoleID != nil {
		ok, err := s.repo.RoleExists(ctx, *dto.RoleID)
		if err != nil {
			return nil, internal.NewInternalError("failed to check role", err)
		}
		if !ok {
			return nil, internal.ErrRoleNotFound
		}
	}
	if err := s.checkEntity(ctx, dto); err != nil {
		return nil, err
	}

	assignment := &userDatamodel.UserRole{
		UserID:        targetUserID,
		Scope:         dto.Scope,
		RoleID:        dto.RoleID,
		RegionID:      dto.RegionID,
		UniversityID:  dto.UniversityID,
		SmallGroupID:  dto.SmallGroupID,
		AlumniGroupID: dto.AlumniGroupID,
		AssignedBy:    assignedBy,
	}
	if err := s.repo.ReplaceAssignment(ctx, assignment); err != nil {
		s.logger.Error("failed to replace scope assignment", "user_id", targetUserID, "error", err)
		return nil, internal.NewInternalError("failed to assign scope", err)
	}

	s.resolver.Invalidate(ctx, targetUserID)
	s.publishScopeAssigned(ctx, targetUserID, dto.Scope)

	s.logger.Info("scope assigned", "user_id", targetUserID, "scope", dto.Scope)
	return AssignmentFromDataModel(assignment), nil
}

func (s *Service) checkEntity(ctx context.Context, dto AssignScopeDTO) error {
	check := func(name string, id *int64, exists func(context.Context, int64) (bool, error)) error {
		if id == nil {
			return nil
		}
		ok, err := exists(ctx, *id)
		if err != nil {
			return internal.NewInternalError("failed to check "+name, err)
		}
		if !ok {
			return internal.NewNotFoundError(name+" not found", internal.ErrCodeEntityNotFound)
		}
		return nil
	}

	if err := check("region", dto.RegionID, s.repo.RegionExists); err != nil {
		return err
	}
	if err := check("university", dto.UniversityID, s.repo.UniversityExists); err != nil {
		return err
	}
	if err := check("small group", dto.SmallGroupID, s.repo.SmallGroupExists); err != nil {
		return err
	}
	return check("alumni group", dto.AlumniGroupID, s.repo.AlumniGroupExists)
}

func (s *Service) publishScopeAssigned(ctx context.Context, userID int64, scopeLevel string) {
	if s.bus == nil {
		return
	}
	event := events.NewScopeAssignedEvent(userID, scopeLevel)
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish scope assigned event", "user_id", userID, "error", err)
	}
}
