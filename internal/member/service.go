package member

import (
	"context"
	"log/slog"

	"github.com/aburizalp/ministry-management/internal"
	hierarchyDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/hierarchy"
	memberDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/member"
	"github.com/aburizalp/ministry-management/internal/gate"
	"github.com/aburizalp/ministry-management/internal/scope"
)

const resource = "member"

// RepositoryAPI persists members. Read methods apply the entity filter so
// out-of-scope rows are invisible, not forbidden.
type RepositoryAPI interface {
	List(ctx context.Context, filter *gate.EntityFilter) ([]*memberDatamodel.Member, error)
	Get(ctx context.Context, id int64, filter *gate.EntityFilter) (*memberDatamodel.Member, error)
	Create(ctx context.Context, member *memberDatamodel.Member) error
	Update(ctx context.Context, member *memberDatamodel.Member) error
	Delete(ctx context.Context, id int64) error
}

// HierarchyAPI dereferences the parent chain when a member is placed in a
// group, so the denormalized hierarchy columns stay coherent.
type HierarchyAPI interface {
	GetSmallGroup(ctx context.Context, id int64) (*hierarchyDatamodel.SmallGroup, error)
	GetAlumniGroup(ctx context.Context, id int64) (*hierarchyDatamodel.AlumniSmallGroup, error)
}

// GateAPI is the enforcement surface every operation consults.
type GateAPI interface {
	Authorize(ctx context.Context, sc *scope.Context, resource, action string) (gate.Decision, error)
	CheckWrite(ctx context.Context, sc *scope.Context, resource string, refs gate.EntityRefs) error
}

type Service struct {
	repo      RepositoryAPI
	hierarchy HierarchyAPI
	gate      GateAPI
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, hierarchy HierarchyAPI, g GateAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		hierarchy: hierarchy,
		gate:      g,
		logger:    logger,
	}
}

func (s *Service) List(ctx context.Context, sc *scope.Context) ([]*Member, error) {
	decision, err := s.gate.Authorize(ctx, sc, resource, "read")
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, internal.ErrPermissionDenied
	}

	dataMembers, err := s.repo.List(ctx, decision.Filter)
	if err != nil {
		s.logger.Error("failed to list members", "error", err)
		return nil, internal.NewInternalError("failed to list members", err)
	}
	members := make([]*Member, 0, len(dataMembers))
	for _, m := range dataMembers {
		members = append(members, FromDataModel(m))
	}
	return members, nil
}

func (s *Service) Get(ctx context.Context, sc *scope.Context, memberID int64) (*Member, error) {
	decision, err := s.gate.Authorize(ctx, sc, resource, "read")
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, internal.ErrPermissionDenied
	}

	dataMember, err := s.repo.Get(ctx, memberID, decision.Filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to load member", err)
	}
	if dataMember == nil {
		return nil, internal.ErrMemberNotFound
	}
	return FromDataModel(dataMember), nil
}

func (s *Service) Create(ctx context.Context, sc *scope.Context, dto CreateMemberDTO) (*Member, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	chain, err := s.resolveChain(ctx, dto.SmallGroupID, dto.AlumniGroupID)
	if err != nil {
		return nil, err
	}

	if err := s.gate.CheckWrite(ctx, sc, resource, chain.refs()); err != nil {
		return nil, err
	}

	status := dto.Status
	if status == "" {
		status = string(StatusActive)
	}
	dataMember := &memberDatamodel.Member{
		Name:          dto.Name,
		Email:         dto.Email,
		Phone:         dto.Phone,
		Status:        status,
		RegionID:      chain.regionID,
		UniversityID:  chain.universityID,
		SmallGroupID:  chain.smallGroupID,
		AlumniGroupID: chain.alumniGroupID,
	}
	if err := s.repo.Create(ctx, dataMember); err != nil {
		s.logger.Error("failed to create member", "name", dto.Name, "error", err)
		return nil, internal.NewInternalError("failed to create member", err)
	}
	s.logger.Info("member created", "member_id", dataMember.ID)
	return FromDataModel(dataMember), nil
}

// Update mutates contact fields and status; moving a member between
// groups is a delete and re-create, keeping the parent chain immutable.
func (s *Service) Update(ctx context.Context, sc *scope.Context, memberID int64, dto UpdateMemberDTO) (*Member, error) {
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
	dataMember, err := s.repo.Get(ctx, memberID, decision.Filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to load member", err)
	}
	if dataMember == nil {
		return nil, internal.ErrMemberNotFound
	}

	refs := gate.EntityRefs{
		RegionID:      dataMember.RegionID,
		UniversityID:  dataMember.UniversityID,
		SmallGroupID:  dataMember.SmallGroupID,
		AlumniGroupID: dataMember.AlumniGroupID,
	}
	if err := s.gate.CheckWrite(ctx, sc, resource, refs); err != nil {
		return nil, err
	}

	if dto.Name != nil {
		dataMember.Name = *dto.Name
	}
	if dto.Email != nil {
		dataMember.Email = *dto.Email
	}
	if dto.Phone != nil {
		dataMember.Phone = *dto.Phone
	}
	if dto.Status != nil {
		dataMember.Status = *dto.Status
	}
	if err := s.repo.Update(ctx, dataMember); err != nil {
		return nil, internal.NewInternalError("failed to update member", err)
	}
	s.logger.Info("member updated", "member_id", memberID)
	return FromDataModel(dataMember), nil
}

func (s *Service) Delete(ctx context.Context, sc *scope.Context, memberID int64) error {
	decision, err := s.gate.Authorize(ctx, sc, resource, "read")
	if err != nil {
		return err
	}
	if !decision.Allowed {
		return internal.ErrPermissionDenied
	}
	dataMember, err := s.repo.Get(ctx, memberID, decision.Filter)
	if err != nil {
		return internal.NewInternalError("failed to load member", err)
	}
	if dataMember == nil {
		return internal.ErrMemberNotFound
	}

	refs := gate.EntityRefs{
		RegionID:      dataMember.RegionID,
		UniversityID:  dataMember.UniversityID,
		SmallGroupID:  dataMember.SmallGroupID,
		AlumniGroupID: dataMember.AlumniGroupID,
	}
	if err := s.gate.CheckWrite(ctx, sc, resource, refs); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, memberID); err != nil {
		return internal.NewInternalError("failed to delete member", err)
	}
	s.logger.Info("member deleted", "member_id", memberID)
	return nil
}

type parentChain struct {
	regionID      *int64
	universityID  *int64
	smallGroupID  *int64
	alumniGroupID *int64
}

func (c parentChain) refs() gate.EntityRefs {
	return gate.EntityRefs{
		RegionID:      c.regionID,
		UniversityID:  c.universityID,
		SmallGroupID:  c.smallGroupID,
		AlumniGroupID: c.alumniGroupID,
	}
}

// resolveChain derives the full parent chain from the chosen group so the
// stored hierarchy columns always agree with the group's own ancestry.
func (s *Service) resolveChain(ctx context.Context, smallGroupID, alumniGroupID *int64) (parentChain, error) {
	switch {
	case smallGroupID != nil:
		smallGroup, err := s.hierarchy.GetSmallGroup(ctx, *smallGroupID)
		if err != nil {
			return parentChain{}, internal.NewInternalError("failed to load small group", err)
		}
		if smallGroup == nil {
			return parentChain{}, internal.ErrSmallGroupNotFound
		}
		return parentChain{
			regionID:     &smallGroup.RegionID,
			universityID: &smallGroup.UniversityID,
			smallGroupID: &smallGroup.ID,
		}, nil

	case alumniGroupID != nil:
		group, err := s.hierarchy.GetAlumniGroup(ctx, *alumniGroupID)
		if err != nil {
			return parentChain{}, internal.NewInternalError("failed to load alumni group", err)
		}
		if group == nil {
			return parentChain{}, internal.ErrAlumniGroupNotFound
		}
		return parentChain{
			regionID:      &group.RegionID,
			alumniGroupID: &group.ID,
		}, nil
	}
	return parentChain{}, internal.NewValidationError("a group id is required", internal.ErrCodeValidationFailed)
}
