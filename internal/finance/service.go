package finance

import (
	"context"
	"log/slog"

	"github.com/aburizalp/ministry-management/internal"
	financeDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/finance"
	memberDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/member"
	"github.com/aburizalp/ministry-management/internal/gate"
	"github.com/aburizalp/ministry-management/internal/scope"
)

const resource = "contribution"

// RepositoryAPI persists designations and contributions. DeleteDesignation
// is only called after the in-use check; the service owns that invariant.
type RepositoryAPI interface {
	GetDesignation(ctx context.Context, id int64) (*financeDatamodel.Designation, error)
	ListDesignations(ctx context.Context) ([]*financeDatamodel.Designation, error)
	CreateDesignation(ctx context.Context, designation *financeDatamodel.Designation) error
	DeleteDesignation(ctx context.Context, id int64) error
	CountContributionsForDesignation(ctx context.Context, designationID int64) (int64, error)

	ListContributions(ctx context.Context, filter *gate.EntityFilter, designationID *int64) ([]*financeDatamodel.Contribution, error)
	CreateContribution(ctx context.Context, contribution *financeDatamodel.Contribution) error
}

type MemberAPI interface {
	Get(ctx context.Context, id int64, filter *gate.EntityFilter) (*memberDatamodel.Member, error)
}

type GateAPI interface {
	Authorize(ctx context.Context, sc *scope.Context, resource, action string) (gate.Decision, error)
	CheckWrite(ctx context.Context, sc *scope.Context, resource string, refs gate.EntityRefs) error
}

type Service struct {
	repo    RepositoryAPI
	members MemberAPI
	gate    GateAPI
	logger  *slog.Logger
}

func NewService(repo RepositoryAPI, members MemberAPI, g GateAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		members: members,
		gate:    g,
		logger:  logger,
	}
}

func (s *Service) ListDesignations(ctx context.Context) ([]*Designation, error) {
	dataDesignations, err := s.repo.ListDesignations(ctx)
	if err != nil {
		s.logger.Error("failed to list designations", "error", err)
		return nil, internal.NewInternalError("failed to list designations", err)
	}
	designations := make([]*Designation, 0, len(dataDesignations))
	for _, d := range dataDesignations {
		designations = append(designations, DesignationFromDataModel(d))
	}
	return designations, nil
}

func (s *Service) CreateDesignation(ctx context.Context, dto CreateDesignationDTO) (*Designation, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	dataDesignation := &financeDatamodel.Designation{
		Name:        dto.Name,
		Description: dto.Description,
		IsActive:    true,
	}
	if err := s.repo.CreateDesignation(ctx, dataDesignation); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create designation", "name", dto.Name, "error", err)
		return nil, internal.NewInternalError("failed to create designation", err)
	}
	s.logger.Info("designation created", "designation_id", dataDesignation.ID)
	return DesignationFromDataModel(dataDesignation), nil
}

// DeleteDesignation is blocked while any contribution references the
// designation; payments history is never orphaned.
func (s *Service) DeleteDesignation(ctx context.Context, designationID int64) error {
	designation, err := s.repo.GetDesignation(ctx, designationID)
	if err != nil {
		return internal.NewInternalError("failed to load designation", err)
	}
	if designation == nil {
		return internal.ErrDesignationNotFound
	}

	count, err := s.repo.CountContributionsForDesignation(ctx, designationID)
	if err != nil {
		return internal.NewInternalError("failed to count contributions", err)
	}
	if count > 0 {
		return internal.ErrDesignationInUse
	}

	if err := s.repo.DeleteDesignation(ctx, designationID); err != nil {
		return internal.NewInternalError("failed to delete designation", err)
	}
	s.logger.Info("designation deleted", "designation_id", designationID)
	return nil
}

func (s *Service) ListContributions(ctx context.Context, sc *scope.Context, designationID *int64) ([]*Contribution, error) {
	decision, err := s.gate.Authorize(ctx, sc, resource, "read")
	if err != nil {
		return nil, err
	}
	if !decision.Allowed {
		return nil, internal.ErrPermissionDenied
	}

	dataContributions, err := s.repo.ListContributions(ctx, decision.Filter, designationID)
	if err != nil {
		s.logger.Error("failed to list contributions", "error", err)
		return nil, internal.NewInternalError("failed to list contributions", err)
	}
	contributions := make([]*Contribution, 0, len(dataContributions))
	for _, c := range dataContributions {
		contributions = append(contributions, ContributionFromDataModel(c))
	}
	return contributions, nil
}

// RecordContribution attributes a gift to a member. The hierarchy columns
// are copied from the member so scoped reporting stays consistent even if
// the member later moves.
func (s *Service) RecordContribution(ctx context.Context, sc *scope.Context, dto RecordContributionDTO, recordedBy *int64) (*Contribution, error) {
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

	giver, err := s.members.Get(ctx, dto.MemberID, decision.Filter)
	if err != nil {
		return nil, internal.NewInternalError("failed to load member", err)
	}
	if giver == nil {
		return nil, internal.ErrMemberNotFound
	}

	designation, err := s.repo.GetDesignation(ctx, dto.DesignationID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load designation", err)
	}
	if designation == nil {
		return nil, internal.ErrDesignationNotFound
	}
	if !designation.IsActive {
		return nil, internal.NewValidationFieldError("designation_id",
			"designation is inactive", internal.ErrCodeValidationFailed)
	}

	refs := gate.EntityRefs{
		RegionID:      giver.RegionID,
		UniversityID:  giver.UniversityID,
		SmallGroupID:  giver.SmallGroupID,
		AlumniGroupID: giver.AlumniGroupID,
	}
	if err := s.gate.CheckWrite(ctx, sc, resource, refs); err != nil {
		return nil, err
	}

	contribution := &financeDatamodel.Contribution{
		MemberID:      dto.MemberID,
		DesignationID: dto.DesignationID,
		AmountMinor:   dto.AmountMinor,
		GivenAt:       dto.GivenAt,
		RegionID:      giver.RegionID,
		UniversityID:  giver.UniversityID,
		SmallGroupID:  giver.SmallGroupID,
		AlumniGroupID: giver.AlumniGroupID,
		RecordedBy:    recordedBy,
	}
	if err := s.repo.CreateContribution(ctx, contribution); err != nil {
		s.logger.Error("failed to record contribution", "member_id", dto.MemberID, "error", err)
		return nil, internal.NewInternalError("failed to record contribution", err)
	}
	s.logger.Info("contribution recorded",
		"contribution_id", contribution.ID,
		"member_id", dto.MemberID,
		"designation_id", dto.DesignationID)
	return ContributionFromDataModel(contribution), nil
}
