package hierarchy

import (
	"context"
	"log/slog"

	"github.com/aburizalp/ministry-management/internal"
	hierarchyDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/hierarchy"
)

// RepositoryAPI persists the entity hierarchy. Lookups return (nil, nil)
// when the row is absent. Create methods map unique-name violations to
// a DuplicateName conflict.
type RepositoryAPI interface {
	GetRegion(ctx context.Context, id int64) (*hierarchyDatamodel.Region, error)
	ListRegions(ctx context.Context) ([]*hierarchyDatamodel.Region, error)
	CreateRegion(ctx context.Context, region *hierarchyDatamodel.Region) error
	DeleteRegion(ctx context.Context, id int64) error

	GetUniversity(ctx context.Context, id int64) (*hierarchyDatamodel.University, error)
	ListUniversities(ctx context.Context, regionID *int64) ([]*hierarchyDatamodel.University, error)
	CreateUniversity(ctx context.Context, university *hierarchyDatamodel.University) error
	DeleteUniversity(ctx context.Context, id int64) error

	GetSmallGroup(ctx context.Context, id int64) (*hierarchyDatamodel.SmallGroup, error)
	ListSmallGroups(ctx context.Context, universityID *int64) ([]*hierarchyDatamodel.SmallGroup, error)
	CreateSmallGroup(ctx context.Context, smallGroup *hierarchyDatamodel.SmallGroup) error
	DeleteSmallGroup(ctx context.Context, id int64) error

	GetAlumniGroup(ctx context.Context, id int64) (*hierarchyDatamodel.AlumniSmallGroup, error)
	ListAlumniGroups(ctx context.Context, regionID *int64) ([]*hierarchyDatamodel.AlumniSmallGroup, error)
	CreateAlumniGroup(ctx context.Context, group *hierarchyDatamodel.AlumniSmallGroup) error
	DeleteAlumniGroup(ctx context.Context, id int64) error

	CountUniversitiesInRegion(ctx context.Context, regionID int64) (int64, error)
	CountAlumniGroupsInRegion(ctx context.Context, regionID int64) (int64, error)
	CountSmallGroupsInUniversity(ctx context.Context, universityID int64) (int64, error)
	CountScopeAssignments(ctx context.Context, column string, entityID int64) (int64, error)
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) ListRegions(ctx context.Context) ([]*Region, error) {
	dataRegions, err := s.repo.ListRegions(ctx)
	if err != nil {
		s.logger.Error("failed to list regions", "error", err)
		return nil, internal.NewInternalError("failed to list regions", err)
	}
	regions := make([]*Region, 0, len(dataRegions))
	for _, r := range dataRegions {
		regions = append(regions, RegionFromDataModel(r))
	}
	return regions, nil
}

func (s *Service) CreateRegion(ctx context.Context, dto CreateRegionDTO) (*Region, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	dataRegion := &hierarchyDatamodel.Region{Name: dto.Name}
	if err := s.repo.CreateRegion(ctx, dataRegion); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create region", "name", dto.Name, "error", err)
		return nil, internal.NewInternalError("failed to create region", err)
	}
	s.logger.Info("region created", "region_id", dataRegion.ID, "name", dataRegion.Name)
	return RegionFromDataModel(dataRegion), nil
}

// DeleteRegion removes a region with no children and no scope assignments
// pointing at it. Deletion is blocked, never cascaded.
func (s *Service) DeleteRegion(ctx context.Context, regionID int64) error {
	region, err := s.repo.GetRegion(ctx, regionID)
	if err != nil {
		return internal.NewInternalError("failed to load region", err)
	}
	if region == nil {
		return internal.ErrRegionNotFound
	}

	universities, err := s.repo.CountUniversitiesInRegion(ctx, regionID)
	if err != nil {
		return internal.NewInternalError("failed to count universities", err)
	}
	alumniGroups, err := s.repo.CountAlumniGroupsInRegion(ctx, regionID)
	if err != nil {
		return internal.NewInternalError("failed to count alumni groups", err)
	}
	if universities > 0 || alumniGroups > 0 {
		return internal.ErrHasChildren
	}

	assignments, err := s.repo.CountScopeAssignments(ctx, "region_id", regionID)
	if err != nil {
		return internal.NewInternalError("failed to count scope assignments", err)
	}
	if assignments > 0 {
		return internal.ErrHasActiveAssignment
	}

	if err := s.repo.DeleteRegion(ctx, regionID); err != nil {
		return internal.NewInternalError("failed to delete region", err)
	}
	s.logger.Info("region deleted", "region_id", regionID)
	return nil
}

// UniversitiesFor returns universities whose region_id equals regionID, by
// direct foreign key equality.
func (s *Service) UniversitiesFor(ctx context.Context, regionID int64) ([]*University, error) {
	dataUniversities, err := s.repo.ListUniversities(ctx, &regionID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list universities", err)
	}
	universities := make([]*University, 0, len(dataUniversities))
	for _, u := range dataUniversities {
		universities = append(universities, UniversityFromDataModel(u))
	}
	return universities, nil
}

func (s *Service) ListUniversities(ctx context.Context) ([]*University, error) {
	dataUniversities, err := s.repo.ListUniversities(ctx, nil)
	if err != nil {
		return nil, internal.NewInternalError("failed to list universities", err)
	}
	universities := make([]*University, 0, len(dataUniversities))
	for _, u := range dataUniversities {
		universities = append(universities, UniversityFromDataModel(u))
	}
	return universities, nil
}

func (s *Service) CreateUniversity(ctx context.Context, dto CreateUniversityDTO) (*University, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	region, err := s.repo.GetRegion(ctx, dto.RegionID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load region", err)
	}
	if region == nil {
		return nil, internal.ErrRegionNotFound
	}

	dataUniversity := &hierarchyDatamodel.University{
		Name:     dto.Name,
		RegionID: dto.RegionID,
	}
	if err := s.repo.CreateUniversity(ctx, dataUniversity); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create university", "name", dto.Name, "error", err)
		return nil, internal.NewInternalError("failed to create university", err)
	}
	s.logger.Info("university created", "university_id", dataUniversity.ID, "region_id", dataUniversity.RegionID)
	return UniversityFromDataModel(dataUniversity), nil
}

func (s *Service) DeleteUniversity(ctx context.Context, universityID int64) error {
	university, err := s.repo.GetUniversity(ctx, universityID)
	if err != nil {
		return internal.NewInternalError("failed to load university", err)
	}
	if university == nil {
		return internal.ErrUniversityNotFound
	}

	smallGroups, err := s.repo.CountSmallGroupsInUniversity(ctx, universityID)
	if err != nil {
		return internal.NewInternalError("failed to count small groups", err)
	}
	if smallGroups > 0 {
		return internal.ErrHasChildren
	}

	assignments, err := s.repo.CountScopeAssignments(ctx, "university_id", universityID)
	if err != nil {
		return internal.NewInternalError("failed to count scope assignments", err)
	}
	if assignments > 0 {
		return internal.ErrHasActiveAssignment
	}

	if err := s.repo.DeleteUniversity(ctx, universityID); err != nil {
		return internal.NewInternalError("failed to delete university", err)
	}
	s.logger.Info("university deleted", "university_id", universityID)
	return nil
}

// SmallGroupsFor returns small groups whose university_id equals
// universityID, by direct foreign key equality.
func (s *Service) SmallGroupsFor(ctx context.Context, universityID int64) ([]*SmallGroup, error) {
	dataSmallGroups, err := s.repo.ListSmallGroups(ctx, &universityID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list small groups", err)
	}
	smallGroups := make([]*SmallGroup, 0, len(dataSmallGroups))
	for _, sg := range dataSmallGroups {
		smallGroups = append(smallGroups, SmallGroupFromDataModel(sg))
	}
	return smallGroups, nil
}

// CreateSmallGroup verifies the denormalized region_id against the parent
// university's region before writing. A mismatch never reaches the store.
func (s *Service) CreateSmallGroup(ctx context.Context, dto CreateSmallGroupDTO) (*SmallGroup, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	university, err := s.repo.GetUniversity(ctx, dto.UniversityID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load university", err)
	}
	if university == nil {
		return nil, internal.ErrUniversityNotFound
	}
	if university.RegionID != dto.RegionID {
		return nil, internal.NewValidationFieldError("region_id",
			"region_id does not match the university's region", internal.ErrCodeValidationFailed)
	}

	dataSmallGroup := &hierarchyDatamodel.SmallGroup{
		Name:         dto.Name,
		UniversityID: dto.UniversityID,
		RegionID:     university.RegionID,
	}
	if err := s.repo.CreateSmallGroup(ctx, dataSmallGroup); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create small group", "name", dto.Name, "error", err)
		return nil, internal.NewInternalError("failed to create small group", err)
	}
	s.logger.Info("small group created",
		"small_group_id", dataSmallGroup.ID,
		"university_id", dataSmallGroup.UniversityID)
	return SmallGroupFromDataModel(dataSmallGroup), nil
}

func (s *Service) DeleteSmallGroup(ctx context.Context, smallGroupID int64) error {
	smallGroup, err := s.repo.GetSmallGroup(ctx, smallGroupID)
	if err != nil {
		return internal.NewInternalError("failed to load small group", err)
	}
	if smallGroup == nil {
		return internal.ErrSmallGroupNotFound
	}

	assignments, err := s.repo.CountScopeAssignments(ctx, "small_group_id", smallGroupID)
	if err != nil {
		return internal.NewInternalError("failed to count scope assignments", err)
	}
	if assignments > 0 {
		return internal.ErrHasActiveAssignment
	}

	if err := s.repo.DeleteSmallGroup(ctx, smallGroupID); err != nil {
		return internal.NewInternalError("failed to delete small group", err)
	}
	s.logger.Info("small group deleted", "small_group_id", smallGroupID)
	return nil
}

// AlumniGroupsFor returns alumni small groups whose region_id equals
// regionID. The alumni track hangs off regions directly and never touches
// universities.
func (s *Service) AlumniGroupsFor(ctx context.Context, regionID int64) ([]*AlumniSmallGroup, error) {
	dataGroups, err := s.repo.ListAlumniGroups(ctx, &regionID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list alumni groups", err)
	}
	groups := make([]*AlumniSmallGroup, 0, len(dataGroups))
	for _, g := range dataGroups {
		groups = append(groups, AlumniGroupFromDataModel(g))
	}
	return groups, nil
}

func (s *Service) CreateAlumniGroup(ctx context.Context, dto CreateAlumniGroupDTO) (*AlumniSmallGroup, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	region, err := s.repo.GetRegion(ctx, dto.RegionID)
	if err != nil {
		return nil, internal.NewInternalError("failed to load region", err)
	}
	if region == nil {
		return nil, internal.ErrRegionNotFound
	}

	dataGroup := &hierarchyDatamodel.AlumniSmallGroup{
		Name:     dto.Name,
		RegionID: dto.RegionID,
	}
	if err := s.repo.CreateAlumniGroup(ctx, dataGroup); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create alumni group", "name", dto.Name, "error", err)
		return nil, internal.NewInternalError("failed to create alumni group", err)
	}
	s.logger.Info("alumni group created", "alumni_group_id", dataGroup.ID, "region_id", dataGroup.RegionID)
	return AlumniGroupFromDataModel(dataGroup), nil
}

func (s *Service) DeleteAlumniGroup(ctx context.Context, groupID int64) error {
	group, err := s.repo.GetAlumniGroup(ctx, groupID)
	if err != nil {
		return internal.NewInternalError("failed to load alumni group", err)
	}
	if group == nil {
		return internal.ErrAlumniGroupNotFound
	}

	assignments, err := s.repo.CountScopeAssignments(ctx, "alumni_group_id", groupID)
	if err != nil {
		return internal.NewInternalError("failed to count scope assignments", err)
	}
	if assignments > 0 {
		return internal.ErrHasActiveAssignment
	}

	if err := s.repo.DeleteAlumniGroup(ctx, groupID); err != nil {
		return internal.NewInternalError("failed to delete alumni group", err)
	}
	s.logger.Info("alumni group deleted", "alumni_group_id", groupID)
	return nil
}

// SelectRegion recomputes a cascading selection after the region pick
// changes. Children that are invalid under the new region are cleared.
func (s *Service) SelectRegion(ctx context.Context, sel Selection, regionID int64) (Selection, error) {
	region, err := s.repo.GetRegion(ctx, regionID)
	if err != nil {
		return Selection{}, internal.NewInternalError("failed to load region", err)
	}
	if region == nil {
		return Selection{}, internal.ErrRegionNotFound
	}

	universities, err := s.UniversitiesFor(ctx, regionID)
	if err != nil {
		return Selection{}, err
	}
	alumniGroups, err := s.AlumniGroupsFor(ctx, regionID)
	if err != nil {
		return Selection{}, err
	}

	next := sel.ApplyRegion(regionID, universities, alumniGroups)

	// a surviving university does not imply a surviving small group
	if next.UniversityID != nil && next.SmallGroupID != nil {
		smallGroups, err := s.SmallGroupsFor(ctx, *next.UniversityID)
		if err != nil {
			return Selection{}, err
		}
		next = next.ApplyUniversity(*next.UniversityID, smallGroups)
	}
	return next, nil
}

// SelectUniversity recomputes a cascading selection after the university
// pick changes, keeping the small group only when still valid.
func (s *Service) SelectUniversity(ctx context.Context, sel Selection, universityID int64) (Selection, error) {
	university, err := s.repo.GetUniversity(ctx, universityID)
	if err != nil {
		return Selection{}, internal.NewInternalError("failed to load university", err)
	}
	if university == nil {
		return Selection{}, internal.ErrUniversityNotFound
	}

	smallGroups, err := s.SmallGroupsFor(ctx, universityID)
	if err != nil {
		return Selection{}, err
	}
	next := sel.ApplyUniversity(universityID, smallGroups)
	next.RegionID = &university.RegionID
	return next, nil
}
