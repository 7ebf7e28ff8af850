package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aburizalp/ministry-management/internal"
	hierarchyDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/hierarchy"
	userDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/user"
)

// HierarchyRepository implements hierarchy.RepositoryAPI on GORM.
type HierarchyRepository struct {
	db *gorm.DB
}

func NewHierarchyRepository(db *gorm.DB) *HierarchyRepository {
	return &HierarchyRepository{db: db}
}

func (r *HierarchyRepository) GetRegion(ctx context.Context, id int64) (*hierarchyDatamodel.Region, error) {
	var region hierarchyDatamodel.Region
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&region).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &region, nil
}

func (r *HierarchyRepository) ListRegions(ctx context.Context) ([]*hierarchyDatamodel.Region, error) {
	var regions []*hierarchyDatamodel.Region
	err := r.db.WithContext(ctx).Order("name ASC").Find(&regions).Error
	return regions, err
}

func (r *HierarchyRepository) CreateRegion(ctx context.Context, region *hierarchyDatamodel.Region) error {
	err := r.db.WithContext(ctx).Create(region).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("region name already exists", internal.ErrCodeDuplicateName)
	}
	return err
}

func (r *HierarchyRepository) DeleteRegion(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&hierarchyDatamodel.Region{}, id).Error
}

func (r *HierarchyRepository) GetUniversity(ctx context.Context, id int64) (*hierarchyDatamodel.University, error) {
	var university hierarchyDatamodel.University
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&university).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &university, nil
}

// ListUniversities filters by direct foreign key equality when regionID is
// set; no transitive re-derivation.
func (r *HierarchyRepository) ListUniversities(ctx context.Context, regionID *int64) ([]*hierarchyDatamodel.University, error) {
	var universities []*hierarchyDatamodel.University
	query := r.db.WithContext(ctx).Order("name ASC")
	if regionID != nil {
		query = query.Where("region_id = ?", *regionID)
	}
	err := query.Find(&universities).Error
	return universities, err
}

func (r *HierarchyRepository) CreateUniversity(ctx context.Context, university *hierarchyDatamodel.University) error {
	err := r.db.WithContext(ctx).Create(university).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("university name already exists", internal.ErrCodeDuplicateName)
	}
	return err
}

func (r *HierarchyRepository) DeleteUniversity(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&hierarchyDatamodel.University{}, id).Error
}

func (r *HierarchyRepository) GetSmallGroup(ctx context.Context, id int64) (*hierarchyDatamodel.SmallGroup, error) {
	var smallGroup hierarchyDatamodel.SmallGroup
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&smallGroup).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &smallGroup, nil
}

func (r *HierarchyRepository) ListSmallGroups(ctx context.Context, universityID *int64) ([]*hierarchyDatamodel.SmallGroup, error) {
	var smallGroups []*hierarchyDatamodel.SmallGroup
	query := r.db.WithContext(ctx).Order("name ASC")
	if universityID != nil {
		query = query.Where("university_id = ?", *universityID)
	}
	err := query.Find(&smallGroups).Error
	return smallGroups, err
}

func (r *HierarchyRepository) CreateSmallGroup(ctx context.Context, smallGroup *hierarchyDatamodel.SmallGroup) error {
	err := r.db.WithContext(ctx).Create(smallGroup).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("small group name already exists", internal.ErrCodeDuplicateName)
	}
	return err
}

func (r *HierarchyRepository) DeleteSmallGroup(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&hierarchyDatamodel.SmallGroup{}, id).Error
}

func (r *HierarchyRepository) GetAlumniGroup(ctx context.Context, id int64) (*hierarchyDatamodel.AlumniSmallGroup, error) {
	var group hierarchyDatamodel.AlumniSmallGroup
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&group).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

func (r *HierarchyRepository) ListAlumniGroups(ctx context.Context, regionID *int64) ([]*hierarchyDatamodel.AlumniSmallGroup, error) {
	var groups []*hierarchyDatamodel.AlumniSmallGroup
	query := r.db.WithContext(ctx).Order("name ASC")
	if regionID != nil {
		query = query.Where("region_id = ?", *regionID)
	}
	err := query.Find(&groups).Error
	return groups, err
}

func (r *HierarchyRepository) CreateAlumniGroup(ctx context.Context, group *hierarchyDatamodel.AlumniSmallGroup) error {
	err := r.db.WithContext(ctx).Create(group).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("alumni group name already exists", internal.ErrCodeDuplicateName)
	}
	return err
}

func (r *HierarchyRepository) DeleteAlumniGroup(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&hierarchyDatamodel.AlumniSmallGroup{}, id).Error
}

func (r *HierarchyRepository) CountUniversitiesInRegion(ctx context.Context, regionID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&hierarchyDatamodel.University{}).
		Where("region_id = ?", regionID).
		Count(&count).Error
	return count, err
}

func (r *HierarchyRepository) CountAlumniGroupsInRegion(ctx context.Context, regionID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&hierarchyDatamodel.AlumniSmallGroup{}).
		Where("region_id = ?", regionID).
		Count(&count).Error
	return count, err
}

func (r *HierarchyRepository) CountSmallGroupsInUniversity(ctx context.Context, universityID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&hierarchyDatamodel.SmallGroup{}).
		Where("university_id = ?", universityID).
		Count(&count).Error
	return count, err
}

// CountScopeAssignments counts user scope assignments referencing one
// hierarchy entity. column must be one of the user_roles entity columns.
func (r *HierarchyRepository) CountScopeAssignments(ctx context.Context, column string, entityID int64) (int64, error) {
	switch column {
	case "region_id", "university_id", "small_group_id", "alumni_group_id":
	default:
		return 0, errors.New("unknown scope assignment column: " + column)
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.UserRole{}).
		Where(column+" = ?", entityID).
		Count(&count).Error
	return count, err
}
