package postgres

import (
	"context"

	"gorm.io/gorm"

	hierarchyDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/hierarchy"
	userDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/user"
	"github.com/aburizalp/ministry-management/internal/scope"
)

type ScopeRepository struct {
	db *gorm.DB
}

func NewScopeRepository(db *gorm.DB) scope.RepositoryAPI {
	return &ScopeRepository{db: db}
}

func (r *ScopeRepository) GetUserRole(ctx context.Context, userID int64) (*userDatamodel.UserRole, error) {
	var userRole userDatamodel.UserRole
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&userRole).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &userRole, nil
}

func (r *ScopeRepository) GetRegion(ctx context.Context, id int64) (*hierarchyDatamodel.Region, error) {
	var region hierarchyDatamodel.Region
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&region).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &region, nil
}

func (r *ScopeRepository) GetUniversity(ctx context.Context, id int64) (*hierarchyDatamodel.University, error) {
	var university hierarchyDatamodel.University
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&university).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &university, nil
}

func (r *ScopeRepository) GetSmallGroup(ctx context.Context, id int64) (*hierarchyDatamodel.SmallGroup, error) {
	var smallGroup hierarchyDatamodel.SmallGroup
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&smallGroup).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &smallGroup, nil
}

func (r *ScopeRepository) GetAlumniGroup(ctx context.Context, id int64) (*hierarchyDatamodel.AlumniSmallGroup, error) {
	var alumniGroup hierarchyDatamodel.AlumniSmallGroup
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&alumniGroup).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &alumniGroup, nil
}
