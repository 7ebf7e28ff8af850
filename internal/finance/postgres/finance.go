package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aburizalp/ministry-management/internal"
	financeDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/finance"
	"github.com/aburizalp/ministry-management/internal/gate"
)

// FinanceRepository implements finance.RepositoryAPI on GORM.
type FinanceRepository struct {
	db *gorm.DB
}

func NewFinanceRepository(db *gorm.DB) *FinanceRepository {
	return &FinanceRepository{db: db}
}

func (r *FinanceRepository) GetDesignation(ctx context.Context, id int64) (*financeDatamodel.Designation, error) {
	var designation financeDatamodel.Designation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&designation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &designation, nil
}

func (r *FinanceRepository) ListDesignations(ctx context.Context) ([]*financeDatamodel.Designation, error) {
	var designations []*financeDatamodel.Designation
	err := r.db.WithContext(ctx).Order("name ASC").Find(&designations).Error
	return designations, err
}

func (r *FinanceRepository) CreateDesignation(ctx context.Context, designation *financeDatamodel.Designation) error {
	err := r.db.WithContext(ctx).Create(designation).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("designation name already exists", internal.ErrCodeDuplicateName)
	}
	return err
}

func (r *FinanceRepository) DeleteDesignation(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&financeDatamodel.Designation{}, id).Error
}

func (r *FinanceRepository) CountContributionsForDesignation(ctx context.Context, designationID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&financeDatamodel.Contribution{}).
		Where("designation_id = ?", designationID).
		Count(&count).Error
	return count, err
}

func (r *FinanceRepository) ListContributions(ctx context.Context, filter *gate.EntityFilter, designationID *int64) ([]*financeDatamodel.Contribution, error) {
	query := r.db.WithContext(ctx).
		Scopes(filter.Scope()).
		Order("given_at DESC, id DESC")
	if designationID != nil {
		query = query.Where("designation_id = ?", *designationID)
	}
	var contributions []*financeDatamodel.Contribution
	err := query.Find(&contributions).Error
	return contributions, err
}

func (r *FinanceRepository) CreateContribution(ctx context.Context, contribution *financeDatamodel.Contribution) error {
	return r.db.WithContext(ctx).Create(contribution).Error
}
