package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aburizalp/ministry-management/internal"
	hierarchyDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/hierarchy"
	rbacDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/rbac"
	userDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/user"
)

// UserRepository implements user.RepositoryAPI on GORM.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetUser(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var user userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.WithContext(ctx).Order("name ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) CreateUser(ctx context.Context, user *userDatamodel.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return internal.NewConflictError("email already registered", internal.ErrCodeDuplicateName)
	}
	return err
}

func (r *UserRepository) GetAssignment(ctx context.Context, userID int64) (*userDatamodel.UserRole, error) {
	var assignment userDatamodel.UserRole
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

// ReplaceAssignment deletes any prior row for the user and inserts the new
// one in a single transaction. The unique index on user_id guarantees at
// most one row survives even under concurrent reassignment.
func (r *UserRepository) ReplaceAssignment(ctx context.Context, assignment *userDatamodel.UserRole) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", assignment.UserID).
			Delete(&userDatamodel.UserRole{}).Error; err != nil {
			return err
		}
		return tx.Create(assignment).Error
	})
}

func (r *UserRepository) RoleExists(ctx context.Context, roleID int64) (bool, error) {
	return r.exists(ctx, &rbacDatamodel.Role{}, roleID)
}

func (r *UserRepository) RegionExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, &hierarchyDatamodel.Region{}, id)
}

func (r *UserRepository) UniversityExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, &hierarchyDatamodel.University{}, id)
}

func (r *UserRepository) SmallGroupExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, &hierarchyDatamodel.SmallGroup{}, id)
}

func (r *UserRepository) AlumniGroupExists(ctx context.Context, id int64) (bool, error) {
	return r.exists(ctx, &hierarchyDatamodel.AlumniSmallGroup{}, id)
}

func (r *UserRepository) exists(ctx context.Context, model interface{}, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}
