package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/aburizalp/ministry-management/internal"
	"github.com/aburizalp/ministry-management/internal/auth"
	userDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/user"
)

type AuthRepository struct {
	db *gorm.DB
}

func NewAuthRepository(db *gorm.DB) auth.UserRepositoryAPI {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) GetCredentialsByEmail(ctx context.Context, email string) (string, int64, bool, error) {
	var user userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", 0, false, internal.ErrInvalidCredentials
		}
		return "", 0, false, err
	}
	return user.PasswordHash, user.ID, user.IsActive, nil
}

func (r *AuthRepository) GetUserByID(ctx context.Context, userID int64) (*auth.User, error) {
	var user userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.NewNotFoundError("user not found", internal.ErrCodeUserNotFound)
		}
		return nil, err
	}
	return &auth.User{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
	}, nil
}
