package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	memberDatamodel "github.com/aburizalp/ministry-management/internal/core/datamodel/member"
	"github.com/aburizalp/ministry-management/internal/gate"
)

// MemberRepository implements member.RepositoryAPI on GORM. Every read
// composes the caller's entity filter so out-of-scope rows never leave
// the store.
type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

func (r *MemberRepository) List(ctx context.Context, filter *gate.EntityFilter) ([]*memberDatamodel.Member, error) {
	var members []*memberDatamodel.Member
	err := r.db.WithContext(ctx).
		Scopes(filter.Scope()).
		Order("name ASC").
		Find(&members).Error
	return members, err
}

func (r *MemberRepository) Get(ctx context.Context, id int64, filter *gate.EntityFilter) (*memberDatamodel.Member, error) {
	var member memberDatamodel.Member
	err := r.db.WithContext(ctx).
		Scopes(filter.Scope()).
		Where("id = ?", id).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *MemberRepository) Create(ctx context.Context, member *memberDatamodel.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *MemberRepository) Update(ctx context.Context, member *memberDatamodel.Member) error {
	return r.db.WithContext(ctx).Save(member).Error
}

func (r *MemberRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&memberDatamodel.Member{}, id).Error
}
