package dao

import (
	"context"
	"errors"

	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/errcode"

	"gorm.io/gorm"
)

type ReferralInfoDAO interface {
	Upsert(ctx context.Context, tx *gorm.DB, info *do.ReferralInfo) (*do.ReferralInfo, error)
	GetByName(ctx context.Context, tx *gorm.DB, name string) (*do.ReferralInfo, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*do.ReferralInfo, error)
	ExistName(ctx context.Context, tx *gorm.DB, name string) (bool, error)
	DeleteByName(ctx context.Context, tx *gorm.DB, name string) (int64, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type ReferralInfoDAOImpl struct{}

var referralInfoDAO ReferralInfoDAO = &ReferralInfoDAOImpl{}

func GetReferralInfoDAOImpl() ReferralInfoDAO {
	return referralInfoDAO
}

// Upsert creates the referral row or overwrites an existing one in place.
func (r *ReferralInfoDAOImpl) Upsert(ctx context.Context, tx *gorm.DB, info *do.ReferralInfo) (*do.ReferralInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	if info == nil {
		return nil, errors.New("nil referral info when upserting")
	}

	existing := do.ReferralInfo{}
	query := tx.Model(&do.ReferralInfo{}).Where("name = ?", info.Name).Take(&existing)
	if errors.Is(query.Error, gorm.ErrRecordNotFound) {
		create := tx.Create(info)
		return info, create.Error
	} else if query.Error != nil {
		return nil, query.Error
	}

	info.ID = existing.ID
	info.CreatedAt = existing.CreatedAt
	save := tx.Save(info)
	return info, save.Error
}

func (r *ReferralInfoDAOImpl) GetByName(ctx context.Context, tx *gorm.DB, name string) (*do.ReferralInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := do.ReferralInfo{}
	query := tx.Model(&do.ReferralInfo{}).Where("name = ?", name).Take(&res)
	return &res, query.Error
}

func (r *ReferralInfoDAOImpl) GetAll(ctx context.Context, tx *gorm.DB) ([]*do.ReferralInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	infos := make([]*do.ReferralInfo, 0)
	query := tx.Model(&do.ReferralInfo{}).Order("name").Find(&infos)
	return infos, query.Error
}

func (r *ReferralInfoDAOImpl) ExistName(ctx context.Context, tx *gorm.DB, name string) (bool, error) {
	if tx == nil {
		return false, errcode.ErrNilGormDB
	}

	var count int64
	query := tx.Model(&do.ReferralInfo{}).Where("name = ?", name).Count(&count)
	if query.Error != nil {
		return false, query.Error
	}
	return count > 0, nil
}

func (r *ReferralInfoDAOImpl) DeleteByName(ctx context.Context, tx *gorm.DB, name string) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	query := tx.Where("name = ?", name).Delete(&do.ReferralInfo{})
	return query.RowsAffected, query.Error
}

func (r *ReferralInfoDAOImpl) DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	query := tx.Where("1 = 1").Delete(&do.ReferralInfo{})
	return query.RowsAffected, query.Error
}
