package dao

import (
	"context"
	"errors"

	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/errcode"

	"gorm.io/gorm"
)

type RewardAssetInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.RewardAssetInfo) (*do.RewardAssetInfo, error)
	GetBySymbol(ctx context.Context, tx *gorm.DB, symbol string) (*do.RewardAssetInfo, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*do.RewardAssetInfo, error)
	ExistSymbol(ctx context.Context, tx *gorm.DB, symbol string) (bool, error)
	UpdatePriceBySymbol(ctx context.Context, tx *gorm.DB, symbol string, price int64) (int64, error)
	DeleteBySymbol(ctx context.Context, tx *gorm.DB, symbol string) (int64, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type RewardAssetInfoDAOImpl struct{}

var rewardAssetInfoDAO RewardAssetInfoDAO = &RewardAssetInfoDAOImpl{}

func GetRewardAssetInfoDAOImpl() RewardAssetInfoDAO {
	return rewardAssetInfoDAO
}

func (r *RewardAssetInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.RewardAssetInfo) (*do.RewardAssetInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	if info == nil {
		return nil, errors.New("nil reward asset info when creating")
	}

	query := tx.Create(info)
	return info, query.Error
}

func (r *RewardAssetInfoDAOImpl) GetBySymbol(ctx context.Context, tx *gorm.DB, symbol string) (*do.RewardAssetInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := do.RewardAssetInfo{}
	query := tx.Model(&do.RewardAssetInfo{}).Where("symbol = ?", symbol).Take(&res)
	return &res, query.Error
}

func (r *RewardAssetInfoDAOImpl) GetAll(ctx context.Context, tx *gorm.DB) ([]*do.RewardAssetInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	infos := make([]*do.RewardAssetInfo, 0)
	query := tx.Model(&do.RewardAssetInfo{}).Order("symbol").Find(&infos)
	return infos, query.Error
}

func (r *RewardAssetInfoDAOImpl) ExistSymbol(ctx context.Context, tx *gorm.DB, symbol string) (bool, error) {
	if tx == nil {
		return false, errcode.ErrNilGormDB
	}

	var count int64
	query := tx.Model(&do.RewardAssetInfo{}).Where("symbol = ?", symbol).Count(&count)
	if query.Error != nil {
		return false, query.Error
	}
	return count > 0, nil
}

func (r *RewardAssetInfoDAOImpl) UpdatePriceBySymbol(ctx context.Context, tx *gorm.DB, symbol string, price int64) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	query := tx.Model(&do.RewardAssetInfo{}).Where("symbol = ?", symbol).Update("price", price)
	return query.RowsAffected, query.Error
}

func (r *RewardAssetInfoDAOImpl) DeleteBySymbol(ctx context.Context, tx *gorm.DB, symbol string) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	query := tx.Where("symbol = ?", symbol).Delete(&do.RewardAssetInfo{})
	return query.RowsAffected, query.Error
}

func (r *RewardAssetInfoDAOImpl) DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	query := tx.Where("1 = 1").Delete(&do.RewardAssetInfo{})
	return query.RowsAffected, query.Error
}
