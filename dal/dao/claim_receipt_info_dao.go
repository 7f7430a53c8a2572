package dao

import (
	"context"
	"errors"

	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/errcode"

	"gorm.io/gorm"
)

type ClaimReceiptInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.ClaimReceiptInfo) (*do.ClaimReceiptInfo, error)
	GetPage(ctx context.Context, tx *gorm.DB, page int, num int, positiveOrder bool) ([]*do.ClaimReceiptInfo, error)
	GetByOwner(ctx context.Context, tx *gorm.DB, owner string, page int, num int) ([]*do.ClaimReceiptInfo, error)
	GetReceiptNum(ctx context.Context, tx *gorm.DB) (int64, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type ClaimReceiptInfoDAOImpl struct{}

var claimReceiptInfoDAO ClaimReceiptInfoDAO = &ClaimReceiptInfoDAOImpl{}

func GetClaimReceiptInfoDAOImpl() ClaimReceiptInfoDAO {
	return claimReceiptInfoDAO
}

func (c *ClaimReceiptInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.ClaimReceiptInfo) (*do.ClaimReceiptInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	if info == nil {
		return nil, errors.New("nil claim receipt info when creating")
	}

	query := tx.Create(info)
	return info, query.Error
}

func (c *ClaimReceiptInfoDAOImpl) GetPage(ctx context.Context, tx *gorm.DB, page int, num int, positiveOrder bool) ([]*do.ClaimReceiptInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	infos := make([]*do.ClaimReceiptInfo, 0)
	if page <= 0 || num <= 0 {
		return infos, nil
	}
	query := tx.Model(&do.ClaimReceiptInfo{}).Offset((page - 1) * num).Limit(num)
	if !positiveOrder {
		query = query.Order("id desc")
	}
	query = query.Find(&infos)
	return infos, query.Error
}

func (c *ClaimReceiptInfoDAOImpl) GetByOwner(ctx context.Context, tx *gorm.DB, owner string, page int, num int) ([]*do.ClaimReceiptInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	infos := make([]*do.ClaimReceiptInfo, 0)
	if page <= 0 || num <= 0 {
		return infos, nil
	}
	query := tx.Model(&do.ClaimReceiptInfo{}).Where("owner = ?", owner).
		Order("id desc").Offset((page - 1) * num).Limit(num).Find(&infos)
	return infos, query.Error
}

func (c *ClaimReceiptInfoDAOImpl) GetReceiptNum(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	var count int64
	query := tx.Model(&do.ClaimReceiptInfo{}).Count(&count)
	return count, query.Error
}

func (c *ClaimReceiptInfoDAOImpl) DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	query := tx.Where("1 = 1").Delete(&do.ClaimReceiptInfo{})
	return query.RowsAffected, query.Error
}
