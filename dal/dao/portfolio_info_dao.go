package dao

import (
	"context"
	"errors"

	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/errcode"

	"gorm.io/gorm"
)

type PortfolioInfoDAO interface {
	MCreate(ctx context.Context, tx *gorm.DB, infos []*do.PortfolioInfo) (int64, error)
	GetByAccount(ctx context.Context, tx *gorm.DB, account string) ([]*do.PortfolioInfo, error)
	CountBySymbol(ctx context.Context, tx *gorm.DB, symbol string) (int64, error)
	DeleteByAccount(ctx context.Context, tx *gorm.DB, account string) (int64, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type PortfolioInfoDAOImpl struct{}

var portfolioInfoDAO PortfolioInfoDAO = &PortfolioInfoDAOImpl{}

func GetPortfolioInfoDAOImpl() PortfolioInfoDAO {
	return portfolioInfoDAO
}

func (p *PortfolioInfoDAOImpl) MCreate(ctx context.Context, tx *gorm.DB, infos []*do.PortfolioInfo) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	if len(infos) == 0 {
		return 0, errors.New("empty portfolio infos when creating")
	}

	query := tx.Create(infos)
	return query.RowsAffected, query.Error
}

func (p *PortfolioInfoDAOImpl) GetByAccount(ctx context.Context, tx *gorm.DB, account string) ([]*do.PortfolioInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	infos := make([]*do.PortfolioInfo, 0)
	query := tx.Model(&do.PortfolioInfo{}).Where("account = ?", account).Order("position").Find(&infos)
	return infos, query.Error
}

func (p *PortfolioInfoDAOImpl) CountBySymbol(ctx context.Context, tx *gorm.DB, symbol string) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	var count int64
	query := tx.Model(&do.PortfolioInfo{}).Where("symbol = ?", symbol).Count(&count)
	return count, query.Error
}

func (p *PortfolioInfoDAOImpl) DeleteByAccount(ctx context.Context, tx *gorm.DB, account string) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	query := tx.Where("account = ?", account).Delete(&do.PortfolioInfo{})
	return query.RowsAffected, query.Error
}

func (p *PortfolioInfoDAOImpl) DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	query := tx.Where("1 = 1").Delete(&do.PortfolioInfo{})
	return query.RowsAffected, query.Error
}
