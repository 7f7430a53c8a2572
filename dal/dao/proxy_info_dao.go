package dao

import (
	"context"
	"errors"

	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/errcode"

	"gorm.io/gorm"
)

type ProxyInfoDAO interface {
	Upsert(ctx context.Context, tx *gorm.DB, info *do.ProxyInfo) (*do.ProxyInfo, error)
	GetByProxy(ctx context.Context, tx *gorm.DB, proxy string) (*do.ProxyInfo, error)
	GetActive(ctx context.Context, tx *gorm.DB) (*do.ProxyInfo, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*do.ProxyInfo, error)
	DeactivateAllExcept(ctx context.Context, tx *gorm.DB, proxy string) (int64, error)
	DeleteByProxy(ctx context.Context, tx *gorm.DB, proxy string) (int64, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type ProxyInfoDAOImpl struct{}

var proxyInfoDAO ProxyInfoDAO = &ProxyInfoDAOImpl{}

func GetProxyInfoDAOImpl() ProxyInfoDAO {
	return proxyInfoDAO
}

func (p *ProxyInfoDAOImpl) Upsert(ctx context.Context, tx *gorm.DB, info *do.ProxyInfo) (*do.ProxyInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	if info == nil {
		return nil, errors.New("nil proxy info when upserting")
	}

	existing := do.ProxyInfo{}
	query := tx.Model(&do.ProxyInfo{}).Where("proxy = ?", info.Proxy).Take(&existing)
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

func (p *ProxyInfoDAOImpl) GetByProxy(ctx context.Context, tx *gorm.DB, proxy string) (*do.ProxyInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := do.ProxyInfo{}
	query := tx.Model(&do.ProxyInfo{}).Where("proxy = ?", proxy).Take(&res)
	return &res, query.Error
}

func (p *ProxyInfoDAOImpl) GetActive(ctx context.Context, tx *gorm.DB) (*do.ProxyInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := do.ProxyInfo{}
	query := tx.Model(&do.ProxyInfo{}).Where("active = ?", true).Take(&res)
	return &res, query.Error
}

func (p *ProxyInfoDAOImpl) GetAll(ctx context.Context, tx *gorm.DB) ([]*do.ProxyInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	infos := make([]*do.ProxyInfo, 0)
	query := tx.Model(&do.ProxyInfo{}).Order("proxy").Find(&infos)
	return infos, query.Error
}

// DeactivateAllExcept clears the active flag on every proxy other than the
// named one, preserving the single-active-proxy invariant.
func (p *ProxyInfoDAOImpl) DeactivateAllExcept(ctx context.Context, tx *gorm.DB, proxy string) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	query := tx.Model(&do.ProxyInfo{}).Where("proxy <> ?", proxy).Update("active", false)
	return query.RowsAffected, query.Error
}

func (p *ProxyInfoDAOImpl) DeleteByProxy(ctx context.Context, tx *gorm.DB, proxy string) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	query := tx.Where("proxy = ?", proxy).Delete(&do.ProxyInfo{})
	return query.RowsAffected, query.Error
}

func (p *ProxyInfoDAOImpl) DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	query := tx.Where("1 = 1").Delete(&do.ProxyInfo{})
	return query.RowsAffected, query.Error
}
