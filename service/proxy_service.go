package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/EOS-Nation/eosn-proxy/chaincfg"
	"github.com/EOS-Nation/eosn-proxy/dal/dao"
	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/errcode"
	"github.com/EOS-Nation/eosn-proxy/utils"

	"gorm.io/gorm"
)

type ProxyService interface {
	Set(ctx context.Context, tx *gorm.DB, proxy string, active bool) error
	GetAll(ctx context.Context, tx *gorm.DB) ([]*do.ProxyInfo, error)
	// ActiveProxy returns the single active proxy, falling back to the
	// well-known network identity when none is marked active.
	ActiveProxy(ctx context.Context, tx *gorm.DB) (string, error)
	// IsAuthorized reports whether account is a registered, active proxy or
	// the fallback identity.
	IsAuthorized(ctx context.Context, tx *gorm.DB, account string) (bool, error)
}

type ProxyServiceImpl struct {
	proxyInfoDao dao.ProxyInfoDAO
}

var proxyService ProxyService = &ProxyServiceImpl{
	proxyInfoDao: dao.GetProxyInfoDAOImpl(),
}

func GetProxyService() ProxyService {
	return proxyService
}

func (p *ProxyServiceImpl) Set(ctx context.Context, tx *gorm.DB, proxy string, active bool) error {
	if !utils.IsValidAccount(proxy) {
		return fmt.Errorf("%w: invalid proxy account %q", errcode.ErrInvalidArgument, proxy)
	}

	return tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if active {
			// Only one proxy may be the active delegation target.
			if _, err := p.proxyInfoDao.DeactivateAllExcept(ctx, tx, proxy); err != nil {
				return err
			}
		}
		_, err := p.proxyInfoDao.Upsert(ctx, tx, &do.ProxyInfo{Proxy: proxy, Active: active})
		return err
	})
}

func (p *ProxyServiceImpl) GetAll(ctx context.Context, tx *gorm.DB) ([]*do.ProxyInfo, error) {
	return p.proxyInfoDao.GetAll(ctx, tx)
}

func (p *ProxyServiceImpl) ActiveProxy(ctx context.Context, tx *gorm.DB) (string, error) {
	info, err := p.proxyInfoDao.GetActive(ctx, tx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fallback := chaincfg.ActiveNetParams.FallbackProxy
		if fallback == "" {
			return "", fmt.Errorf("%w: no active proxy", errcode.ErrNotEligible)
		}
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	return info.Proxy, nil
}

func (p *ProxyServiceImpl) IsAuthorized(ctx context.Context, tx *gorm.DB, account string) (bool, error) {
	if account == chaincfg.ActiveNetParams.FallbackProxy {
		return true, nil
	}
	info, err := p.proxyInfoDao.GetByProxy(ctx, tx, account)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.Active, nil
}
