package service

import (
	"context"
	"fmt"

	"github.com/EOS-Nation/eosn-proxy/dal/dao"
	"github.com/EOS-Nation/eosn-proxy/errcode"

	"gorm.io/gorm"
)

// Clean selectors accepted by AdminService.Clean.
const (
	CleanVoters     = "voters"
	CleanRewards    = "rewards"
	CleanReferrals  = "referrals"
	CleanProxies    = "proxies"
	CleanPortfolios = "portfolios"
	CleanReceipts   = "receipts"
	CleanLast       = "last"
	CleanSettings   = "settings"
)

type AdminService interface {
	Clean(ctx context.Context, tx *gorm.DB, selector string) (int64, error)
}

type AdminServiceImpl struct {
	settingsInfoDao     dao.SettingsInfoDAO
	rewardAssetInfoDao  dao.RewardAssetInfoDAO
	portfolioInfoDao    dao.PortfolioInfoDAO
	referralInfoDao     dao.ReferralInfoDAO
	proxyInfoDao        dao.ProxyInfoDAO
	voterInfoDao        dao.VoterInfoDAO
	claimReceiptInfoDao dao.ClaimReceiptInfoDAO
	lastClaimInfoDao    dao.LastClaimInfoDAO
}

var adminService AdminService = &AdminServiceImpl{
	settingsInfoDao:     dao.GetSettingsInfoDAOImpl(),
	rewardAssetInfoDao:  dao.GetRewardAssetInfoDAOImpl(),
	portfolioInfoDao:    dao.GetPortfolioInfoDAOImpl(),
	referralInfoDao:     dao.GetReferralInfoDAOImpl(),
	proxyInfoDao:        dao.GetProxyInfoDAOImpl(),
	voterInfoDao:        dao.GetVoterInfoDAOImpl(),
	claimReceiptInfoDao: dao.GetClaimReceiptInfoDAOImpl(),
	lastClaimInfoDao:    dao.GetLastClaimInfoDAOImpl(),
}

func GetAdminService() AdminService {
	return adminService
}

// Clean wipes one table picked by selector and returns how many rows went
// away. Unknown selectors are rejected rather than ignored so that a typo in
// an operator command cannot silently clean nothing.
func (a *AdminServiceImpl) Clean(ctx context.Context, tx *gorm.DB, selector string) (int64, error) {
	var rows int64
	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		switch selector {
		case CleanVoters:
			rows, err = a.voterInfoDao.DeleteAll(ctx, tx)
		case CleanRewards:
			rows, err = a.rewardAssetInfoDao.DeleteAll(ctx, tx)
		case CleanReferrals:
			rows, err = a.referralInfoDao.DeleteAll(ctx, tx)
		case CleanProxies:
			rows, err = a.proxyInfoDao.DeleteAll(ctx, tx)
		case CleanPortfolios:
			rows, err = a.portfolioInfoDao.DeleteAll(ctx, tx)
		case CleanReceipts:
			rows, err = a.claimReceiptInfoDao.DeleteAll(ctx, tx)
		case CleanLast:
			rows, err = a.lastClaimInfoDao.DeleteAll(ctx, tx)
		case CleanSettings:
			rows, err = a.settingsInfoDao.DeleteAll(ctx, tx)
		default:
			return fmt.Errorf("%w: unknown clean selector %q", errcode.ErrInvalidArgument, selector)
		}
		return err
	})
	if err != nil {
		return 0, err
	}
	log.Info("cleaned table", "selector", selector, "rows", rows)
	return rows, nil
}
