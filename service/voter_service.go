package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/EOS-Nation/eosn-proxy/chaincfg"
	"github.com/EOS-Nation/eosn-proxy/constdef"
	"github.com/EOS-Nation/eosn-proxy/dal/dao"
	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/errcode"
	"github.com/EOS-Nation/eosn-proxy/utils"

	"gorm.io/gorm"
)

type VoterService interface {
	Signup(ctx context.Context, tx *gorm.DB, owner string, referral string, staked int64, nextClaimPeriod int64) (*do.VoterInfo, error)
	Unsignup(ctx context.Context, tx *gorm.DB, owner string) error
	Get(ctx context.Context, tx *gorm.DB, owner string) (*do.VoterInfo, error)
	GetPage(ctx context.Context, tx *gorm.DB, page int, num int, positiveOrder bool) ([]*do.VoterInfo, error)
	GetRange(ctx context.Context, tx *gorm.DB, start string, end string, limit int) ([]*do.VoterInfo, error)
	GetVoterNum(ctx context.Context, tx *gorm.DB) (int64, error)
	Update(ctx context.Context, tx *gorm.DB, info *do.VoterInfo) error
	UpdateStaked(ctx context.Context, tx *gorm.DB, owner string, staked int64) error
	Migrate(ctx context.Context, tx *gorm.DB, owner string, now int64) (bool, error)
	MigrateAll(ctx context.Context, tx *gorm.DB, skip int, limit int, now int64) (int, error)
}

type VoterServiceImpl struct {
	voterInfoDao     dao.VoterInfoDAO
	portfolioInfoDao dao.PortfolioInfoDAO
	referralInfoDao  dao.ReferralInfoDAO
}

var voterService VoterService = &VoterServiceImpl{
	voterInfoDao:     dao.GetVoterInfoDAOImpl(),
	portfolioInfoDao: dao.GetPortfolioInfoDAOImpl(),
	referralInfoDao:  dao.GetReferralInfoDAOImpl(),
}

func GetVoterService() VoterService {
	return voterService
}

// Signup creates the voter record. The caller is responsible for verifying
// the delegation against the staking registry; staked is the verified
// delegated weight and nextClaimPeriod is when the first claim unlocks.
func (v *VoterServiceImpl) Signup(ctx context.Context, tx *gorm.DB, owner string, referral string, staked int64, nextClaimPeriod int64) (*do.VoterInfo, error) {
	if !utils.IsValidAccount(owner) {
		return nil, fmt.Errorf("%w: invalid account %q", errcode.ErrInvalidArgument, owner)
	}

	var info *do.VoterInfo
	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exist, err := v.voterInfoDao.ExistOwner(ctx, tx, owner)
		if err != nil {
			return err
		}
		if exist {
			return fmt.Errorf("%w: voter %s", errcode.ErrAlreadyExists, owner)
		}

		if referral != "" {
			registered, err := v.referralInfoDao.ExistName(ctx, tx, referral)
			if err != nil {
				return err
			}
			if !registered {
				return fmt.Errorf("%w: referral %s", errcode.ErrNotFound, referral)
			}
		}

		info, err = v.voterInfoDao.Create(ctx, tx, &do.VoterInfo{
			Owner:           owner,
			Staked:          staked,
			NextClaimPeriod: nextClaimPeriod,
			Referral:        referral,
			Rewards:         chaincfg.ActiveNetParams.BaseSymbol,
			Version:         constdef.VoterSchemaV2,
		})
		return err
	})
	return info, err
}

// Unsignup erases the voter and its portfolio.
func (v *VoterServiceImpl) Unsignup(ctx context.Context, tx *gorm.DB, owner string) error {
	return tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := v.voterInfoDao.DeleteByOwner(ctx, tx, owner)
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: voter %s", errcode.ErrNotFound, owner)
		}
		_, err = v.portfolioInfoDao.DeleteByAccount(ctx, tx, owner)
		return err
	})
}

func (v *VoterServiceImpl) Get(ctx context.Context, tx *gorm.DB, owner string) (*do.VoterInfo, error) {
	info, err := v.voterInfoDao.GetByOwner(ctx, tx, owner)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: voter %s", errcode.ErrNotFound, owner)
	}
	return info, err
}

func (v *VoterServiceImpl) GetPage(ctx context.Context, tx *gorm.DB, page int, num int, positiveOrder bool) ([]*do.VoterInfo, error) {
	return v.voterInfoDao.GetPage(ctx, tx, page, num, positiveOrder)
}

func (v *VoterServiceImpl) GetRange(ctx context.Context, tx *gorm.DB, start string, end string, limit int) ([]*do.VoterInfo, error) {
	return v.voterInfoDao.GetRange(ctx, tx, start, end, limit)
}

func (v *VoterServiceImpl) GetVoterNum(ctx context.Context, tx *gorm.DB) (int64, error) {
	return v.voterInfoDao.GetVoterNum(ctx, tx)
}

func (v *VoterServiceImpl) Update(ctx context.Context, tx *gorm.DB, info *do.VoterInfo) error {
	_, err := v.voterInfoDao.Update(ctx, tx, info)
	return err
}

func (v *VoterServiceImpl) UpdateStaked(ctx context.Context, tx *gorm.DB, owner string, staked int64) error {
	rows, err := v.voterInfoDao.UpdateStakedByOwner(ctx, tx, owner, staked)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: voter %s", errcode.ErrNotFound, owner)
	}
	return nil
}

// Migrate upgrades a v1 voter row to the v2 layout exactly once. A second
// invocation on the same owner is a no-op. Owner, staked and referral are
// preserved; the claim window and reward set receive the pre-migration
// defaults.
func (v *VoterServiceImpl) Migrate(ctx context.Context, tx *gorm.DB, owner string, now int64) (bool, error) {
	migrated := false
	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		info, err := v.voterInfoDao.GetByOwner(ctx, tx, owner)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: voter %s", errcode.ErrNotFound, owner)
		}
		if err != nil {
			return err
		}
		if info.Version >= constdef.VoterSchemaV2 {
			return nil
		}
		migrateVoter(info, now)
		_, err = v.voterInfoDao.Update(ctx, tx, info)
		if err != nil {
			return err
		}
		migrated = true
		return nil
	})
	return migrated, err
}

// MigrateAll upgrades a bounded page of v1 rows and returns how many rows
// were migrated. The skip cursor makes partially processed ranges resumable.
func (v *VoterServiceImpl) MigrateAll(ctx context.Context, tx *gorm.DB, skip int, limit int, now int64) (int, error) {
	migrated := 0
	err := tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		infos, err := v.voterInfoDao.GetUnmigrated(ctx, tx, skip, limit)
		if err != nil {
			return err
		}
		for _, info := range infos {
			migrateVoter(info, now)
			if _, err := v.voterInfoDao.Update(ctx, tx, info); err != nil {
				return err
			}
			migrated++
		}
		return nil
	})
	return migrated, err
}

func migrateVoter(info *do.VoterInfo, now int64) {
	if info.NextClaimPeriod == 0 {
		info.NextClaimPeriod = now
	}
	if info.Rewards == "" {
		info.Rewards = chaincfg.ActiveNetParams.BaseSymbol
	}
	info.Version = constdef.VoterSchemaV2
}
