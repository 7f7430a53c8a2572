package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/EOS-Nation/eosn-proxy/constdef"
	"github.com/EOS-Nation/eosn-proxy/dal/dao"
	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/errcode"
	"github.com/EOS-Nation/eosn-proxy/utils"

	"gorm.io/gorm"
)

type ReferralService interface {
	Set(ctx context.Context, tx *gorm.DB, name string, website string, description string, rate int64) error
	Remove(ctx context.Context, tx *gorm.DB, name string) error
	Get(ctx context.Context, tx *gorm.DB, name string) (*do.ReferralInfo, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*do.ReferralInfo, error)
	// Lookup returns the referral rate and whether the referral is currently
	// registered. A missing referral is not an error; the claim engine
	// silently skips the cut.
	Lookup(ctx context.Context, tx *gorm.DB, name string) (int64, bool, error)
}

type ReferralServiceImpl struct {
	referralInfoDao dao.ReferralInfoDAO
}

var referralService ReferralService = &ReferralServiceImpl{
	referralInfoDao: dao.GetReferralInfoDAOImpl(),
}

func GetReferralService() ReferralService {
	return referralService
}

func (r *ReferralServiceImpl) Set(ctx context.Context, tx *gorm.DB, name string, website string, description string, rate int64) error {
	if !utils.IsValidAccount(name) {
		return fmt.Errorf("%w: invalid referral account %q", errcode.ErrInvalidArgument, name)
	}
	if rate < 0 || rate > constdef.MaxReferralRate {
		return fmt.Errorf("%w: referral rate %d exceeds maximum %d",
			errcode.ErrInvalidArgument, rate, constdef.MaxReferralRate)
	}
	if len(website) > constdef.MaxWebsiteLength || len(description) > constdef.MaxDescLength {
		return fmt.Errorf("%w: website or description too long", errcode.ErrInvalidArgument)
	}

	return tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := r.referralInfoDao.Upsert(ctx, tx, &do.ReferralInfo{
			Name:        name,
			Website:     website,
			Description: description,
			Rate:        rate,
		})
		return err
	})
}

func (r *ReferralServiceImpl) Remove(ctx context.Context, tx *gorm.DB, name string) error {
	return tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		rows, err := r.referralInfoDao.DeleteByName(ctx, tx, name)
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("%w: referral %s", errcode.ErrNotFound, name)
		}
		return nil
	})
}

func (r *ReferralServiceImpl) Get(ctx context.Context, tx *gorm.DB, name string) (*do.ReferralInfo, error) {
	info, err := r.referralInfoDao.GetByName(ctx, tx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: referral %s", errcode.ErrNotFound, name)
	}
	return info, err
}

func (r *ReferralServiceImpl) GetAll(ctx context.Context, tx *gorm.DB) ([]*do.ReferralInfo, error) {
	return r.referralInfoDao.GetAll(ctx, tx)
}

func (r *ReferralServiceImpl) Lookup(ctx context.Context, tx *gorm.DB, name string) (int64, bool, error) {
	if name == "" {
		return 0, false, nil
	}
	info, err := r.referralInfoDao.GetByName(ctx, tx, name)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return info.Rate, true, nil
}
