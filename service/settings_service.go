package service

import (
	"context"
	"fmt"

	"github.com/EOS-Nation/eosn-proxy/dal/dao"
	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/errcode"

	"gorm.io/gorm"
)

type SettingsService interface {
	Get(ctx context.Context, tx *gorm.DB) (*do.SettingsInfo, error)
	SetRate(ctx context.Context, tx *gorm.DB, rate int64) error
	SetInterval(ctx context.Context, tx *gorm.DB, interval int64) error
	SetRentRate(ctx context.Context, tx *gorm.DB, rate int64) error
	SetMaxCatchupIntervals(ctx context.Context, tx *gorm.DB, intervals int64) error
	SetPaused(ctx context.Context, tx *gorm.DB, paused bool) error
}

type SettingsServiceImpl struct {
	settingsInfoDao dao.SettingsInfoDAO
}

var settingsService SettingsService = &SettingsServiceImpl{
	settingsInfoDao: dao.GetSettingsInfoDAOImpl(),
}

func GetSettingsService() SettingsService {
	return settingsService
}

// Get never fails on an uninitialized table; the DAO materializes defaults.
func (s *SettingsServiceImpl) Get(ctx context.Context, tx *gorm.DB) (*do.SettingsInfo, error) {
	return s.settingsInfoDao.Get(ctx, tx)
}

func (s *SettingsServiceImpl) SetRate(ctx context.Context, tx *gorm.DB, rate int64) error {
	if rate < 0 {
		return fmt.Errorf("%w: rate %d is negative", errcode.ErrInvalidArgument, rate)
	}
	return s.patch(ctx, tx, func(settings *do.SettingsInfo) {
		settings.Rate = rate
	})
}

func (s *SettingsServiceImpl) SetInterval(ctx context.Context, tx *gorm.DB, interval int64) error {
	if interval <= 0 {
		return fmt.Errorf("%w: interval %d is not positive", errcode.ErrInvalidArgument, interval)
	}
	return s.patch(ctx, tx, func(settings *do.SettingsInfo) {
		settings.Interval = interval
	})
}

func (s *SettingsServiceImpl) SetRentRate(ctx context.Context, tx *gorm.DB, rate int64) error {
	if rate < 0 {
		return fmt.Errorf("%w: rent rate %d is negative", errcode.ErrInvalidArgument, rate)
	}
	return s.patch(ctx, tx, func(settings *do.SettingsInfo) {
		settings.RentRate = rate
	})
}

func (s *SettingsServiceImpl) SetMaxCatchupIntervals(ctx context.Context, tx *gorm.DB, intervals int64) error {
	if intervals <= 0 {
		return fmt.Errorf("%w: max catchup intervals %d is not positive", errcode.ErrInvalidArgument, intervals)
	}
	return s.patch(ctx, tx, func(settings *do.SettingsInfo) {
		settings.MaxCatchupIntervals = intervals
	})
}

func (s *SettingsServiceImpl) SetPaused(ctx context.Context, tx *gorm.DB, paused bool) error {
	return s.patch(ctx, tx, func(settings *do.SettingsInfo) {
		settings.Paused = paused
	})
}

// patch overwrites only the fields touched by apply, inside one transaction.
func (s *SettingsServiceImpl) patch(ctx context.Context, tx *gorm.DB, apply func(*do.SettingsInfo)) error {
	return tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		settings, err := s.settingsInfoDao.Get(ctx, tx)
		if err != nil {
			return err
		}
		apply(settings)
		_, err = s.settingsInfoDao.Update(ctx, tx, settings)
		return err
	})
}
