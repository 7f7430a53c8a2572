package dao

import (
	"context"
	"errors"

	"github.com/EOS-Nation/eosn-proxy/constdef"
	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/errcode"

	"gorm.io/gorm"
)

type SettingsInfoDAO interface {
	Get(ctx context.Context, tx *gorm.DB) (*do.SettingsInfo, error)
	Update(ctx context.Context, tx *gorm.DB, info *do.SettingsInfo) (int64, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type SettingsInfoDAOImpl struct{}

var settingsInfoDAO SettingsInfoDAO = &SettingsInfoDAOImpl{}

func GetSettingsInfoDAOImpl() SettingsInfoDAO {
	return settingsInfoDAO
}

// Get returns the singleton settings row, creating it with defaults when the
// table is empty. It never returns gorm.ErrRecordNotFound.
func (s *SettingsInfoDAOImpl) Get(ctx context.Context, tx *gorm.DB) (*do.SettingsInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	settings := do.SettingsInfo{}
	query := tx.Model(&do.SettingsInfo{}).Where("id = ?", 1).First(&settings)
	if errors.Is(query.Error, gorm.ErrRecordNotFound) {
		settings = do.SettingsInfo{
			ID:                  1,
			Rate:                constdef.DefaultRate,
			Interval:            constdef.DefaultInterval,
			RentRate:            constdef.DefaultRentRate,
			MaxCatchupIntervals: constdef.DefaultMaxCatchupIntervals,
		}
		create := tx.Create(&settings)
		if create.Error != nil {
			return nil, create.Error
		}
	} else if query.Error != nil {
		return nil, query.Error
	}

	return &settings, nil
}

func (s *SettingsInfoDAOImpl) Update(ctx context.Context, tx *gorm.DB, info *do.SettingsInfo) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	if info == nil {
		return 0, errors.New("fail to update settings info: nil settings info")
	}
	info.ID = 1
	// Save writes every field, including zero-valued ones such as paused.
	query := tx.Save(info)
	return query.RowsAffected, query.Error
}

func (s *SettingsInfoDAOImpl) DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	query := tx.Where("1 = 1").Delete(&do.SettingsInfo{})
	return query.RowsAffected, query.Error
}
