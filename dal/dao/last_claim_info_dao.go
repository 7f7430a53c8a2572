package dao

import (
	"context"
	"errors"

	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/errcode"

	"gorm.io/gorm"
)

type LastClaimInfoDAO interface {
	Get(ctx context.Context, tx *gorm.DB) (*do.LastClaimInfo, error)
	Update(ctx context.Context, tx *gorm.DB, info *do.LastClaimInfo) (int64, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type LastClaimInfoDAOImpl struct{}

var lastClaimInfoDAO LastClaimInfoDAO = &LastClaimInfoDAOImpl{}

func GetLastClaimInfoDAOImpl() LastClaimInfoDAO {
	return lastClaimInfoDAO
}

// Get returns the singleton last-claim row, or nil when no claim has been
// recorded yet.
func (l *LastClaimInfoDAOImpl) Get(ctx context.Context, tx *gorm.DB) (*do.LastClaimInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := do.LastClaimInfo{}
	query := tx.Model(&do.LastClaimInfo{}).Where("id = ?", 1).Take(&res)
	if errors.Is(query.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &res, query.Error
}

func (l *LastClaimInfoDAOImpl) Update(ctx context.Context, tx *gorm.DB, info *do.LastClaimInfo) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	if info == nil {
		return 0, errors.New("nil last claim info when updating")
	}
	info.ID = 1
	query := tx.Save(info)
	return query.RowsAffected, query.Error
}

func (l *LastClaimInfoDAOImpl) DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	query := tx.Where("1 = 1").Delete(&do.LastClaimInfo{})
	return query.RowsAffected, query.Error
}
