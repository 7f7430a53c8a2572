package dao

import (
	"context"
	"errors"

	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/errcode"

	"gorm.io/gorm"
)

type VoterInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.VoterInfo) (*do.VoterInfo, error)
	Update(ctx context.Context, tx *gorm.DB, info *do.VoterInfo) (int64, error)
	GetByOwner(ctx context.Context, tx *gorm.DB, owner string) (*do.VoterInfo, error)
	GetRange(ctx context.Context, tx *gorm.DB, start string, end string, limit int) ([]*do.VoterInfo, error)
	GetPage(ctx context.Context, tx *gorm.DB, page int, num int, positiveOrder bool) ([]*do.VoterInfo, error)
	GetUnmigrated(ctx context.Context, tx *gorm.DB, skip int, limit int) ([]*do.VoterInfo, error)
	GetVoterNum(ctx context.Context, tx *gorm.DB) (int64, error)
	ExistOwner(ctx context.Context, tx *gorm.DB, owner string) (bool, error)
	UpdateStakedByOwner(ctx context.Context, tx *gorm.DB, owner string, staked int64) (int64, error)
	DeleteByOwner(ctx context.Context, tx *gorm.DB, owner string) (int64, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type VoterInfoDAOImpl struct{}

var voterInfoDAO VoterInfoDAO = &VoterInfoDAOImpl{}

func GetVoterInfoDAOImpl() VoterInfoDAO {
	return voterInfoDAO
}

func (v *VoterInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.VoterInfo) (*do.VoterInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	if info == nil {
		return nil, errors.New("nil voter info when creating")
	}

	query := tx.Create(info)
	return info, query.Error
}

func (v *VoterInfoDAOImpl) Update(ctx context.Context, tx *gorm.DB, info *do.VoterInfo) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	if info == nil {
		return 0, errors.New("nil voter info when updating")
	}

	query := tx.Save(info)
	return query.RowsAffected, query.Error
}

func (v *VoterInfoDAOImpl) GetByOwner(ctx context.Context, tx *gorm.DB, owner string) (*do.VoterInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := do.VoterInfo{}
	query := tx.Model(&do.VoterInfo{}).Where("owner = ?", owner).Take(&res)
	return &res, query.Error
}

// GetRange returns voters with start <= owner < end ordered by owner, used by
// the paged claim sweep. An empty end means no upper bound.
func (v *VoterInfoDAOImpl) GetRange(ctx context.Context, tx *gorm.DB, start string, end string, limit int) ([]*do.VoterInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	infos := make([]*do.VoterInfo, 0)
	query := tx.Model(&do.VoterInfo{}).Where("owner >= ?", start)
	if end != "" {
		query = query.Where("owner < ?", end)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	query = query.Order("owner").Find(&infos)
	return infos, query.Error
}

func (v *VoterInfoDAOImpl) GetPage(ctx context.Context, tx *gorm.DB, page int, num int, positiveOrder bool) ([]*do.VoterInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	infos := make([]*do.VoterInfo, 0)
	if page <= 0 || num <= 0 {
		return infos, nil
	}
	query := tx.Model(&do.VoterInfo{}).Offset((page - 1) * num).Limit(num)
	if positiveOrder {
		query = query.Order("owner")
	} else {
		query = query.Order("owner desc")
	}
	query = query.Find(&infos)
	return infos, query.Error
}

func (v *VoterInfoDAOImpl) GetUnmigrated(ctx context.Context, tx *gorm.DB, skip int, limit int) ([]*do.VoterInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	infos := make([]*do.VoterInfo, 0)
	query := tx.Model(&do.VoterInfo{}).Where("version < ?", 2).Order("owner")
	if skip > 0 {
		query = query.Offset(skip)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	query = query.Find(&infos)
	return infos, query.Error
}

func (v *VoterInfoDAOImpl) GetVoterNum(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	var count int64
	query := tx.Model(&do.VoterInfo{}).Count(&count)
	return count, query.Error
}

func (v *VoterInfoDAOImpl) ExistOwner(ctx context.Context, tx *gorm.DB, owner string) (bool, error) {
	if tx == nil {
		return false, errcode.ErrNilGormDB
	}

	var count int64
	query := tx.Model(&do.VoterInfo{}).Where("owner = ?", owner).Count(&count)
	if query.Error != nil {
		return false, query.Error
	}
	return count > 0, nil
}

func (v *VoterInfoDAOImpl) UpdateStakedByOwner(ctx context.Context, tx *gorm.DB, owner string, staked int64) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	query := tx.Model(&do.VoterInfo{}).Where("owner = ?", owner).Update("staked", staked)
	return query.RowsAffected, query.Error
}

func (v *VoterInfoDAOImpl) DeleteByOwner(ctx context.Context, tx *gorm.DB, owner string) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	query := tx.Where("owner = ?", owner).Delete(&do.VoterInfo{})
	return query.RowsAffected, query.Error
}

func (v *VoterInfoDAOImpl) DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	query := tx.Where("1 = 1").Delete(&do.VoterInfo{})
	return query.RowsAffected, query.Error
}
