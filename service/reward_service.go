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
	"github.com/EOS-Nation/eosn-proxy/model"
	"github.com/EOS-Nation/eosn-proxy/utils"

	"gorm.io/gorm"
)

type RewardService interface {
	RegisterAsset(ctx context.Context, tx *gorm.DB, symbol string, contract string, price int64) error
	UpdatePrice(ctx context.Context, tx *gorm.DB, symbol string, price int64) error
	RemoveAsset(ctx context.Context, tx *gorm.DB, symbol string) error
	GetAsset(ctx context.Context, tx *gorm.DB, symbol string) (*do.RewardAssetInfo, error)
	GetAssets(ctx context.Context, tx *gorm.DB) ([]*do.RewardAssetInfo, error)
	SetPortfolio(ctx context.Context, tx *gorm.DB, account string, entries []model.PortfolioEntry) error
	ClearPortfolio(ctx context.Context, tx *gorm.DB, account string) error
	GetPortfolio(ctx context.Context, tx *gorm.DB, account string) ([]model.PortfolioEntry, error)
}

type RewardServiceImpl struct {
	rewardAssetInfoDao dao.RewardAssetInfoDAO
	portfolioInfoDao   dao.PortfolioInfoDAO
}

var rewardService RewardService = &RewardServiceImpl{
	rewardAssetInfoDao: dao.GetRewardAssetInfoDAOImpl(),
	portfolioInfoDao:   dao.GetPortfolioInfoDAOImpl(),
}

func GetRewardService() RewardService {
	return rewardService
}

// RegisterAsset creates a reward asset or, when the symbol already exists
// with the same denominating contract, refreshes its price. The contract of
// an existing asset is immutable.
func (r *RewardServiceImpl) RegisterAsset(ctx context.Context, tx *gorm.DB, symbol string, contract string, price int64) error {
	if !utils.IsValidSymbol(symbol) {
		return fmt.Errorf("%w: invalid symbol %q", errcode.ErrInvalidArgument, symbol)
	}
	if !utils.IsValidAccount(contract) {
		return fmt.Errorf("%w: invalid contract %q", errcode.ErrInvalidArgument, contract)
	}
	if price <= 0 {
		return fmt.Errorf("%w: price %d is not positive", errcode.ErrInvalidArgument, price)
	}

	return tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := r.rewardAssetInfoDao.GetBySymbol(ctx, tx, symbol)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			_, err = r.rewardAssetInfoDao.Create(ctx, tx, &do.RewardAssetInfo{
				Symbol:   symbol,
				Contract: contract,
				Price:    price,
			})
			return err
		} else if err != nil {
			return err
		}

		if existing.Contract != contract {
			return fmt.Errorf("%w: symbol %s is registered with contract %s",
				errcode.ErrAlreadyExists, symbol, existing.Contract)
		}
		_, err = r.rewardAssetInfoDao.UpdatePriceBySymbol(ctx, tx, symbol, price)
		return err
	})
}

func (r *RewardServiceImpl) UpdatePrice(ctx context.Context, tx *gorm.DB, symbol string, price int64) error {
	if price <= 0 {
		return fmt.Errorf("%w: price %d is not positive", errcode.ErrInvalidArgument, price)
	}

	return tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exist, err := r.rewardAssetInfoDao.ExistSymbol(ctx, tx, symbol)
		if err != nil {
			return err
		}
		if !exist {
			return fmt.Errorf("%w: reward asset %s", errcode.ErrNotFound, symbol)
		}
		_, err = r.rewardAssetInfoDao.UpdatePriceBySymbol(ctx, tx, symbol, price)
		return err
	})
}

// RemoveAsset deletes a reward asset. It fails while any portfolio still
// references the symbol; portfolios must be cleared first. The base asset
// can never be removed.
func (r *RewardServiceImpl) RemoveAsset(ctx context.Context, tx *gorm.DB, symbol string) error {
	if symbol == chaincfg.ActiveNetParams.BaseSymbol {
		return fmt.Errorf("%w: base asset %s cannot be removed", errcode.ErrInvalidArgument, symbol)
	}

	return tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exist, err := r.rewardAssetInfoDao.ExistSymbol(ctx, tx, symbol)
		if err != nil {
			return err
		}
		if !exist {
			return fmt.Errorf("%w: reward asset %s", errcode.ErrNotFound, symbol)
		}

		refs, err := r.portfolioInfoDao.CountBySymbol(ctx, tx, symbol)
		if err != nil {
			return err
		}
		if refs > 0 {
			return fmt.Errorf("%w: reward asset %s is referenced by %d portfolio entries",
				errcode.ErrReferentialIntegrity, symbol, refs)
		}

		_, err = r.rewardAssetInfoDao.DeleteBySymbol(ctx, tx, symbol)
		return err
	})
}

func (r *RewardServiceImpl) GetAsset(ctx context.Context, tx *gorm.DB, symbol string) (*do.RewardAssetInfo, error) {
	asset, err := r.rewardAssetInfoDao.GetBySymbol(ctx, tx, symbol)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: reward asset %s", errcode.ErrNotFound, symbol)
	}
	return asset, err
}

func (r *RewardServiceImpl) GetAssets(ctx context.Context, tx *gorm.DB) ([]*do.RewardAssetInfo, error) {
	return r.rewardAssetInfoDao.GetAll(ctx, tx)
}

// SetPortfolio replaces the whole allocation of the account. Every symbol
// must be a registered reward asset and the percentages must not exceed
// 100.00% in total.
func (r *RewardServiceImpl) SetPortfolio(ctx context.Context, tx *gorm.DB, account string, entries []model.PortfolioEntry) error {
	if !utils.IsValidAccount(account) {
		return fmt.Errorf("%w: invalid account %q", errcode.ErrInvalidArgument, account)
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: empty portfolio", errcode.ErrInvalidArgument)
	}

	var sum int64
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.Percent < 0 {
			return fmt.Errorf("%w: negative percentage %d for %s",
				errcode.ErrInvalidArgument, entry.Percent, entry.Symbol)
		}
		if _, ok := seen[entry.Symbol]; ok {
			return fmt.Errorf("%w: duplicate symbol %s", errcode.ErrInvalidArgument, entry.Symbol)
		}
		seen[entry.Symbol] = struct{}{}
		sum += entry.Percent
	}
	if sum > constdef.PercentDenominator {
		return fmt.Errorf("%w: portfolio percentages sum to %d, exceeding %d",
			errcode.ErrInvalidArgument, sum, constdef.PercentDenominator)
	}

	return tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		infos := make([]*do.PortfolioInfo, 0, len(entries))
		for i, entry := range entries {
			exist, err := r.rewardAssetInfoDao.ExistSymbol(ctx, tx, entry.Symbol)
			if err != nil {
				return err
			}
			if !exist {
				return fmt.Errorf("%w: reward asset %s", errcode.ErrNotFound, entry.Symbol)
			}
			infos = append(infos, &do.PortfolioInfo{
				Account:  account,
				Symbol:   entry.Symbol,
				Percent:  entry.Percent,
				Position: i,
			})
		}

		// Full overwrite, not a merge.
		if _, err := r.portfolioInfoDao.DeleteByAccount(ctx, tx, account); err != nil {
			return err
		}
		_, err := r.portfolioInfoDao.MCreate(ctx, tx, infos)
		return err
	})
}

func (r *RewardServiceImpl) ClearPortfolio(ctx context.Context, tx *gorm.DB, account string) error {
	_, err := r.portfolioInfoDao.DeleteByAccount(ctx, tx, account)
	return err
}

func (r *RewardServiceImpl) GetPortfolio(ctx context.Context, tx *gorm.DB, account string) ([]model.PortfolioEntry, error) {
	infos, err := r.portfolioInfoDao.GetByAccount(ctx, tx, account)
	if err != nil {
		return nil, err
	}
	entries := make([]model.PortfolioEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, model.PortfolioEntry{Symbol: info.Symbol, Percent: info.Percent})
	}
	return entries, nil
}
