package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/EOS-Nation/eosn-proxy/dal/dao"
	"github.com/EOS-Nation/eosn-proxy/dal/do"
	"github.com/EOS-Nation/eosn-proxy/errcode"
	"github.com/EOS-Nation/eosn-proxy/model"

	"gorm.io/gorm"
)

type ReceiptService interface {
	Record(ctx context.Context, tx *gorm.DB, receipt *model.ClaimReceipt) error
	GetPage(ctx context.Context, tx *gorm.DB, page int, num int, positiveOrder bool) ([]*do.ClaimReceiptInfo, error)
	GetByOwner(ctx context.Context, tx *gorm.DB, owner string, page int, num int) ([]*do.ClaimReceiptInfo, error)
	GetReceiptNum(ctx context.Context, tx *gorm.DB) (int64, error)
	GetLastClaim(ctx context.Context, tx *gorm.DB) (*do.LastClaimInfo, error)
}

type ReceiptServiceImpl struct {
	claimReceiptInfoDao dao.ClaimReceiptInfoDAO
	lastClaimInfoDao    dao.LastClaimInfoDAO
}

var receiptService ReceiptService = &ReceiptServiceImpl{
	claimReceiptInfoDao: dao.GetClaimReceiptInfoDAOImpl(),
	lastClaimInfoDao:    dao.GetLastClaimInfoDAOImpl(),
}

func GetReceiptService() ReceiptService {
	return receiptService
}

// Record persists the receipt of a completed claim and overwrites the
// last-claim row in the same transaction.
func (r *ReceiptServiceImpl) Record(ctx context.Context, tx *gorm.DB, receipt *model.ClaimReceipt) error {
	if receipt == nil {
		return fmt.Errorf("%w: nil receipt", errcode.ErrInvalidArgument)
	}
	payouts, err := json.Marshal(receipt.Payouts)
	if err != nil {
		return err
	}
	return tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := r.claimReceiptInfoDao.Create(ctx, tx, &do.ClaimReceiptInfo{
			Owner:       receipt.Owner,
			Staked:      receipt.Staked,
			Rate:        receipt.Rate,
			Interval:    receipt.Interval,
			Entitled:    receipt.Entitled,
			ReferralCut: receipt.ReferralCut,
			Referral:    receipt.Referral,
			Payouts:     string(payouts),
			ClaimedAt:   receipt.Timestamp,
		})
		if err != nil {
			return err
		}
		_, err = r.lastClaimInfoDao.Update(ctx, tx, &do.LastClaimInfo{
			Voter:     receipt.Owner,
			Amount:    receipt.Entitled,
			Rate:      receipt.Rate,
			Interval:  receipt.Interval,
			ClaimedAt: receipt.Timestamp,
		})
		return err
	})
}

func (r *ReceiptServiceImpl) GetPage(ctx context.Context, tx *gorm.DB, page int, num int, positiveOrder bool) ([]*do.ClaimReceiptInfo, error) {
	return r.claimReceiptInfoDao.GetPage(ctx, tx, page, num, positiveOrder)
}

func (r *ReceiptServiceImpl) GetByOwner(ctx context.Context, tx *gorm.DB, owner string, page int, num int) ([]*do.ClaimReceiptInfo, error) {
	return r.claimReceiptInfoDao.GetByOwner(ctx, tx, owner, page, num)
}

func (r *ReceiptServiceImpl) GetReceiptNum(ctx context.Context, tx *gorm.DB) (int64, error) {
	return r.claimReceiptInfoDao.GetReceiptNum(ctx, tx)
}

func (r *ReceiptServiceImpl) GetLastClaim(ctx context.Context, tx *gorm.DB) (*do.LastClaimInfo, error) {
	return r.lastClaimInfoDao.Get(ctx, tx)
}
