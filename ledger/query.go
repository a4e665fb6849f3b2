package ledger

import (
	"context"
	"math/big"

	"github.com/abesuite/gaopool/errcode"
	"github.com/abesuite/gaopool/model"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

// FindContribution reports the latest epoch stake of address and what it
// could redeem so far.  An unknown address yields an all zero view.
func (l *Ledger) FindContribution(ctx context.Context, address common.Address) (*model.ContributionView, error) {
	res := &model.ContributionView{
		Address:             address,
		PerWindowAllocation: new(big.Int),
		Stake:               new(big.Int),
		CommittedAttempt:    new(big.Int),
		UncommittedBalance:  new(big.Int),
		Redeemable:          new(big.Int),
		RedeemedTotal:       new(big.Int),
	}
	err := l.transaction(ctx, func(tx *gorm.DB) error {
		accountInfo, err := l.accountInfoDao.GetByAddress(ctx, tx, address.Hex())
		if err != nil || accountInfo == nil {
			return err
		}
		account, err := model.ConvertDOToAccount(accountInfo)
		if err != nil {
			return err
		}
		res.EpochIndex = account.EpochIndex
		res.RedeemedTotal = account.RedeemedTotal

		stakeInfo, err := l.stakeInfoDao.Get(ctx, tx, accountInfo.Address, accountInfo.EpochIndex)
		if err != nil {
			return err
		}
		stake, err := model.ConvertDOToStake(stakeInfo)
		if err != nil {
			return err
		}
		if stake != nil {
			res.PerWindowAllocation = stake.PerWindowAllocation
			res.Stake = stake.Stake
			res.CommittedAttempt = stake.CommittedAttempt
			res.UncommittedBalance = stake.UncommittedBalance
		}

		res.Redeemable, err = l.redeemable(ctx, tx, account)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// BalanceOf returns the gross amount address owns in the pool: settled but
// unpaid amounts plus its live share of every unsettled epoch, the open one
// included.
func (l *Ledger) BalanceOf(ctx context.Context, address common.Address) (*big.Int, error) {
	res := new(big.Int)
	err := l.transaction(ctx, func(tx *gorm.DB) error {
		accountInfo, err := l.accountInfoDao.GetByAddress(ctx, tx, address.Hex())
		if err != nil || accountInfo == nil {
			return err
		}
		account, err := model.ConvertDOToAccount(accountInfo)
		if err != nil {
			return err
		}
		res, err = l.redeemable(ctx, tx, account)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (l *Ledger) redeemable(ctx context.Context, tx *gorm.DB, account *model.Account) (*big.Int, error) {
	live, err := l.liveShare(ctx, tx, account)
	if err != nil {
		return nil, err
	}
	live.Add(live, account.PendingNet)
	return live.Add(live, account.PendingFee), nil
}

// GetEpochRecord returns the record of epoch, an empty record if nothing
// happened in it.
func (l *Ledger) GetEpochRecord(ctx context.Context, epoch uint64) (*model.EpochRecord, error) {
	info, err := l.epochRecordInfoDao.GetByEpoch(ctx, l.db.WithContext(ctx), int64(epoch))
	if err != nil {
		return nil, err
	}
	if info == nil {
		return model.NewEpochRecord(epoch), nil
	}
	return model.ConvertDOToEpochRecord(info)
}

// CheckMiningAttempt asks the reward source whether the pool attempted
// window.
func (l *Ledger) CheckMiningAttempt(ctx context.Context, window uint64) (bool, error) {
	cfg, err := l.PoolConfig(ctx)
	if err != nil {
		return false, err
	}
	ok, err := l.RewardSource().CheckAttemptExists(ctx, window, cfg.PoolAddress)
	if err != nil {
		return false, errcode.ExternalCall("check attempt", err)
	}
	return ok, nil
}

// CheckWinning asks the reward source whether window won.
func (l *Ledger) CheckWinning(ctx context.Context, window uint64) (bool, error) {
	won, err := l.RewardSource().CheckWinning(ctx, window)
	if err != nil {
		return false, errcode.ExternalCall("check winning", err)
	}
	return won, nil
}

// RemainingEpochWindows returns the windows left in the current epoch, the
// current window included.
func (l *Ledger) RemainingEpochWindows(ctx context.Context) (uint64, error) {
	window, err := l.CurrentWindow(ctx)
	if err != nil {
		return 0, err
	}
	return l.clock.RemainingEpochWindows(window), nil
}

func (l *Ledger) GetContributions(ctx context.Context, address common.Address, page int, num int, positiveOrder bool) ([]*model.Contribution, int64, error) {
	db := l.db.WithContext(ctx)
	res, err := l.historyService.GetContributions(ctx, db, address, page, num, positiveOrder)
	if err != nil {
		return nil, 0, err
	}
	total, err := l.historyService.GetContributionNum(ctx, db, address)
	if err != nil {
		return nil, 0, err
	}
	return res, total, nil
}

func (l *Ledger) GetRedemptions(ctx context.Context, address common.Address, page int, num int, positiveOrder bool) ([]*model.Redemption, int64, error) {
	db := l.db.WithContext(ctx)
	res, err := l.historyService.GetRedemptions(ctx, db, address, page, num, positiveOrder)
	if err != nil {
		return nil, 0, err
	}
	total, err := l.historyService.GetRedemptionNum(ctx, db, address)
	if err != nil {
		return nil, 0, err
	}
	return res, total, nil
}
