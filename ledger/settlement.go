package ledger

import (
	"context"
	"math/big"

	"github.com/abesuite/gaopool/model"

	"gorm.io/gorm"
)

// share returns floor(totalClaimed * committed / totalAttempt), zero when
// nothing was attempted.
func share(record *model.EpochRecord, committed *big.Int) *big.Int {
	if record == nil || record.TotalAttempt.Sign() == 0 {
		return new(big.Int)
	}
	res := new(big.Int).Mul(record.TotalClaimed, committed)
	return res.Div(res, record.TotalAttempt)
}

// settle moves the share of every closed epoch of account whose mined
// windows are all resolved into the pending amounts, oldest first.  It stops
// at the first epoch that still has unresolved windows so that epoch is
// settled later with its final totals.  The fee is taken per epoch.
func (l *Ledger) settle(ctx context.Context, tx *gorm.DB, account *model.Account, currentEpoch uint64, feePercentage uint64) error {
	if currentEpoch == 0 {
		return nil
	}
	last := account.EpochIndex
	if last > currentEpoch-1 {
		last = currentEpoch - 1
	}
	first := account.RedeemedThroughEpoch + 1
	if first > int64(last) {
		return nil
	}

	stakes, err := l.stakeInfoDao.GetByAddressBetweenEpoch(ctx, tx, account.Address.Hex(), first, int64(last))
	if err != nil {
		return err
	}

	if account.PendingNet == nil {
		account.PendingNet = new(big.Int)
	}
	if account.PendingFee == nil {
		account.PendingFee = new(big.Int)
	}
	hundred := big.NewInt(100)
	fee := new(big.Int).SetUint64(feePercentage)
	for _, stakeInfo := range stakes {
		info, err := l.epochRecordInfoDao.GetByEpoch(ctx, tx, stakeInfo.Epoch)
		if err != nil {
			return err
		}
		record, err := model.ConvertDOToEpochRecord(info)
		if err != nil {
			return err
		}
		if record != nil && !record.Finalized() {
			log.Debugf("Epoch %v of %v not finalized (%v of %v windows resolved)", stakeInfo.Epoch,
				account.Address.Hex(), record.ResolvedWindows, record.MinedWindows)
			return nil
		}
		committed, err := model.ParseAmount(stakeInfo.CommittedAttempt)
		if err != nil {
			return err
		}

		gross := share(record, committed)
		feeAmount := new(big.Int).Mul(gross, fee)
		feeAmount.Div(feeAmount, hundred)
		account.PendingNet.Add(account.PendingNet, new(big.Int).Sub(gross, feeAmount))
		account.PendingFee.Add(account.PendingFee, feeAmount)
		account.RedeemedThroughEpoch = stakeInfo.Epoch
		log.Tracef("Settled epoch %v of %v: share %v, fee %v", stakeInfo.Epoch, account.Address.Hex(), gross, feeAmount)
	}
	account.RedeemedThroughEpoch = int64(last)
	return nil
}

// liveShare returns the share of every epoch of account that has not been
// settled yet, open epoch included.
func (l *Ledger) liveShare(ctx context.Context, tx *gorm.DB, account *model.Account) (*big.Int, error) {
	total := new(big.Int)
	first := account.RedeemedThroughEpoch + 1
	if first > int64(account.EpochIndex) {
		return total, nil
	}
	stakes, err := l.stakeInfoDao.GetByAddressBetweenEpoch(ctx, tx, account.Address.Hex(), first, int64(account.EpochIndex))
	if err != nil {
		return nil, err
	}
	for _, stakeInfo := range stakes {
		info, err := l.epochRecordInfoDao.GetByEpoch(ctx, tx, stakeInfo.Epoch)
		if err != nil {
			return nil, err
		}
		record, err := model.ConvertDOToEpochRecord(info)
		if err != nil {
			return nil, err
		}
		committed, err := model.ParseAmount(stakeInfo.CommittedAttempt)
		if err != nil {
			return nil, err
		}
		total.Add(total, share(record, committed))
	}
	return total, nil
}
