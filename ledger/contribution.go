package ledger

import (
	"context"
	"math/big"

	"github.com/abesuite/gaopool/dal/do"
	"github.com/abesuite/gaopool/errcode"
	"github.com/abesuite/gaopool/model"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

// Deposit adds amount to the current epoch stake of creditTo.  A zero
// amount redeems for creditTo instead.
func (l *Ledger) Deposit(ctx context.Context, sender common.Address, creditTo common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return errcode.ErrInvalidAmount.WithDescription("invalid contribution amount %v", amount)
	}
	if creditTo == (common.Address{}) {
		creditTo = sender
	}
	if amount.Sign() == 0 {
		_, err := l.Redeem(ctx, creditTo)
		return err
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	height, err := l.currentHeight(ctx)
	if err != nil {
		return err
	}
	epoch := l.clock.EpochOfHeight(height)

	err = l.transaction(ctx, func(tx *gorm.DB) error {
		cfg, err := l.poolConfigService.Get(ctx, tx)
		if err != nil {
			return err
		}
		if cfg.Paused {
			return errcode.ErrPoolPaused
		}

		accountInfo, account, err := l.getOrCreateAccount(ctx, tx, creditTo, epoch)
		if err != nil {
			return err
		}
		if account.EpochIndex < epoch {
			err = l.settle(ctx, tx, account, epoch, cfg.FeePercentage)
			if err != nil {
				return err
			}
		}

		stakeInfo, err := l.stakeInfoDao.Get(ctx, tx, creditTo.Hex(), int64(epoch))
		if err != nil {
			return err
		}
		var stake *model.Stake
		if stakeInfo == nil {
			if amount.Cmp(l.cfg.MinContribution) < 0 {
				return errcode.ErrBelowMinimum.WithDescription("contribution %v below minimum %v", amount, l.cfg.MinContribution)
			}
			stake = &model.Stake{
				Address:            creditTo,
				Epoch:              epoch,
				Stake:              new(big.Int),
				CommittedAttempt:   new(big.Int),
				UncommittedBalance: new(big.Int),
			}
		} else {
			stake, err = model.ConvertDOToStake(stakeInfo)
			if err != nil {
				return err
			}
		}

		newStake := new(big.Int).Add(stake.Stake, amount)
		if cfg.MaxContribution.Sign() > 0 && newStake.Cmp(cfg.MaxContribution) > 0 {
			return errcode.ErrCapExceeded.WithDescription("stake %v would exceed cap %v", newStake, cfg.MaxContribution)
		}
		stake.Stake = newStake
		stake.UncommittedBalance.Add(stake.UncommittedBalance, amount)
		stake.PerWindowAllocation = l.allocation(stake)

		if stakeInfo == nil {
			_, err = l.stakeInfoDao.Create(ctx, tx, model.ConvertStakeToDO(stake))
		} else {
			model.FillStakeDO(stakeInfo, stake)
			_, err = l.stakeInfoDao.Update(ctx, tx, stakeInfo)
		}
		if err != nil {
			return err
		}

		account.EpochIndex = epoch
		model.FillAccountDO(accountInfo, account)
		_, err = l.accountInfoDao.Update(ctx, tx, accountInfo)
		if err != nil {
			return err
		}

		record, recordInfo, err := l.getOrCreateEpochRecord(ctx, tx, epoch)
		if err != nil {
			return err
		}
		record.TotalStake.Add(record.TotalStake, amount)
		err = l.saveEpochRecord(ctx, tx, recordInfo, record)
		if err != nil {
			return err
		}

		return l.historyService.AddContribution(ctx, tx, &model.Contribution{
			Sender:   sender,
			CreditTo: creditTo,
			Amount:   amount,
			Epoch:    epoch,
			Height:   height,
		})
	})
	if err != nil {
		return err
	}

	log.Infof("Contribution of %v from %v credited to %v in epoch %v", amount, sender.Hex(), creditTo.Hex(), epoch)
	return nil
}

// allocation spreads the whole epoch stake evenly over the epoch length.
func (l *Ledger) allocation(stake *model.Stake) *big.Int {
	total := new(big.Int).Add(stake.UncommittedBalance, stake.CommittedAttempt)
	return total.Div(total, new(big.Int).SetUint64(l.cfg.EpochLength))
}

func (l *Ledger) getOrCreateAccount(ctx context.Context, tx *gorm.DB, address common.Address, epoch uint64) (*do.AccountInfo, *model.Account, error) {
	info, err := l.accountInfoDao.GetByAddress(ctx, tx, address.Hex())
	if err != nil {
		return nil, nil, err
	}
	if info == nil {
		account := &model.Account{
			Address:              address,
			EpochIndex:           epoch,
			RedeemedThroughEpoch: -1,
		}
		info = model.ConvertAccountToDO(account)
		_, err = l.accountInfoDao.Create(ctx, tx, info)
		if err != nil {
			return nil, nil, err
		}
		log.Debugf("New account %v", address.Hex())
	}
	account, err := model.ConvertDOToAccount(info)
	if err != nil {
		return nil, nil, err
	}
	return info, account, nil
}
