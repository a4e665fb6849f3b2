package ledger

import (
	"context"
	"math/big"

	"github.com/abesuite/gaopool/errcode"
	"github.com/abesuite/gaopool/model"
	"github.com/abesuite/gaopool/rewardsource"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

// Redeem settles every closed and fully resolved epoch of address and pays
// the settled amount out of the pool address: the net to address, the fee
// split between the fee bank and the owner.  The transfer is the last step,
// if it fails nothing is settled.
//
// Rewards of the open epoch stay locked until the epoch is over.  With
// nothing to pay Redeem fails with ErrNothingToRedeem, or returns nil when
// the ledger is configured with QuietEmptyRedeem.
func (l *Ledger) Redeem(ctx context.Context, address common.Address) (*model.Redemption, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	height, err := l.currentHeight(ctx)
	if err != nil {
		return nil, err
	}
	epoch := l.clock.EpochOfHeight(height)

	var res *model.Redemption
	err = l.transaction(ctx, func(tx *gorm.DB) error {
		cfg, err := l.poolConfigService.Get(ctx, tx)
		if err != nil {
			return err
		}

		accountInfo, err := l.accountInfoDao.GetByAddress(ctx, tx, address.Hex())
		if err != nil {
			return err
		}
		if accountInfo == nil {
			if l.cfg.QuietEmptyRedeem {
				return nil
			}
			return errcode.ErrNothingToRedeem.WithDescription("%v has never contributed", address.Hex())
		}
		account, err := model.ConvertDOToAccount(accountInfo)
		if err != nil {
			return err
		}
		err = l.settle(ctx, tx, account, epoch, cfg.FeePercentage)
		if err != nil {
			return err
		}

		gross := new(big.Int).Add(account.PendingNet, account.PendingFee)
		if gross.Sign() == 0 {
			if !l.cfg.QuietEmptyRedeem {
				return errcode.ErrNothingToRedeem
			}
			model.FillAccountDO(accountInfo, account)
			_, err = l.accountInfoDao.Update(ctx, tx, accountInfo)
			return err
		}

		net := new(big.Int).Set(account.PendingNet)
		fee := new(big.Int).Set(account.PendingFee)
		bankAmount := new(big.Int)
		if cfg.HasFeeBank() {
			bankAmount.Mul(fee, new(big.Int).SetUint64(cfg.FeeBankPercentage))
			bankAmount.Div(bankAmount, big.NewInt(100))
		}
		ownerAmount := new(big.Int).Sub(fee, bankAmount)

		payouts := make([]rewardsource.Payout, 0, 3)
		for _, payout := range []rewardsource.Payout{
			{To: address, Amount: net},
			{To: cfg.FeeBankAddress, Amount: bankAmount},
			{To: cfg.Owner, Amount: ownerAmount},
		} {
			if payout.Amount.Sign() > 0 {
				payouts = append(payouts, payout)
			}
		}

		res = &model.Redemption{
			Address:       address,
			Gross:         gross,
			Fee:           fee,
			FeeBankAmount: bankAmount,
			Net:           net,
			ThroughEpoch:  account.RedeemedThroughEpoch,
			Height:        height,
		}
		err = l.historyService.AddRedemption(ctx, tx, res)
		if err != nil {
			return err
		}

		account.PendingNet = new(big.Int)
		account.PendingFee = new(big.Int)
		account.RedeemedTotal = new(big.Int).Add(account.RedeemedTotal, net)
		model.FillAccountDO(accountInfo, account)
		_, err = l.accountInfoDao.Update(ctx, tx, accountInfo)
		if err != nil {
			return err
		}

		err = l.token.Transfer(ctx, cfg.PoolAddress, payouts...)
		if err != nil {
			return errcode.ExternalCall("transfer reward", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res == nil {
		log.Debugf("Nothing to redeem for %v", address.Hex())
		return nil, nil
	}
	log.Infof("Redeemed %v for %v through epoch %v: net %v, fee %v (fee bank %v)", res.Gross, address.Hex(),
		res.ThroughEpoch, res.Net, res.Fee, res.FeeBankAmount)
	return res, nil
}
