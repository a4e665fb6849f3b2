package ledger

import (
	"context"
	"errors"
	"math/big"

	"github.com/abesuite/gaopool/constdef"
	"github.com/abesuite/gaopool/errcode"
	"github.com/abesuite/gaopool/model"
	"github.com/abesuite/gaopool/rewardsource"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

func (l *Ledger) PoolConfig(ctx context.Context) (*model.PoolConfig, error) {
	return l.poolConfigService.Get(ctx, l.db.WithContext(ctx))
}

// updateConfig applies fn to the pool config on behalf of caller, who must
// be the owner.
func (l *Ledger) updateConfig(ctx context.Context, caller common.Address, fn func(cfg *model.PoolConfig) error) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	return l.updateConfigLocked(ctx, caller, fn)
}

func (l *Ledger) updateConfigLocked(ctx context.Context, caller common.Address, fn func(cfg *model.PoolConfig) error) error {
	return l.transaction(ctx, func(tx *gorm.DB) error {
		cfg, err := l.poolConfigService.Get(ctx, tx)
		if err != nil {
			return err
		}
		err = l.checkOwner(cfg, caller)
		if err != nil {
			return err
		}
		err = fn(cfg)
		if err != nil {
			return err
		}
		return l.poolConfigService.Update(ctx, tx, cfg)
	})
}

func (l *Ledger) SetFeePercentage(ctx context.Context, caller common.Address, percentage uint64) error {
	if percentage > constdef.MaxPercentage {
		return errcode.ErrInvalidPercentage
	}
	err := l.updateConfig(ctx, caller, func(cfg *model.PoolConfig) error {
		cfg.FeePercentage = percentage
		return nil
	})
	if err != nil {
		return err
	}
	log.Infof("Fee percentage set to %v", percentage)
	return nil
}

func (l *Ledger) SetPaused(ctx context.Context, caller common.Address, paused bool) error {
	err := l.updateConfig(ctx, caller, func(cfg *model.PoolConfig) error {
		cfg.Paused = paused
		return nil
	})
	if err != nil {
		return err
	}
	log.Infof("Pool paused: %v", paused)
	return nil
}

// SetMaxContribution sets the per epoch stake cap, zero removes it.
func (l *Ledger) SetMaxContribution(ctx context.Context, caller common.Address, max *big.Int) error {
	if max == nil || max.Sign() < 0 {
		return errcode.ErrInvalidAmount.WithDescription("invalid max contribution %v", max)
	}
	err := l.updateConfig(ctx, caller, func(cfg *model.PoolConfig) error {
		cfg.MaxContribution = new(big.Int).Set(max)
		return nil
	})
	if err != nil {
		return err
	}
	log.Infof("Max contribution set to %v", max)
	return nil
}

// SetFeeBank routes percentage percent of every fee to bank.  A zero
// address disables the fee bank.
func (l *Ledger) SetFeeBank(ctx context.Context, caller common.Address, bank common.Address, percentage uint64) error {
	if percentage > constdef.MaxPercentage {
		return errcode.ErrInvalidPercentage
	}
	err := l.updateConfig(ctx, caller, func(cfg *model.PoolConfig) error {
		cfg.FeeBankAddress = bank
		cfg.FeeBankPercentage = percentage
		return nil
	})
	if err != nil {
		return err
	}
	log.Infof("Fee bank set to %v with %v%% of the fee", bank.Hex(), percentage)
	return nil
}

// SetRewardSourceAddress switches the ledger to the reward source at addr.
func (l *Ledger) SetRewardSourceAddress(ctx context.Context, caller common.Address, addr common.Address) error {
	if addr == (common.Address{}) {
		return errcode.ErrInvalidAddress.WithDescription("empty reward source address")
	}
	if l.cfg.SourceFactory == nil {
		return errors.New("reward source can not be changed: no source factory")
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	var source rewardsource.RewardSource
	var token rewardsource.RewardToken
	err := l.updateConfigLocked(ctx, caller, func(cfg *model.PoolConfig) error {
		var err error
		source, token, err = l.cfg.SourceFactory(addr)
		if err != nil {
			return errcode.ExternalCall("open reward source", err)
		}
		cfg.RewardSourceAddress = addr
		return nil
	})
	if err != nil {
		return err
	}
	l.source = source
	l.token = token
	l.resolved.Purge()
	log.Infof("Reward source set to %v", addr.Hex())
	return nil
}

func (l *Ledger) TransferOwnership(ctx context.Context, caller common.Address, newOwner common.Address) error {
	if newOwner == (common.Address{}) {
		return errcode.ErrInvalidAddress.WithDescription("empty owner address")
	}
	err := l.updateConfig(ctx, caller, func(cfg *model.PoolConfig) error {
		cfg.Owner = newOwner
		return nil
	})
	if err != nil {
		return err
	}
	log.Infof("Ownership transferred from %v to %v", caller.Hex(), newOwner.Hex())
	return nil
}
