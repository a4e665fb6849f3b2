package ledger

import (
	"context"
	"math/big"

	"github.com/abesuite/gaopool/errcode"
	"github.com/abesuite/gaopool/model"

	"gorm.io/gorm"
)

type MineResult struct {
	Window uint64 `json:"window"`
	Epoch  uint64 `json:"epoch"`
	// Attempted is false when there was no stake to submit.
	Attempted    bool     `json:"attempted"`
	Total        *big.Int `json:"total"`
	Participants int      `json:"participants"`
}

// Mine submits one aggregated attempt for the window of the current height.
// Each stake of the epoch commits its per window allocation.  Mining
// without any stake succeeds without submitting anything.
func (l *Ledger) Mine(ctx context.Context) (*MineResult, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	height, err := l.currentHeight(ctx)
	if err != nil {
		return nil, err
	}
	window := l.clock.WindowOf(height)
	epoch := l.clock.EpochOf(window)
	res := &MineResult{
		Window: window,
		Epoch:  epoch,
		Total:  new(big.Int),
	}

	err = l.transaction(ctx, func(tx *gorm.DB) error {
		cfg, err := l.poolConfigService.Get(ctx, tx)
		if err != nil {
			return err
		}
		if cfg.Paused {
			return errcode.ErrPoolPaused
		}

		state, err := l.windowStateInfoDao.GetByWindow(ctx, tx, int64(window))
		if err != nil {
			return err
		}
		if state != nil && state.Attempted == 1 {
			return errcode.ErrAlreadyAttempted.WithDescription("window %v already attempted", window)
		}

		stakeInfos, err := l.stakeInfoDao.GetByEpoch(ctx, tx, int64(epoch))
		if err != nil {
			return err
		}
		total := new(big.Int)
		stakes := make([]*model.Stake, len(stakeInfos))
		portions := make([]*big.Int, len(stakeInfos))
		for i, stakeInfo := range stakeInfos {
			stake, err := model.ConvertDOToStake(stakeInfo)
			if err != nil {
				return err
			}
			portion := new(big.Int).Set(stake.PerWindowAllocation)
			if portion.Cmp(stake.UncommittedBalance) > 0 {
				portion.Set(stake.UncommittedBalance)
			}
			stakes[i] = stake
			portions[i] = portion
			total.Add(total, portion)
		}
		if total.Sign() == 0 {
			return nil
		}

		if state == nil {
			state = model.ConvertWindowStateToDO(&model.WindowState{Window: window, Epoch: epoch})
			state.Attempted = 1
			state.AttemptValue = model.FormatAmount(total)
			_, err = l.windowStateInfoDao.Create(ctx, tx, state)
		} else {
			state.Attempted = 1
			state.AttemptValue = model.FormatAmount(total)
			_, err = l.windowStateInfoDao.Update(ctx, tx, state)
		}
		if err != nil {
			return err
		}

		record, recordInfo, err := l.getOrCreateEpochRecord(ctx, tx, epoch)
		if err != nil {
			return err
		}
		if record.MinedWindows == 0 {
			record.Unit.Set(total)
		}
		record.MinedWindows++
		record.TotalAttempt.Add(record.TotalAttempt, total)
		err = l.saveEpochRecord(ctx, tx, recordInfo, record)
		if err != nil {
			return err
		}

		participants := 0
		for i, stake := range stakes {
			if portions[i].Sign() == 0 {
				continue
			}
			participants++
			stake.CommittedAttempt.Add(stake.CommittedAttempt, portions[i])
			stake.UncommittedBalance.Sub(stake.UncommittedBalance, portions[i])
			model.FillStakeDO(stakeInfos[i], stake)
			_, err = l.stakeInfoDao.Update(ctx, tx, stakeInfos[i])
			if err != nil {
				return err
			}
		}

		err = l.source.SubmitAttempt(ctx, cfg.PoolAddress, window, total)
		if err != nil {
			return errcode.ExternalCall("submit attempt", err)
		}

		res.Attempted = true
		res.Total = total
		res.Participants = participants
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Attempted {
		log.Infof("Window %v (epoch %v) attempted with %v from %v participants", window, epoch, res.Total, res.Participants)
	} else {
		log.Debugf("Window %v (epoch %v) has no stake, nothing to attempt", window, epoch)
	}
	return res, nil
}
