package ledger

import (
	"context"

	"github.com/abesuite/gaopool/errcode"
	"github.com/abesuite/gaopool/model"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

type ClaimResult struct {
	Window uint64 `json:"window"`
	Epoch  uint64 `json:"epoch"`
	Won    bool   `json:"won"`
}

// Claim resolves an attempted window once a later window has started.  A
// won window credits one block reward to the epoch, a lost one is only
// marked resolved.  creditTo is logged but has no accounting effect, the
// reward always goes to the pool address.
func (l *Ledger) Claim(ctx context.Context, window uint64, creditTo common.Address) (*ClaimResult, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	height, err := l.currentHeight(ctx)
	if err != nil {
		return nil, err
	}
	if !l.clock.IsMature(window, l.clock.WindowOf(height)) {
		return nil, errcode.ErrNotMature.WithDescription("window %v not mature at height %v", window, height)
	}
	if _, ok := l.resolved.Get(window); ok {
		return nil, errcode.ErrAlreadyClaimed.WithDescription("window %v already claimed", window)
	}

	res := &ClaimResult{
		Window: window,
		Epoch:  l.clock.EpochOf(window),
	}
	err = l.transaction(ctx, func(tx *gorm.DB) error {
		cfg, err := l.poolConfigService.Get(ctx, tx)
		if err != nil {
			return err
		}

		state, err := l.windowStateInfoDao.GetByWindow(ctx, tx, int64(window))
		if err != nil {
			return err
		}
		if state == nil || state.Attempted != 1 {
			return errcode.ErrNotAttempted.WithDescription("window %v not attempted", window)
		}
		if state.Claimed == 1 {
			return errcode.ErrAlreadyClaimed.WithDescription("window %v already claimed", window)
		}

		won, err := l.source.CheckWinning(ctx, window)
		if err != nil {
			return errcode.ExternalCall("check winning", err)
		}

		record, recordInfo, err := l.getOrCreateEpochRecord(ctx, tx, res.Epoch)
		if err != nil {
			return err
		}
		state.Claimed = 1
		record.ResolvedWindows++
		if won {
			state.Won = 1
			record.ClaimedWindows++
			record.TotalClaimed.Add(record.TotalClaimed, l.cfg.BlockReward)
		}
		_, err = l.windowStateInfoDao.Update(ctx, tx, state)
		if err != nil {
			return err
		}
		err = l.saveEpochRecord(ctx, tx, recordInfo, record)
		if err != nil {
			return err
		}

		if won {
			err = l.source.Claim(ctx, window, cfg.PoolAddress)
			if err != nil {
				return errcode.ExternalCall("claim reward", err)
			}
		}
		res.Won = won
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.resolved.Add(window, res.Won)
	if res.Won {
		log.Infof("Window %v won, %v credited to epoch %v (requested by %v)", window, l.cfg.BlockReward, res.Epoch, creditTo.Hex())
	} else {
		log.Infof("Window %v missed (requested by %v)", window, creditTo.Hex())
	}
	return res, nil
}

// WindowState returns the state of window, an empty state if it was never
// attempted.
func (l *Ledger) WindowState(ctx context.Context, window uint64) (*model.WindowState, error) {
	info, err := l.windowStateInfoDao.GetByWindow(ctx, l.db.WithContext(ctx), int64(window))
	if err != nil {
		return nil, err
	}
	if info == nil {
		return &model.WindowState{Window: window, Epoch: l.clock.EpochOf(window)}, nil
	}
	return model.ConvertDOToWindowState(info)
}

// PendingWindows returns up to num attempted windows before window that are
// not resolved yet, oldest first.
func (l *Ledger) PendingWindows(ctx context.Context, window uint64, num int) ([]uint64, error) {
	infos, err := l.windowStateInfoDao.GetUnclaimedBefore(ctx, l.db.WithContext(ctx), int64(window), num)
	if err != nil {
		return nil, err
	}
	res := make([]uint64, 0, len(infos))
	for _, info := range infos {
		res = append(res, uint64(info.WindowIndex))
	}
	return res, nil
}
