package ledger

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/abesuite/gaopool/constdef"
	"github.com/abesuite/gaopool/dal/dao"
	"github.com/abesuite/gaopool/dal/do"
	"github.com/abesuite/gaopool/errcode"
	"github.com/abesuite/gaopool/model"
	"github.com/abesuite/gaopool/rewardsource"
	"github.com/abesuite/gaopool/service"
	"github.com/abesuite/gaopool/utils"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
	"gorm.io/gorm"
)

// Config holds the fixed parameters of a ledger.  Owner controlled settings
// live in the pool config table, Defaults only seeds it on first start.
type Config struct {
	WindowSize      uint64
	EpochLength     uint64
	MinContribution *big.Int
	BlockReward     *big.Int

	Defaults *model.PoolConfig

	// QuietEmptyRedeem turns a redemption with nothing to pay into a
	// successful no-op instead of ErrNothingToRedeem.
	QuietEmptyRedeem bool

	ResolvedCacheSize int

	// SourceFactory opens the reward source when the owner moves the pool
	// to another reward source address.
	SourceFactory rewardsource.Factory
}

// Ledger is the pooled mining reward state machine.  Every mutating
// operation runs under mtx and inside one database transaction, and the
// external call it makes, if any, is the last step of that transaction.
type Ledger struct {
	db    *gorm.DB
	cfg   Config
	clock *utils.WindowClock

	mtx    sync.Mutex
	source rewardsource.RewardSource
	token  rewardsource.RewardToken

	// resolved caches claimed windows, window -> won.
	resolved *lru.Cache

	accountInfoDao     dao.AccountInfoDAO
	stakeInfoDao       dao.StakeInfoDAO
	epochRecordInfoDao dao.EpochRecordInfoDAO
	windowStateInfoDao dao.WindowStateInfoDAO
	poolConfigService  service.PoolConfigService
	historyService     service.HistoryService
}

func New(ctx context.Context, db *gorm.DB, cfg Config, source rewardsource.RewardSource, token rewardsource.RewardToken) (*Ledger, error) {
	if db == nil {
		return nil, errcode.ErrNilGormDB
	}
	if source == nil || token == nil {
		return nil, errors.New("nil reward source or token")
	}
	if cfg.WindowSize == 0 || cfg.EpochLength == 0 {
		return nil, errors.New("window size and epoch length should be positive")
	}
	if cfg.BlockReward == nil || cfg.BlockReward.Sign() <= 0 {
		return nil, errors.New("block reward should be positive")
	}
	cfg.MinContribution = model.CopyAmount(cfg.MinContribution)
	if cfg.ResolvedCacheSize <= 0 {
		cfg.ResolvedCacheSize = constdef.DefaultResolvedCacheSize
	}
	if cfg.Defaults == nil {
		cfg.Defaults = &model.PoolConfig{}
	}
	if cfg.Defaults.FeePercentage > constdef.MaxPercentage || cfg.Defaults.FeeBankPercentage > constdef.MaxPercentage {
		return nil, errcode.ErrInvalidPercentage
	}

	resolved, err := lru.New(cfg.ResolvedCacheSize)
	if err != nil {
		return nil, err
	}

	l := &Ledger{
		db:                 db,
		cfg:                cfg,
		clock:              utils.NewWindowClock(cfg.WindowSize, cfg.EpochLength),
		source:             source,
		token:              token,
		resolved:           resolved,
		accountInfoDao:     dao.GetAccountInfoDAOImpl(),
		stakeInfoDao:       dao.GetStakeInfoDAOImpl(),
		epochRecordInfoDao: dao.GetEpochRecordInfoDAOImpl(),
		windowStateInfoDao: dao.GetWindowStateInfoDAOImpl(),
		poolConfigService:  service.GetPoolConfigService(),
		historyService:     service.GetHistoryService(),
	}

	poolCfg, err := l.poolConfigService.GetOrCreate(ctx, db.WithContext(ctx), cfg.Defaults)
	if err != nil {
		return nil, err
	}
	log.Infof("Ledger ready: window size %v, epoch length %v, minimum contribution %v, owner %v, pool address %v",
		cfg.WindowSize, cfg.EpochLength, cfg.MinContribution, poolCfg.Owner.Hex(), poolCfg.PoolAddress.Hex())
	return l, nil
}

func (l *Ledger) WindowSize() uint64 {
	return l.cfg.WindowSize
}

func (l *Ledger) EpochLength() uint64 {
	return l.cfg.EpochLength
}

func (l *Ledger) MinContribution() *big.Int {
	return new(big.Int).Set(l.cfg.MinContribution)
}

func (l *Ledger) BlockReward() *big.Int {
	return new(big.Int).Set(l.cfg.BlockReward)
}

func (l *Ledger) Clock() *utils.WindowClock {
	return l.clock
}

// RewardSource returns the reward source currently in use.
func (l *Ledger) RewardSource() rewardsource.RewardSource {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return l.source
}

// currentHeight must be called with the lock held.
func (l *Ledger) currentHeight(ctx context.Context) (uint64, error) {
	height, err := l.source.CurrentHeight(ctx)
	if err != nil {
		return 0, errcode.ExternalCall("query current height", err)
	}
	return height, nil
}

// CurrentWindow returns the window of the current external height.
func (l *Ledger) CurrentWindow(ctx context.Context) (uint64, error) {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	height, err := l.currentHeight(ctx)
	if err != nil {
		return 0, err
	}
	return l.clock.WindowOf(height), nil
}

func (l *Ledger) transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return l.db.WithContext(ctx).Transaction(fn)
}

// getOrCreateEpochRecord returns the record of epoch and its data object,
// creating an empty one on first write.
func (l *Ledger) getOrCreateEpochRecord(ctx context.Context, tx *gorm.DB, epoch uint64) (*model.EpochRecord, *do.EpochRecordInfo, error) {
	info, err := l.epochRecordInfoDao.GetByEpoch(ctx, tx, int64(epoch))
	if err != nil {
		return nil, nil, err
	}
	if info == nil {
		info = model.ConvertEpochRecordToDO(model.NewEpochRecord(epoch))
		_, err = l.epochRecordInfoDao.Create(ctx, tx, info)
		if err != nil {
			return nil, nil, err
		}
	}
	record, err := model.ConvertDOToEpochRecord(info)
	if err != nil {
		return nil, nil, err
	}
	return record, info, nil
}

func (l *Ledger) saveEpochRecord(ctx context.Context, tx *gorm.DB, info *do.EpochRecordInfo, record *model.EpochRecord) error {
	model.FillEpochRecordDO(info, record)
	_, err := l.epochRecordInfoDao.Update(ctx, tx, info)
	return err
}

func (l *Ledger) checkOwner(cfg *model.PoolConfig, caller common.Address) error {
	if cfg.Owner != caller {
		return errcode.ErrNotOwner.WithDescription("caller %v is not the pool owner", caller.Hex())
	}
	return nil
}
