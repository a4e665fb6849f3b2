package service

import (
	"context"
	"errors"

	"github.com/abesuite/gaopool/dal/dao"
	"github.com/abesuite/gaopool/model"

	"gorm.io/gorm"
)

type PoolConfigService interface {
	Get(ctx context.Context, tx *gorm.DB) (*model.PoolConfig, error)
	GetOrCreate(ctx context.Context, tx *gorm.DB, defaults *model.PoolConfig) (*model.PoolConfig, error)
	Update(ctx context.Context, tx *gorm.DB, cfg *model.PoolConfig) error
}

type PoolConfigServiceImpl struct {
	poolConfigInfoDao dao.PoolConfigInfoDAO
}

var poolConfigService PoolConfigService = &PoolConfigServiceImpl{
	poolConfigInfoDao: dao.GetPoolConfigInfoDAOImpl(),
}

func GetPoolConfigService() PoolConfigService {
	return poolConfigService
}

// Get returns an error if the pool has not been configured.
func (p *PoolConfigServiceImpl) Get(ctx context.Context, tx *gorm.DB) (*model.PoolConfig, error) {
	info, err := p.poolConfigInfoDao.Get(ctx, tx)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, errors.New("pool config not initialized")
	}
	return model.ConvertDOToPoolConfig(info)
}

// GetOrCreate stores defaults the first time the pool starts and returns
// the stored config afterwards, ignoring defaults.
func (p *PoolConfigServiceImpl) GetOrCreate(ctx context.Context, tx *gorm.DB, defaults *model.PoolConfig) (*model.PoolConfig, error) {
	info, err := p.poolConfigInfoDao.Get(ctx, tx)
	if err != nil {
		return nil, err
	}
	if info != nil {
		return model.ConvertDOToPoolConfig(info)
	}
	if defaults == nil {
		return nil, errors.New("fail to create pool config: nil defaults")
	}

	log.Infof("Initializing pool config, owner %v, pool address %v", defaults.Owner.Hex(), defaults.PoolAddress.Hex())
	_, err = p.poolConfigInfoDao.Create(ctx, tx, model.ConvertPoolConfigToDO(defaults))
	if err != nil {
		return nil, err
	}
	res := *defaults
	res.MaxContribution = model.CopyAmount(defaults.MaxContribution)
	return &res, nil
}

func (p *PoolConfigServiceImpl) Update(ctx context.Context, tx *gorm.DB, cfg *model.PoolConfig) error {
	if cfg == nil {
		return errors.New("fail to update pool config: nil pool config")
	}
	info, err := p.poolConfigInfoDao.Get(ctx, tx)
	if err != nil {
		return err
	}
	if info == nil {
		return errors.New("pool config not initialized")
	}
	model.FillPoolConfigDO(info, cfg)
	_, err = p.poolConfigInfoDao.Update(ctx, tx, info)
	return err
}
