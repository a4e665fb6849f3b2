package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/abesuite/gaopool/dal/do"
	"github.com/abesuite/gaopool/errcode"

	"gorm.io/gorm"
)

type PoolConfigInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.PoolConfigInfo) (int64, error)
	Get(ctx context.Context, tx *gorm.DB) (*do.PoolConfigInfo, error)
	Update(ctx context.Context, tx *gorm.DB, info *do.PoolConfigInfo) (int64, error)
}

type PoolConfigInfoDAOImpl struct{}

var poolConfigInfoDAO PoolConfigInfoDAO = &PoolConfigInfoDAOImpl{}

func GetPoolConfigInfoDAOImpl() PoolConfigInfoDAO {
	return poolConfigInfoDAO
}

func (p *PoolConfigInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.PoolConfigInfo) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	if info == nil {
		return 0, errors.New("fail to create pool config info: nil pool config info")
	}

	info.ID = 1

	query := tx.Create(info)
	if query.Error != nil {
		return 0, query.Error
	}
	return query.RowsAffected, nil
}

// Get returns nil without error when the pool has not been configured yet.
func (p *PoolConfigInfoDAOImpl) Get(ctx context.Context, tx *gorm.DB) (*do.PoolConfigInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	info := do.PoolConfigInfo{}
	query := tx.Model(&do.PoolConfigInfo{}).Where("id = ?", 1).Take(&info)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, query.Error
	}
	return &info, nil
}

func (p *PoolConfigInfoDAOImpl) Update(ctx context.Context, tx *gorm.DB, info *do.PoolConfigInfo) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	if info == nil {
		return 0, errors.New("fail to update pool config info: nil pool config info")
	}
	info.ID = 1
	query := tx.Save(info)
	if query.Error != nil {
		return 0, fmt.Errorf("fail to update pool config info: %v", query.Error)
	}
	return query.RowsAffected, nil
}
