package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/abesuite/gaopool/dal/do"
	"github.com/abesuite/gaopool/errcode"

	"gorm.io/gorm"
)

type StakeInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.StakeInfo) (int64, error)
	Get(ctx context.Context, tx *gorm.DB, address string, epoch int64) (*do.StakeInfo, error)
	GetByEpoch(ctx context.Context, tx *gorm.DB, epoch int64) ([]*do.StakeInfo, error)
	GetByAddressBetweenEpoch(ctx context.Context, tx *gorm.DB, address string, startEpoch int64, endEpoch int64) ([]*do.StakeInfo, error)
	Update(ctx context.Context, tx *gorm.DB, info *do.StakeInfo) (int64, error)
	GetNumByEpoch(ctx context.Context, tx *gorm.DB, epoch int64) (int64, error)
}

type StakeInfoDAOImpl struct{}

var stakeInfoDAO StakeInfoDAO = &StakeInfoDAOImpl{}

func GetStakeInfoDAOImpl() StakeInfoDAO {
	return stakeInfoDAO
}

func (s *StakeInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.StakeInfo) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	if info == nil {
		return 0, errors.New("fail to create stake info: nil stake info")
	}

	query := tx.Create(info)
	return query.RowsAffected, query.Error
}

func (s *StakeInfoDAOImpl) Get(ctx context.Context, tx *gorm.DB, address string, epoch int64) (*do.StakeInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	info := do.StakeInfo{}
	query := tx.Model(&do.StakeInfo{}).Where("address = ? AND epoch = ?", address, epoch).Take(&info)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, query.Error
	}
	return &info, nil
}

// GetByEpoch returns all stakes of the epoch in insertion order.
func (s *StakeInfoDAOImpl) GetByEpoch(ctx context.Context, tx *gorm.DB, epoch int64) ([]*do.StakeInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := make([]*do.StakeInfo, 0)
	query := tx.Model(&do.StakeInfo{}).Where("epoch = ?", epoch).Order("id").Find(&res)
	if query.Error != nil {
		return nil, query.Error
	}
	return res, nil
}

// GetByAddressBetweenEpoch returns the stakes of address with epoch in
// [startEpoch, endEpoch], ordered by epoch.
func (s *StakeInfoDAOImpl) GetByAddressBetweenEpoch(ctx context.Context, tx *gorm.DB, address string, startEpoch int64, endEpoch int64) ([]*do.StakeInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := make([]*do.StakeInfo, 0)
	if startEpoch > endEpoch {
		return res, nil
	}
	query := tx.Model(&do.StakeInfo{}).Where("address = ? AND epoch >= ? AND epoch <= ?", address, startEpoch, endEpoch).
		Order("epoch").Find(&res)
	if query.Error != nil {
		return nil, query.Error
	}
	return res, nil
}

func (s *StakeInfoDAOImpl) Update(ctx context.Context, tx *gorm.DB, info *do.StakeInfo) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	if info == nil || info.ID == 0 {
		return 0, errors.New("fail to update stake info: nil or unsaved stake info")
	}

	query := tx.Save(info)
	if query.Error != nil {
		return 0, fmt.Errorf("fail to update stake info: %v", query.Error)
	}
	return query.RowsAffected, nil
}

func (s *StakeInfoDAOImpl) GetNumByEpoch(ctx context.Context, tx *gorm.DB, epoch int64) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	var res int64
	query := tx.Model(&do.StakeInfo{}).Where("epoch = ?", epoch).Count(&res)
	return res, query.Error
}
