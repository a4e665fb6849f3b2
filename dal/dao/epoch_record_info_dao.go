package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/abesuite/gaopool/dal/do"
	"github.com/abesuite/gaopool/errcode"

	"gorm.io/gorm"
)

type EpochRecordInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.EpochRecordInfo) (int64, error)
	GetByEpoch(ctx context.Context, tx *gorm.DB, epoch int64) (*do.EpochRecordInfo, error)
	Update(ctx context.Context, tx *gorm.DB, info *do.EpochRecordInfo) (int64, error)
	GetLatestEpoch(ctx context.Context, tx *gorm.DB) (int64, error)
}

type EpochRecordInfoDAOImpl struct{}

var epochRecordInfoDAO EpochRecordInfoDAO = &EpochRecordInfoDAOImpl{}

func GetEpochRecordInfoDAOImpl() EpochRecordInfoDAO {
	return epochRecordInfoDAO
}

func (e *EpochRecordInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.EpochRecordInfo) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	if info == nil {
		return 0, errors.New("fail to create epoch record info: nil epoch record info")
	}

	query := tx.Create(info)
	return query.RowsAffected, query.Error
}

func (e *EpochRecordInfoDAOImpl) GetByEpoch(ctx context.Context, tx *gorm.DB, epoch int64) (*do.EpochRecordInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	info := do.EpochRecordInfo{}
	query := tx.Model(&do.EpochRecordInfo{}).Where("epoch = ?", epoch).Take(&info)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, query.Error
	}
	return &info, nil
}

func (e *EpochRecordInfoDAOImpl) Update(ctx context.Context, tx *gorm.DB, info *do.EpochRecordInfo) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	if info == nil || info.ID == 0 {
		return 0, errors.New("fail to update epoch record info: nil or unsaved epoch record info")
	}

	query := tx.Save(info)
	if query.Error != nil {
		return 0, fmt.Errorf("fail to update epoch record info: %v", query.Error)
	}
	return query.RowsAffected, nil
}

// GetLatestEpoch returns -1 when no epoch has been recorded.
func (e *EpochRecordInfoDAOImpl) GetLatestEpoch(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	type MaxStruct struct {
		MaxValue *int64
	}
	var result MaxStruct
	err := tx.Model(&do.EpochRecordInfo{}).Select("MAX(epoch) AS max_value").Scan(&result).Error
	if err != nil {
		return 0, err
	}
	if result.MaxValue == nil {
		return -1, nil
	}
	return *result.MaxValue, nil
}
