package dao

import (
	"context"
	"errors"

	"github.com/abesuite/gaopool/dal/do"
	"github.com/abesuite/gaopool/errcode"

	"gorm.io/gorm"
)

type RedemptionInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.RedemptionInfo) (int64, error)
	GetByAddress(ctx context.Context, tx *gorm.DB, address string, page int, num int, positiveOrder bool) ([]*do.RedemptionInfo, error)
	GetNumByAddress(ctx context.Context, tx *gorm.DB, address string) (int64, error)
}

type RedemptionInfoDAOImpl struct{}

var redemptionInfoDAO RedemptionInfoDAO = &RedemptionInfoDAOImpl{}

func GetRedemptionInfoDAOImpl() RedemptionInfoDAO {
	return redemptionInfoDAO
}

func (r *RedemptionInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.RedemptionInfo) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	if info == nil {
		return 0, errors.New("fail to create redemption info: nil redemption info")
	}

	query := tx.Create(info)
	return query.RowsAffected, query.Error
}

func (r *RedemptionInfoDAOImpl) GetByAddress(ctx context.Context, tx *gorm.DB, address string, page int, num int, positiveOrder bool) ([]*do.RedemptionInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}
	if page <= 0 || num <= 0 {
		return nil, errors.New("page and num should be positive")
	}

	res := make([]*do.RedemptionInfo, 0)
	offset := (page - 1) * num
	query := tx.Model(&do.RedemptionInfo{}).Where("address = ?", address)
	if !positiveOrder {
		query = query.Order("id desc")
	}
	query = query.Offset(offset).Limit(num).Find(&res)
	if query.Error != nil {
		return nil, query.Error
	}
	return res, nil
}

func (r *RedemptionInfoDAOImpl) GetNumByAddress(ctx context.Context, tx *gorm.DB, address string) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	var res int64
	query := tx.Model(&do.RedemptionInfo{}).Where("address = ?", address).Count(&res)
	return res, query.Error
}
