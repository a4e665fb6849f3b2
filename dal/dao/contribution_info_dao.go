package dao

import (
	"context"
	"errors"

	"github.com/abesuite/gaopool/dal/do"
	"github.com/abesuite/gaopool/errcode"

	"gorm.io/gorm"
)

type ContributionInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.ContributionInfo) (int64, error)
	GetByCreditTo(ctx context.Context, tx *gorm.DB, creditTo string, page int, num int, positiveOrder bool) ([]*do.ContributionInfo, error)
	GetNumByCreditTo(ctx context.Context, tx *gorm.DB, creditTo string) (int64, error)
}

type ContributionInfoDAOImpl struct{}

var contributionInfoDAO ContributionInfoDAO = &ContributionInfoDAOImpl{}

func GetContributionInfoDAOImpl() ContributionInfoDAO {
	return contributionInfoDAO
}

func (c *ContributionInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.ContributionInfo) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	if info == nil {
		return 0, errors.New("fail to create contribution info: nil contribution info")
	}

	query := tx.Create(info)
	return query.RowsAffected, query.Error
}

// GetByCreditTo pages through the contributions credited to an address.
// Page starts from 1.
func (c *ContributionInfoDAOImpl) GetByCreditTo(ctx context.Context, tx *gorm.DB, creditTo string, page int, num int, positiveOrder bool) ([]*do.ContributionInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}
	if page <= 0 || num <= 0 {
		return nil, errors.New("page and num should be positive")
	}

	res := make([]*do.ContributionInfo, 0)
	offset := (page - 1) * num
	query := tx.Model(&do.ContributionInfo{}).Where("credit_to = ?", creditTo)
	if !positiveOrder {
		query = query.Order("id desc")
	}
	query = query.Offset(offset).Limit(num).Find(&res)
	if query.Error != nil {
		return nil, query.Error
	}
	return res, nil
}

func (c *ContributionInfoDAOImpl) GetNumByCreditTo(ctx context.Context, tx *gorm.DB, creditTo string) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	var res int64
	query := tx.Model(&do.ContributionInfo{}).Where("credit_to = ?", creditTo).Count(&res)
	return res, query.Error
}
