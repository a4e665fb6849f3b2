package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/abesuite/gaopool/dal/do"
	"github.com/abesuite/gaopool/errcode"

	"gorm.io/gorm"
)

type AccountInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.AccountInfo) (int64, error)
	GetByAddress(ctx context.Context, tx *gorm.DB, address string) (*do.AccountInfo, error)
	Update(ctx context.Context, tx *gorm.DB, info *do.AccountInfo) (int64, error)
	GetNum(ctx context.Context, tx *gorm.DB) (int64, error)
}

type AccountInfoDAOImpl struct{}

var accountInfoDAO AccountInfoDAO = &AccountInfoDAOImpl{}

func GetAccountInfoDAOImpl() AccountInfoDAO {
	return accountInfoDAO
}

func (a *AccountInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.AccountInfo) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	if info == nil {
		return 0, errors.New("fail to create account info: nil account info")
	}

	query := tx.Create(info)
	return query.RowsAffected, query.Error
}

// GetByAddress returns nil without error when the account does not exist.
func (a *AccountInfoDAOImpl) GetByAddress(ctx context.Context, tx *gorm.DB, address string) (*do.AccountInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	info := do.AccountInfo{}
	query := tx.Model(&do.AccountInfo{}).Where("address = ?", address).Take(&info)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, query.Error
	}
	return &info, nil
}

func (a *AccountInfoDAOImpl) Update(ctx context.Context, tx *gorm.DB, info *do.AccountInfo) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	if info == nil || info.ID == 0 {
		return 0, errors.New("fail to update account info: nil or unsaved account info")
	}

	query := tx.Save(info)
	if query.Error != nil {
		return 0, fmt.Errorf("fail to update account info: %v", query.Error)
	}
	return query.RowsAffected, nil
}

func (a *AccountInfoDAOImpl) GetNum(ctx context.Context, tx *gorm.DB) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	var res int64
	query := tx.Model(&do.AccountInfo{}).Count(&res)
	return res, query.Error
}
