package dao

import (
	"context"
	"errors"
	"fmt"

	"github.com/abesuite/gaopool/dal/do"
	"github.com/abesuite/gaopool/errcode"

	"gorm.io/gorm"
)

type WindowStateInfoDAO interface {
	Create(ctx context.Context, tx *gorm.DB, info *do.WindowStateInfo) (int64, error)
	GetByWindow(ctx context.Context, tx *gorm.DB, window int64) (*do.WindowStateInfo, error)
	Update(ctx context.Context, tx *gorm.DB, info *do.WindowStateInfo) (int64, error)
	GetUnclaimedBefore(ctx context.Context, tx *gorm.DB, window int64, num int) ([]*do.WindowStateInfo, error)
	GetByEpoch(ctx context.Context, tx *gorm.DB, epoch int64) ([]*do.WindowStateInfo, error)
}

type WindowStateInfoDAOImpl struct{}

var windowStateInfoDAO WindowStateInfoDAO = &WindowStateInfoDAOImpl{}

func GetWindowStateInfoDAOImpl() WindowStateInfoDAO {
	return windowStateInfoDAO
}

func (w *WindowStateInfoDAOImpl) Create(ctx context.Context, tx *gorm.DB, info *do.WindowStateInfo) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	if info == nil {
		return 0, errors.New("fail to create window state info: nil window state info")
	}

	query := tx.Create(info)
	return query.RowsAffected, query.Error
}

func (w *WindowStateInfoDAOImpl) GetByWindow(ctx context.Context, tx *gorm.DB, window int64) (*do.WindowStateInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	info := do.WindowStateInfo{}
	query := tx.Model(&do.WindowStateInfo{}).Where("window_index = ?", window).Take(&info)
	if query.Error != nil {
		if errors.Is(query.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, query.Error
	}
	return &info, nil
}

func (w *WindowStateInfoDAOImpl) Update(ctx context.Context, tx *gorm.DB, info *do.WindowStateInfo) (int64, error) {
	if tx == nil {
		return 0, errcode.ErrNilGormDB
	}

	if info == nil || info.ID == 0 {
		return 0, errors.New("fail to update window state info: nil or unsaved window state info")
	}

	query := tx.Save(info)
	if query.Error != nil {
		return 0, fmt.Errorf("fail to update window state info: %v", query.Error)
	}
	return query.RowsAffected, nil
}

// GetUnclaimedBefore returns at most num attempted but unclaimed windows
// with an index smaller than window, oldest first.
func (w *WindowStateInfoDAOImpl) GetUnclaimedBefore(ctx context.Context, tx *gorm.DB, window int64, num int) ([]*do.WindowStateInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := make([]*do.WindowStateInfo, 0)
	if num < 1 {
		return res, nil
	}
	query := tx.Model(&do.WindowStateInfo{}).Where("attempted = ? AND claimed = ? AND window_index < ?", 1, 0, window).
		Order("window_index").Limit(num).Find(&res)
	if query.Error != nil {
		return nil, query.Error
	}
	return res, nil
}

func (w *WindowStateInfoDAOImpl) GetByEpoch(ctx context.Context, tx *gorm.DB, epoch int64) ([]*do.WindowStateInfo, error) {
	if tx == nil {
		return nil, errcode.ErrNilGormDB
	}

	res := make([]*do.WindowStateInfo, 0)
	query := tx.Model(&do.WindowStateInfo{}).Where("epoch = ?", epoch).Order("window_index").Find(&res)
	if query.Error != nil {
		return nil, query.Error
	}
	return res, nil
}
