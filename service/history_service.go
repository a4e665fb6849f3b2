package service

import (
	"context"
	"fmt"

	"github.com/abesuite/gaopool/constdef"
	"github.com/abesuite/gaopool/dal/dao"
	"github.com/abesuite/gaopool/model"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

type HistoryService interface {
	AddContribution(ctx context.Context, tx *gorm.DB, contribution *model.Contribution) error
	AddRedemption(ctx context.Context, tx *gorm.DB, redemption *model.Redemption) error
	GetContributions(ctx context.Context, tx *gorm.DB, address common.Address, page int, num int, positiveOrder bool) ([]*model.Contribution, error)
	GetContributionNum(ctx context.Context, tx *gorm.DB, address common.Address) (int64, error)
	GetRedemptions(ctx context.Context, tx *gorm.DB, address common.Address, page int, num int, positiveOrder bool) ([]*model.Redemption, error)
	GetRedemptionNum(ctx context.Context, tx *gorm.DB, address common.Address) (int64, error)
}

type HistoryServiceImpl struct {
	contributionInfoDao dao.ContributionInfoDAO
	redemptionInfoDao   dao.RedemptionInfoDAO
}

var historyService HistoryService = &HistoryServiceImpl{
	contributionInfoDao: dao.GetContributionInfoDAOImpl(),
	redemptionInfoDao:   dao.GetRedemptionInfoDAOImpl(),
}

func GetHistoryService() HistoryService {
	return historyService
}

func checkPage(page int, num int) error {
	if page <= 0 {
		return fmt.Errorf("invalid page %v", page)
	}
	if num <= 0 || num > constdef.MaxPageSize {
		return fmt.Errorf("invalid num %v: should be in [1, %v]", num, constdef.MaxPageSize)
	}
	return nil
}

func (h *HistoryServiceImpl) AddContribution(ctx context.Context, tx *gorm.DB, contribution *model.Contribution) error {
	_, err := h.contributionInfoDao.Create(ctx, tx, model.ConvertContributionToDO(contribution))
	return err
}

func (h *HistoryServiceImpl) AddRedemption(ctx context.Context, tx *gorm.DB, redemption *model.Redemption) error {
	_, err := h.redemptionInfoDao.Create(ctx, tx, model.ConvertRedemptionToDO(redemption))
	return err
}

func (h *HistoryServiceImpl) GetContributions(ctx context.Context, tx *gorm.DB, address common.Address, page int, num int, positiveOrder bool) ([]*model.Contribution, error) {
	err := checkPage(page, num)
	if err != nil {
		return nil, err
	}
	infos, err := h.contributionInfoDao.GetByCreditTo(ctx, tx, address.Hex(), page, num, positiveOrder)
	if err != nil {
		return nil, err
	}
	res := make([]*model.Contribution, 0, len(infos))
	for _, info := range infos {
		c, err := model.ConvertDOToContribution(info)
		if err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, nil
}

func (h *HistoryServiceImpl) GetContributionNum(ctx context.Context, tx *gorm.DB, address common.Address) (int64, error) {
	return h.contributionInfoDao.GetNumByCreditTo(ctx, tx, address.Hex())
}

func (h *HistoryServiceImpl) GetRedemptions(ctx context.Context, tx *gorm.DB, address common.Address, page int, num int, positiveOrder bool) ([]*model.Redemption, error) {
	err := checkPage(page, num)
	if err != nil {
		return nil, err
	}
	infos, err := h.redemptionInfoDao.GetByAddress(ctx, tx, address.Hex(), page, num, positiveOrder)
	if err != nil {
		return nil, err
	}
	res := make([]*model.Redemption, 0, len(infos))
	for _, info := range infos {
		r, err := model.ConvertDOToRedemption(info)
		if err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, nil
}

func (h *HistoryServiceImpl) GetRedemptionNum(ctx context.Context, tx *gorm.DB, address common.Address) (int64, error) {
	return h.redemptionInfoDao.GetNumByAddress(ctx, tx, address.Hex())
}
