package service

import (
	"context"
	"fmt"

	"carrier_pricing_v1/internal/api/dto"
	"carrier_pricing_v1/internal/model"
	"carrier_pricing_v1/internal/repository"
	"carrier_pricing_v1/pkg/logger"
)

// CarrierService 物流渠道管理
// 渠道变更后同步重算该用户的优先级分组
type CarrierService struct {
	repo     repository.CarrierRepository
	priority *PriorityService
	log      logger.Logger
}

func NewCarrierService(repo repository.CarrierRepository, priority *PriorityService, log logger.Logger) *CarrierService {
	if log == nil {
		log = logger.Nop()
	}
	return &CarrierService{repo: repo, priority: priority, log: log}
}

func (s *CarrierService) Create(ctx context.Context, userID int64, req *dto.CarrierReq) (*model.CarrierRule, error) {
	carrier := &model.CarrierRule{UserID: userID}
	applyCarrierReq(carrier, req)

	if err := s.repo.Create(ctx, carrier); err != nil {
		return nil, fmt.Errorf("创建物流渠道失败: %w", err)
	}
	s.log.Infof(ctx, "[Carrier] 用户 %d 新增渠道 %d (%s)", userID, carrier.ID, carrier.Name)

	s.afterWrite(ctx, userID)
	return s.reload(ctx, userID, carrier.ID)
}

func (s *CarrierService) Get(ctx context.Context, userID, id int64) (*model.CarrierRule, error) {
	carrier, err := s.repo.GetByUserAndID(ctx, userID, id)
	if err != nil {
		return nil, notFound(err, ErrCarrierNotFound, "查询物流渠道失败")
	}
	return carrier, nil
}

func (s *CarrierService) Update(ctx context.Context, userID, id int64, req *dto.CarrierReq) (*model.CarrierRule, error) {
	carrier, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	applyCarrierReq(carrier, req)

	if err := s.repo.Update(ctx, carrier); err != nil {
		return nil, fmt.Errorf("更新物流渠道失败: %w", err)
	}

	s.afterWrite(ctx, userID)
	return s.reload(ctx, userID, id)
}

func (s *CarrierService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("删除物流渠道失败: %w", err)
	}

	s.afterWrite(ctx, userID)
	return nil
}

// List 按运输方式过滤，mode 为空时返回全部
func (s *CarrierService) List(ctx context.Context, userID int64, mode model.TransportMode) (*dto.CarrierListResp, error) {
	var (
		carriers []model.CarrierRule
		err      error
	)
	if mode == "" {
		carriers, err = s.repo.ListByUser(ctx, userID)
	} else {
		carriers, err = s.repo.ListByUserAndMode(ctx, userID, mode)
	}
	if err != nil {
		return nil, fmt.Errorf("查询物流渠道失败: %w", err)
	}
	return &dto.CarrierListResp{Total: len(carriers), List: carriers}, nil
}

// afterWrite 分组失败不影响渠道写入，等夜间任务兜底
func (s *CarrierService) afterWrite(ctx context.Context, userID int64) {
	if s.priority == nil {
		return
	}
	if err := s.priority.RecomputePriorityBands(ctx, userID); err != nil {
		s.log.Warnf(ctx, "[Carrier] 用户 %d 渠道变更后分组失败: %v", userID, err)
	}
}

func (s *CarrierService) reload(ctx context.Context, userID, id int64) (*model.CarrierRule, error) {
	return s.Get(ctx, userID, id)
}

func applyCarrierReq(c *model.CarrierRule, req *dto.CarrierReq) {
	c.Name = req.Name
	c.TransportMode = model.TransportMode(req.Type)
	c.DeliveryMethod = req.DeliveryMethod
	c.MinDays = req.MinDays
	c.MaxDays = req.MaxDays

	c.MinWeight = req.MinWeight
	c.MaxWeight = req.MaxWeight

	c.MaxSumOfSides = req.MaxSumOfSides
	c.MaxLongestSide = req.MaxLongestSide
	c.MaxSecondSide = req.MaxSecondSide
	c.MinSecondSide = req.MinSecondSide
	c.MinLength = req.MinLength

	c.MaxCylinderSum = req.MaxCylinderSum
	c.MinCylinderSum = req.MinCylinderSum
	c.MaxCylinderLength = req.MaxCylinderLength
	c.MinCylinderLength = req.MinCylinderLength

	c.VolumeMode = model.VolumeMode(req.VolumeMode)
	c.VolumeCoefficient = req.VolumeCoefficient
	c.LongestSideThreshold = req.LongestSideThreshold

	c.AllowBattery = req.AllowBattery
	c.AllowFlammable = req.AllowFlammable
	c.BatteryCapacityLimitWh = req.BatteryCapacityLimitWh
	c.RequireMSDS = req.RequireMSDS

	c.FeeMode = model.FeeMode(req.FeeMode)
	c.BaseFee = req.BaseFee
	c.FirstFee = req.FirstFee
	c.FirstWeightG = req.FirstWeightG
	c.ContinueFee = req.ContinueFee
	c.ContinueUnitG = req.ContinueUnitG

	c.PriceLimit = req.PriceLimit
	c.PriceLimitCurrency = model.Currency(req.PriceLimitCurrency)
	c.PriceMin = req.PriceMin
	c.PriceMinCurrency = model.Currency(req.PriceMinCurrency)

	normalizeCarrier(c)
}

// normalizeCarrier 与列默认值保持一致，创建和更新得到相同结果
func normalizeCarrier(c *model.CarrierRule) {
	if c.DeliveryMethod == "" {
		c.DeliveryMethod = "unknown"
	}
	if c.VolumeMode == "" {
		c.VolumeMode = model.VolumeNone
	}
	if c.VolumeCoefficient == 0 {
		c.VolumeCoefficient = model.DefaultVolumeCoefficient
	}
	if c.FeeMode == "" {
		c.FeeMode = model.FeeBasePlusContinue
	}
	if c.ContinueUnitG == 0 {
		c.ContinueUnitG = model.DefaultContinueUnitG
	}
	if c.PriceLimitCurrency == "" {
		c.PriceLimitCurrency = model.CurrencyRUB
	}
	if c.PriceMinCurrency == "" {
		c.PriceMinCurrency = model.CurrencyRUB
	}
}
