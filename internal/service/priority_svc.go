package service

import (
	"context"
	"fmt"

	"carrier_pricing_v1/internal/api/dto"
	"carrier_pricing_v1/internal/metric"
	"carrier_pricing_v1/internal/model"
	"carrier_pricing_v1/internal/pricing"
	"carrier_pricing_v1/internal/repository"
	"carrier_pricing_v1/pkg/logger"
)

// PriorityService 时效优先级分组
type PriorityService struct {
	carrierRepo repository.CarrierRepository
	log         logger.Logger
}

func NewPriorityService(carrierRepo repository.CarrierRepository, log logger.Logger) *PriorityService {
	if log == nil {
		log = logger.Nop()
	}
	return &PriorityService{carrierRepo: carrierRepo, log: log}
}

// RecomputePriorityBands 重新计算用户全部渠道的 A-E 分组并批量写回
func (s *PriorityService) RecomputePriorityBands(ctx context.Context, userID int64) error {
	_, err := s.Recompute(ctx, userID)
	return err
}

// Recompute 重算并返回分组结果
func (s *PriorityService) Recompute(ctx context.Context, userID int64) (*dto.PriorityBandsResp, error) {
	ctx = logger.WithUserID(ctx, userID)

	carriers, err := s.carrierRepo.ListByUser(ctx, userID)
	if err != nil {
		metric.PriorityRecomputeTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("查询物流渠道失败: %w", err)
	}

	bands := pricing.ClassifyBands(carriers)
	if err := s.carrierRepo.UpdatePriorityBands(ctx, userID, bands); err != nil {
		metric.PriorityRecomputeTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("写入优先级分组失败: %w", err)
	}
	metric.PriorityRecomputeTotal.WithLabelValues("success").Inc()

	resp := &dto.PriorityBandsResp{
		UserID: userID,
		Bands:  make(map[int64]string, len(bands)),
		Counts: make(map[string]int),
	}
	for id, band := range bands {
		resp.Bands[id] = string(band)
		resp.Counts[string(band)]++
	}

	s.log.Infof(ctx, "[Priority] 用户 %d 分组完成: 渠道 %d 个, %s",
		userID, len(carriers), formatCounts(resp.Counts))
	return resp, nil
}

// RecomputeAll 对所有拥有渠道的用户重算，单个用户失败不影响其他用户
func (s *PriorityService) RecomputeAll(ctx context.Context) (ok, failed int, err error) {
	userIDs, err := s.carrierRepo.ListUserIDs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("查询用户列表失败: %w", err)
	}

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			return ok, failed, ctx.Err()
		}
		if err := s.RecomputePriorityBands(ctx, userID); err != nil {
			s.log.Errorf(ctx, "[Priority] 用户 %d 分组失败: %v", userID, err)
			failed++
			continue
		}
		ok++
	}
	return ok, failed, nil
}

func formatCounts(counts map[string]int) string {
	out := ""
	for _, b := range []model.PriorityBand{model.BandA, model.BandB, model.BandC, model.BandD, model.BandE} {
		if n := counts[string(b)]; n > 0 {
			out += fmt.Sprintf("%s=%d ", b, n)
		}
	}
	return out
}
