package pricing

import (
	"fmt"
	"math"

	"carrier_pricing_v1/internal/model"
)

// FeeSchedule 渠道资费表，只有两种实现
type FeeSchedule interface {
	// Cost 按实际重量 (g) 计算运费 (CNY)
	Cost(weightG float64) float64
	// Describe 计算过程，用于评估轨迹
	Describe(weightG float64) string

	feeSchedule()
}

// BasePlusContinue 基础费 + 续重
type BasePlusContinue struct {
	BaseFee     float64
	ContinueFee float64
	UnitG       float64
}

// FirstPlusContinue 首重 + 续重
type FirstPlusContinue struct {
	FirstFee     float64
	FirstWeightG float64
	ContinueFee  float64
	UnitG        float64
}

func (BasePlusContinue) feeSchedule()  {}
func (FirstPlusContinue) feeSchedule() {}

func (s BasePlusContinue) Cost(weightG float64) float64 {
	return s.BaseFee + s.ContinueFee*units(weightG, s.UnitG)
}

func (s BasePlusContinue) Describe(weightG float64) string {
	return fmt.Sprintf("基础费用: %s, 续重单位: %sg, 单位数: %s, 运费: %s",
		num(s.BaseFee), num(s.UnitG), num(units(weightG, s.UnitG)), num(s.Cost(weightG)))
}

func (s FirstPlusContinue) Cost(weightG float64) float64 {
	if weightG <= s.FirstWeightG {
		return s.FirstFee
	}
	return s.FirstFee + s.ContinueFee*units(weightG-s.FirstWeightG, s.UnitG)
}

func (s FirstPlusContinue) Describe(weightG float64) string {
	if weightG <= s.FirstWeightG {
		return fmt.Sprintf("首重费用: %s，在首重 %sg 范围内", num(s.FirstFee), num(s.FirstWeightG))
	}
	return fmt.Sprintf("首重费用: %s，超出部分单位数: %s，总运费: %s",
		num(s.FirstFee), num(units(weightG-s.FirstWeightG, s.UnitG)), num(s.Cost(weightG)))
}

// units 计费单位数，不足一个单位按一个单位计
func units(weightG, unitG float64) float64 {
	if weightG <= 0 {
		return 0
	}
	return math.Ceil(weightG / unitG)
}

// ScheduleOf 从渠道规则构造资费表
// fee_mode 为空按 base_plus_continue 处理
func ScheduleOf(c *model.CarrierRule) (FeeSchedule, error) {
	if c.ContinueUnitG <= 0 {
		return nil, configError("continue_unit", "must be positive, got %s", num(c.ContinueUnitG))
	}
	if c.ContinueFee < 0 {
		return nil, configError("continue_fee", "must not be negative, got %s", num(c.ContinueFee))
	}

	switch c.FeeMode {
	case model.FeeBasePlusContinue, "":
		return BasePlusContinue{
			BaseFee:     c.BaseFee,
			ContinueFee: c.ContinueFee,
			UnitG:       c.ContinueUnitG,
		}, nil
	case model.FeeFirstPlusContinue:
		if c.FirstWeightG < 0 {
			return nil, configError("first_weight_g", "must not be negative, got %s", num(c.FirstWeightG))
		}
		return FirstPlusContinue{
			FirstFee:     c.FirstFee,
			FirstWeightG: c.FirstWeightG,
			ContinueFee:  c.ContinueFee,
			UnitG:        c.ContinueUnitG,
		}, nil
	default:
		return nil, configError("fee_mode", "unknown fee mode %q", c.FeeMode)
	}
}

// ComputeShippingCost 按实际重量计算渠道运费 (CNY)
func ComputeShippingCost(c *model.CarrierRule, weightG float64) (float64, error) {
	schedule, err := ScheduleOf(c)
	if err != nil {
		return 0, err
	}
	return schedule.Cost(weightG), nil
}
