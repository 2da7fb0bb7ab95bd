package pricing

import (
	"fmt"

	"carrier_pricing_v1/internal/model"
)

// Policy 选择策略
type Policy string

const (
	PolicyCheapest Policy = "cheapest"
	PolicyFastest  Policy = "fastest"
)

// ParsePolicy 解析策略，兼容中文名称，空值为低价优先
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", string(PolicyCheapest), "低价优先":
		return PolicyCheapest, nil
	case string(PolicyFastest), "速度优先":
		return PolicyFastest, nil
	default:
		return "", fmt.Errorf("unknown policy %q", s)
	}
}

// Candidate 通过资格与限价检查的渠道
type Candidate struct {
	Carrier *model.CarrierRule
	Cost    float64
}

type sortKey struct {
	band int
	avg  float64
	cost float64
	id   int64
	name string
}

func keyOf(c Candidate) sortKey {
	return sortKey{
		band: c.Carrier.PriorityGroup.Rank(),
		avg:  c.Carrier.AvgDays(),
		cost: c.Cost,
		id:   c.Carrier.ID,
		name: c.Carrier.Name,
	}
}

// less 全序比较，末尾用 ID、名称兜底，保证结果与输入顺序无关
func less(policy Policy, a, b sortKey) bool {
	if policy == PolicyFastest {
		if a.band != b.band {
			return a.band < b.band
		}
		if a.avg != b.avg {
			return a.avg < b.avg
		}
		if a.cost != b.cost {
			return a.cost < b.cost
		}
	} else {
		if a.cost != b.cost {
			return a.cost < b.cost
		}
		if a.band != b.band {
			return a.band < b.band
		}
		if a.avg != b.avg {
			return a.avg < b.avg
		}
	}
	if a.id != b.id {
		return a.id < b.id
	}
	return a.name < b.name
}

// SelectBest 在指定运输方式的候选中选出最优渠道
// 没有候选时返回 false，不是错误
func SelectBest(cands []Candidate, mode model.TransportMode, policy Policy) (Candidate, bool) {
	var (
		best    Candidate
		bestKey sortKey
		found   bool
	)
	for _, c := range cands {
		if c.Carrier == nil || c.Carrier.TransportMode != mode {
			continue
		}
		k := keyOf(c)
		if !found || less(policy, k, bestKey) {
			best, bestKey, found = c, k, true
		}
	}
	return best, found
}
