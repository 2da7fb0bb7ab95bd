package pricing

import (
	"carrier_pricing_v1/internal/exchange"
	"carrier_pricing_v1/internal/model"
)

// ModeStats 某运输方式下所有候选渠道的统计
type ModeStats struct {
	Candidates int     `json:"candidates"`
	AvgCost    float64 `json:"avg_cost"`
	CostSaving float64 `json:"cost_saving"` // 最优渠道相对均值节省的百分比
	AvgDays    float64 `json:"avg_days"`
	TimeSaving float64 `json:"time_saving"` // 最优渠道相对均值节省的天数
}

// ModeQuote 某运输方式的最优渠道及最终售价
type ModeQuote struct {
	Mode          model.TransportMode `json:"mode"`
	Carrier       *model.CarrierRule  `json:"carrier"`
	ShippingCost  float64             `json:"shipping_cost"`
	LandedCostCNY float64             `json:"landed_cost_cny"`
	PriceCNY      float64             `json:"price_cny"`
	PriceRUB      float64             `json:"price_rub"`
	Stats         ModeStats           `json:"stats"`

	landedCost float64 // 未取整，用于利润计算
}

// Quote 一次完整定价
type Quote struct {
	Policy         Policy         `json:"policy"`
	Formula        string         `json:"formula"`
	Rates          exchange.Rates `json:"rates"`
	Land           *ModeQuote     `json:"land,omitempty"`
	Air            *ModeQuote     `json:"air,omitempty"`
	SuggestedPrice float64        `json:"suggested_price"` // 优先陆运，没有陆运取空运
	ExpectedProfit float64        `json:"expected_profit"`
	ProfitMargin   float64        `json:"profit_margin"` // 百分比
	Evaluations    []Evaluation   `json:"-"`
}

// BuildQuote 从评估结果选出每种运输方式的最优渠道并汇总
func (e *Engine) BuildQuote(p *model.Product, evals []Evaluation, rates exchange.Rates, policy Policy) *Quote {
	q := &Quote{
		Policy:      policy,
		Formula:     e.resolver.formula.Margin.Name(),
		Rates:       rates,
		Evaluations: evals,
	}

	byCarrier := make(map[*model.CarrierRule]*PricingResult, len(evals))
	for _, ev := range evals {
		if ev.Passed() {
			byCarrier[ev.Carrier] = ev.Result
		}
	}
	cands := Candidates(evals)

	q.Land = buildModeQuote(cands, byCarrier, model.TransportLand, policy)
	q.Air = buildModeQuote(cands, byCarrier, model.TransportAir, policy)

	suggested := q.Land
	if suggested == nil {
		suggested = q.Air
	}
	if suggested != nil {
		q.SuggestedPrice = suggested.PriceCNY
		q.ExpectedProfit = round2(e.resolver.formula.Margin.Profit(suggested.landedCost, p.TargetProfitMargin))
		q.ProfitMargin = round2(p.TargetProfitMargin * 100)
	}
	return q
}

func buildModeQuote(cands []Candidate, results map[*model.CarrierRule]*PricingResult, mode model.TransportMode, policy Policy) *ModeQuote {
	best, ok := SelectBest(cands, mode, policy)
	if !ok {
		return nil
	}
	res := results[best.Carrier]

	return &ModeQuote{
		Mode:          mode,
		Carrier:       best.Carrier,
		ShippingCost:  best.Cost,
		LandedCostCNY: round2(res.LandedCostCNY),
		PriceCNY:      round2(res.RetailCNY),
		PriceRUB:      round2(res.RetailRUB),
		Stats:         modeStats(cands, mode, best),
		landedCost:    res.LandedCostCNY,
	}
}

// modeStats 候选渠道的平均运费/时效，以及最优渠道相对平均值的节省
func modeStats(cands []Candidate, mode model.TransportMode, best Candidate) ModeStats {
	var (
		st      ModeStats
		sumCost float64
		sumDays float64
	)
	for _, c := range cands {
		if c.Carrier.TransportMode != mode {
			continue
		}
		st.Candidates++
		sumCost += c.Cost
		sumDays += c.Carrier.AvgDays()
	}
	if st.Candidates == 0 {
		return st
	}

	st.AvgCost = sumCost / float64(st.Candidates)
	st.AvgDays = sumDays / float64(st.Candidates)
	if st.AvgCost > 0 {
		st.CostSaving = (st.AvgCost - best.Cost) / st.AvgCost * 100
	}
	st.TimeSaving = st.AvgDays - best.Carrier.AvgDays()
	return st
}
