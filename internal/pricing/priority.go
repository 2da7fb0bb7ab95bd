package pricing

import "carrier_pricing_v1/internal/model"

// ClassifyBands 按运输方式分别计算时效优先级分组
// 陆运与空运各自独立统计；时效全为 0 的渠道不参与均值并固定为 E
// 结果只由 min_days/max_days 决定，可以随时重算
func ClassifyBands(carriers []model.CarrierRule) map[int64]model.PriorityBand {
	byMode := make(map[model.TransportMode][]*model.CarrierRule)
	for i := range carriers {
		c := &carriers[i]
		byMode[c.TransportMode] = append(byMode[c.TransportMode], c)
	}

	bands := make(map[int64]model.PriorityBand, len(carriers))
	for _, group := range byMode {
		classifyMode(group, bands)
	}
	return bands
}

func classifyMode(group []*model.CarrierRule, bands map[int64]model.PriorityBand) {
	var (
		sumMin, sumMax, sumAvg float64
		n                      int
	)
	for _, c := range group {
		if !c.HasTransitData() {
			continue
		}
		sumMin += float64(c.MinDays)
		sumMax += float64(c.MaxDays)
		sumAvg += c.AvgDays()
		n++
	}

	var meanMin, meanMax, meanAvg float64
	if n > 0 {
		meanMin = sumMin / float64(n)
		meanMax = sumMax / float64(n)
		meanAvg = sumAvg / float64(n)
	}

	for _, c := range group {
		if !c.HasTransitData() {
			bands[c.ID] = model.BandE
			continue
		}
		hits := 0
		if float64(c.MinDays) < meanMin {
			hits++
		}
		if float64(c.MaxDays) < meanMax {
			hits++
		}
		if c.AvgDays() < meanAvg {
			hits++
		}
		bands[c.ID] = bandForHits(hits)
	}
}

func bandForHits(hits int) model.PriorityBand {
	switch hits {
	case 3:
		return model.BandA
	case 2:
		return model.BandB
	case 1:
		return model.BandC
	default:
		return model.BandD
	}
}
