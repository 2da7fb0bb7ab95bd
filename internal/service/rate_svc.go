package service

import (
	"context"
	"time"

	"carrier_pricing_v1/internal/api/dto"
	"carrier_pricing_v1/internal/exchange"
)

// RateSource 汇率读取与刷新，由 exchange.Supplier 实现
type RateSource interface {
	CurrentRate(pair exchange.Pair) float64
	LastUpdated(pair exchange.Pair) time.Time
	Refresh(ctx context.Context)
}

// ExchangeRateService 汇率查询
type ExchangeRateService struct {
	rates RateSource
}

func NewExchangeRateService(rates RateSource) *ExchangeRateService {
	return &ExchangeRateService{rates: rates}
}

// Current 当前汇率及最近更新时间
func (s *ExchangeRateService) Current() *dto.ExchangeRatesResp {
	resp := &dto.ExchangeRatesResp{Rates: make([]dto.ExchangeRateResp, 0, len(exchange.Pairs))}
	for _, pair := range exchange.Pairs {
		item := dto.ExchangeRateResp{
			Pair: string(pair),
			Rate: s.rates.CurrentRate(pair),
		}
		if at := s.rates.LastUpdated(pair); !at.IsZero() {
			item.UpdatedAt = &at
		}
		resp.Rates = append(resp.Rates, item)
	}
	return resp
}

// Refresh 立即刷新一次，失败时保留旧值
func (s *ExchangeRateService) Refresh(ctx context.Context) *dto.ExchangeRatesResp {
	s.rates.Refresh(ctx)
	return s.Current()
}
