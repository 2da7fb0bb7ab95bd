package exchange

import (
	"errors"
	"fmt"
	"math"
	"time"

	"carrier_pricing_v1/internal/model"
)

// Pair 币种对，汇率含义为 1 单位外币折合多少人民币
type Pair string

const (
	PairRUB Pair = "RUB/CNY"
	PairUSD Pair = "USD/CNY"
)

// Pairs 所有维护的币种对
var Pairs = []Pair{PairRUB, PairUSD}

// ErrInvalidRate 汇率不可用 (非正数、非有限数或未知币种)
var ErrInvalidRate = errors.New("exchange rate unavailable")

// ValidRate 汇率必须是有限正数，NaN 和 Inf 都不可用
func ValidRate(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0)
}

// Rates 一次评估使用的汇率快照
type Rates struct {
	RUB       float64   `json:"rub"`
	USD       float64   `json:"usd"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Of 返回 1 单位 cur 折合的人民币
func (r Rates) Of(cur model.Currency) (float64, error) {
	var rate float64
	switch cur {
	case model.CurrencyCNY:
		return 1, nil
	case model.CurrencyRUB, "":
		rate = r.RUB
	case model.CurrencyUSD:
		rate = r.USD
	default:
		return 0, fmt.Errorf("%w: unknown currency %q", ErrInvalidRate, cur)
	}
	if !ValidRate(rate) {
		return 0, fmt.Errorf("%w: %s rate is %v", ErrInvalidRate, cur, rate)
	}
	return rate, nil
}

// FromCNY 人民币金额换算为 cur
func (r Rates) FromCNY(cny float64, cur model.Currency) (float64, error) {
	rate, err := r.Of(cur)
	if err != nil {
		return 0, err
	}
	return cny / rate, nil
}

// ToCNY cur 金额换算为人民币
func (r Rates) ToCNY(amount float64, cur model.Currency) (float64, error) {
	rate, err := r.Of(cur)
	if err != nil {
		return 0, err
	}
	return amount * rate, nil
}
