package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carrier_pricing_v1/internal/exchange"
	"carrier_pricing_v1/internal/model"
)

// 落地成本 = 100 + 5 + 10 + 15×0.1 + 20 = 136.5
func priceProduct() *model.Product {
	return &model.Product{
		UnitPrice:            100,
		LabelingFee:          5,
		ShippingFee:          10,
		PromotionDiscount:    0.05,
		PromotionCostRate:    0.1,
		CommissionRate:       0.2,
		WithdrawalFeeRate:    0,
		PaymentProcessingFee: 0,
		TargetProfitMargin:   0.25,
	}
}

var priceRates = exchange.Rates{RUB: 0.1, USD: 7}

func TestResolvePrice_Formulas(t *testing.T) {
	tests := []struct {
		name       string
		formula    PriceFormula
		wantRetail float64
		wantProfit float64
	}{
		{
			// 136.5 / (1 - 0.25) / ((1-0.1)(1-0.2))
			name:       "毛利率口径使用推广费率",
			formula:    FormulaGrossMargin,
			wantRetail: 252.7777777777778,
			wantProfit: 45.5,
		},
		{
			// 136.5 × (1 + 0.25) / ((1-0.05)(1-0.2))
			name:       "加价率口径使用活动折扣率",
			formula:    FormulaMarkup,
			wantRetail: 224.5065789473684,
			wantProfit: 34.125,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver(tt.formula, DefaultOperationSurchargeRUB)
			p := priceProduct()
			c := newCarrier(1, model.TransportLand)

			res, err := r.ResolvePrice(p, c, 20, priceRates)
			require.NoError(t, err)

			assert.Equal(t, 20.0, res.ShippingCost)
			assert.InDelta(t, 136.5, res.LandedCostCNY, 1e-9)
			assert.InDelta(t, tt.wantRetail, res.RetailCNY, 1e-9)
			assert.InDelta(t, tt.wantRetail/0.1, res.RetailRUB, 1e-6)
			assert.True(t, res.WithinBounds)
			assert.Nil(t, res.Rejection)

			assert.InDelta(t, tt.wantProfit, tt.formula.Margin.Profit(res.LandedCostCNY, p.TargetProfitMargin), 1e-9)
		})
	}
}

func TestResolvePrice_SurchargeFollowsRate(t *testing.T) {
	r := DefaultResolver()
	p := priceProduct()
	c := newCarrier(1, model.TransportLand)

	low, err := r.ResolvePrice(p, c, 20, exchange.Rates{RUB: 0.08, USD: 7})
	require.NoError(t, err)
	high, err := r.ResolvePrice(p, c, 20, exchange.Rates{RUB: 0.12, USD: 7})
	require.NoError(t, err)

	assert.InDelta(t, 100+5+10+15*0.08+20, low.LandedCostCNY, 1e-9)
	assert.InDelta(t, 100+5+10+15*0.12+20, high.LandedCostCNY, 1e-9)
}

func TestResolvePrice_Bounds(t *testing.T) {
	// 毛利率口径下售价 252.78 CNY = 2527.78 RUB = 36.11 USD
	tests := []struct {
		name     string
		setup    func(c *model.CarrierRule)
		within   bool
		wantCode ReasonCode
	}{
		{"无限价", func(c *model.CarrierRule) {}, true, ""},
		{"卢布上限内", func(c *model.CarrierRule) { c.PriceLimit, c.PriceLimitCurrency = 3000, model.CurrencyRUB }, true, ""},
		{"超卢布上限", func(c *model.CarrierRule) { c.PriceLimit, c.PriceLimitCurrency = 2500, model.CurrencyRUB }, false, CodePriceAboveLimit},
		{"超美元上限", func(c *model.CarrierRule) { c.PriceLimit, c.PriceLimitCurrency = 30, model.CurrencyUSD }, false, CodePriceAboveLimit},
		{"美元上限内", func(c *model.CarrierRule) { c.PriceLimit, c.PriceLimitCurrency = 40, model.CurrencyUSD }, true, ""},
		{"低于卢布下限", func(c *model.CarrierRule) { c.PriceMin, c.PriceMinCurrency = 3000, model.CurrencyRUB }, false, CodePriceBelowMin},
		{"低于美元下限", func(c *model.CarrierRule) { c.PriceMin, c.PriceMinCurrency = 50, model.CurrencyUSD }, false, CodePriceBelowMin},
		{"上下限之间", func(c *model.CarrierRule) {
			c.PriceLimit, c.PriceLimitCurrency = 40, model.CurrencyUSD
			c.PriceMin, c.PriceMinCurrency = 2000, model.CurrencyRUB
		}, true, ""},
	}

	r := DefaultResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCarrier(1, model.TransportLand)
			tt.setup(c)

			res, err := r.ResolvePrice(priceProduct(), c, 20, priceRates)
			require.NoError(t, err)
			assert.Equal(t, tt.within, res.WithinBounds)
			if tt.within {
				assert.Nil(t, res.Rejection)
				return
			}
			require.NotNil(t, res.Rejection)
			assert.Equal(t, CheckEconomic, res.Rejection.Check)
			assert.Equal(t, tt.wantCode, res.Rejection.Code)
		})
	}
}

func TestResolvePrice_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name    string
		formula PriceFormula
		setup   func(p *model.Product)
		rates   exchange.Rates
	}{
		{"佣金率为 1 导致分母为 0", FormulaGrossMargin, func(p *model.Product) { p.CommissionRate = 1 }, priceRates},
		{"费率大于 1 导致分母为负", FormulaMarkup, func(p *model.Product) { p.PromotionDiscount = 1.2 }, priceRates},
		{"毛利率口径下利润率为 1", FormulaGrossMargin, func(p *model.Product) { p.TargetProfitMargin = 1 }, priceRates},
		{"卢布汇率为 0", FormulaGrossMargin, func(p *model.Product) {}, exchange.Rates{RUB: 0, USD: 7}},
		{"卢布汇率为 NaN", FormulaGrossMargin, func(p *model.Product) {}, exchange.Rates{RUB: math.NaN(), USD: 7}},
		{"两项费率超过 1 分母转正", FormulaGrossMargin, func(p *model.Product) {
			p.CommissionRate = 1.2
			p.PromotionCostRate = 1.5
		}, priceRates},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := priceProduct()
			tt.setup(p)

			res, err := NewResolver(tt.formula, DefaultOperationSurchargeRUB).
				ResolvePrice(p, newCarrier(1, model.TransportLand), 20, tt.rates)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}
}

func TestRetailCNY_RejectsEachRateAtOrAboveOne(t *testing.T) {
	r := NewResolver(FormulaGrossMargin, DefaultOperationSurchargeRUB)

	p := priceProduct()
	p.CommissionRate = 1.2
	p.PromotionCostRate = 1.5
	require.Greater(t, FormulaGrossMargin.FeeDenominator(p), 0.0)

	_, err := r.RetailCNY(p, 100)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "promotion_cost_rate", cfgErr.Field)

	p = priceProduct()
	p.PaymentProcessingFee = 1
	_, err = r.RetailCNY(p, 100)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "payment_processing_fee", cfgErr.Field)
}

func TestResolvePrice_MarkupAllowsFullMargin(t *testing.T) {
	p := priceProduct()
	p.TargetProfitMargin = 1

	res, err := NewResolver(FormulaMarkup, DefaultOperationSurchargeRUB).
		ResolvePrice(p, newCarrier(1, model.TransportLand), 20, priceRates)
	require.NoError(t, err)
	assert.InDelta(t, 136.5*2/0.76, res.RetailCNY, 1e-9)
}

func TestFormulaByName(t *testing.T) {
	f, err := FormulaByName("gross_margin")
	require.NoError(t, err)
	assert.Equal(t, "gross_margin", f.Margin.Name())
	assert.Equal(t, PromotionByCostRate, f.Promotion)

	f, err = FormulaByName("markup")
	require.NoError(t, err)
	assert.Equal(t, "markup", f.Margin.Name())
	assert.Equal(t, PromotionByDiscount, f.Promotion)

	_, err = FormulaByName("cost_plus")
	assert.Error(t, err)
}
