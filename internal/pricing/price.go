package pricing

import (
	"fmt"

	"carrier_pricing_v1/internal/exchange"
	"carrier_pricing_v1/internal/model"
)

// DefaultOperationSurchargeRUB 每件固定操作费 (RUB)，按实时汇率折算为人民币计入成本
const DefaultOperationSurchargeRUB = 15

// ==================== 利润策略 ====================

// MarginStrategy 目标利润率进入售价的方式
type MarginStrategy interface {
	Name() string
	// Apply 把落地成本放大到含利润的金额
	Apply(landedCost, margin float64) (float64, error)
	// Profit 按该策略得到的预期利润
	Profit(landedCost, margin float64) float64
}

// GrossMargin 毛利率口径: cost / (1 - m)
type GrossMargin struct{}

func (GrossMargin) Name() string { return "gross_margin" }

func (GrossMargin) Apply(landedCost, margin float64) (float64, error) {
	if margin >= 1 {
		return 0, configError("target_profit_margin", "must be below 1 for gross margin, got %s", num(margin))
	}
	return landedCost / (1 - margin), nil
}

func (GrossMargin) Profit(landedCost, margin float64) float64 {
	if margin >= 1 {
		return 0
	}
	return landedCost * margin / (1 - margin)
}

// Markup 加价率口径: cost × (1 + m)
type Markup struct{}

func (Markup) Name() string { return "markup" }

func (Markup) Apply(landedCost, margin float64) (float64, error) {
	return landedCost * (1 + margin), nil
}

func (Markup) Profit(landedCost, margin float64) float64 {
	return landedCost * margin
}

// PromotionBasis 费率分母中的推广项取哪个字段
type PromotionBasis string

const (
	PromotionByCostRate PromotionBasis = "promotion_cost_rate"
	PromotionByDiscount PromotionBasis = "promotion_discount"
)

// PriceFormula 定价公式
type PriceFormula struct {
	Margin    MarginStrategy
	Promotion PromotionBasis
}

var (
	// FormulaGrossMargin (成本 / (1 - 利润率)) / 费率分母，分母使用推广费率
	FormulaGrossMargin = PriceFormula{Margin: GrossMargin{}, Promotion: PromotionByCostRate}
	// FormulaMarkup 成本 × (1 + 利润率) / 费率分母，分母使用活动折扣率
	FormulaMarkup = PriceFormula{Margin: Markup{}, Promotion: PromotionByDiscount}
)

// FormulaByName 按配置名称选择公式
func FormulaByName(name string) (PriceFormula, error) {
	switch name {
	case "gross_margin", "":
		return FormulaGrossMargin, nil
	case "markup":
		return FormulaMarkup, nil
	default:
		return PriceFormula{}, fmt.Errorf("unknown pricing formula %q", name)
	}
}

func (f PriceFormula) promotionRate(p *model.Product) float64 {
	if f.Promotion == PromotionByDiscount {
		return p.PromotionDiscount
	}
	return p.PromotionCostRate
}

// FeeDenominator (1-推广)(1-佣金)(1-提现)(1-支付手续费)
func (f PriceFormula) FeeDenominator(p *model.Product) float64 {
	return (1 - f.promotionRate(p)) *
		(1 - p.CommissionRate) *
		(1 - p.WithdrawalFeeRate) *
		(1 - p.PaymentProcessingFee)
}

// checkFeeRates 每项费率都必须小于 1
// 两项同时超过 1 时乘积会重新变正，只看分母拦不住
func (f PriceFormula) checkFeeRates(p *model.Product) error {
	rates := []struct {
		field string
		value float64
	}{
		{string(f.Promotion), f.promotionRate(p)},
		{"commission_rate", p.CommissionRate},
		{"withdrawal_fee_rate", p.WithdrawalFeeRate},
		{"payment_processing_fee", p.PaymentProcessingFee},
	}
	for _, r := range rates {
		if !finite(r.value) || r.value >= 1 {
			return configError(r.field, "fee rate must be below 1, got %s", num(r.value))
		}
	}
	return nil
}

// ==================== Resolver ====================

// PricingResult 单个渠道的定价结果
type PricingResult struct {
	ShippingCost  float64    `json:"shipping_cost"`
	LandedCostCNY float64    `json:"landed_cost_cny"`
	RetailCNY     float64    `json:"retail_cny"`
	RetailRUB     float64    `json:"retail_rub"`
	WithinBounds  bool       `json:"within_bounds"`
	Rejection     *Rejection `json:"rejection,omitempty"`
}

// Resolver 售价反推
type Resolver struct {
	formula      PriceFormula
	surchargeRUB float64
}

// NewResolver 创建售价反推器
func NewResolver(formula PriceFormula, surchargeRUB float64) *Resolver {
	if formula.Margin == nil {
		formula = FormulaGrossMargin
	}
	return &Resolver{formula: formula, surchargeRUB: surchargeRUB}
}

// DefaultResolver 毛利率公式 + 15 RUB 操作费
func DefaultResolver() *Resolver {
	return NewResolver(FormulaGrossMargin, DefaultOperationSurchargeRUB)
}

// Formula 当前使用的公式
func (r *Resolver) Formula() PriceFormula {
	return r.formula
}

// LandedCost 落地成本 = 采购价 + 贴标费 + 国内运费 + 操作费 + 渠道运费
func (r *Resolver) LandedCost(p *model.Product, shippingCost float64, rates exchange.Rates) (float64, error) {
	surcharge, err := rates.ToCNY(r.surchargeRUB, model.CurrencyRUB)
	if err != nil {
		return 0, configError("exchange_rate", "%v", err)
	}
	return p.UnitPrice + p.LabelingFee + p.ShippingFee + surcharge + shippingCost, nil
}

// RetailCNY 由落地成本反推人民币售价
func (r *Resolver) RetailCNY(p *model.Product, landedCost float64) (float64, error) {
	if err := r.formula.checkFeeRates(p); err != nil {
		return 0, err
	}
	denominator := r.formula.FeeDenominator(p)
	if denominator <= 0 || !finite(denominator) {
		return 0, configError("fee_rates", "fee denominator must be positive, got %s", num(denominator))
	}

	withMargin, err := r.formula.Margin.Apply(landedCost, p.TargetProfitMargin)
	if err != nil {
		return 0, err
	}

	retail := withMargin / denominator
	if !finite(retail) {
		return 0, configError("fee_rates", "retail price is not finite")
	}
	return retail, nil
}

// ResolvePrice 计算售价并检查渠道限价
// 超出限价是正常的淘汰结果，通过 WithinBounds/Rejection 返回，不是 error
func (r *Resolver) ResolvePrice(p *model.Product, c *model.CarrierRule, shippingCost float64, rates exchange.Rates) (*PricingResult, error) {
	landed, err := r.LandedCost(p, shippingCost, rates)
	if err != nil {
		return nil, err
	}
	retail, err := r.RetailCNY(p, landed)
	if err != nil {
		return nil, err
	}
	retailRUB, err := rates.FromCNY(retail, model.CurrencyRUB)
	if err != nil {
		return nil, configError("exchange_rate", "%v", err)
	}

	res := &PricingResult{
		ShippingCost:  shippingCost,
		LandedCostCNY: landed,
		RetailCNY:     retail,
		RetailRUB:     retailRUB,
		WithinBounds:  true,
	}

	rej, err := checkPriceBounds(c, retail, rates)
	if err != nil {
		return nil, err
	}
	if rej != nil {
		res.WithinBounds = false
		res.Rejection = rej
	}
	return res, nil
}

// checkPriceBounds 先上限后下限，各自按所属币种比较
func checkPriceBounds(c *model.CarrierRule, retailCNY float64, rates exchange.Rates) (*Rejection, error) {
	if c.PriceLimit > 0 {
		cur := currencyOrRUB(c.PriceLimitCurrency)
		price, err := rates.FromCNY(retailCNY, cur)
		if err != nil {
			return nil, configError("price_limit_currency", "%v", err)
		}
		if price > c.PriceLimit {
			return reject(CheckEconomic, CodePriceAboveLimit,
				"估算售价 %.2f %s 超价格上限 %s %s", price, cur, num(c.PriceLimit), cur), nil
		}
	}

	if c.PriceMin > 0 {
		cur := currencyOrRUB(c.PriceMinCurrency)
		price, err := rates.FromCNY(retailCNY, cur)
		if err != nil {
			return nil, configError("price_min_currency", "%v", err)
		}
		if price < c.PriceMin {
			return reject(CheckEconomic, CodePriceBelowMin,
				"估算售价 %.2f %s 低于价格下限 %s %s", price, cur, num(c.PriceMin), cur), nil
		}
	}
	return nil, nil
}

func currencyOrRUB(cur model.Currency) model.Currency {
	if cur == "" {
		return model.CurrencyRUB
	}
	return cur
}
