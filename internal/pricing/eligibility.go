package pricing

import (
	"fmt"
	"sort"

	"carrier_pricing_v1/internal/exchange"
	"carrier_pricing_v1/internal/model"
)

// ==================== 检查项与淘汰原因 ====================

// CheckName 检查项名称
type CheckName string

const (
	CheckWeight     CheckName = "weight"
	CheckDimensions CheckName = "dimensions"
	CheckRestricted CheckName = "restricted_goods"
	CheckBattery    CheckName = "battery"
	CheckEconomic   CheckName = "economic"
)

// ReasonCode 淘汰原因代码
type ReasonCode string

const (
	CodeWeightBelowMin          ReasonCode = "weight_below_min"
	CodeWeightAboveMax          ReasonCode = "weight_above_max"
	CodeCylinderSumAboveMax     ReasonCode = "cylinder_sum_above_max"
	CodeCylinderSumBelowMin     ReasonCode = "cylinder_sum_below_min"
	CodeCylinderLengthAboveMax  ReasonCode = "cylinder_length_above_max"
	CodeCylinderLengthBelowMin  ReasonCode = "cylinder_length_below_min"
	CodeSidesSumAboveMax        ReasonCode = "sides_sum_above_max"
	CodeLongestSideAboveMax     ReasonCode = "longest_side_above_max"
	CodeSecondSideAboveMax      ReasonCode = "second_side_above_max"
	CodeSecondSideBelowMin      ReasonCode = "second_side_below_min"
	CodeLengthBelowMin          ReasonCode = "length_below_min"
	CodeBatteryNotAllowed       ReasonCode = "battery_not_allowed"
	CodeFlammableNotAllowed     ReasonCode = "flammable_not_allowed"
	CodeBatteryCapacityExceeded ReasonCode = "battery_capacity_above_limit"
	CodeMSDSRequired            ReasonCode = "msds_required"
	CodePriceAboveLimit         ReasonCode = "price_above_limit"
	CodePriceBelowMin           ReasonCode = "price_below_min"
)

// Rejection 渠道被淘汰的原因，是正常结果而不是错误
type Rejection struct {
	Check  CheckName  `json:"check"`
	Code   ReasonCode `json:"code"`
	Reason string     `json:"reason"`
}

func reject(check CheckName, code ReasonCode, format string, args ...interface{}) *Rejection {
	return &Rejection{Check: check, Code: code, Reason: fmt.Sprintf(format, args...)}
}

// Verdict 资格判定结果
type Verdict struct {
	OK        bool       `json:"ok"`
	Rejection *Rejection `json:"rejection,omitempty"`
	Trace     []string   `json:"trace,omitempty"`
}

// MinLengthBasis 长度下限比较的对象
type MinLengthBasis string

const (
	MinLengthLongestSide MinLengthBasis = "longest_side" // 三边中的最长边
	MinLengthField       MinLengthBasis = "length_field" // 商品的长度字段 (圆柱为圆柱长度)
)

// ==================== Filter ====================

// evaluation 单个 (渠道, 商品) 的判定上下文
type evaluation struct {
	carrier *model.CarrierRule
	product *model.Product
	rates   exchange.Rates
	trace   *tracer

	billableG float64
	priced    *PricingResult
}

// Check 一个具名检查项，返回第一个违反的原因
type Check struct {
	Name CheckName
	Run  func(f *Filter, ev *evaluation) (*Rejection, error)
}

// DefaultChecks 固定的检查顺序，只报告第一个失败项
var DefaultChecks = []Check{
	{Name: CheckWeight, Run: (*Filter).checkWeight},
	{Name: CheckDimensions, Run: (*Filter).checkDimensions},
	{Name: CheckRestricted, Run: (*Filter).checkRestricted},
	{Name: CheckBattery, Run: (*Filter).checkBattery},
	{Name: CheckEconomic, Run: (*Filter).checkEconomic},
}

// Filter 渠道资格过滤器
type Filter struct {
	resolver  *Resolver
	minLength MinLengthBasis
	checks    []Check
}

// FilterOption 过滤器选项
type FilterOption func(*Filter)

// WithMinLengthBasis 设置长度下限的比较对象
func WithMinLengthBasis(basis MinLengthBasis) FilterOption {
	return func(f *Filter) {
		if basis == MinLengthField {
			f.minLength = MinLengthField
		} else {
			f.minLength = MinLengthLongestSide
		}
	}
}

// NewFilter 创建过滤器，resolver 为 nil 时使用默认公式
func NewFilter(resolver *Resolver, opts ...FilterOption) *Filter {
	if resolver == nil {
		resolver = DefaultResolver()
	}
	f := &Filter{
		resolver:  resolver,
		minLength: MinLengthLongestSide,
		checks:    DefaultChecks,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Checks 检查项顺序
func (f *Filter) Checks() []CheckName {
	names := make([]CheckName, 0, len(f.checks))
	for _, c := range f.checks {
		names = append(names, c.Name)
	}
	return names
}

// EvaluateEligibility 判断渠道能否承运该商品
// 淘汰通过 Verdict 返回，只有参数错误才返回 error
func (f *Filter) EvaluateEligibility(c *model.CarrierRule, p *model.Product, rates exchange.Rates) (Verdict, error) {
	v, _, err := f.run(c, p, rates, nil)
	return v, err
}

// run 依次执行检查，通过时同时返回经济检查算出的定价结果
func (f *Filter) run(c *model.CarrierRule, p *model.Product, rates exchange.Rates, tr *tracer) (Verdict, *PricingResult, error) {
	ev := &evaluation{carrier: c, product: p, rates: rates, trace: tr}

	for _, check := range f.checks {
		rej, err := check.Run(f, ev)
		if err != nil {
			tr.add("[%s] 参数错误: %v", check.Name, err)
			return Verdict{Trace: tr.lines()}, nil, err
		}
		if rej != nil {
			tr.add("[%s] 淘汰: %s", check.Name, rej.Reason)
			return Verdict{Rejection: rej, Trace: tr.lines()}, nil, nil
		}
	}

	tr.add("全部检查通过")
	return Verdict{OK: true, Trace: tr.lines()}, ev.priced, nil
}

// ==================== 1. 计费重量 ====================

// BillableWeight 用于重量区间判断的计费重量 (g)
// 运费始终按实际重量计算，不使用此值
func BillableWeight(c *model.CarrierRule, p *model.Product) (float64, error) {
	sides := p.Sides()
	switch c.VolumeMode {
	case model.VolumeNone, "":
		return p.WeightG, nil
	case model.VolumeMaxActualVsVolume:
		return volumetricOrActual(c, p, sides)
	case model.VolumeLongestSide:
		if longest(sides) > c.LongestSideThreshold {
			return volumetricOrActual(c, p, sides)
		}
		return p.WeightG, nil
	default:
		return 0, configError("volume_mode", "unknown volume mode %q", c.VolumeMode)
	}
}

func volumetricOrActual(c *model.CarrierRule, p *model.Product, sides [3]float64) (float64, error) {
	if c.VolumeCoefficient <= 0 {
		return 0, configError("volume_coefficient", "must be positive, got %s", num(c.VolumeCoefficient))
	}
	volumeKg := sides[0] * sides[1] * sides[2] / c.VolumeCoefficient
	actualKg := p.WeightG / 1000
	if volumeKg > actualKg {
		return volumeKg * 1000, nil
	}
	return p.WeightG, nil
}

func (f *Filter) checkWeight(ev *evaluation) (*Rejection, error) {
	c := ev.carrier
	w, err := BillableWeight(c, ev.product)
	if err != nil {
		return nil, err
	}
	ev.billableG = w
	ev.trace.add("体积重量模式: %s, 实际重量: %sg, 计费重量: %sg, 限制: %sg ~ %sg",
		volumeModeName(c.VolumeMode), num(ev.product.WeightG), num(w), num(c.MinWeight), maxLabel(c.MaxWeight))

	if w < c.MinWeight {
		return reject(CheckWeight, CodeWeightBelowMin, "重量 %s g 低于下限 %s g", num(w), num(c.MinWeight)), nil
	}
	if c.MaxWeight > 0 && w > c.MaxWeight {
		return reject(CheckWeight, CodeWeightAboveMax, "重量 %s g 高于上限 %s g", num(w), num(c.MaxWeight)), nil
	}
	return nil, nil
}

// ==================== 2. 尺寸 ====================

func (f *Filter) checkDimensions(ev *evaluation) (*Rejection, error) {
	c, p := ev.carrier, ev.product

	if p.IsCylinder && c.HasCylinderLimits() {
		if rej := checkCylinder(c, p, ev.trace); rej != nil {
			return rej, nil
		}
	}

	sides := p.Sides()
	sorted := sortedDesc(sides)
	sum := sides[0] + sides[1] + sides[2]
	ev.trace.add("三边: [%s %s %s], 三边和: %s, 最长边: %s",
		num(sides[0]), num(sides[1]), num(sides[2]), num(sum), num(sorted[0]))

	if c.MaxSumOfSides > 0 && sum > c.MaxSumOfSides {
		return reject(CheckDimensions, CodeSidesSumAboveMax,
			"三边之和 %s cm 超过限制 %s cm", num(sum), num(c.MaxSumOfSides)), nil
	}
	if c.MaxLongestSide > 0 && sorted[0] > c.MaxLongestSide {
		return reject(CheckDimensions, CodeLongestSideAboveMax,
			"最长边 %s cm 超过限制 %s cm", num(sorted[0]), num(c.MaxLongestSide)), nil
	}
	if c.MaxSecondSide > 0 && sorted[1] > c.MaxSecondSide {
		return reject(CheckDimensions, CodeSecondSideAboveMax,
			"第二边长 %s cm 超过限制 %s cm", num(sorted[1]), num(c.MaxSecondSide)), nil
	}
	if c.MinSecondSide > 0 && sorted[1] < c.MinSecondSide {
		return reject(CheckDimensions, CodeSecondSideBelowMin,
			"第二边长 %s cm 低于下限 %s cm", num(sorted[1]), num(c.MinSecondSide)), nil
	}
	if c.MinLength > 0 {
		if f.minLength == MinLengthField {
			length := p.LengthCm
			if p.IsCylinder {
				length = p.CylinderLength
			}
			if length < c.MinLength {
				return reject(CheckDimensions, CodeLengthBelowMin,
					"长度 %s cm 低于下限 %s cm", num(length), num(c.MinLength)), nil
			}
		} else if sorted[0] < c.MinLength {
			return reject(CheckDimensions, CodeLengthBelowMin,
				"最长边 %s cm 低于下限 %s cm", num(sorted[0]), num(c.MinLength)), nil
		}
	}
	return nil, nil
}

func checkCylinder(c *model.CarrierRule, p *model.Product, tr *tracer) *Rejection {
	cylSum := p.CylinderSum()
	length := p.CylinderLength
	tr.add("圆柱形包装: 直径=%scm, 长度=%scm, 2倍直径+长度=%scm",
		num(p.CylinderDiameter), num(length), num(cylSum))

	if c.MaxCylinderSum > 0 && cylSum > c.MaxCylinderSum {
		return reject(CheckDimensions, CodeCylinderSumAboveMax,
			"2倍直径与长度之和 %s cm 超过限制 %s cm", num(cylSum), num(c.MaxCylinderSum))
	}
	if c.MinCylinderSum > 0 && cylSum < c.MinCylinderSum {
		return reject(CheckDimensions, CodeCylinderSumBelowMin,
			"2倍直径与长度之和 %s cm 低于下限 %s cm", num(cylSum), num(c.MinCylinderSum))
	}
	if c.MaxCylinderLength > 0 && length > c.MaxCylinderLength {
		return reject(CheckDimensions, CodeCylinderLengthAboveMax,
			"圆柱长度 %s cm 超过限制 %s cm", num(length), num(c.MaxCylinderLength))
	}
	if c.MinCylinderLength > 0 && length < c.MinCylinderLength {
		return reject(CheckDimensions, CodeCylinderLengthBelowMin,
			"圆柱长度 %s cm 低于下限 %s cm", num(length), num(c.MinCylinderLength))
	}
	return nil
}

// ==================== 3. 特殊货物 ====================

func (f *Filter) checkRestricted(ev *evaluation) (*Rejection, error) {
	c, p := ev.carrier, ev.product
	if p.HasBattery && !c.AllowBattery {
		return reject(CheckRestricted, CodeBatteryNotAllowed, "产品含电池但物流不允许电池"), nil
	}
	if p.HasFlammable && !c.AllowFlammable {
		return reject(CheckRestricted, CodeFlammableNotAllowed, "产品含易燃液体但物流不允许易燃液体"), nil
	}
	return nil, nil
}

// ==================== 4. 电池容量 & MSDS ====================

// BatteryWh 电池能量，优先使用标注的 Wh，否则 mAh × V / 1000
// 没有任何容量数据时 ok 为 false
func BatteryWh(p *model.Product) (wh float64, ok bool) {
	if p.BatteryCapacityWh > 0 {
		return p.BatteryCapacityWh, true
	}
	if p.BatteryCapacityMah <= 0 && p.BatteryVoltage <= 0 {
		return 0, false
	}
	return p.BatteryCapacityMah * p.BatteryVoltage / 1000, true
}

func (f *Filter) checkBattery(ev *evaluation) (*Rejection, error) {
	c, p := ev.carrier, ev.product
	if !p.HasBattery {
		return nil, nil
	}

	if limit := c.BatteryCapacityLimitWh; limit > 0 {
		wh, ok := BatteryWh(p)
		if !ok {
			ev.trace.add("电池容量mAh和V都为0，跳过容量限制判断")
		} else {
			ev.trace.add("电池容量: %sWh, 限制: %sWh", num(wh), num(limit))
			if wh > limit {
				return reject(CheckBattery, CodeBatteryCapacityExceeded,
					"电池容量 %s Wh 超过物流限制 %s Wh", num(wh), num(limit)), nil
			}
		}
	}

	if c.RequireMSDS && !p.HasMSDS {
		return reject(CheckBattery, CodeMSDSRequired, "物流要求 MSDS 但产品未提供"), nil
	}
	return nil, nil
}

// ==================== 5. 限价 ====================

func (f *Filter) checkEconomic(ev *evaluation) (*Rejection, error) {
	c, p := ev.carrier, ev.product

	schedule, err := ScheduleOf(c)
	if err != nil {
		return nil, err
	}
	cost := schedule.Cost(p.WeightG)
	ev.trace.add("计费方式: %s, %s", feeModeName(c.FeeMode), schedule.Describe(p.WeightG))

	res, err := f.resolver.ResolvePrice(p, c, cost, ev.rates)
	if err != nil {
		return nil, err
	}
	ev.trace.add("落地成本: %.2f CNY, 估算售价: %.2f CNY / %.2f RUB",
		res.LandedCostCNY, res.RetailCNY, res.RetailRUB)

	if !res.WithinBounds {
		return res.Rejection, nil
	}
	ev.priced = res
	return nil, nil
}

// ==================== helpers ====================

func longest(sides [3]float64) float64 {
	return sortedDesc(sides)[0]
}

func sortedDesc(sides [3]float64) [3]float64 {
	s := sides
	sort.Sort(sort.Reverse(sort.Float64Slice(s[:])))
	return s
}

func maxLabel(v float64) string {
	if v <= 0 {
		return "不限"
	}
	return num(v)
}

func volumeModeName(m model.VolumeMode) model.VolumeMode {
	if m == "" {
		return model.VolumeNone
	}
	return m
}

func feeModeName(m model.FeeMode) model.FeeMode {
	if m == "" {
		return model.FeeBasePlusContinue
	}
	return m
}
