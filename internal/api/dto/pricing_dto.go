package dto

import "time"

// ==================== 请求 ====================

// QuoteReq 定价请求
type QuoteReq struct {
	ProductID int64  `json:"product_id" binding:"required,gt=0"`
	Policy    string `json:"policy"` // cheapest | fastest，默认 cheapest
	Trace     bool   `json:"trace"`  // 返回每个渠道的评估轨迹
}

// CarrierReq 创建/更新物流渠道
type CarrierReq struct {
	Name           string `json:"name" binding:"required"`
	Type           string `json:"type" binding:"required,oneof=land air"`
	DeliveryMethod string `json:"delivery_method"`

	MinDays int `json:"min_days" binding:"gte=0"`
	MaxDays int `json:"max_days" binding:"gte=0"`

	MinWeight float64 `json:"min_weight" binding:"gte=0"`
	MaxWeight float64 `json:"max_weight" binding:"gte=0"`

	MaxSumOfSides  float64 `json:"max_sum_of_sides" binding:"gte=0"`
	MaxLongestSide float64 `json:"max_longest_side" binding:"gte=0"`
	MaxSecondSide  float64 `json:"max_second_side" binding:"gte=0"`
	MinSecondSide  float64 `json:"min_second_side" binding:"gte=0"`
	MinLength      float64 `json:"min_length" binding:"gte=0"`

	MaxCylinderSum    float64 `json:"max_cylinder_sum" binding:"gte=0"`
	MinCylinderSum    float64 `json:"min_cylinder_sum" binding:"gte=0"`
	MaxCylinderLength float64 `json:"max_cylinder_length" binding:"gte=0"`
	MinCylinderLength float64 `json:"min_cylinder_length" binding:"gte=0"`

	VolumeMode           string  `json:"volume_mode" binding:"omitempty,oneof=none max_actual_vs_volume longest_side"`
	VolumeCoefficient    float64 `json:"volume_coefficient" binding:"gte=0"`
	LongestSideThreshold float64 `json:"longest_side_threshold" binding:"gte=0"`

	AllowBattery           bool    `json:"allow_battery"`
	AllowFlammable         bool    `json:"allow_flammable"`
	BatteryCapacityLimitWh float64 `json:"battery_capacity_limit_wh" binding:"gte=0"`
	RequireMSDS            bool    `json:"require_msds"`

	FeeMode       string  `json:"fee_mode" binding:"omitempty,oneof=base_plus_continue first_plus_continue"`
	BaseFee       float64 `json:"base_fee" binding:"gte=0"`
	FirstFee      float64 `json:"first_fee" binding:"gte=0"`
	FirstWeightG  float64 `json:"first_weight_g" binding:"gte=0"`
	ContinueFee   float64 `json:"continue_fee" binding:"gte=0"`
	ContinueUnitG float64 `json:"continue_unit" binding:"gte=0"`

	PriceLimit         float64 `json:"price_limit" binding:"gte=0"`
	PriceLimitCurrency string  `json:"price_limit_currency" binding:"omitempty,oneof=RUB USD CNY"`
	PriceMin           float64 `json:"price_min" binding:"gte=0"`
	PriceMinCurrency   string  `json:"price_min_currency" binding:"omitempty,oneof=RUB USD CNY"`
}

// ==================== 响应 ====================

// RatesResp 本次使用的汇率 (1 单位外币 = x CNY)
type RatesResp struct {
	RUB       float64   `json:"rub"`
	USD       float64   `json:"usd"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ModeStatsResp 候选渠道统计
type ModeStatsResp struct {
	Candidates int     `json:"candidates"`
	AvgCost    float64 `json:"avg_cost"`
	CostSaving float64 `json:"cost_saving"`
	AvgDays    float64 `json:"avg_days"`
	TimeSaving float64 `json:"time_saving"`
}

// ModeQuoteResp 某运输方式的最优渠道
type ModeQuoteResp struct {
	CarrierID      int64         `json:"carrier_id"`
	CarrierName    string        `json:"carrier_name"`
	DeliveryMethod string        `json:"delivery_method"`
	PriorityGroup  string        `json:"priority_group"`
	MinDays        int           `json:"min_days"`
	MaxDays        int           `json:"max_days"`
	ShippingCost   float64       `json:"shipping_cost"`
	LandedCostCNY  float64       `json:"landed_cost_cny"`
	PriceCNY       float64       `json:"price_cny"`
	PriceRUB       float64       `json:"price_rub"`
	Stats          ModeStatsResp `json:"stats"`
}

// EvaluationResp 单个渠道的评估结果
type EvaluationResp struct {
	CarrierID    int64    `json:"carrier_id"`
	CarrierName  string   `json:"carrier_name"`
	Type         string   `json:"type"`
	Status       string   `json:"status"` // passed | rejected | config_error | cancelled
	Check        string   `json:"check,omitempty"`
	Code         string   `json:"code,omitempty"`
	Reason       string   `json:"reason,omitempty"`
	ShippingCost *float64 `json:"shipping_cost,omitempty"`
	RetailCNY    *float64 `json:"retail_cny,omitempty"`
	Trace        []string `json:"trace,omitempty"`
}

// QuoteResp 定价结果
type QuoteResp struct {
	QuoteID        string           `json:"quote_id"`
	ProductID      int64            `json:"product_id"`
	Policy         string           `json:"policy"`
	Formula        string           `json:"formula"`
	Rates          RatesResp        `json:"rates"`
	Land           *ModeQuoteResp   `json:"land"`
	Air            *ModeQuoteResp   `json:"air"`
	SuggestedPrice float64          `json:"suggested_price"`
	ExpectedProfit float64          `json:"expected_profit"`
	ProfitMargin   float64          `json:"profit_margin"`
	Evaluations    []EvaluationResp `json:"evaluations"`
}

// EligibilityResp 资格判定
type EligibilityResp struct {
	ProductID int64    `json:"product_id"`
	CarrierID int64    `json:"carrier_id"`
	OK        bool     `json:"ok"`
	Check     string   `json:"check,omitempty"`
	Code      string   `json:"code,omitempty"`
	Reason    string   `json:"reason,omitempty"`
	Trace     []string `json:"trace,omitempty"`
}

// ShippingCostResp 运费试算
type ShippingCostResp struct {
	CarrierID int64   `json:"carrier_id"`
	FeeMode   string  `json:"fee_mode"`
	WeightG   float64 `json:"weight_g"`
	Cost      float64 `json:"cost"`
}

// ResolvePriceResp 售价反推
type ResolvePriceResp struct {
	ProductID     int64   `json:"product_id"`
	CarrierID     int64   `json:"carrier_id"`
	Formula       string  `json:"formula"`
	ShippingCost  float64 `json:"shipping_cost"`
	LandedCostCNY float64 `json:"landed_cost_cny"`
	RetailCNY     float64 `json:"retail_cny"`
	RetailRUB     float64 `json:"retail_rub"`
	WithinBounds  bool    `json:"within_bounds"`
	Code          string  `json:"code,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

// PriorityBandsResp 优先级分组重算结果
type PriorityBandsResp struct {
	UserID int64            `json:"user_id"`
	Bands  map[int64]string `json:"bands"`
	Counts map[string]int   `json:"counts"`
}

// ExchangeRateResp 单个币种对
type ExchangeRateResp struct {
	Pair      string     `json:"pair"`
	Rate      float64    `json:"rate"`
	UpdatedAt *time.Time `json:"updated_at"` // 从未成功刷新时为空
}

// ExchangeRatesResp 当前汇率
type ExchangeRatesResp struct {
	Rates []ExchangeRateResp `json:"rates"`
}
