package dto

import "carrier_pricing_v1/internal/model"

// ==================== 请求 DTO ====================

// ProductReq 创建/更新待定价商品
type ProductReq struct {
	Name        string `json:"name" binding:"required,max=255"`
	RussianName string `json:"russian_name"`
	Category    string `json:"category"`
	Model       string `json:"model"`

	// 物理属性 (g / cm)
	WeightG          float64 `json:"weight_g" binding:"gte=0"`
	LengthCm         float64 `json:"length_cm" binding:"gte=0"`
	WidthCm          float64 `json:"width_cm" binding:"gte=0"`
	HeightCm         float64 `json:"height_cm" binding:"gte=0"`
	IsCylinder       bool    `json:"is_cylinder"`
	CylinderDiameter float64 `json:"cylinder_diameter" binding:"gte=0"`
	CylinderLength   float64 `json:"cylinder_length" binding:"gte=0"`

	// 监管属性
	HasBattery         bool    `json:"has_battery"`
	BatteryCapacityWh  float64 `json:"battery_capacity_wh" binding:"gte=0"`
	BatteryCapacityMah float64 `json:"battery_capacity_mah" binding:"gte=0"`
	BatteryVoltage     float64 `json:"battery_voltage" binding:"gte=0"`
	HasMSDS            bool    `json:"has_msds"`
	HasFlammable       bool    `json:"has_flammable"`

	// 成本 (CNY)
	UnitPrice   float64 `json:"unit_price" binding:"gte=0"`
	ShippingFee float64 `json:"shipping_fee" binding:"gte=0"`
	LabelingFee float64 `json:"labeling_fee" binding:"gte=0"`

	// 费率，不传使用默认值
	PromotionDiscount    *float64 `json:"promotion_discount" binding:"omitempty,gte=0,lt=1"`
	PromotionCostRate    *float64 `json:"promotion_cost_rate" binding:"omitempty,gte=0,lt=1"`
	CommissionRate       *float64 `json:"commission_rate" binding:"omitempty,gte=0,lt=1"`
	WithdrawalFeeRate    *float64 `json:"withdrawal_fee_rate" binding:"omitempty,gte=0,lt=1"`
	PaymentProcessingFee *float64 `json:"payment_processing_fee" binding:"omitempty,gte=0,lt=1"`
	TargetProfitMargin   *float64 `json:"target_profit_margin" binding:"omitempty,gte=0"`
}

// ProductListReq 商品列表查询
type ProductListReq struct {
	Category string `form:"category"`
	Keyword  string `form:"keyword"`
	Page     int    `form:"page" binding:"omitempty,gte=1"`
	PageSize int    `form:"page_size" binding:"omitempty,gte=1,lte=100"`
}

// ==================== 响应 DTO ====================

// ProductListResp 商品列表
type ProductListResp struct {
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
	List     []model.Product `json:"list"`
}

// CarrierListResp 物流渠道列表
type CarrierListResp struct {
	Total int                 `json:"total"`
	List  []model.CarrierRule `json:"list"`
}

// QuoteHistoryResp 定价历史
type QuoteHistoryResp struct {
	ProductID int64                `json:"product_id"`
	List      []model.PricingQuote `json:"list"`
}
