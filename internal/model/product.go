package model

// Product 待定价商品
// 数值字段在入库时已补零，定价引擎不再做完整性校验
type Product struct {
	BaseModel
	UserID int64 `gorm:"index;not null;comment:所属用户ID" json:"user_id"`

	// --- 基本信息 ---
	Name        string `gorm:"size:255;comment:商品名称" json:"name"`
	RussianName string `gorm:"size:255;comment:俄文名称" json:"russian_name"`
	Category    string `gorm:"size:100;comment:类目" json:"category"`
	ModelNo     string `gorm:"column:model;size:100;comment:型号" json:"model"`

	// --- 物理属性 ---
	WeightG          float64 `gorm:"default:0;comment:实际重量(g)" json:"weight_g"`
	LengthCm         float64 `gorm:"default:0;comment:长(cm)" json:"length_cm"`
	WidthCm          float64 `gorm:"default:0;comment:宽(cm)" json:"width_cm"`
	HeightCm         float64 `gorm:"default:0;comment:高(cm)" json:"height_cm"`
	IsCylinder       bool    `gorm:"default:false;comment:是否圆柱形包装" json:"is_cylinder"`
	CylinderDiameter float64 `gorm:"default:0;comment:圆柱直径(cm)" json:"cylinder_diameter"`
	CylinderLength   float64 `gorm:"default:0;comment:圆柱长度(cm)" json:"cylinder_length"`

	// --- 监管属性 ---
	HasBattery         bool    `gorm:"default:false;comment:是否含电池" json:"has_battery"`
	BatteryCapacityWh  float64 `gorm:"default:0;comment:电池容量(Wh)" json:"battery_capacity_wh"`
	BatteryCapacityMah float64 `gorm:"default:0;comment:电池容量(mAh)" json:"battery_capacity_mah"`
	BatteryVoltage     float64 `gorm:"default:0;comment:电池电压(V)" json:"battery_voltage"`
	HasMSDS            bool    `gorm:"column:has_msds;default:false;comment:是否有MSDS" json:"has_msds"`
	HasFlammable       bool    `gorm:"default:false;comment:是否含易燃液体" json:"has_flammable"`

	// --- 成本与费率 (金额单位: CNY, 费率为 0~1 小数) ---
	UnitPrice            float64 `gorm:"default:0;comment:采购单价" json:"unit_price"`
	ShippingFee          float64 `gorm:"default:0;comment:国内运费" json:"shipping_fee"`
	LabelingFee          float64 `gorm:"default:0;comment:贴标费" json:"labeling_fee"`
	PromotionDiscount    float64 `gorm:"default:0.05;comment:活动折扣率" json:"promotion_discount"`
	PromotionCostRate    float64 `gorm:"default:0.115;comment:推广费率" json:"promotion_cost_rate"`
	CommissionRate       float64 `gorm:"default:0.17;comment:平台佣金率" json:"commission_rate"`
	WithdrawalFeeRate    float64 `gorm:"default:0.01;comment:提现费率" json:"withdrawal_fee_rate"`
	PaymentProcessingFee float64 `gorm:"default:0.01;comment:支付手续费率" json:"payment_processing_fee"`
	TargetProfitMargin   float64 `gorm:"default:0.5;comment:目标利润率" json:"target_profit_margin"`
}

func (Product) TableName() string {
	return "products"
}

// Sides 商品包装的三边 (cm)
// 圆柱按 [直径, 直径, 长度] 折算
func (p *Product) Sides() [3]float64 {
	if p.IsCylinder {
		return [3]float64{p.CylinderDiameter, p.CylinderDiameter, p.CylinderLength}
	}
	return [3]float64{p.LengthCm, p.WidthCm, p.HeightCm}
}

// CylinderSum 2倍直径 + 长度
func (p *Product) CylinderSum() float64 {
	return 2*p.CylinderDiameter + p.CylinderLength
}
