package model

// ==================== 枚举 ====================

// TransportMode 运输方式
type TransportMode string

const (
	TransportLand TransportMode = "land"
	TransportAir  TransportMode = "air"
)

// Valid 是否为已知运输方式
func (m TransportMode) Valid() bool {
	return m == TransportLand || m == TransportAir
}

// VolumeMode 体积重计算方式
type VolumeMode string

const (
	VolumeNone              VolumeMode = "none"
	VolumeMaxActualVsVolume VolumeMode = "max_actual_vs_volume"
	VolumeLongestSide       VolumeMode = "longest_side"
)

// FeeMode 计费方式
type FeeMode string

const (
	FeeBasePlusContinue  FeeMode = "base_plus_continue"
	FeeFirstPlusContinue FeeMode = "first_plus_continue"
)

// Currency 限价币种
type Currency string

const (
	CurrencyRUB Currency = "RUB"
	CurrencyUSD Currency = "USD"
	CurrencyCNY Currency = "CNY"
)

// PriorityBand 时效优先级分组，A 最快，E 为无时效数据
type PriorityBand string

const (
	BandA PriorityBand = "A"
	BandB PriorityBand = "B"
	BandC PriorityBand = "C"
	BandD PriorityBand = "D"
	BandE PriorityBand = "E"
)

// Rank 排序权重，未设置或非法值按 D 处理
func (b PriorityBand) Rank() int {
	switch b {
	case BandA:
		return 0
	case BandB:
		return 1
	case BandC:
		return 2
	case BandE:
		return 4
	default:
		return 3
	}
}

// DefaultVolumeCoefficient 默认体积重系数
const DefaultVolumeCoefficient = 5000

// DefaultContinueUnitG 默认续重单位 (g)
const DefaultContinueUnitG = 100

// ==================== CarrierRule ====================

// CarrierRule 物流渠道规则
// 所有上下限字段 0 表示未设置
type CarrierRule struct {
	BaseModel
	UserID         int64         `gorm:"index;not null;comment:所属用户ID" json:"user_id"`
	Name           string        `gorm:"size:255;comment:渠道名称" json:"name"`
	TransportMode  TransportMode `gorm:"column:type;size:10;index;comment:运输方式 land/air" json:"type"`
	DeliveryMethod string        `gorm:"size:50;default:unknown;comment:派送方式" json:"delivery_method"`

	// --- 时效 ---
	MinDays       int          `gorm:"default:0;comment:最快时效(天)" json:"min_days"`
	MaxDays       int          `gorm:"default:0;comment:最慢时效(天)" json:"max_days"`
	PriorityGroup PriorityBand `gorm:"size:1;default:D;comment:时效优先级分组" json:"priority_group"`

	// --- 重量限制 (g) ---
	MinWeight float64 `gorm:"default:0;comment:最小重量(g)" json:"min_weight"`
	MaxWeight float64 `gorm:"default:0;comment:最大重量(g)" json:"max_weight"`

	// --- 标准包装尺寸限制 (cm) ---
	MaxSumOfSides  float64 `gorm:"default:0;comment:三边和上限" json:"max_sum_of_sides"`
	MaxLongestSide float64 `gorm:"default:0;comment:最长边上限" json:"max_longest_side"`
	MaxSecondSide  float64 `gorm:"default:0;comment:第二边长上限" json:"max_second_side"`
	MinSecondSide  float64 `gorm:"default:0;comment:第二边长下限" json:"min_second_side"`
	MinLength      float64 `gorm:"default:0;comment:长度下限" json:"min_length"`

	// --- 圆柱形包装限制 (cm) ---
	MaxCylinderSum    float64 `gorm:"default:0;comment:2倍直径+长度上限" json:"max_cylinder_sum"`
	MinCylinderSum    float64 `gorm:"default:0;comment:2倍直径+长度下限" json:"min_cylinder_sum"`
	MaxCylinderLength float64 `gorm:"default:0;comment:圆柱长度上限" json:"max_cylinder_length"`
	MinCylinderLength float64 `gorm:"default:0;comment:圆柱长度下限" json:"min_cylinder_length"`

	// --- 体积重 ---
	VolumeMode           VolumeMode `gorm:"size:32;default:none;comment:体积重模式" json:"volume_mode"`
	VolumeCoefficient    float64    `gorm:"default:5000;comment:体积重系数" json:"volume_coefficient"`
	LongestSideThreshold float64    `gorm:"default:0;comment:最长边阈值(cm)" json:"longest_side_threshold"`

	// --- 特殊货物 ---
	AllowBattery           bool    `gorm:"default:false;comment:是否允许带电" json:"allow_battery"`
	AllowFlammable         bool    `gorm:"default:false;comment:是否允许易燃液体" json:"allow_flammable"`
	BatteryCapacityLimitWh float64 `gorm:"default:0;comment:电池容量上限(Wh)" json:"battery_capacity_limit_wh"`
	RequireMSDS            bool    `gorm:"column:require_msds;default:false;comment:是否要求MSDS" json:"require_msds"`

	// --- 计费 (CNY) ---
	FeeMode       FeeMode `gorm:"size:32;default:base_plus_continue;comment:计费方式" json:"fee_mode"`
	BaseFee       float64 `gorm:"default:0;comment:基础费用" json:"base_fee"`
	FirstFee      float64 `gorm:"default:0;comment:首重费用" json:"first_fee"`
	FirstWeightG  float64 `gorm:"default:0;comment:首重(g)" json:"first_weight_g"`
	ContinueFee   float64 `gorm:"default:0;comment:续重费用" json:"continue_fee"`
	ContinueUnitG float64 `gorm:"default:100;comment:续重单位(g)" json:"continue_unit"`

	// --- 售价限制 (按各自币种存储原值) ---
	PriceLimit         float64  `gorm:"default:0;comment:售价上限" json:"price_limit"`
	PriceLimitCurrency Currency `gorm:"size:3;default:RUB;comment:售价上限币种" json:"price_limit_currency"`
	PriceMin           float64  `gorm:"default:0;comment:售价下限" json:"price_min"`
	PriceMinCurrency   Currency `gorm:"size:3;default:RUB;comment:售价下限币种" json:"price_min_currency"`
}

func (CarrierRule) TableName() string {
	return "logistics"
}

// HasCylinderLimits 是否配置了任一圆柱形包装限制
func (c *CarrierRule) HasCylinderLimits() bool {
	return c.MaxCylinderSum > 0 || c.MinCylinderSum > 0 ||
		c.MaxCylinderLength > 0 || c.MinCylinderLength > 0
}

// AvgDays 平均时效
func (c *CarrierRule) AvgDays() float64 {
	return float64(c.MinDays+c.MaxDays) / 2
}

// HasTransitData 是否有时效数据
func (c *CarrierRule) HasTransitData() bool {
	return !(c.MinDays == 0 && c.MaxDays == 0)
}
