package model

import "gorm.io/datatypes"

// PricingQuote 定价记录
type PricingQuote struct {
	BaseModel
	QuoteID   string `gorm:"size:36;uniqueIndex;not null;comment:报价ID" json:"quote_id"`
	UserID    int64  `gorm:"index;not null;comment:用户ID" json:"user_id"`
	ProductID int64  `gorm:"index;not null;comment:商品ID" json:"product_id"`
	Policy    string `gorm:"size:16;comment:优选策略" json:"policy"`

	// 本次使用的汇率
	RubRate float64 `gorm:"comment:RUB汇率" json:"rub_rate"`
	UsdRate float64 `gorm:"comment:USD汇率" json:"usd_rate"`

	// 最优渠道 (0 表示无可用渠道)
	LandCarrierID int64    `gorm:"default:0;comment:最优陆运ID" json:"land_carrier_id"`
	AirCarrierID  int64    `gorm:"default:0;comment:最优空运ID" json:"air_carrier_id"`
	LandPrice     *float64 `gorm:"comment:陆运售价(CNY)" json:"land_price"`
	AirPrice      *float64 `gorm:"comment:空运售价(CNY)" json:"air_price"`

	// 全量评估明细
	Detail datatypes.JSON `gorm:"comment:评估明细" json:"detail"`
}

func (PricingQuote) TableName() string {
	return "pricing_quotes"
}
