package model

import "time"

// ExchangeRate 最近一次成功获取的汇率快照，用作冷启动兜底
// Rate 为 1 单位外币折合的人民币金额
type ExchangeRate struct {
	BaseModel
	Pair      string    `gorm:"size:16;uniqueIndex;not null;comment:币种对" json:"pair"`
	Rate      float64   `gorm:"not null;comment:汇率" json:"rate"`
	FetchedAt time.Time `gorm:"comment:获取时间" json:"fetched_at"`
}

func (ExchangeRate) TableName() string {
	return "exchange_rates"
}
