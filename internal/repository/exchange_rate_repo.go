package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"carrier_pricing_v1/internal/exchange"
	"carrier_pricing_v1/internal/model"
)

// ExchangeRateRepository 汇率快照仓储，实现 exchange.Store
type ExchangeRateRepository interface {
	exchange.Store
	List(ctx context.Context) ([]model.ExchangeRate, error)
}

type exchangeRateRepo struct {
	db *gorm.DB
}

// NewExchangeRateRepository 创建汇率快照仓储
func NewExchangeRateRepository(db *gorm.DB) ExchangeRateRepository {
	return &exchangeRateRepo{db: db}
}

func (r *exchangeRateRepo) Load(ctx context.Context, pair exchange.Pair) (float64, time.Time, error) {
	var row model.ExchangeRate
	err := r.db.WithContext(ctx).
		Where("pair = ?", string(pair)).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, time.Time{}, exchange.ErrNoSnapshot
	}
	if err != nil {
		return 0, time.Time{}, err
	}
	return row.Rate, row.FetchedAt, nil
}

// Save 每个币种对只保留最新一条
func (r *exchangeRateRepo) Save(ctx context.Context, pair exchange.Pair, rate float64, fetchedAt time.Time) error {
	row := model.ExchangeRate{
		Pair:      string(pair),
		Rate:      rate,
		FetchedAt: fetchedAt,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pair"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate", "fetched_at", "updated_at"}),
	}).Create(&row).Error
}

func (r *exchangeRateRepo) List(ctx context.Context) ([]model.ExchangeRate, error) {
	var rows []model.ExchangeRate
	err := r.db.WithContext(ctx).Order("pair ASC").Find(&rows).Error
	return rows, err
}
