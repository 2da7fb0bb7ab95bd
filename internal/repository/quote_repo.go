package repository

import (
	"context"

	"gorm.io/gorm"

	"carrier_pricing_v1/internal/model"
)

// QuoteRepository 定价记录仓储
type QuoteRepository interface {
	Create(ctx context.Context, quote *model.PricingQuote) error
	GetByQuoteID(ctx context.Context, userID int64, quoteID string) (*model.PricingQuote, error)
	ListByProduct(ctx context.Context, userID, productID int64, limit int) ([]model.PricingQuote, error)
}

type quoteRepo struct {
	db *gorm.DB
}

// NewQuoteRepository 创建定价记录仓储
func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepo{db: db}
}

func (r *quoteRepo) Create(ctx context.Context, quote *model.PricingQuote) error {
	return r.db.WithContext(ctx).Create(quote).Error
}

func (r *quoteRepo) GetByQuoteID(ctx context.Context, userID int64, quoteID string) (*model.PricingQuote, error) {
	var quote model.PricingQuote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND quote_id = ?", userID, quoteID).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// ListByProduct 最近的定价记录，新的在前
func (r *quoteRepo) ListByProduct(ctx context.Context, userID, productID int64, limit int) ([]model.PricingQuote, error) {
	if limit <= 0 {
		limit = 20
	}
	var quotes []model.PricingQuote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Order("id DESC").
		Limit(limit).
		Find(&quotes).Error
	return quotes, err
}
