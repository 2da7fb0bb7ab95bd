package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"carrier_pricing_v1/internal/api/dto"
	"carrier_pricing_v1/internal/exchange"
	"carrier_pricing_v1/internal/model"
	"carrier_pricing_v1/internal/pricing"
	"carrier_pricing_v1/internal/repository"
)

// ==================== 测试辅助 ====================

type fixedRates map[exchange.Pair]float64

func (r fixedRates) CurrentRate(pair exchange.Pair) float64 { return r[pair] }

var testRates = fixedRates{exchange.PairRUB: 0.09, exchange.PairUSD: 7.2}

func setupServiceDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&model.Product{}, &model.CarrierRule{}, &model.ExchangeRate{}, &model.PricingQuote{})
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

type pricingFixture struct {
	db       *gorm.DB
	products repository.ProductRepository
	carriers repository.CarrierRepository
	quotes   repository.QuoteRepository
	svc      *PricingService
}

func newPricingFixture(t *testing.T) *pricingFixture {
	db := setupServiceDB(t)
	f := &pricingFixture{
		db:       db,
		products: repository.NewProductRepository(db),
		carriers: repository.NewCarrierRepository(db),
		quotes:   repository.NewQuoteRepository(db),
	}
	engine := pricing.NewEngine(pricing.NewFilter(nil), 4, nil)
	f.svc = NewPricingService(f.products, f.carriers, f.quotes, testRates, engine, nil)
	return f
}

func (f *pricingFixture) addProduct(t *testing.T, userID int64) *model.Product {
	p := &model.Product{
		UserID:    userID,
		Name:      "保温杯",
		WeightG:   250,
		LengthCm:  20,
		WidthCm:   10,
		HeightCm:  5,
		UnitPrice: 10,
	}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *pricingFixture) addCarrier(t *testing.T, userID int64, name string, mode model.TransportMode, baseFee float64, minDays, maxDays int) *model.CarrierRule {
	c := &model.CarrierRule{
		UserID:        userID,
		Name:          name,
		TransportMode: mode,
		MinDays:       minDays,
		MaxDays:       maxDays,
		MaxWeight:     10000,
		BaseFee:       baseFee,
		ContinueFee:   2,
		ContinueUnitG: 100,
	}
	require.NoError(t, f.carriers.Create(context.Background(), c))
	return c
}

// ==================== Quote ====================

func TestPricingService_Quote(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()

	p := f.addProduct(t, 1)
	cheap := f.addCarrier(t, 1, "陆运经济", model.TransportLand, 20, 15, 25) // 运费 26
	fast := f.addCarrier(t, 1, "陆运快线", model.TransportLand, 30, 7, 11)   // 运费 36
	air := f.addCarrier(t, 1, "空运", model.TransportAir, 50, 3, 5)         // 运费 56
	heavy := f.addCarrier(t, 1, "重货专线", model.TransportLand, 10, 10, 20)
	heavy.MinWeight = 1000
	require.NoError(t, f.carriers.Update(ctx, heavy))
	f.addCarrier(t, 2, "他人渠道", model.TransportLand, 1, 1, 2)

	resp, err := f.svc.Quote(ctx, 1, &dto.QuoteReq{ProductID: p.ID})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.QuoteID)
	assert.Equal(t, "cheapest", resp.Policy)
	assert.Equal(t, "gross_margin", resp.Formula)
	assert.Equal(t, 0.09, resp.Rates.RUB)

	require.NotNil(t, resp.Land)
	assert.Equal(t, cheap.ID, resp.Land.CarrierID)
	assert.Equal(t, 26.0, resp.Land.ShippingCost)
	assert.Equal(t, 2, resp.Land.Stats.Candidates)

	require.NotNil(t, resp.Air)
	assert.Equal(t, air.ID, resp.Air.CarrierID)
	assert.Equal(t, resp.Land.PriceCNY, resp.SuggestedPrice)
	assert.Equal(t, 50.0, resp.ProfitMargin)

	require.Len(t, resp.Evaluations, 4, "只评估当前用户的渠道")
	statuses := map[int64]dto.EvaluationResp{}
	for _, ev := range resp.Evaluations {
		statuses[ev.CarrierID] = ev
	}
	assert.Equal(t, "passed", statuses[fast.ID].Status)
	assert.Equal(t, "rejected", statuses[heavy.ID].Status)
	assert.Equal(t, string(pricing.CheckWeight), statuses[heavy.ID].Check)
	assert.Equal(t, string(pricing.CodeWeightBelowMin), statuses[heavy.ID].Code)
	assert.Empty(t, statuses[fast.ID].Trace)

	// 定价记录已保存
	saved, err := f.svc.GetQuote(ctx, 1, resp.QuoteID)
	require.NoError(t, err)
	assert.Equal(t, cheap.ID, saved.LandCarrierID)
	assert.Equal(t, air.ID, saved.AirCarrierID)
	require.NotNil(t, saved.LandPrice)
	assert.Equal(t, resp.Land.PriceCNY, *saved.LandPrice)

	var detail dto.QuoteResp
	require.NoError(t, json.Unmarshal(saved.Detail, &detail))
	assert.Len(t, detail.Evaluations, 4)

	history, err := f.svc.ListQuotes(ctx, 1, p.ID, 10)
	require.NoError(t, err)
	assert.Len(t, history.List, 1)
}

func TestPricingService_QuoteFastestWithTrace(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()

	p := f.addProduct(t, 1)
	f.addCarrier(t, 1, "陆运经济", model.TransportLand, 20, 15, 25)
	fast := f.addCarrier(t, 1, "陆运快线", model.TransportLand, 30, 7, 11)
	require.NoError(t, f.carriers.UpdatePriorityBands(ctx, 1, map[int64]model.PriorityBand{fast.ID: model.BandA}))

	resp, err := f.svc.Quote(ctx, 1, &dto.QuoteReq{ProductID: p.ID, Policy: "速度优先", Trace: true})
	require.NoError(t, err)

	assert.Equal(t, "fastest", resp.Policy)
	require.NotNil(t, resp.Land)
	assert.Equal(t, fast.ID, resp.Land.CarrierID)
	assert.Equal(t, "A", resp.Land.PriorityGroup)
	assert.Nil(t, resp.Air)

	for _, ev := range resp.Evaluations {
		assert.NotEmpty(t, ev.Trace)
	}
}

func TestPricingService_QuoteNoCandidates(t *testing.T) {
	f := newPricingFixture(t)
	p := f.addProduct(t, 1)

	resp, err := f.svc.Quote(context.Background(), 1, &dto.QuoteReq{ProductID: p.ID})
	require.NoError(t, err)
	assert.Nil(t, resp.Land)
	assert.Nil(t, resp.Air)
	assert.Zero(t, resp.SuggestedPrice)
	assert.Empty(t, resp.Evaluations)
}

func TestPricingService_QuoteErrors(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()
	p := f.addProduct(t, 1)

	_, err := f.svc.Quote(ctx, 1, &dto.QuoteReq{ProductID: p.ID, Policy: "random"})
	assert.ErrorIs(t, err, ErrInvalidPolicy)

	_, err = f.svc.Quote(ctx, 2, &dto.QuoteReq{ProductID: p.ID})
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = f.svc.GetQuote(ctx, 1, "missing")
	assert.ErrorIs(t, err, ErrQuoteNotFound)
}

func TestPricingService_ConfigErrorCarrier(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()

	p := f.addProduct(t, 1)
	ok := f.addCarrier(t, 1, "陆运", model.TransportLand, 20, 5, 10)
	broken := f.addCarrier(t, 1, "错误配置", model.TransportLand, 20, 5, 10)
	broken.ContinueFee = -1
	require.NoError(t, f.carriers.Update(ctx, broken))

	resp, err := f.svc.Quote(ctx, 1, &dto.QuoteReq{ProductID: p.ID})
	require.NoError(t, err)
	require.NotNil(t, resp.Land)
	assert.Equal(t, ok.ID, resp.Land.CarrierID)

	for _, ev := range resp.Evaluations {
		if ev.CarrierID == broken.ID {
			assert.Equal(t, "config_error", ev.Status)
			assert.NotEmpty(t, ev.Reason)
		}
	}

	_, err = f.svc.ShippingCost(ctx, 1, broken.ID, 250)
	assert.ErrorIs(t, err, pricing.ErrConfiguration)
}

func TestConvertEvaluation_Status(t *testing.T) {
	c := &model.CarrierRule{Name: "陆运", TransportMode: model.TransportLand}
	c.ID = 7

	cancelled := convertEvaluation(pricing.Evaluation{Carrier: c, Err: context.DeadlineExceeded}, false)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.NotEmpty(t, cancelled.Reason)

	broken := convertEvaluation(pricing.Evaluation{Carrier: c, Err: fmt.Errorf("%w: bad", pricing.ErrConfiguration)}, false)
	assert.Equal(t, "config_error", broken.Status)
}

// ==================== 单渠道查询 ====================

func TestPricingService_SingleCarrierLookups(t *testing.T) {
	f := newPricingFixture(t)
	ctx := context.Background()

	p := f.addProduct(t, 1)
	c := f.addCarrier(t, 1, "陆运", model.TransportLand, 20, 5, 10)

	cost, err := f.svc.ShippingCost(ctx, 1, c.ID, 250)
	require.NoError(t, err)
	assert.Equal(t, 26.0, cost.Cost)
	assert.Equal(t, "base_plus_continue", cost.FeeMode)

	elig, err := f.svc.EvaluateEligibility(ctx, 1, p.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, elig.OK)

	price, err := f.svc.ResolvePrice(ctx, 1, p.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, price.WithinBounds)
	assert.Equal(t, 26.0, price.ShippingCost)
	assert.InDelta(t, 103.7597, price.RetailCNY, 1e-4)

	c.PriceLimit = 1000
	require.NoError(t, f.carriers.Update(ctx, c))

	elig, err = f.svc.EvaluateEligibility(ctx, 1, p.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, elig.OK)
	assert.Equal(t, string(pricing.CodePriceAboveLimit), elig.Code)

	price, err = f.svc.ResolvePrice(ctx, 1, p.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, price.WithinBounds)
	assert.Equal(t, "估算售价 1152.89 RUB 超价格上限 1000 RUB", price.Reason)

	_, err = f.svc.ShippingCost(ctx, 2, c.ID, 250)
	assert.ErrorIs(t, err, ErrCarrierNotFound)
}
