package controller_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"carrier_pricing_v1/internal/api/dto"
	"carrier_pricing_v1/internal/controller"
	"carrier_pricing_v1/internal/exchange"
	"carrier_pricing_v1/internal/middleware"
	"carrier_pricing_v1/internal/model"
	"carrier_pricing_v1/internal/pricing"
	"carrier_pricing_v1/internal/repository"
	"carrier_pricing_v1/internal/router"
	"carrier_pricing_v1/internal/service"
)

// ==================== 测试辅助 ====================

func setupCtlTestDB(t *testing.T) *gorm.DB {
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

func setupRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	db := setupCtlTestDB(t)

	productRepo := repository.NewProductRepository(db)
	carrierRepo := repository.NewCarrierRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)

	supplier := exchange.NewSupplier(exchange.SupplierOptions{
		Defaults: map[exchange.Pair]float64{exchange.PairRUB: 0.09, exchange.PairUSD: 7.2},
	})
	engine := pricing.NewEngine(pricing.NewFilter(nil), 4, nil)

	pricingSvc := service.NewPricingService(productRepo, carrierRepo, quoteRepo, supplier, engine, nil)
	prioritySvc := service.NewPriorityService(carrierRepo, nil)

	r := gin.New()
	r.Use(gin.Recovery())
	router.InitRoutes(r, &router.Controllers{
		Pricing:  controller.NewPricingController(pricingSvc),
		Carrier:  controller.NewCarrierController(service.NewCarrierService(carrierRepo, prioritySvc, nil), pricingSvc),
		Product:  controller.NewProductController(service.NewProductService(productRepo)),
		Priority: controller.NewPriorityController(prioritySvc),
		Exchange: controller.NewExchangeRateController(service.NewExchangeRateService(supplier)),
	}, router.Options{RecomputeCooldown: time.Hour})
	return r
}

func performRequest(r http.Handler, method, path string, userID int64, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID > 0 {
		req.Header.Set(middleware.HeaderUserID, fmt.Sprint(userID))
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func createProduct(t *testing.T, r http.Handler, userID int64) model.Product {
	w := performRequest(r, http.MethodPost, "/api/v1/products", userID, dto.ProductReq{
		Name:      "保温杯",
		WeightG:   250,
		LengthCm:  20,
		WidthCm:   10,
		HeightCm:  5,
		UnitPrice: 10,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p model.Product
	decode(t, w, &p)
	return p
}

func createCarrier(t *testing.T, r http.Handler, userID int64, req dto.CarrierReq) model.CarrierRule {
	w := performRequest(r, http.MethodPost, "/api/v1/carriers", userID, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var c model.CarrierRule
	decode(t, w, &c)
	return c
}

func carrierReq(name, mode string, baseFee float64, minDays, maxDays int) dto.CarrierReq {
	return dto.CarrierReq{
		Name:        name,
		Type:        mode,
		MinDays:     minDays,
		MaxDays:     maxDays,
		MaxWeight:   10000,
		BaseFee:     baseFee,
		ContinueFee: 2,
	}
}

// ==================== 定价 ====================

func TestPricingController_Quote(t *testing.T) {
	r := setupRouter(t)
	p := createProduct(t, r, 1)
	land := createCarrier(t, r, 1, carrierReq("陆运", "land", 20, 15, 25))
	air := createCarrier(t, r, 1, carrierReq("空运", "air", 50, 3, 5))

	w := performRequest(r, http.MethodPost, "/api/v1/pricing/quote", 1, dto.QuoteReq{ProductID: p.ID, Policy: "cheapest"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp dto.QuoteResp
	decode(t, w, &resp)
	require.NotNil(t, resp.Land)
	require.NotNil(t, resp.Air)
	assert.Equal(t, land.ID, resp.Land.CarrierID)
	assert.Equal(t, air.ID, resp.Air.CarrierID)
	assert.Equal(t, 103.76, resp.Land.PriceCNY)
	assert.Equal(t, resp.Land.PriceCNY, resp.SuggestedPrice)

	// 定价历史
	w = performRequest(r, http.MethodGet, "/api/v1/pricing/quotes/"+resp.QuoteID, 1, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/products/%d/quotes", p.ID), 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history dto.QuoteHistoryResp
	decode(t, w, &history)
	assert.Len(t, history.List, 1)
}

func TestPricingController_QuoteErrors(t *testing.T) {
	r := setupRouter(t)
	p := createProduct(t, r, 1)

	tests := []struct {
		name   string
		userID int64
		body   interface{}
		want   int
	}{
		{"缺少用户", 0, dto.QuoteReq{ProductID: p.ID}, http.StatusUnauthorized},
		{"缺少商品ID", 1, map[string]interface{}{}, http.StatusBadRequest},
		{"未知策略", 1, dto.QuoteReq{ProductID: p.ID, Policy: "random"}, http.StatusBadRequest},
		{"其他用户的商品", 2, dto.QuoteReq{ProductID: p.ID}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(r, http.MethodPost, "/api/v1/pricing/quote", tt.userID, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestPricingController_EligibilityAndResolve(t *testing.T) {
	r := setupRouter(t)
	p := createProduct(t, r, 1)
	req := carrierReq("陆运", "land", 20, 5, 10)
	req.PriceLimit = 1000
	c := createCarrier(t, r, 1, req)

	w := performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/pricing/eligibility?product_id=%d&carrier_id=%d", p.ID, c.ID), 1, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var elig dto.EligibilityResp
	decode(t, w, &elig)
	assert.False(t, elig.OK)
	assert.Equal(t, "economic", elig.Check)
	assert.Equal(t, "price_above_limit", elig.Code)

	w = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/pricing/resolve?product_id=%d&carrier_id=%d", p.ID, c.ID), 1, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var price dto.ResolvePriceResp
	decode(t, w, &price)
	assert.False(t, price.WithinBounds)
	assert.Equal(t, 26.0, price.ShippingCost)

	w = performRequest(r, http.MethodGet, "/api/v1/pricing/eligibility?product_id=abc&carrier_id=1", 1, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/pricing/resolve?product_id=%d&carrier_id=999", p.ID), 1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ==================== 渠道 ====================

func TestCarrierController_ShippingCost(t *testing.T) {
	r := setupRouter(t)
	c := createCarrier(t, r, 1, carrierReq("陆运", "land", 20, 5, 10))

	w := performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/carriers/%d/shipping-cost?weight_g=250", c.ID), 1, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.ShippingCostResp
	decode(t, w, &resp)
	assert.Equal(t, 26.0, resp.Cost)

	w = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/carriers/%d/shipping-cost?weight_g=-1", c.ID), 1, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 首重 500g 30 元，超出 200g 按 2 个续重单位计
	first := carrierReq("首重", "air", 0, 3, 5)
	first.FeeMode = "first_plus_continue"
	first.FirstFee, first.FirstWeightG = 30, 500
	created := createCarrier(t, r, 1, first)

	w = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/carriers/%d/shipping-cost?weight_g=700", created.ID), 1, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &resp)
	assert.Equal(t, 34.0, resp.Cost)
	assert.Equal(t, "first_plus_continue", resp.FeeMode)
}

func TestCarrierController_CRUD(t *testing.T) {
	r := setupRouter(t)

	w := performRequest(r, http.MethodPost, "/api/v1/carriers", 1, carrierReq("海运", "sea", 20, 1, 2))
	assert.Equal(t, http.StatusBadRequest, w.Code, "未知运输方式")

	fast := createCarrier(t, r, 1, carrierReq("快线", "land", 30, 5, 8))
	slow := createCarrier(t, r, 1, carrierReq("慢线", "land", 20, 20, 30))
	assert.Equal(t, model.BandD, slow.PriorityGroup)

	w = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/carriers/%d", fast.ID), 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got model.CarrierRule
	decode(t, w, &got)
	assert.Equal(t, model.BandA, got.PriorityGroup, "新增渠道后重新分组")

	w = performRequest(r, http.MethodPut, fmt.Sprintf("/api/v1/carriers/%d", slow.ID), 1, carrierReq("慢线", "land", 20, 1, 2))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &got)
	assert.Equal(t, model.BandA, got.PriorityGroup)

	w = performRequest(r, http.MethodGet, "/api/v1/carriers?type=land", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.CarrierListResp
	decode(t, w, &list)
	assert.Equal(t, 2, list.Total)

	w = performRequest(r, http.MethodGet, "/api/v1/carriers?type=sea", 1, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/carriers/%d", fast.ID), 2, nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "其他用户不可见")

	w = performRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/carriers/%d", fast.ID), 1, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = performRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/carriers/%d", fast.ID), 1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ==================== 优先级分组 ====================

func TestPriorityController_RecomputeCooldown(t *testing.T) {
	r := setupRouter(t)
	c := createCarrier(t, r, 1, carrierReq("陆运", "land", 20, 0, 0))

	w := performRequest(r, http.MethodPost, "/api/v1/priority-bands/recompute", 1, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.PriorityBandsResp
	decode(t, w, &resp)
	assert.Equal(t, "E", resp.Bands[c.ID])
	assert.Equal(t, 1, resp.Counts["E"])

	w = performRequest(r, http.MethodPost, "/api/v1/priority-bands/recompute", 1, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// 冷却按用户隔离
	w = performRequest(r, http.MethodPost, "/api/v1/priority-bands/recompute", 2, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// ==================== 商品 / 汇率 ====================

func TestProductController_CRUD(t *testing.T) {
	r := setupRouter(t)
	p := createProduct(t, r, 1)
	assert.Equal(t, int64(1), p.UserID)

	w := performRequest(r, http.MethodPost, "/api/v1/products", 1, map[string]interface{}{"weight_g": 10})
	assert.Equal(t, http.StatusBadRequest, w.Code, "缺少名称")

	w = performRequest(r, http.MethodGet, "/api/v1/products?keyword="+url.QueryEscape("保温"), 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list dto.ProductListResp
	decode(t, w, &list)
	assert.Equal(t, int64(1), list.Total)

	w = performRequest(r, http.MethodPut, fmt.Sprintf("/api/v1/products/%d", p.ID), 1, dto.ProductReq{Name: "水壶", WeightG: 500})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated model.Product
	decode(t, w, &updated)
	assert.Equal(t, "水壶", updated.Name)

	w = performRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", p.ID), 1, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = performRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", p.ID), 1, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExchangeRateController(t *testing.T) {
	r := setupRouter(t)

	w := performRequest(r, http.MethodGet, "/api/v1/exchange-rates", 1, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.ExchangeRatesResp
	decode(t, w, &resp)
	require.Len(t, resp.Rates, 2)
	assert.Equal(t, "RUB/CNY", resp.Rates[0].Pair)
	assert.Equal(t, 0.09, resp.Rates[0].Rate)
	assert.Nil(t, resp.Rates[0].UpdatedAt)
}
