package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carrier_pricing_v1/internal/api/dto"
	"carrier_pricing_v1/internal/middleware"
	"carrier_pricing_v1/internal/service"
)

type PricingController struct {
	pricingService *service.PricingService
}

func NewPricingController(pricingService *service.PricingService) *PricingController {
	return &PricingController{pricingService: pricingService}
}

// ==================== 定价 ====================

// Quote 商品定价
// @Summary 评估全部渠道并给出陆运/空运最优报价
// @Tags Pricing
// @Param body body dto.QuoteReq true "定价请求"
// @Success 200 {object} dto.QuoteResp
// @Router /api/v1/pricing/quote [post]
func (ctl *PricingController) Quote(c *gin.Context) {
	var req dto.QuoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := ctl.pricingService.Quote(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Eligibility 单渠道资格判定
// @Summary 判断渠道能否承运商品
// @Tags Pricing
// @Param product_id query int true "商品ID"
// @Param carrier_id query int true "渠道ID"
// @Success 200 {object} dto.EligibilityResp
// @Router /api/v1/pricing/eligibility [get]
func (ctl *PricingController) Eligibility(c *gin.Context) {
	productID, ok := queryID(c, "product_id")
	if !ok {
		return
	}
	carrierID, ok := queryID(c, "carrier_id")
	if !ok {
		return
	}

	resp, err := ctl.pricingService.EvaluateEligibility(c.Request.Context(), middleware.GetUserID(c), productID, carrierID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ResolvePrice 售价反推
// @Summary 按商品实际重量计算运费并反推售价
// @Tags Pricing
// @Param product_id query int true "商品ID"
// @Param carrier_id query int true "渠道ID"
// @Success 200 {object} dto.ResolvePriceResp
// @Router /api/v1/pricing/resolve [get]
func (ctl *PricingController) ResolvePrice(c *gin.Context) {
	productID, ok := queryID(c, "product_id")
	if !ok {
		return
	}
	carrierID, ok := queryID(c, "carrier_id")
	if !ok {
		return
	}

	resp, err := ctl.pricingService.ResolvePrice(c.Request.Context(), middleware.GetUserID(c), productID, carrierID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ==================== 定价历史 ====================

// GetQuote 定价记录详情
// @Tags Pricing
// @Param quote_id path string true "报价ID"
// @Success 200 {object} model.PricingQuote
// @Router /api/v1/pricing/quotes/{quote_id} [get]
func (ctl *PricingController) GetQuote(c *gin.Context) {
	quote, err := ctl.pricingService.GetQuote(c.Request.Context(), middleware.GetUserID(c), c.Param("quote_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// ListQuotes 商品定价历史
// @Tags Pricing
// @Param id path int true "商品ID"
// @Param limit query int false "条数" default(20)
// @Success 200 {object} dto.QuoteHistoryResp
// @Router /api/v1/products/{id}/quotes [get]
func (ctl *PricingController) ListQuotes(c *gin.Context) {
	productID, ok := parseID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	resp, err := ctl.pricingService.ListQuotes(c.Request.Context(), middleware.GetUserID(c), productID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
