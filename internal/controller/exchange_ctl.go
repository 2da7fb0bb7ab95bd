package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carrier_pricing_v1/internal/service"
)

type ExchangeRateController struct {
	rateService *service.ExchangeRateService
}

func NewExchangeRateController(rateService *service.ExchangeRateService) *ExchangeRateController {
	return &ExchangeRateController{rateService: rateService}
}

// Current 当前汇率
// @Tags ExchangeRate
// @Success 200 {object} dto.ExchangeRatesResp
// @Router /api/v1/exchange-rates [get]
func (ctl *ExchangeRateController) Current(c *gin.Context) {
	c.JSON(http.StatusOK, ctl.rateService.Current())
}

// Refresh 立即刷新汇率，失败时返回旧值
// @Tags ExchangeRate
// @Success 200 {object} dto.ExchangeRatesResp
// @Router /api/v1/exchange-rates/refresh [post]
func (ctl *ExchangeRateController) Refresh(c *gin.Context) {
	c.JSON(http.StatusOK, ctl.rateService.Refresh(c.Request.Context()))
}
