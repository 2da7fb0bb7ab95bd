package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"carrier_pricing_v1/internal/api/dto"
	"carrier_pricing_v1/internal/middleware"
	"carrier_pricing_v1/internal/model"
	"carrier_pricing_v1/internal/service"
)

type CarrierController struct {
	carrierService *service.CarrierService
	pricingService *service.PricingService
}

func NewCarrierController(carrierService *service.CarrierService, pricingService *service.PricingService) *CarrierController {
	return &CarrierController{carrierService: carrierService, pricingService: pricingService}
}

// ==================== 渠道管理 ====================

// List 物流渠道列表
// @Tags Carrier
// @Param type query string false "land | air"
// @Success 200 {object} dto.CarrierListResp
// @Router /api/v1/carriers [get]
func (ctl *CarrierController) List(c *gin.Context) {
	mode := model.TransportMode(c.Query("type"))
	if mode != "" && !mode.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的运输方式"})
		return
	}

	resp, err := ctl.carrierService.List(c.Request.Context(), middleware.GetUserID(c), mode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get 渠道详情
// @Tags Carrier
// @Param id path int true "渠道ID"
// @Success 200 {object} model.CarrierRule
// @Router /api/v1/carriers/{id} [get]
func (ctl *CarrierController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	carrier, err := ctl.carrierService.Get(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, carrier)
}

// Create 新增渠道，完成后重算优先级分组
// @Tags Carrier
// @Param body body dto.CarrierReq true "渠道规则"
// @Success 201 {object} model.CarrierRule
// @Router /api/v1/carriers [post]
func (ctl *CarrierController) Create(c *gin.Context) {
	var req dto.CarrierReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	carrier, err := ctl.carrierService.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, carrier)
}

// Update 更新渠道
// @Tags Carrier
// @Param id path int true "渠道ID"
// @Param body body dto.CarrierReq true "渠道规则"
// @Success 200 {object} model.CarrierRule
// @Router /api/v1/carriers/{id} [put]
func (ctl *CarrierController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.CarrierReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	carrier, err := ctl.carrierService.Update(c.Request.Context(), middleware.GetUserID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, carrier)
}

// Delete 删除渠道
// @Tags Carrier
// @Param id path int true "渠道ID"
// @Success 204
// @Router /api/v1/carriers/{id} [delete]
func (ctl *CarrierController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctl.carrierService.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ==================== 运费试算 ====================

// ShippingCost 按重量试算运费
// @Tags Carrier
// @Param id path int true "渠道ID"
// @Param weight_g query number true "重量(g)"
// @Success 200 {object} dto.ShippingCostResp
// @Router /api/v1/carriers/{id}/shipping-cost [get]
func (ctl *CarrierController) ShippingCost(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	weight, err := strconv.ParseFloat(c.Query("weight_g"), 64)
	if err != nil || weight < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "无效的 weight_g"})
		return
	}

	resp, err := ctl.pricingService.ShippingCost(c.Request.Context(), middleware.GetUserID(c), id, weight)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
