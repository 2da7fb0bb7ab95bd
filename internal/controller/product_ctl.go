package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carrier_pricing_v1/internal/api/dto"
	"carrier_pricing_v1/internal/middleware"
	"carrier_pricing_v1/internal/service"
)

type ProductController struct {
	productService *service.ProductService
}

func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// List 商品列表
// @Tags Product
// @Param category query string false "类目"
// @Param keyword query string false "名称搜索"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.ProductListResp
// @Router /api/v1/products [get]
func (ctl *ProductController) List(c *gin.Context) {
	var req dto.ProductListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := ctl.productService.List(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get 商品详情
// @Tags Product
// @Param id path int true "商品ID"
// @Success 200 {object} model.Product
// @Router /api/v1/products/{id} [get]
func (ctl *ProductController) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := ctl.productService.Get(c.Request.Context(), middleware.GetUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Create 新增商品
// @Tags Product
// @Param body body dto.ProductReq true "商品"
// @Success 201 {object} model.Product
// @Router /api/v1/products [post]
func (ctl *ProductController) Create(c *gin.Context) {
	var req dto.ProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := ctl.productService.Create(c.Request.Context(), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// Update 更新商品
// @Tags Product
// @Param id path int true "商品ID"
// @Param body body dto.ProductReq true "商品"
// @Success 200 {object} model.Product
// @Router /api/v1/products/{id} [put]
func (ctl *ProductController) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.ProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product, err := ctl.productService.Update(c.Request.Context(), middleware.GetUserID(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Delete 删除商品
// @Tags Product
// @Param id path int true "商品ID"
// @Success 204
// @Router /api/v1/products/{id} [delete]
func (ctl *ProductController) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := ctl.productService.Delete(c.Request.Context(), middleware.GetUserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
