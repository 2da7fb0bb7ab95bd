package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"carrier_pricing_v1/internal/controller"
	"carrier_pricing_v1/internal/middleware"
)

// Controllers 路由依赖的控制器
type Controllers struct {
	Pricing  *controller.PricingController
	Carrier  *controller.CarrierController
	Product  *controller.ProductController
	Priority *controller.PriorityController
	Exchange *controller.ExchangeRateController
}

// Options 路由参数
type Options struct {
	RecomputeCooldown time.Duration
	Limiter           *middleware.CooldownLimiter
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctl *Controllers, opts Options) {
	if opts.Limiter == nil {
		opts.Limiter = middleware.NewCooldownLimiter()
	}
	if opts.RecomputeCooldown <= 0 {
		opts.RecomputeCooldown = time.Minute
	}

	// 1. 基础设施
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 2. API 路由组，所有接口都需要 X-User-ID
	api := r.Group("/api/v1", middleware.UserContext())
	{
		// pricing 定价
		pricing := api.Group("/pricing")
		{
			// POST /api/v1/pricing/quote
			pricing.POST("/quote", ctl.Pricing.Quote)
			pricing.GET("/eligibility", ctl.Pricing.Eligibility)
			pricing.GET("/resolve", ctl.Pricing.ResolvePrice)
			pricing.GET("/quotes/:quote_id", ctl.Pricing.GetQuote)
		}

		// carriers 物流渠道
		carriers := api.Group("/carriers")
		{
			carriers.GET("", ctl.Carrier.List)
			carriers.POST("", ctl.Carrier.Create)
			carriers.GET("/:id", ctl.Carrier.Get)
			carriers.PUT("/:id", ctl.Carrier.Update)
			carriers.DELETE("/:id", ctl.Carrier.Delete)
			// GET /api/v1/carriers/:id/shipping-cost?weight_g=
			carriers.GET("/:id/shipping-cost", ctl.Carrier.ShippingCost)
		}

		// products 商品
		products := api.Group("/products")
		{
			products.GET("", ctl.Product.List)
			products.POST("", ctl.Product.Create)
			products.GET("/:id", ctl.Product.Get)
			products.PUT("/:id", ctl.Product.Update)
			products.DELETE("/:id", ctl.Product.Delete)
			products.GET("/:id/quotes", ctl.Pricing.ListQuotes)
		}

		// 手动重算，按用户冷却
		api.POST("/priority-bands/recompute",
			middleware.Cooldown(opts.Limiter, middleware.TriggerPriorityBands, opts.RecomputeCooldown),
			ctl.Priority.Recompute,
		)

		// exchange-rates 汇率
		rates := api.Group("/exchange-rates")
		{
			rates.GET("", ctl.Exchange.Current)
			// 全局冷却，避免多个用户同时打满数据源
			rates.POST("/refresh",
				middleware.GlobalCooldown(opts.Limiter, middleware.TriggerRateRefresh, opts.RecomputeCooldown),
				ctl.Exchange.Refresh,
			)
		}
	}
}
