package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"carrier_pricing_v1/internal/controller"
	"carrier_pricing_v1/internal/exchange"
	"carrier_pricing_v1/internal/middleware"
	"carrier_pricing_v1/internal/model"
	"carrier_pricing_v1/internal/pricing"
	"carrier_pricing_v1/internal/repository"
	"carrier_pricing_v1/internal/router"
	"carrier_pricing_v1/internal/service"
	"carrier_pricing_v1/internal/task"
	"carrier_pricing_v1/pkg/config"
	"carrier_pricing_v1/pkg/database"
	"carrier_pricing_v1/pkg/logger"
)

const redisRatesKey = "exchange:rates"

func main() {
	configPath := flag.String("config", getEnv("PRICING_CONFIG", "config.yaml"), "配置文件路径")
	flag.Parse()

	// 1. 加载配置
	cfg, v, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewZapLogger(cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()

	// 2. 初始化数据库
	db, err := initDatabase(cfg)
	if err != nil {
		log.Errorf(ctx, "[Main] %v", err)
		os.Exit(1)
	}

	// 3. 初始化依赖
	deps, err := initDependencies(ctx, cfg, v, db, log)
	if err != nil {
		log.Errorf(ctx, "[Main] 初始化依赖失败: %v", err)
		os.Exit(1)
	}
	if deps.Redis != nil {
		defer deps.Redis.Close()
	}

	// 4. 启动定时任务
	tm, err := initTasks(cfg, deps, log)
	if err != nil {
		log.Errorf(ctx, "[Main] 启动定时任务失败: %v", err)
		os.Exit(1)
	}
	defer tm.Stop()

	// 5. 初始化路由
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	router.InitRoutes(r, deps.Controllers, router.Options{
		RecomputeCooldown: cfg.Tasks.RecomputeCooldown,
		Limiter:           middleware.NewCooldownLimiter(),
	})

	// 6. 启动服务
	startServer(r, cfg.App.Port, log)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Redis       *redis.Client
	Repos       *Repositories
	Supplier    *exchange.Supplier
	Services    *Services
	Controllers *router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Product      repository.ProductRepository
	Carrier      repository.CarrierRepository
	Quote        repository.QuoteRepository
	ExchangeRate repository.ExchangeRateRepository
}

// Services 服务集合
type Services struct {
	Pricing  *service.PricingService
	Priority *service.PriorityService
	Carrier  *service.CarrierService
	Product  *service.ProductService
	Exchange *service.ExchangeRateService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	if cfg.Database.DSN == "" {
		return nil, errors.New("database.dsn is required")
	}
	opts := database.DefaultOptions()
	opts.AutoMigrate = cfg.Database.AutoMigrate
	return database.InitDB(cfg.Database.DSN, opts,
		&model.Product{}, &model.CarrierRule{},
		&model.ExchangeRate{}, &model.PricingQuote{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(ctx context.Context, cfg *config.Config, v *viper.Viper, db *gorm.DB, log logger.Logger) (*Dependencies, error) {
	// -------- Repo 层 --------
	repos := &Repositories{
		Product:      repository.NewProductRepository(db),
		Carrier:      repository.NewCarrierRepository(db),
		Quote:        repository.NewQuoteRepository(db),
		ExchangeRate: repository.NewExchangeRateRepository(db),
	}

	deps := &Dependencies{DB: db, Repos: repos}

	// -------- 汇率 --------
	var store exchange.Store = repos.ExchangeRate
	if cfg.Redis.Enabled {
		client, err := repository.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		deps.Redis = client
		if cfg.Exchange.Store == "redis" {
			store = repository.NewRedisRateStore(client, redisRatesKey)
		}
	}

	source := exchange.NewConfigSource(v, exchange.DefaultConfigKeys)
	if v.ConfigFileUsed() != "" {
		v.WatchConfig()
	}

	supplier := exchange.NewSupplier(exchange.SupplierOptions{
		Source: source,
		Store:  store,
		Logger: log,
		Defaults: map[exchange.Pair]float64{
			exchange.PairRUB: cfg.Exchange.RubCnyDefault,
			exchange.PairUSD: cfg.Exchange.UsdCnyDefault,
		},
	})
	supplier.Seed(ctx)
	supplier.Refresh(ctx)
	deps.Supplier = supplier

	// -------- 定价引擎 --------
	formula, err := pricing.FormulaByName(cfg.Pricing.Formula)
	if err != nil {
		return nil, err
	}
	resolver := pricing.NewResolver(formula, cfg.Pricing.OperationSurchargeRub)
	filter := pricing.NewFilter(resolver, pricing.WithMinLengthBasis(pricing.MinLengthBasis(cfg.Pricing.MinLengthBasis)))
	engine := pricing.NewEngine(filter, cfg.Pricing.Workers, log)

	// -------- 业务服务 --------
	services := &Services{
		Pricing:  service.NewPricingService(repos.Product, repos.Carrier, repos.Quote, supplier, engine, log),
		Priority: service.NewPriorityService(repos.Carrier, log),
		Product:  service.NewProductService(repos.Product),
		Exchange: service.NewExchangeRateService(supplier),
	}
	services.Carrier = service.NewCarrierService(repos.Carrier, services.Priority, log)
	deps.Services = services

	// -------- Controller 层 --------
	deps.Controllers = &router.Controllers{
		Pricing:  controller.NewPricingController(services.Pricing),
		Carrier:  controller.NewCarrierController(services.Carrier, services.Pricing),
		Product:  controller.NewProductController(services.Product),
		Priority: controller.NewPriorityController(services.Priority),
		Exchange: controller.NewExchangeRateController(services.Exchange),
	}

	return deps, nil
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(cfg *config.Config, deps *Dependencies, log logger.Logger) (*task.TaskManager, error) {
	tm := task.NewTaskManager(&task.TaskManagerDeps{
		Rates:    deps.Supplier,
		Priority: deps.Services.Priority,
		Logger:   log,
	}, &task.TaskManagerConfig{
		RateRefreshEnabled:  cfg.Tasks.RateRefreshEnabled,
		RateRefreshInterval: cfg.Exchange.RefreshInterval,
		PriorityEnabled:     cfg.Tasks.PriorityEnabled,
		PriorityCron:        cfg.Tasks.PriorityCron,
	})
	if err := tm.Start(); err != nil {
		return nil, err
	}
	return tm, nil
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, port string, log logger.Logger) {
	ctx := context.Background()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	errCh := make(chan error, 1)
	go func() {
		log.Infof(ctx, "[Main] 服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		log.Errorf(ctx, "[Main] 服务启动失败: %v", err)
		return
	}

	log.Infof(ctx, "[Main] 正在关闭服务...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf(ctx, "[Main] 服务强制关闭: %v", err)
		return
	}

	log.Infof(ctx, "[Main] 服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
