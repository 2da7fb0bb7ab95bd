package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Exchange ExchangeConfig `mapstructure:"exchange"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	Tasks    TasksConfig    `mapstructure:"tasks"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name     string `mapstructure:"name"`
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	DSN         string `mapstructure:"dsn"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ExchangeConfig 汇率配置
type ExchangeConfig struct {
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	RubCnyDefault   float64       `mapstructure:"rub_cny_default"` // 无快照时的兜底值
	UsdCnyDefault   float64       `mapstructure:"usd_cny_default"`
	Store           string        `mapstructure:"store"` // db | redis
	Rates           RateValues    `mapstructure:"rates"` // 配置文件汇率源
}

// RateValues 配置文件中维护的最新汇率 (1 单位外币 = x CNY)
type RateValues struct {
	RubCny float64 `mapstructure:"rub_cny"`
	UsdCny float64 `mapstructure:"usd_cny"`
}

// PricingConfig 定价配置
type PricingConfig struct {
	Formula               string  `mapstructure:"formula"`          // gross_margin | markup
	MinLengthBasis        string  `mapstructure:"min_length_basis"` // longest_side | length_field
	Workers               int     `mapstructure:"workers"`
	OperationSurchargeRub float64 `mapstructure:"operation_surcharge_rub"`
}

// TasksConfig 定时任务配置
type TasksConfig struct {
	RateRefreshEnabled bool          `mapstructure:"rate_refresh_enabled"`
	PriorityEnabled    bool          `mapstructure:"priority_enabled"`
	PriorityCron       string        `mapstructure:"priority_cron"`
	RecomputeCooldown  time.Duration `mapstructure:"recompute_cooldown"`
}

// SetDefaults 注册默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "carrier-pricing")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("exchange.refresh_interval", 30*time.Minute)
	v.SetDefault("exchange.rub_cny_default", 0.09)
	v.SetDefault("exchange.usd_cny_default", 7.2)
	v.SetDefault("exchange.store", "db")

	v.SetDefault("pricing.formula", "gross_margin")
	v.SetDefault("pricing.min_length_basis", "longest_side")
	v.SetDefault("pricing.workers", 8)
	v.SetDefault("pricing.operation_surcharge_rub", 15)

	v.SetDefault("tasks.rate_refresh_enabled", true)
	v.SetDefault("tasks.priority_enabled", true)
	v.SetDefault("tasks.priority_cron", "0 30 3 * * *")
	v.SetDefault("tasks.recompute_cooldown", time.Minute)
}

// Load 加载配置文件，环境变量 PRICING_XXX_YYY 覆盖 xxx.yyy
// configPath 为空时只使用默认值和环境变量
func Load(configPath string) (*Config, *viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("PRICING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	cfg, err := Decode(v)
	if err != nil {
		return nil, nil, err
	}
	return cfg, v, nil
}

// Decode 从 viper 实例解析配置
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return fmt.Errorf("app.name is required")
	}
	if c.Exchange.RefreshInterval <= 0 {
		return fmt.Errorf("exchange.refresh_interval must be positive")
	}
	if !finitePositive(c.Exchange.RubCnyDefault) || !finitePositive(c.Exchange.UsdCnyDefault) {
		return fmt.Errorf("exchange default rates must be finite and positive")
	}
	switch c.Exchange.Store {
	case "db", "redis":
	default:
		return fmt.Errorf("unknown exchange.store: %q", c.Exchange.Store)
	}
	if c.Exchange.Store == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("exchange.store=redis requires redis.enabled")
	}
	switch c.Pricing.Formula {
	case "gross_margin", "markup":
	default:
		return fmt.Errorf("unknown pricing.formula: %q", c.Pricing.Formula)
	}
	switch c.Pricing.MinLengthBasis {
	case "longest_side", "length_field":
	default:
		return fmt.Errorf("unknown pricing.min_length_basis: %q", c.Pricing.MinLengthBasis)
	}
	if c.Pricing.Workers <= 0 {
		return fmt.Errorf("pricing.workers must be positive")
	}
	if c.Pricing.OperationSurchargeRub < 0 {
		return fmt.Errorf("pricing.operation_surcharge_rub must not be negative")
	}
	return nil
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}
