package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/atomic"

	"carrier_pricing_v1/internal/metric"
	"carrier_pricing_v1/pkg/logger"
)

// ==================== 接口定义 ====================

// Provider 汇率读取接口，调用方永远不会阻塞在网络 IO 上
type Provider interface {
	CurrentRate(pair Pair) float64
}

// Source 汇率数据源
type Source interface {
	Fetch(ctx context.Context, pair Pair) (float64, error)
}

// Store 汇率快照持久化，用于冷启动兜底
type Store interface {
	Load(ctx context.Context, pair Pair) (float64, time.Time, error)
	Save(ctx context.Context, pair Pair, rate float64, fetchedAt time.Time) error
}

// ErrNoSnapshot 没有持久化的汇率
var ErrNoSnapshot = errors.New("no persisted exchange rate")

// Clock 时钟，测试中替换为固定时钟
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock 系统时钟
var SystemClock Clock = systemClock{}

// ==================== Supplier ====================

// slot 单个币种对的当前值
// 汇率与时间戳各自原子更新，读方只依赖汇率本身
type slot struct {
	rate    *atomic.Float64
	updated *atomic.Int64 // UnixNano
}

// Supplier 汇率供应器
type Supplier struct {
	source   Source
	store    Store
	clock    Clock
	log      logger.Logger
	defaults map[Pair]float64

	slots      map[Pair]*slot // 构造后只读
	refreshing *atomic.Bool
}

// SupplierOptions 供应器参数
type SupplierOptions struct {
	Source   Source
	Store    Store // 可为 nil，此时不持久化
	Clock    Clock
	Logger   logger.Logger
	Defaults map[Pair]float64 // 无快照时的兜底汇率
}

// NewSupplier 创建汇率供应器，创建后立即可读 (兜底值)
func NewSupplier(opts SupplierOptions) *Supplier {
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	s := &Supplier{
		source:     opts.Source,
		store:      opts.Store,
		clock:      opts.Clock,
		log:        opts.Logger,
		defaults:   opts.Defaults,
		slots:      make(map[Pair]*slot, len(Pairs)),
		refreshing: atomic.NewBool(false),
	}

	for _, pair := range Pairs {
		s.slots[pair] = &slot{
			rate:    atomic.NewFloat64(opts.Defaults[pair]),
			updated: atomic.NewInt64(0),
		}
	}
	return s
}

// Seed 冷启动：加载持久化快照，没有快照时保留兜底值
func (s *Supplier) Seed(ctx context.Context) {
	for _, pair := range Pairs {
		if s.store == nil {
			s.log.Warnf(ctx, "[ExchangeRate] 未配置快照存储，%s 使用默认值: %.5f", pair, s.defaults[pair])
			continue
		}

		rate, fetchedAt, err := s.store.Load(ctx, pair)
		if err == nil && !ValidRate(rate) {
			err = fmt.Errorf("%w: snapshot rate is %v", ErrInvalidRate, rate)
		}
		if err != nil {
			s.log.Warnf(ctx, "[ExchangeRate] %s 兜底快照缺失，使用默认值: %.5f (err=%v)", pair, s.defaults[pair], err)
			continue
		}

		s.set(pair, rate, fetchedAt)
		s.log.Infof(ctx, "[ExchangeRate] %s 兜底汇率已加载: %.5f", pair, rate)
	}
}

// Refresh 刷新所有币种对
// 单个币种失败只记录日志，旧值继续生效
func (s *Supplier) Refresh(ctx context.Context) {
	if !s.refreshing.CompareAndSwap(false, true) {
		s.log.Debugf(ctx, "[ExchangeRate] 上一轮刷新未结束，跳过")
		return
	}
	defer s.refreshing.Store(false)

	for _, pair := range Pairs {
		s.refreshPair(ctx, pair)
	}
}

func (s *Supplier) refreshPair(ctx context.Context, pair Pair) {
	if s.source == nil {
		return
	}

	rate, err := s.source.Fetch(ctx, pair)
	if err == nil && !ValidRate(rate) {
		err = fmt.Errorf("%w: source rate is %v", ErrInvalidRate, rate)
	}
	if err != nil {
		metric.RateRefreshTotal.WithLabelValues(string(pair), "failed").Inc()
		s.log.Warnf(ctx, "[ExchangeRate] %s 刷新失败，继续使用旧值 %.5f: %v", pair, s.CurrentRate(pair), err)
		return
	}

	now := s.clock.Now()
	s.set(pair, rate, now)
	metric.RateRefreshTotal.WithLabelValues(string(pair), "success").Inc()
	s.log.Infof(ctx, "[ExchangeRate] %s 刷新汇率: %.5f", pair, rate)

	if s.store != nil {
		if err := s.store.Save(ctx, pair, rate, now); err != nil {
			s.log.Errorf(ctx, "[ExchangeRate] %s 保存兜底汇率失败: %v", pair, err)
		}
	}
}

func (s *Supplier) set(pair Pair, rate float64, at time.Time) {
	sl, ok := s.slots[pair]
	if !ok {
		return
	}
	sl.rate.Store(rate)
	sl.updated.Store(at.UnixNano())
	metric.ExchangeRate.WithLabelValues(string(pair)).Set(rate)
}

// CurrentRate 当前汇率，未知币种对返回 0
func (s *Supplier) CurrentRate(pair Pair) float64 {
	sl, ok := s.slots[pair]
	if !ok {
		return 0
	}
	return sl.rate.Load()
}

// LastUpdated 最近一次成功更新时间，从未更新返回零值
func (s *Supplier) LastUpdated(pair Pair) time.Time {
	sl, ok := s.slots[pair]
	if !ok {
		return time.Time{}
	}
	ns := sl.updated.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Snapshot 读取一次评估使用的汇率
func (s *Supplier) Snapshot() Rates {
	r := Rates{
		RUB: s.CurrentRate(PairRUB),
		USD: s.CurrentRate(PairUSD),
	}

	rubAt, usdAt := s.LastUpdated(PairRUB), s.LastUpdated(PairUSD)
	r.UpdatedAt = rubAt
	if usdAt.Before(rubAt) {
		r.UpdatedAt = usdAt
	}
	return r
}

// SnapshotOf 从任意 Provider 读取快照
func SnapshotOf(p Provider) Rates {
	if s, ok := p.(*Supplier); ok {
		return s.Snapshot()
	}
	return Rates{
		RUB: p.CurrentRate(PairRUB),
		USD: p.CurrentRate(PairUSD),
	}
}
