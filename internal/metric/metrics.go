package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 1. 渠道评估
	EvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pricing",
		Subsystem: "engine",
		Name:      "evaluations_total",
		Help:      "渠道评估次数",
	}, []string{"mode", "result"}) // passed / rejected / config_error

	RejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pricing",
		Subsystem: "engine",
		Name:      "rejections_total",
		Help:      "按检查项统计的渠道淘汰次数",
	}, []string{"check"})

	QuoteDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pricing",
		Subsystem: "engine",
		Name:      "quote_duration_seconds",
		Help:      "单次定价耗时",
		Buckets:   prometheus.DefBuckets,
	})

	// 2. 汇率
	ExchangeRate = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "pricing",
		Subsystem: "exchange",
		Name:      "rate",
		Help:      "当前汇率 (1 单位外币 = x CNY)",
	}, []string{"pair"})

	RateRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pricing",
		Subsystem: "exchange",
		Name:      "refresh_total",
		Help:      "汇率刷新结果",
	}, []string{"pair", "status"})

	// 3. 优先级分组
	PriorityRecomputeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pricing",
		Subsystem: "priority",
		Name:      "recompute_total",
		Help:      "优先级分组重算次数",
	}, []string{"status"})
)
