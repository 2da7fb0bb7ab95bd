package pricing

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"carrier_pricing_v1/internal/exchange"
	"carrier_pricing_v1/internal/metric"
	"carrier_pricing_v1/internal/model"
	"carrier_pricing_v1/pkg/logger"
)

// DefaultWorkers 单次评估的默认并发数
const DefaultWorkers = 8

// Options 评估选项
type Options struct {
	Trace bool // 记录每个渠道的评估轨迹
}

// Evaluation 单个渠道的评估结果
// Err 非空表示渠道参数错误或评估被取消，Verdict 无意义
type Evaluation struct {
	Carrier *model.CarrierRule
	Verdict Verdict
	Result  *PricingResult
	Err     error
}

// Cancelled 上下文取消导致渠道未被评估
func (e Evaluation) Cancelled() bool {
	return errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded)
}

// Passed 是否进入候选
func (e Evaluation) Passed() bool {
	return e.Err == nil && e.Verdict.OK && e.Result != nil
}

// Engine 定价引擎：资格过滤 + 运费 + 售价
type Engine struct {
	filter   *Filter
	resolver *Resolver
	workers  int
	log      logger.Logger
}

// NewEngine 创建定价引擎
func NewEngine(filter *Filter, workers int, log logger.Logger) *Engine {
	if filter == nil {
		filter = NewFilter(nil)
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{filter: filter, resolver: filter.resolver, workers: workers, log: log}
}

// Filter 资格过滤器
func (e *Engine) Filter() *Filter { return e.filter }

// Resolver 售价反推器
func (e *Engine) Resolver() *Resolver { return e.resolver }

// Evaluate 并发评估所有渠道，结果与输入顺序一一对应
// 单个渠道失败不影响其他渠道
func (e *Engine) Evaluate(ctx context.Context, p *model.Product, carriers []model.CarrierRule, rates exchange.Rates, opts Options) []Evaluation {
	out := make([]Evaluation, len(carriers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i := range carriers {
		g.Go(func() error {
			c := &carriers[i]
			if err := gctx.Err(); err != nil {
				metric.EvaluationsTotal.WithLabelValues(string(c.TransportMode), "cancelled").Inc()
				out[i] = Evaluation{Carrier: c, Err: err}
				return nil
			}
			out[i] = e.evaluateOne(ctx, p, c, rates, opts)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (e *Engine) evaluateOne(ctx context.Context, p *model.Product, c *model.CarrierRule, rates exchange.Rates, opts Options) Evaluation {
	mode := string(c.TransportMode)

	verdict, res, err := e.filter.run(c, p, rates, newTracer(opts.Trace))
	switch {
	case err != nil:
		metric.EvaluationsTotal.WithLabelValues(mode, "config_error").Inc()
		e.log.Warnf(ctx, "[Pricing] 渠道 %d(%s) 参数错误: %v", c.ID, c.Name, err)
		return Evaluation{Carrier: c, Verdict: verdict, Err: err}
	case !verdict.OK:
		metric.EvaluationsTotal.WithLabelValues(mode, "rejected").Inc()
		metric.RejectionsTotal.WithLabelValues(string(verdict.Rejection.Check)).Inc()
		e.log.Debugf(ctx, "[Pricing] 渠道 %d(%s) 淘汰: %s", c.ID, c.Name, verdict.Rejection.Reason)
		return Evaluation{Carrier: c, Verdict: verdict}
	default:
		metric.EvaluationsTotal.WithLabelValues(mode, "passed").Inc()
		return Evaluation{Carrier: c, Verdict: verdict, Result: res}
	}
}

// Candidates 通过评估的渠道
func Candidates(evals []Evaluation) []Candidate {
	cands := make([]Candidate, 0, len(evals))
	for _, ev := range evals {
		if ev.Passed() {
			cands = append(cands, Candidate{Carrier: ev.Carrier, Cost: ev.Result.ShippingCost})
		}
	}
	return cands
}
