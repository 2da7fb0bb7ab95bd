package task

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"carrier_pricing_v1/pkg/logger"
)

// RateRefresher 汇率刷新，由 exchange.Supplier 实现
type RateRefresher interface {
	Refresh(ctx context.Context)
}

// RateRefreshTask 汇率定时刷新
// 刷新失败由 Supplier 记录并保留旧值，任务本身不会退出
type RateRefreshTask struct {
	refresher RateRefresher
	interval  time.Duration
	timeout   time.Duration
	cron      *cron.Cron
	log       logger.Logger
}

func NewRateRefreshTask(refresher RateRefresher, interval time.Duration, log logger.Logger) *RateRefreshTask {
	if log == nil {
		log = logger.Nop()
	}
	return &RateRefreshTask{
		refresher: refresher,
		interval:  interval,
		timeout:   time.Minute,
		cron:      cron.New(cron.WithSeconds()),
		log:       log,
	}
}

// Start 启动定时刷新，启动时不立即执行 (main 中已完成首次刷新)
func (t *RateRefreshTask) Start() error {
	spec := fmt.Sprintf("@every %s", t.interval)
	if _, err := t.cron.AddFunc(spec, func() { t.RunNow(context.Background()) }); err != nil {
		return fmt.Errorf("无法启动汇率刷新任务: %w", err)
	}

	t.cron.Start()
	t.log.Infof(context.Background(), "[RateTask] 汇率刷新任务已启动 (每 %s 一次)", t.interval)
	return nil
}

// Stop 停止调度并等待执行中的刷新结束
func (t *RateRefreshTask) Stop() {
	<-t.cron.Stop().Done()
}

// RunNow 立即刷新一次
func (t *RateRefreshTask) RunNow(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	t.refresher.Refresh(ctx)
}
