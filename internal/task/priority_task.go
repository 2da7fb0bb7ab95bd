package task

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/atomic"

	"carrier_pricing_v1/pkg/logger"
)

// PriorityRecomputer 全量分组重算，由 service.PriorityService 实现
type PriorityRecomputer interface {
	RecomputeAll(ctx context.Context) (ok, failed int, err error)
}

// PriorityBandTask 每晚重算所有用户的时效优先级分组
type PriorityBandTask struct {
	svc     PriorityRecomputer
	spec    string
	timeout time.Duration
	cron    *cron.Cron
	running *atomic.Bool
	log     logger.Logger
}

func NewPriorityBandTask(svc PriorityRecomputer, spec string, log logger.Logger) *PriorityBandTask {
	if log == nil {
		log = logger.Nop()
	}
	return &PriorityBandTask{
		svc:     svc,
		spec:    spec,
		timeout: 30 * time.Minute,
		cron:    cron.New(cron.WithSeconds()),
		running: atomic.NewBool(false),
		log:     log,
	}
}

// Start 按 cron 表达式调度 (秒级，默认每天 03:30:00)
func (t *PriorityBandTask) Start() error {
	_, err := t.cron.AddFunc(t.spec, func() {
		if err := t.RunNow(context.Background()); err != nil && err != ErrTaskRunning {
			t.log.Errorf(context.Background(), "[PriorityTask] 分组重算失败: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("无法启动优先级分组任务: %w", err)
	}

	t.cron.Start()
	t.log.Infof(context.Background(), "[PriorityTask] 优先级分组任务已启动 (%s)", t.spec)
	return nil
}

func (t *PriorityBandTask) Stop() {
	<-t.cron.Stop().Done()
}

// RunNow 立即全量重算，上一轮未结束时直接返回 ErrTaskRunning
func (t *PriorityBandTask) RunNow(ctx context.Context) error {
	if !t.running.CompareAndSwap(false, true) {
		return ErrTaskRunning
	}
	defer t.running.Store(false)

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	ok, failed, err := t.svc.RecomputeAll(ctx)
	if err != nil {
		return err
	}
	t.log.Infof(ctx, "[PriorityTask] 分组重算完成: 成功 %d, 失败 %d, 耗时 %s",
		ok, failed, time.Since(start).Round(time.Millisecond))
	return nil
}
