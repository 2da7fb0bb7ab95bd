package task

import (
	"context"
	"time"

	"carrier_pricing_v1/pkg/logger"
)

// ==================== TaskManager 定时任务管理器 ====================

// TaskManager 统一管理定时任务
// 管理范围：汇率刷新、优先级分组重算
type TaskManager struct {
	rateTask     *RateRefreshTask
	priorityTask *PriorityBandTask
	log          logger.Logger
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	Rates    RateRefresher
	Priority PriorityRecomputer
	Logger   logger.Logger
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	// 汇率刷新
	RateRefreshEnabled  bool
	RateRefreshInterval time.Duration

	// 优先级分组
	PriorityEnabled bool
	PriorityCron    string
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		RateRefreshEnabled:  true,
		RateRefreshInterval: 30 * time.Minute,

		PriorityEnabled: true,
		PriorityCron:    "0 30 3 * * *",
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}

	tm := &TaskManager{log: log}

	if cfg.RateRefreshEnabled && deps.Rates != nil {
		tm.rateTask = NewRateRefreshTask(deps.Rates, cfg.RateRefreshInterval, log)
	}

	if cfg.PriorityEnabled && deps.Priority != nil {
		tm.priorityTask = NewPriorityBandTask(deps.Priority, cfg.PriorityCron, log)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() error {
	ctx := context.Background()
	tm.log.Infof(ctx, "[TaskManager] 正在启动定时任务...")

	if tm.rateTask != nil {
		if err := tm.rateTask.Start(); err != nil {
			return err
		}
	}
	if tm.priorityTask != nil {
		if err := tm.priorityTask.Start(); err != nil {
			tm.Stop()
			return err
		}
	}

	tm.log.Infof(ctx, "[TaskManager] 定时任务已全部启动")
	return nil
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	ctx := context.Background()
	tm.log.Infof(ctx, "[TaskManager] 正在停止定时任务...")

	if tm.rateTask != nil {
		tm.rateTask.Stop()
	}
	if tm.priorityTask != nil {
		tm.priorityTask.Stop()
	}

	tm.log.Infof(ctx, "[TaskManager] 定时任务已全部停止")
}

// ==================== 手动触发接口 ====================

// TriggerRateRefresh 立即刷新汇率
func (tm *TaskManager) TriggerRateRefresh(ctx context.Context) error {
	if tm.rateTask == nil {
		return ErrTaskDisabled
	}
	tm.rateTask.RunNow(ctx)
	return nil
}

// TriggerPriorityRecompute 立即全量重算分组
func (tm *TaskManager) TriggerPriorityRecompute(ctx context.Context) error {
	if tm.priorityTask == nil {
		return ErrTaskDisabled
	}
	return tm.priorityTask.RunNow(ctx)
}

// ==================== 状态查询 ====================

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"rate_refresh":   tm.rateTask != nil,
		"priority_bands": tm.priorityTask != nil,
	}
}

// ==================== 错误定义 ====================

type TaskError string

func (e TaskError) Error() string { return string(e) }

const (
	ErrTaskDisabled TaskError = "task is disabled"
	ErrTaskRunning  TaskError = "task is already running"
)
