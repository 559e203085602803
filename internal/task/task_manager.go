package task

import (
	"log"
	"time"

	"trailer_host_v1_202610/internal/repository"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台任务
// 管理范围：编辑器闲置清理（含提交冷却记录）、提交记录保留期清理
type TaskManager struct {
	sweepTask     *EditorSweepTask
	retentionTask *RetentionTask
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	Editors   IdleEvictor
	Cooldowns CooldownSweeper                    // 可为 nil
	Logs      repository.SubmissionLogRepository // 可为 nil
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	SweepEnabled bool
	SweepSpec    string
	EditorIdle   time.Duration

	RetentionEnabled bool
	RetentionSpec    string
	RetentionDays    int
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		SweepEnabled: true,
		SweepSpec:    "0 */5 * * * *",
		EditorIdle:   2 * time.Hour,

		RetentionEnabled: true,
		RetentionSpec:    "0 30 3 * * *",
		RetentionDays:    90,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}
	if cfg.SweepEnabled && deps.Editors != nil {
		tm.sweepTask = NewEditorSweepTask(deps.Editors, cfg.EditorIdle, cfg.SweepSpec)
		if deps.Cooldowns != nil {
			tm.sweepTask.WithCooldowns(deps.Cooldowns)
		}
	}
	if cfg.RetentionEnabled && deps.Logs != nil {
		tm.retentionTask = NewRetentionTask(deps.Logs, cfg.RetentionDays, cfg.RetentionSpec)
	}
	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() error {
	log.Println("[TaskManager] 正在启动后台任务...")

	if tm.sweepTask != nil {
		if err := tm.sweepTask.Start(); err != nil {
			return err
		}
	}
	if tm.retentionTask != nil {
		if err := tm.retentionTask.Start(); err != nil {
			return err
		}
	}

	log.Println("[TaskManager] 后台任务已全部启动")
	return nil
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	log.Println("[TaskManager] 正在停止后台任务...")

	if tm.sweepTask != nil {
		tm.sweepTask.Stop()
	}
	if tm.retentionTask != nil {
		tm.retentionTask.Stop()
	}

	log.Println("[TaskManager] 后台任务已全部停止")
}

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"editor_sweep": tm.sweepTask != nil,
		"retention":    tm.retentionTask != nil,
	}
}
