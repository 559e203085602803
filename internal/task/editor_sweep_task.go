package task

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// IdleEvictor 可清理闲置会话的组件
type IdleEvictor interface {
	EvictIdle(maxIdle time.Duration) int
	Count() int
}

// CooldownSweeper 可清理过期冷却记录的限流器
type CooldownSweeper interface {
	Sweep(olderThan time.Duration) int
}

// 冷却记录保留时长，远大于提交冷却间隔
const cooldownTTL = 10 * time.Minute

// ==================== 编辑器闲置清理任务 ====================

// EditorSweepTask 定时关闭长时间无操作的编辑器，释放暂存图片，并清理过期的提交冷却记录
type EditorSweepTask struct {
	editors   IdleEvictor
	cooldowns CooldownSweeper // 可为 nil
	maxIdle   time.Duration
	spec      string
	Cron      *cron.Cron
}

// NewEditorSweepTask spec 为秒级 cron 表达式
func NewEditorSweepTask(editors IdleEvictor, maxIdle time.Duration, spec string) *EditorSweepTask {
	if spec == "" {
		spec = "0 */5 * * * *"
	}
	return &EditorSweepTask{
		editors: editors,
		maxIdle: maxIdle,
		spec:    spec,
		Cron:    cron.New(cron.WithSeconds()),
	}
}

// WithCooldowns 同时清理提交冷却记录
func (t *EditorSweepTask) WithCooldowns(c CooldownSweeper) *EditorSweepTask {
	t.cooldowns = c
	return t
}

// Start 启动定时任务
func (t *EditorSweepTask) Start() error {
	if _, err := t.Cron.AddFunc(t.spec, func() { t.RunOnce() }); err != nil {
		return err
	}
	t.Cron.Start()
	log.Printf("[Task] 编辑器闲置清理已启动 (%s, 闲置上限 %s)", t.spec, t.maxIdle)
	return nil
}

// Stop 停止并等待运行中的任务结束
func (t *EditorSweepTask) Stop() {
	<-t.Cron.Stop().Done()
}

// RunOnce 执行一次清理，返回清理数量
func (t *EditorSweepTask) RunOnce() int {
	evicted := t.editors.EvictIdle(t.maxIdle)
	if evicted > 0 {
		log.Printf("[Task] 已关闭 %d 个闲置编辑器，剩余 %d 个", evicted, t.editors.Count())
	}
	if t.cooldowns != nil {
		if n := t.cooldowns.Sweep(cooldownTTL); n > 0 {
			log.Printf("[Task] 已清理 %d 条过期提交冷却记录", n)
		}
	}
	return evicted
}
