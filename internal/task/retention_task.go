package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"trailer_host_v1_202610/internal/repository"
)

// ==================== 提交记录保留期任务 ====================

// RetentionTask 每日清理过期的提交记录
type RetentionTask struct {
	logs      repository.SubmissionLogRepository
	retention time.Duration
	spec      string
	now       func() time.Time
	Cron      *cron.Cron
}

// NewRetentionTask retentionDays <= 0 时不清理
func NewRetentionTask(logs repository.SubmissionLogRepository, retentionDays int, spec string) *RetentionTask {
	if spec == "" {
		spec = "0 30 3 * * *" // 每天 03:30
	}
	return &RetentionTask{
		logs:      logs,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		spec:      spec,
		now:       time.Now,
		Cron:      cron.New(cron.WithSeconds()),
	}
}

// Start 启动定时任务
func (t *RetentionTask) Start() error {
	if t.retention <= 0 {
		log.Println("[Task] 提交记录保留期未设置，跳过清理任务")
		return nil
	}

	_, err := t.Cron.AddFunc(t.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := t.RunOnce(ctx); err != nil {
			log.Printf("[Task] 提交记录清理失败: %v", err)
		}
	})
	if err != nil {
		return err
	}

	t.Cron.Start()
	log.Printf("[Task] 提交记录清理已启动 (%s, 保留 %s)", t.spec, t.retention)
	return nil
}

// Stop 停止并等待运行中的任务结束
func (t *RetentionTask) Stop() {
	<-t.Cron.Stop().Done()
}

// RunOnce 删除早于保留期的记录
func (t *RetentionTask) RunOnce(ctx context.Context) (int64, error) {
	if t.retention <= 0 {
		return 0, nil
	}
	cutoff := t.now().Add(-t.retention)
	deleted, err := t.logs.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.Printf("[Task] 已删除 %d 条 %s 之前的提交记录", deleted, cutoff.Format(time.DateOnly))
	}
	return deleted, nil
}
