package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"trailer_host_v1_202610/internal/model"
)

// ==================== 仓储接口 ====================

// SubmissionLogRepository 提交记录仓储接口
type SubmissionLogRepository interface {
	Create(ctx context.Context, log *model.SubmissionLog) error
	GetByID(ctx context.Context, id int64) (*model.SubmissionLog, error)
	List(ctx context.Context, filter SubmissionFilter) ([]model.SubmissionLog, int64, error)
	GetStats(ctx context.Context, userID string) (*SubmissionStats, error)

	// 保留期清理
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// ==================== 过滤与统计 ====================

// SubmissionFilter 提交记录过滤条件
type SubmissionFilter struct {
	UserID    string
	ListingID string
	Status    string
	Page      int
	PageSize  int
}

// SubmissionStats 提交统计
type SubmissionStats struct {
	TotalCalls    int64   `json:"total_calls"`
	CreateCalls   int64   `json:"create_calls"`
	UpdateCalls   int64   `json:"update_calls"`
	SuccessCount  int64   `json:"success_count"`
	FailedCount   int64   `json:"failed_count"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}

// ==================== 仓储实现 ====================

type submissionLogRepo struct {
	db *gorm.DB
}

// NewSubmissionLogRepository 创建提交记录仓储
func NewSubmissionLogRepository(db *gorm.DB) SubmissionLogRepository {
	return &submissionLogRepo{db: db}
}

func (r *submissionLogRepo) Create(ctx context.Context, log *model.SubmissionLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *submissionLogRepo) GetByID(ctx context.Context, id int64) (*model.SubmissionLog, error) {
	var log model.SubmissionLog
	if err := r.db.WithContext(ctx).First(&log, id).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *submissionLogRepo) List(ctx context.Context, filter SubmissionFilter) ([]model.SubmissionLog, int64, error) {
	var logs []model.SubmissionLog
	var total int64

	query := r.db.WithContext(ctx).Model(&model.SubmissionLog{})
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.ListingID != "" {
		query = query.Where("listing_id = ?", filter.ListingID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}
	offset := (filter.Page - 1) * filter.PageSize

	err := query.Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(filter.PageSize).
		Find(&logs).Error

	return logs, total, err
}

func (r *submissionLogRepo) GetStats(ctx context.Context, userID string) (*SubmissionStats, error) {
	var stats SubmissionStats

	query := r.db.WithContext(ctx).Model(&model.SubmissionLog{})
	if userID != "" {
		query = query.Where("user_id = ?", userID)
	}

	err := query.Select(`
		COUNT(*) as total_calls,
		COALESCE(SUM(CASE WHEN action = 'create' THEN 1 ELSE 0 END), 0) as create_calls,
		COALESCE(SUM(CASE WHEN action = 'update' THEN 1 ELSE 0 END), 0) as update_calls,
		COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0) as success_count,
		COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) as failed_count,
		COALESCE(AVG(duration_ms), 0) as avg_duration_ms
	`).Scan(&stats).Error

	return &stats, err
}

func (r *submissionLogRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&model.SubmissionLog{})
	return result.RowsAffected, result.Error
}
