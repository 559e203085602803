package model

import (
	"time"

	"gorm.io/datatypes"
)

// SubmissionLog 挂车提交记录（每次 submit 调用一条，无论成功失败）
type SubmissionLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	// 关联
	UserID    string `gorm:"size:64;index;not null;comment:卖家ID" json:"user_id"`
	ListingID string `gorm:"size:64;index;comment:挂车ID(新建成功后回填)" json:"listing_id"`
	SessionID string `gorm:"size:36;comment:编辑会话ID" json:"session_id"`

	// 提交内容摘要
	Action      string         `gorm:"size:16;index;comment:操作(create/update)" json:"action"`
	ImageCount  int            `gorm:"default:0;comment:保留的远程图片数" json:"image_count"`
	StagedCount int            `gorm:"default:0;comment:新上传图片数" json:"staged_count"`
	ClosedDates datatypes.JSON `gorm:"comment:关闭日期快照" json:"closed_dates"`

	// 结果
	Status     string `gorm:"size:16;index;default:success;comment:状态(success/failed)" json:"status"`
	ErrorMsg   string `gorm:"size:1024;comment:错误信息" json:"error_msg,omitempty"`
	DurationMs int64  `gorm:"comment:耗时(毫秒)" json:"duration_ms"`
}

func (SubmissionLog) TableName() string {
	return "submission_logs"
}

// ==================== 操作常量 ====================

const (
	SubmitActionCreate = "create"
	SubmitActionUpdate = "update"
)

// ==================== 状态常量 ====================

const (
	SubmitStatusSuccess = "success"
	SubmitStatusFailed  = "failed"
)
