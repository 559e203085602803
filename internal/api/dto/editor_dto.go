package dto

import (
	"trailer_host_v1_202610/internal/editor"
	"trailer_host_v1_202610/internal/model"
	"trailer_host_v1_202610/internal/service"
)

// ==================== 请求 DTO ====================

// OpenEditorRequest 打开编辑器请求（listing_id 为空即新建）
type OpenEditorRequest struct {
	ListingID string `json:"listing_id"`
}

// SetFieldRequest 修改字段请求（允许空字符串）
type SetFieldRequest struct {
	Value *string `json:"value" binding:"required"`
}

// ToggleDayRequest 切换关闭日请求
type ToggleDayRequest struct {
	Day int `json:"day" binding:"required,min=1,max=31"`
}

// RemoveExistingImageRequest 移除已上传图片请求
type RemoveExistingImageRequest struct {
	URL string `json:"url" binding:"required"`
}

// SelectPlaceRequest 选择候选地点请求
type SelectPlaceRequest struct {
	PlaceID string `json:"place_id" binding:"required"`
}

// SetLocaleRequest 切换语言请求
type SetLocaleRequest struct {
	Locale string `json:"locale" binding:"required"`
}

// ListListingsRequest 卖家挂车列表请求
type ListListingsRequest struct {
	Tab string `form:"tab" binding:"omitempty,oneof=All Active Inactive"`
}

// ListSubmissionsRequest 提交记录列表请求
type ListSubmissionsRequest struct {
	ListingID string `form:"listing_id"`
	Status    string `form:"status" binding:"omitempty,oneof=success failed"`
	Page      int    `form:"page,default=1"`
	PageSize  int    `form:"page_size,default=20"`
}

// ==================== 响应 DTO ====================

// EditorResponse 编辑器状态
type EditorResponse struct {
	EditorID string          `json:"editor_id"`
	View     editor.FormView `json:"view"`
	Notice   string          `json:"notice,omitempty"`
}

// ToggleDayResponse 切换结果
type ToggleDayResponse struct {
	Key    string `json:"key"`
	Closed bool   `json:"closed"`
}

// AddImagesResponse 添加图片结果
type AddImagesResponse struct {
	Added   int             `json:"added"`
	Dropped int             `json:"dropped"`
	View    editor.FormView `json:"view"`
}

// SuggestionsResponse 地点联想结果
type SuggestionsResponse struct {
	Predictions []service.Prediction `json:"predictions"`
}

// SubmitResponse 提交结果
type SubmitResponse struct {
	Action string               `json:"action"`
	Record *model.ListingRecord `json:"record"`
}

// ListingsResponse 卖家挂车列表
type ListingsResponse struct {
	Tab   string                `json:"tab"`
	Total int                   `json:"total"`
	List  []model.ListingRecord `json:"list"`
}

// SubmissionListResponse 提交记录分页
type SubmissionListResponse struct {
	List     []model.SubmissionLog `json:"list"`
	Total    int64                 `json:"total"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}
