package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ==================== 错误码 ====================

const (
	CodeValidation       = "VALIDATION_ERROR"
	CodeCapacityExceeded = "CAPACITY_EXCEEDED"
	CodePartialCapacity  = "PARTIAL_CAPACITY"
	CodeRemote           = "REMOTE_ERROR"
	CodeResolution       = "RESOLUTION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeBadRequest       = "BAD_REQUEST"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInternal         = "INTERNAL_ERROR"
)

// AppError 业务错误
// Notice 为面向用户的提示键，Args 为提示参数（由 i18n 渲染）
type AppError struct {
	Code    string
	Message string
	Status  int
	Notice  string
	Args    []interface{}
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithNotice 设置用户提示键
func (e *AppError) WithNotice(notice string, args ...interface{}) *AppError {
	e.Notice = notice
	e.Args = args
	return e
}

// Validation 本地校验失败，阻断网络请求
func Validation(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// CapacityExceeded 图片名额已满，整批拒绝
func CapacityExceeded(max, requested int) *AppError {
	return &AppError{
		Code:    CodeCapacityExceeded,
		Message: fmt.Sprintf("image limit %d reached, %d file(s) rejected", max, requested),
		Status:  http.StatusConflict,
	}
}

// PartialCapacity 仅接收部分文件（提示性，不视为失败）
func PartialCapacity(accepted, dropped int) *AppError {
	return &AppError{
		Code:    CodePartialCapacity,
		Message: fmt.Sprintf("%d file(s) added, %d dropped", accepted, dropped),
		Status:  http.StatusOK,
	}
}

// Remote Listings API 返回非 2xx 或传输失败
func Remote(message string, err error) *AppError {
	return &AppError{
		Code:    CodeRemote,
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

// Resolution 地点详情查询失败
func Resolution(placeID string, err error) *AppError {
	return &AppError{
		Code:    CodeResolution,
		Message: fmt.Sprintf("place %q could not be resolved", placeID),
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func Unauthorized(message string, err error) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     err,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Is 判断错误链中是否包含指定错误码
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// As 提取 AppError，非业务错误统一包装为 Internal
func As(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("unexpected error", err)
}
