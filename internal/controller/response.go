package controller

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/language"

	"trailer_host_v1_202610/internal/i18n"
	apperrors "trailer_host_v1_202610/pkg/errors"
)

// ==================== 统一响应 ====================

func respondOK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": message,
		"data":    data,
	})
}

// respondBadRequest 请求格式错误（绑定失败等），不做本地化
func respondBadRequest(c *gin.Context, message string) {
	appErr := apperrors.BadRequest(message, nil)
	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Status,
		"error":   appErr.Code,
		"message": appErr.Message,
	})
}

// respondError 错误 → 本地化提示
// 带 Notice 的错误按当前语言渲染，服务端原样返回的 msg 直接透传
func respondError(c *gin.Context, tag language.Tag, err error) {
	appErr := apperrors.As(err)
	if appErr.Status >= http.StatusInternalServerError {
		log.Printf("[API] %s %s 失败: %v", c.Request.Method, c.FullPath(), err)
	}

	c.JSON(appErr.Status, gin.H{
		"code":    appErr.Status,
		"error":   appErr.Code,
		"message": localize(tag, appErr),
	})
}

// localize 提示文本
func localize(tag language.Tag, appErr *apperrors.AppError) string {
	if appErr.Notice != "" {
		return i18n.Translate(tag, appErr.Notice, appErr.Args...)
	}
	return appErr.Message
}
