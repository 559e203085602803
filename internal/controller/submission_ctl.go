package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"trailer_host_v1_202610/internal/api/dto"
	"trailer_host_v1_202610/internal/middleware"
	"trailer_host_v1_202610/internal/model"
	"trailer_host_v1_202610/internal/repository"
)

// SubmissionController 提交记录查询
type SubmissionController struct {
	logs repository.SubmissionLogRepository
}

func NewSubmissionController(logs repository.SubmissionLogRepository) *SubmissionController {
	return &SubmissionController{logs: logs}
}

// List 当前卖家的提交记录
// @Summary 提交记录分页
// @Tags Submission
// @Param listing_id query string false "挂车 ID"
// @Param status query string false "success / failed"
// @Param page query int false "页码" default(1)
// @Param page_size query int false "每页数量" default(20)
// @Success 200 {object} dto.SubmissionListResponse
// @Router /api/submissions [get]
func (ctl *SubmissionController) List(c *gin.Context) {
	var req dto.ListSubmissionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}

	if ctl.logs == nil {
		respondOK(c, "submission log disabled", dto.SubmissionListResponse{
			List: []model.SubmissionLog{}, Page: req.Page, PageSize: req.PageSize,
		})
		return
	}

	filter := repository.SubmissionFilter{
		UserID:    middleware.GetUserID(c),
		ListingID: req.ListingID,
		Status:    req.Status,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	list, total, err := ctl.logs.List(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "query failed: " + err.Error(),
		})
		return
	}

	respondOK(c, "success", dto.SubmissionListResponse{
		List:     list,
		Total:    total,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
}

// Stats 当前卖家的提交统计
// @Router /api/submissions/stats [get]
func (ctl *SubmissionController) Stats(c *gin.Context) {
	if ctl.logs == nil {
		respondOK(c, "submission log disabled", repository.SubmissionStats{})
		return
	}
	stats, err := ctl.logs.GetStats(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    500,
			"message": "query failed: " + err.Error(),
		})
		return
	}
	respondOK(c, "success", stats)
}
