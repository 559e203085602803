package controller

import (
	"github.com/gin-gonic/gin"

	"trailer_host_v1_202610/internal/api/dto"
	"trailer_host_v1_202610/internal/i18n"
	"trailer_host_v1_202610/internal/middleware"
	"trailer_host_v1_202610/internal/model"
	"trailer_host_v1_202610/internal/service"
)

// ListingController 卖家挂车列表
type ListingController struct {
	listings *service.ListingService
	editors  *service.EditorService
}

func NewListingController(listings *service.ListingService, editors *service.EditorService) *ListingController {
	return &ListingController{listings: listings, editors: editors}
}

// List 卖家挂车列表
// @Summary 获取卖家挂车（按 tab 过滤）
// @Tags Listing
// @Param tab query string false "All / Active / Inactive"
// @Success 200 {object} dto.ListingsResponse
// @Router /api/listings [get]
func (ctl *ListingController) List(c *gin.Context) {
	var req dto.ListListingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.Tab == "" {
		req.Tab = model.TabAll
	}

	userID := middleware.GetUserID(c)
	records, err := ctl.listings.ListBySeller(c.Request.Context(), userID)
	if err != nil {
		respondError(c, ctl.editors.AppContext(userID).Locale(), err)
		return
	}

	filtered := model.FilterByTab(records, req.Tab)
	respondOK(c, "success", dto.ListingsResponse{Tab: req.Tab, Total: len(filtered), List: filtered})
}

// Delete 删除挂车（只能删除自己的挂车）
// @Router /api/listings/{id} [delete]
func (ctl *ListingController) Delete(c *gin.Context) {
	userID := middleware.GetUserID(c)
	tag := ctl.editors.AppContext(userID).Locale()
	if err := ctl.listings.DeleteForSeller(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondError(c, tag, err)
		return
	}
	respondOK(c, i18n.Translate(tag, i18n.NoticeDeleted), nil)
}
