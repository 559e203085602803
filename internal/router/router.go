package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"trailer_host_v1_202610/internal/controller"
	"trailer_host_v1_202610/internal/middleware"
)

// Controllers 路由依赖的控制器
type Controllers struct {
	Editor     *controller.EditorController
	Listing    *controller.ListingController
	Submission *controller.SubmissionController
}

// 同一编辑器两次提交的最小间隔
const submitCooldown = 2 * time.Second

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctls Controllers, limiter *middleware.CooldownLimiter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", middleware.JWTAuth())
	{
		// 编辑器（一次弹窗一个会话）
		editors := api.Group("/editors")
		{
			editors.POST("", ctls.Editor.Open)
			editors.GET("/:id", ctls.Editor.Get)
			editors.DELETE("/:id", ctls.Editor.Discard)
			editors.POST("/:id/reset", ctls.Editor.Reset)

			editors.PUT("/:id/fields/:name", ctls.Editor.SetField)

			editors.POST("/:id/calendar/prev", ctls.Editor.PrevMonth)
			editors.POST("/:id/calendar/next", ctls.Editor.NextMonth)
			editors.POST("/:id/calendar/toggle", ctls.Editor.ToggleDay)

			editors.POST("/:id/images", ctls.Editor.AddImages)
			editors.DELETE("/:id/images/staged/:index", ctls.Editor.RemoveStagedImage)
			editors.DELETE("/:id/images/existing", ctls.Editor.RemoveExistingImage)

			editors.GET("/:id/location/suggestions", ctls.Editor.Suggestions)
			editors.POST("/:id/location", ctls.Editor.SelectPlace)

			editors.POST("/:id/submit", middleware.Cooldown(limiter, "submit", submitCooldown), ctls.Editor.Submit)
		}

		// 卖家挂车
		listings := api.Group("/listings")
		{
			listings.GET("", ctls.Listing.List)
			listings.DELETE("/:id", ctls.Listing.Delete)
		}

		api.PUT("/locale", ctls.Editor.SetLocale)

		// 提交记录
		submissions := api.Group("/submissions")
		{
			submissions.GET("", ctls.Submission.List)
			submissions.GET("/stats", ctls.Submission.Stats)
		}
	}
}
