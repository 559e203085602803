package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"trailer_host_v1_202610/internal/config"
	"trailer_host_v1_202610/internal/controller"
	"trailer_host_v1_202610/internal/middleware"
	"trailer_host_v1_202610/internal/model"
	"trailer_host_v1_202610/internal/repository"
	"trailer_host_v1_202610/internal/router"
	"trailer_host_v1_202610/internal/service"
	"trailer_host_v1_202610/internal/task"
	"trailer_host_v1_202610/pkg/database"
	"trailer_host_v1_202610/pkg/utils"
)

func main() {
	cfg := config.Load()

	// 1. 初始化数据库（可选）
	db := initDatabase(cfg)

	// 2. 初始化依赖
	deps := initDependencies(cfg, db)

	// 3. 启动定时任务（含冷却记录清理）
	limiter := middleware.NewCooldownLimiter()
	tasks := initTasks(cfg, deps, limiter)

	// 4. 初始化路由
	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20 // 超出部分写入临时文件
	router.InitRoutes(r, *deps.Controllers, limiter)

	// 5. 启动服务
	startServer(cfg, r, tasks)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Submissions repository.SubmissionLogRepository
	Services    *Services
	Controllers *router.Controllers
}

// Services 服务集合
type Services struct {
	Listings *service.ListingService
	Places   *service.LocationService
	Editors  *service.EditorService
}

// ==================== 初始化函数 ====================

// initDatabase DATABASE_DSN 为空时不启用提交记录
func initDatabase(cfg *config.Config) *gorm.DB {
	if cfg.DatabaseDSN == "" {
		log.Println("未配置 DATABASE_DSN，提交记录不落库")
		return nil
	}

	db, err := database.InitDB(cfg.DatabaseDSN, database.Options{Debug: cfg.DBDebug}, &model.SubmissionLog{})
	if err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}
	return db
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB) *Dependencies {
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:      cfg.JWTSecret,
		AccessTokenTTL: cfg.JWTTTL,
		Issuer:         "trailer-host",
	})

	// -------- Repo 层 --------
	var submissions repository.SubmissionLogRepository
	if db != nil {
		submissions = repository.NewSubmissionLogRepository(db)
	}

	// -------- 外部协作方 --------
	listingsClient := utils.NewAPIClient(utils.ClientConfig{
		BaseURL: cfg.ListingsBaseURL,
		Timeout: cfg.HTTPTimeout,
		Debug:   cfg.HTTPDebug,
	})
	placesClient := utils.NewAPIClient(utils.ClientConfig{
		BaseURL: cfg.PlacesBaseURL,
		Timeout: cfg.HTTPTimeout,
		Debug:   cfg.HTTPDebug,
	})

	// -------- 业务服务 --------
	services := &Services{
		Listings: service.NewListingService(listingsClient),
		Places:   service.NewLocationService(placesClient),
	}
	services.Editors = service.NewEditorService(service.EditorDeps{
		Listings:      services.Listings,
		Places:        services.Places,
		Logs:          submissions,
		DefaultLocale: cfg.DefaultLocale,
	})

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Editor:     controller.NewEditorController(services.Editors, cfg.MaxImageBytes),
		Listing:    controller.NewListingController(services.Listings, services.Editors),
		Submission: controller.NewSubmissionController(submissions),
	}

	return &Dependencies{
		DB:          db,
		Submissions: submissions,
		Services:    services,
		Controllers: controllers,
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(cfg *config.Config, deps *Dependencies, limiter *middleware.CooldownLimiter) *task.TaskManager {
	tcfg := task.DefaultConfig()
	tcfg.EditorIdle = cfg.EditorIdleTTL
	tcfg.RetentionDays = cfg.SubmissionRetentionDays

	tm := task.NewTaskManager(&task.TaskManagerDeps{
		Editors:   deps.Services.Editors,
		Cooldowns: limiter,
		Logs:      deps.Submissions,
	}, tcfg)
	if err := tm.Start(); err != nil {
		log.Fatalf("无法启动定时任务: %v", err)
	}
	return tm
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(cfg *config.Config, r *gin.Engine, tasks *task.TaskManager) {
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")
	tasks.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}
