package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/config"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/controller"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/middleware"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/model"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/repository"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/router"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/service"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/internal/task"
	"github.com/melihozdmr/Woocommerce-Analytics-Dashboard-sub001/pkg/database"
)

func main() {
	// 1. 加载配置与日志
	cfg := config.Load()
	initLogger(cfg)

	// 2. 初始化数据库
	db := initDatabase(cfg)

	// 3. 初始化依赖
	deps := initDependencies(db, cfg)

	// 4. 启动定时任务
	syncTask := initTasks(deps, cfg)
	defer syncTask.Stop()

	// 5. 初始化路由
	r := gin.Default()
	router.InitRoutes(r,
		deps.Controllers.Store,
		deps.Controllers.Sync,
		deps.Controllers.Product,
		deps.Controllers.Order,
		deps.Controllers.Mapping,
	)

	// 6. 启动服务
	startServer(r, cfg)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Store   repository.StoreRepository
	Product repository.ProductRepository
	Order   repository.OrderRepository
	Mapping repository.MappingRepository
}

// Services 服务集合
type Services struct {
	Reconcile *service.ReconcileService
	Sync      *service.SyncService
	Store     *service.StoreService
	Product   *service.ProductService
	Order     *service.OrderService
	Mapping   *service.MappingService
}

// Controllers 控制器集合
type Controllers struct {
	Store   *controller.StoreController
	Sync    *controller.SyncController
	Product *controller.ProductController
	Order   *controller.OrderController
	Mapping *controller.MappingController
}

// ==================== 初始化函数 ====================

// initLogger 初始化日志
func initLogger(cfg *config.Config) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if cfg.JWTSecret != "" {
		jwtCfg := middleware.DefaultJWTConfig()
		jwtCfg.SecretKey = cfg.JWTSecret
		jwtCfg.AccessTokenTTL = cfg.AccessTokenTTL
		middleware.SetJWTConfig(jwtCfg)
	} else {
		logrus.Warn("JWT_SECRET 未设置，使用默认密钥（仅限开发环境）")
	}
}

// initDatabase 初始化数据库
func initDatabase(cfg *config.Config) *gorm.DB {
	return database.InitDB(cfg.DatabaseDSN,
		// Store
		&model.Store{},
		// Product
		&model.Product{}, &model.ProductVariation{},
		// Order
		&model.Order{},
		// Mapping
		&model.ProductMapping{}, &model.ProductMappingItem{}, &model.MappingSuggestionDismissal{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB, cfg *config.Config) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Store:   repository.NewStoreRepository(db),
		Product: repository.NewProductRepository(db),
		Order:   repository.NewOrderRepository(db),
		Mapping: repository.NewMappingRepository(db),
	}

	// -------- WooCommerce 客户端 --------
	wcClient := service.NewWooClient(&service.WooClientConfig{
		Timeout: cfg.HTTPTimeout,
		Debug:   cfg.HTTPDebug,
	})

	// -------- 业务服务 --------
	services := &Services{}
	services.Reconcile = service.NewReconcileService(repos.Product, repos.Order)
	services.Sync = service.NewSyncService(repos.Store, services.Reconcile, wcClient, cfg.SyncPageSize, cfg.SyncRunTimeout)
	services.Store = service.NewStoreService(repos.Store, wcClient)
	services.Product = service.NewProductService(repos.Product, repos.Store, wcClient)
	services.Order = service.NewOrderService(repos.Order, repos.Store)
	services.Mapping = service.NewMappingService(repos.Mapping, repos.Product)

	// -------- Controller 层 --------
	controllers := &Controllers{
		Store:   controller.NewStoreController(services.Store),
		Sync:    controller.NewSyncController(services.Sync),
		Product: controller.NewProductController(services.Product),
		Order:   controller.NewOrderController(services.Order),
		Mapping: controller.NewMappingController(services.Mapping),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies, cfg *config.Config) *task.StoreSyncTask {
	syncTask := task.NewStoreSyncTask(deps.Repos.Store, deps.Services.Sync)
	syncTask.SetSchedule(cfg.SyncCron)
	syncTask.SetConcurrency(cfg.SyncConcurrency, 500*time.Millisecond)
	syncTask.Start()

	logrus.Info("定时任务已启动")
	return syncTask
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, cfg *config.Config) {
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		logrus.Infof("服务启动在 :%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("正在关闭服务...")

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("服务强制关闭: %v", err)
	}

	logrus.Info("服务已退出")
}
