package app

import (
	"context"
	"log"
	"mindtrack_backend/internal/config"
	"mindtrack_backend/internal/controller"
	"mindtrack_backend/internal/repository"
	"mindtrack_backend/internal/service"
	"mindtrack_backend/pkg/configwatcher"
	"mindtrack_backend/pkg/database"
	"mindtrack_backend/pkg/logger"
	"mindtrack_backend/pkg/monitoring"
	"mindtrack_backend/pkg/security"
	"mindtrack_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	progress     *repository.ProgressRepository
	question     *repository.QuestionRepository
	leaderboard  *repository.LeaderboardRepository
	registration *repository.RegistrationRepository
	task         *repository.TaskRepository
	profile      repository.ProfileStore
}

type services struct {
	access       *service.AccessService
	profile      *service.ProfileService
	progress     *service.ProgressService
	question     *service.QuestionService
	leaderboard  *service.LeaderboardService
	user         *service.UserService
	registration *service.RegistrationService
	task         *service.TaskService
}

type controllers struct {
	progress     *controller.ProgressController
	question     *controller.QuestionController
	leaderboard  *controller.LeaderboardController
	user         *controller.UserController
	registration *controller.RegistrationController
	task         *controller.TaskController
	profile      *controller.ProfileController
	health       *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	// 启用 Redis 时资料文档存放在 Redis 哈希中，否则落在关系库
	var profiles repository.ProfileStore = repository.NewSQLProfileRepository(db)
	if rdb != nil {
		profiles = repository.NewRedisProfileRepository(rdb)
	}

	return &repositories{
		user:         repository.NewUserRepository(db),
		progress:     repository.NewProgressRepository(db),
		question:     repository.NewQuestionRepository(db),
		leaderboard:  repository.NewLeaderboardRepository(db),
		registration: repository.NewRegistrationRepository(db),
		task:         repository.NewTaskRepository(db),
		profile:      profiles,
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	profileService := service.NewProfileService(repos.profile)

	return &services{
		access:      service.NewAccessService(repos.profile, cfg.Auth.Enabled, cfg.Auth.AdminEmails),
		profile:     profileService,
		progress:    service.NewProgressService(db, repos.progress, repos.user, repos.question, &cfg.Progress),
		question:    service.NewQuestionService(repos.question, repos.progress),
		leaderboard: service.NewLeaderboardService(repos.leaderboard),
		user: service.NewUserService(
			db,
			repos.user,
			repos.progress,
			repos.registration,
			repos.task,
			profileService,
		),
		registration: service.NewRegistrationService(db, repos.registration, repos.user, profileService),
		task:         service.NewTaskService(repos.task, &cfg.Progress),
	}
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		progress:     controller.NewProgressController(s.progress, s.access),
		question:     controller.NewQuestionController(s.question),
		leaderboard:  controller.NewLeaderboardController(s.leaderboard),
		user:         controller.NewUserController(s.user),
		registration: controller.NewRegistrationController(s.registration, s.access),
		task:         controller.NewTaskController(s.task),
		profile:      controller.NewProfileController(s.profile),
		health:       controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	if cfg.RateLimit.MaxRequests > 0 {
		router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, window))
	}

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New 在已初始化的数据库与 Redis 之上组装路由，不负责迁移
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg, db)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode == gin.DebugMode {
		router.Use(gin.Logger())
	}
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, services, cfg)

	// 配置热更新：管理员邮箱与日志级别
	app.RegisterConfigCallback(func(newCfg *config.Config) {
		services.access.SetAdminEmails(newCfg.Auth.AdminEmails)
		logger.SetLevel(newCfg.Server.Mode, newCfg.Log.Level)
	})

	return app
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(&cfg.Tracing)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app := New(cfg, db, rdb)
		app.tracer = tp
		return app
	}

	return New(cfg, db, rdb)
}

func (a *App) watchConfig(ctx context.Context) {
	if a.Config.ConfigDir == "" {
		return
	}
	go func() {
		err := configwatcher.WatchConfig(ctx, a.Config.ConfigDir, func(newCfg *config.Config) {
			for _, callback := range a.configCallbacks {
				callback(newCfg)
			}
		})
		if err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	a.watchConfig(watchCtx)

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
}
