package app

import (
	"context"
	"log"
	"mandarin_edu_backend/internal/config"
	"mandarin_edu_backend/internal/controller"
	"mandarin_edu_backend/internal/repository"
	"mandarin_edu_backend/internal/service"
	"mandarin_edu_backend/pkg/configwatcher"
	"mandarin_edu_backend/pkg/database"
	"mandarin_edu_backend/pkg/logger"
	"mandarin_edu_backend/pkg/monitoring"
	"mandarin_edu_backend/pkg/security"
	"mandarin_edu_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user    *repository.UserRepository
	attempt *repository.PronunciationAttemptRepository
}

type services struct {
	pinning       service.PinningProvider
	scoring       *service.ScoringService
	tts           *service.TTSService
	pronunciation *service.PronunciationService
}

type controllers struct {
	pronunciation *controller.PronunciationController
	tts           *controller.TTSController
	health        *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:    repository.NewUserRepository(db),
		attempt: repository.NewPronunciationAttemptRepository(db),
	}
}

// initServices 外部服务适配器在这里做凭据校验：缺任何必需凭据直接失败，
// 而不是等到第一次调用
func (a *App) initServices(repos *repositories, cfg *config.Config) (*services, error) {
	s := &services{}

	pinning, err := service.NewPinningProvider(cfg)
	if err != nil {
		return nil, err
	}
	s.pinning = pinning

	s.scoring, err = service.NewScoringService(cfg.AI)
	if err != nil {
		return nil, err
	}

	s.tts, err = service.NewTTSService(cfg.TTS)
	if err != nil {
		return nil, err
	}

	s.pronunciation = service.NewPronunciationService(repos.attempt, repos.user, s.pinning, s.scoring)

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		pronunciation: controller.NewPronunciationController(s.pronunciation),
		tts:           controller.NewTTSController(s.tts),
		health:        controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func (a *App) startBackgroundTasks(s *services) {
	// 回收崩溃后卡在 processing 的尝试
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if err := s.pronunciation.ExpireStaleAttempts(a.Config.ProcessingTTL()); err != nil {
				logger.Log.Error("stale attempt sweep error", zap.Error(err))
			}
		}
	}()

	// 配置热更新
	go configwatcher.WatchConfig("configs/config.yaml", func(cfg *config.Config) {
		logger.Log.Info("config reloaded")
		a.Config = cfg
		for _, callback := range a.configCallbacks {
			callback(cfg)
		}
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, cfg.ForceMigrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}

	repos := app.initRepositories(db)
	services, err := app.initServices(repos, cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
		log.Fatalf("Failed to initialize services: %v", err)
	}
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("pronunciation-platform", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers)

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
