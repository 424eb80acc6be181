package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"quiz_backend/internal/config"
	"quiz_backend/internal/controller"
	"quiz_backend/internal/repository"
	"quiz_backend/internal/service"
	"quiz_backend/pkg/configwatcher"
	"quiz_backend/pkg/database"
	"quiz_backend/pkg/logger"
	"quiz_backend/pkg/monitoring"
	"quiz_backend/pkg/security"
	"quiz_backend/pkg/tracing"
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
	limiter         *security.RateLimiter
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user       *repository.UserRepository
	question   *repository.QuestionRepository
	topic      *repository.TopicRepository
	attempt    *repository.AttemptRepository
	statsCache *repository.StatsCacheRepository
}

type services struct {
	auth     *service.AuthService
	user     *service.UserService
	question *service.QuestionService
	topic    *service.TopicService
	attempt  *service.AttemptService
	importer *service.ImportService
}

type controllers struct {
	auth   *controller.AuthController
	user   *controller.UserController
	topic  *controller.TopicController
	admin  *controller.AdminController
	health *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		question:   repository.NewQuestionRepository(db),
		topic:      repository.NewTopicRepository(db),
		attempt:    repository.NewAttemptRepository(db),
		statsCache: repository.NewStatsCacheRepository(rdb, cfg.Quiz.StatsCacheTTL()),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.question = service.NewQuestionService(repos.question, repos.topic, repos.statsCache)
	s.topic = service.NewTopicService(repos.topic, repos.question, repos.attempt, repos.statsCache)
	s.attempt = service.NewAttemptService(repos.topic, repos.question, repos.attempt, repos.statsCache)
	s.importer = service.NewImportService(s.auth, s.topic, s.question)

	return s
}

func (a *App) initControllers(s *services, cfg *config.Config) *controllers {
	return &controllers{
		auth:   controller.NewAuthController(s.auth),
		user:   controller.NewUserController(s.user),
		topic:  controller.NewTopicController(s.topic, s.attempt, cfg.Quiz.TopicsPageSize),
		admin:  controller.NewAdminController(s.question, s.topic),
		health: controller.NewHealthController(a.DB, a.Redis),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(logger.GinMiddleware())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.limiter = security.NewRateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	router.Use(a.limiter.Middleware())
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		a.limiter.SetLimit(newCfg.RateLimit.MaxRequests, time.Duration(newCfg.RateLimit.WindowMinutes)*time.Minute)
	})

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
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

	// release 模式下默认不自动迁移，需显式指定 -migrate
	if cfg.Server.Mode != gin.ReleaseMode || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to migrate database", zap.Error(err))
		}
	}

	if cfg.MigrateOnly {
		return &App{Config: cfg, DB: db}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb, cfg)
	services := app.initServices(repos, cfg)
	app.services = services
	controllers := app.initControllers(services, cfg)

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorEndpoint, cfg.Tracing.SampleRatio)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Recovery())
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, cfg)

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetLevel(newCfg.Log.Level)
	})

	return app
}

// Seed loads a fixture file through the regular services.
func (a *App) Seed(ctx context.Context, path string) error {
	report, err := a.services.importer.ImportFile(ctx, path)
	if err != nil {
		return err
	}
	logger.Log.Info("Seed imported",
		zap.String("file", path),
		zap.Int("users", report.Users),
		zap.Int("topics", report.Topics),
		zap.Int("skippedTopics", report.SkippedTopics),
		zap.Int("questions", report.Questions),
	)
	return nil
}

func (a *App) startBackgroundTasks(stop <-chan struct{}) {
	go a.limiter.Run(stop)

	if a.Config.File == "" {
		return
	}
	go func() {
		err := configwatcher.WatchConfig(a.Config.File, func(newCfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(newCfg)
			}
		}, stop)
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	stop := make(chan struct{})
	a.startBackgroundTasks(stop)

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	close(stop)

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
		a.Redis.Close()
	}

	logger.Log.Info("Server exiting")
}
