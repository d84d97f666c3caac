package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/user/cinestream/internal/config"
	"github.com/user/cinestream/internal/handler"
	"github.com/user/cinestream/internal/middleware"
	"github.com/user/cinestream/internal/repository"
	"github.com/user/cinestream/internal/router"
	"github.com/user/cinestream/internal/service"
	"github.com/user/cinestream/internal/utils"
)

func main() {
	// 加载环境变量
	envErr := godotenv.Load()

	// 加载配置
	cfg := config.Load()
	setupLogger(cfg)
	if envErr != nil {
		log.Info().Msg("未找到 .env 文件，使用系统环境变量")
	}
	if cfg.TMDBAPIKey == "" {
		log.Warn().Msg("未设置 TMDB_API_KEY，影视代理接口将不可用")
	}

	// 初始化数据库
	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("数据库连接失败")
	}

	// 初始化仓库
	repos := repository.NewRepositories(db)

	sqlDB, err := repos.DB.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("获取数据库连接池失败")
	}
	defer sqlDB.Close()

	// 初始化缓存
	utils.InitCache()

	// 初始化 Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// 启用 gzip，图片代理不压缩
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/poster/"})))

	// 偏好设置保存在 Cookie Session 中
	store := cookie.NewStore([]byte(cfg.AppSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 365,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("cinestream", store))

	// 中间件
	r.Use(middleware.Logger())
	r.Use(middleware.Security())
	r.Use(middleware.CORS(cfg.CORSOrigin))

	// 初始化 Handler
	h := handler.NewHandler(repos, cfg)

	// 启动定时清理任务
	cleanupSvc := service.NewCleanupService(repos.Documents, repos.SearchTerms, cfg.VisitorRetentionDays)
	if err := cleanupSvc.Start(cfg.CleanupCron); err != nil {
		log.Fatal().Err(err).Msg("定时清理任务启动失败")
	}

	// 注册路由
	router.RegisterRoutes(r, h)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   60 * time.Second, // AI 生成较慢
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		log.Info().Msgf("服务器启动于 http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("服务器启动失败")
		}
	}()

	// 等待中断信号以优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("正在关闭服务器...")

	// 5 秒超时上下文用于关闭过程
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("服务器强制关闭")
	}
	cleanupSvc.Stop()

	log.Info().Msg("服务器已退出")
}

// setupLogger 开发环境输出可读日志，生产环境输出 JSON
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.LogFormat == "json" || (cfg.LogFormat == "" && cfg.IsProduction()) {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
}
