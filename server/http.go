package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"voice-recorder/config"
	"voice-recorder/constant"
	"voice-recorder/handler"
	"voice-recorder/pkg/archive"
	"voice-recorder/pkg/events"
	"voice-recorder/pkg/token"
	"voice-recorder/repository"
	"voice-recorder/service"
)

func RunHttp(cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(setupLogger(cfg), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Bool("isProduction", cfg.App.Environment == constant.EnvironmentProduction.String()).Send()
	if cfg.App.Environment == constant.EnvironmentProduction.String() {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := repository.Open(cfg.DB)
	if err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("failed to open database")
	}
	if err := repository.Migrate(gormDB); err != nil {
		zerolog.Ctx(ctx).Fatal().Err(err).Msg("failed to migrate database")
	}

	var publisher service.EventPublisher
	if cfg.Queue != nil {
		conn, err := config.NewRabbitMQConn(ctx, cfg.Queue)
		if err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("running without event publishing")
		} else {
			p, err := events.NewPublisher(ctx, conn, cfg.Queue)
			if err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Msg("running without event publishing")
			} else {
				publisher = p
			}
		}
	}

	var archiver service.Archiver
	if cfg.Storage != nil && cfg.MinIOBucket != "" {
		archiver = archive.NewMinIOArchiver(cfg.Storage, cfg.MinIOBucket)
	}

	tokens := token.NewManager(cfg.JWT.Secret, cfg.JWT.TokenDuration)
	authService := service.NewAuthService(repository.NewUserRepository(gormDB), tokens)
	recordingService := service.NewRecordingService(repository.NewRecordingRepository(gormDB), archiver, publisher)

	r := NewRouter(tokens, authService, recordingService)

	srv := http.Server{
		Handler:           r,
		Addr:              fmt.Sprintf(":%s", cfg.Server.HttpPort),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("start http server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
		}
	}()

	<-ctx.Done()
	zerolog.Ctx(ctx).Info().Msg("shutting down server")
	if err := srv.Shutdown(ctx); err != nil {
		zerolog.Ctx(ctx).Error().Str("env", cfg.App.Environment).Msg(err.Error())
	}

	zerolog.Ctx(ctx).Info().Str("env", cfg.App.Environment).Msg("server shutdown")
}

func NewRouter(tokens *token.Manager, authService service.AuthService, recordingService service.RecordingService) *gin.Engine {
	r := gin.Default()
	addHealth(r)

	authHandler := handler.NewAuthHandler(authService)
	recordingHandler := handler.NewRecordingHandler(recordingService)
	authRequired := handler.RequireAuth(tokens, authService)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/profile", authRequired, authHandler.Profile)
		auth.POST("/validate-token", authRequired, authHandler.ValidateToken)
		auth.POST("/refresh-token", authRequired, authHandler.RefreshToken)
	}

	recordings := r.Group("/recordings", authRequired)
	{
		recordings.POST("", recordingHandler.Create)
		recordings.GET("", recordingHandler.List)
		recordings.GET("/:id", recordingHandler.Get)
		recordings.POST("/:id/chunks", recordingHandler.UploadChunk)
		recordings.GET("/:id/stream", recordingHandler.Stream)
		recordings.POST("/:id/complete", recordingHandler.Complete)
		recordings.POST("/:id/cancel", recordingHandler.Cancel)
		recordings.DELETE("/:id", recordingHandler.Delete)
		recordings.GET("/:id/debug", recordingHandler.Debug)
	}

	return r
}

func addHealth(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})
}

func setupLogger(cfg *config.Config) context.Context {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.App.Environment == constant.EnvironmentDevelop.String() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	ctx := logger.WithContext(context.Background())

	return ctx
}
