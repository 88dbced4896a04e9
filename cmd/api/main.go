package main

import (
	"context"
	"time"

	"todoapi/pkg/translator"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	httpadapter "todoapi/internal/adapter/http"
	"todoapi/internal/adapter/http/handlers"
	httpmiddleware "todoapi/internal/adapter/http/middleware"
	appservice "todoapi/internal/app/service"
	"todoapi/internal/config"
)

const startupTimeout = 15 * time.Second

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	// Make zap available to packages that log through zap.L().
	zap.ReplaceGlobals(logger)
	defer func() {
		if err := logger.Sync(); err != nil {
			zap.L().Debug("failed to sync logger", zap.Error(err))
		}
	}()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	translator.InitTranslator(translator.Config{
		TranslationFolder:  cfg.TranslationFolder,
		SupportedLanguages: []string{translator.LanguageFr, translator.LanguageEn},
	})

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	taskStore, closeStore, err := buildStore(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatal("failed to open task store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	taskService := appservice.NewTaskService(taskStore)
	healthHandler := handlers.NewHealthHandler(taskService, cfg.AppName, cfg.AppVersion)
	taskHandler := handlers.NewTaskHandler(taskService)

	r := gin.New()
	r.Use(httpmiddleware.RequestID(), httpmiddleware.GinZapMiddleware(logger), httpmiddleware.Recovery(logger))
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Fatal("invalid trusted proxies", zap.Strings("trusted_proxies", cfg.TrustedProxies), zap.Error(err))
	}
	httpadapter.RegisterRoutes(r, healthHandler, taskHandler)

	addr := ":" + cfg.AppPort
	logger.Info("starting server",
		zap.String("addr", addr),
		zap.String("driver", cfg.StoreDriver),
		zap.Bool("cache", cfg.RedisAddr != ""),
	)
	if err := r.Run(addr); err != nil {
		logger.Fatal("could not start server", zap.Error(err))
	}
}
