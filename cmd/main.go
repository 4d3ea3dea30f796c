package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	httpctx "github.com/dtroode/fileshare-server/internal/api/http/context"
	"github.com/dtroode/fileshare-server/internal/api/http/router"
	"github.com/dtroode/fileshare-server/internal/auth"
	"github.com/dtroode/fileshare-server/internal/config"
	"github.com/dtroode/fileshare-server/internal/logger"
	"github.com/dtroode/fileshare-server/internal/model"
	"github.com/dtroode/fileshare-server/internal/repository/postgres"
	"github.com/dtroode/fileshare-server/internal/server"
	"github.com/dtroode/fileshare-server/internal/service"
	storage "github.com/dtroode/fileshare-server/internal/storage/minio"
	"github.com/dtroode/fileshare-server/internal/storage/redis"
	"github.com/dtroode/fileshare-server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	userRepo := postgres.NewUserRepository(db)
	fileRepo := postgres.NewFileRepository(db)
	shareRepo := postgres.NewShareRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret)
	passwordHasher := auth.NewHasher()
	ctxMgr := httpctx.NewManager()

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	storageClient, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	var fileCache model.FileCache
	if cfg.Redis.Addr != "" {
		cache, err := redis.NewCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatal("failed to initialize cache", "error", err)
		}
		defer cache.Close()
		fileCache = cache
	}

	authService := service.NewAuth(userRepo, passwordHasher, tokenManager, logger)
	accessService := service.NewAccess(fileRepo, shareRepo, userRepo, fileCache, cfg.Share.BaseURL, logger)
	fileService := service.NewFile(fileRepo, storageClient, fileCache, accessService, logger)

	r := router.New(authService, fileService, accessService, tokenManager, ctxMgr, logger)
	httpServer := server.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer

	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		err := s.Start(sl)
		if err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(httpServer)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", httpServer.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
