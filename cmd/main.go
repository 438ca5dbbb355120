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

	restctx "github.com/feedhub/feedhub-server/internal/api/rest/context"
	"github.com/feedhub/feedhub-server/internal/api/rest/router"
	"github.com/feedhub/feedhub-server/internal/api/ws"
	"github.com/feedhub/feedhub-server/internal/config"
	"github.com/feedhub/feedhub-server/internal/hash"
	"github.com/feedhub/feedhub-server/internal/logger"
	"github.com/feedhub/feedhub-server/internal/model"
	"github.com/feedhub/feedhub-server/internal/repository/postgres"
	"github.com/feedhub/feedhub-server/internal/server"
	"github.com/feedhub/feedhub-server/internal/service"
	storage "github.com/feedhub/feedhub-server/internal/storage/minio"
	"github.com/feedhub/feedhub-server/internal/token"
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
	postRepo := postgres.NewPostRepository(db)
	tokenManager := token.NewJWT(cfg.JWT.Secret)
	hasher := hash.NewBcrypt(12)
	ctxMgr := restctx.NewManager()

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

	hub := ws.NewHub(logger)
	defer hub.Close()

	authService := service.NewAuth(userRepo, hasher, tokenManager, logger)
	postService := service.NewPost(postRepo, userRepo, storageClient, hub, logger)

	httpServer, err := registerHTTPServer(authService, postService, userRepo, storageClient, tokenManager, ctxMgr, hub, logger, fmt.Sprintf(":%s", cfg.HTTP.Port))
	if err != nil {
		logger.Fatal("failed to register http server", "error", err)
	}

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

func registerHTTPServer(
	authService *service.Auth,
	postService *service.Post,
	userStore model.UserStore,
	storageClient model.Storage,
	tokenManager model.TokenManager,
	ctxMgr model.ContextManager,
	hub *ws.Hub,
	logger *logger.Logger,
	addr string,
) (*server.HTTPServer, error) {
	r := router.New(authService, postService, userStore, storageClient, tokenManager, ctxMgr, hub, logger)
	h, err := r.Register()
	if err != nil {
		return nil, err
	}

	return server.NewHTTPServer(h, addr), nil
}
