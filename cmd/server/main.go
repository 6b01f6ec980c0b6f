package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dtroode/starboard/internal/api/http/router"
	httpServer "github.com/dtroode/starboard/internal/api/http/server"
	"github.com/dtroode/starboard/internal/config"
	"github.com/dtroode/starboard/internal/logger"
	"github.com/dtroode/starboard/internal/model"
	"github.com/dtroode/starboard/internal/repository/postgres"
	"github.com/dtroode/starboard/internal/server"
	"github.com/dtroode/starboard/internal/service"
	storage "github.com/dtroode/starboard/internal/storage/minio"
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
	logger := newLogger(cfg.LogLevel, cfg.LogFile)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize primary tier database", "error", err)
	}
	defer db.Close()

	blobs, err := storage.Dial(ctx, cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey, cfg.Storage.Bucket, cfg.Storage.UseSSL)
	if err != nil {
		logger.Fatal("failed to initialize legacy tier storage", "error", err)
	}

	primary := service.NewDocument("primary", postgres.NewDocumentRepository(db, cfg.Database.DocumentKey), true, logger)
	legacy := service.NewDocument("legacy", storage.NewDocumentStore(blobs, cfg.Storage.ObjectKey), false, logger)

	handler := router.New(primary, legacy, logger).Register()
	srv := httpServer.NewHTTPServer(handler, fmt.Sprintf(":%s", cfg.HTTP.Port))
	sl := server.NewSecurityLayer(cfg.HTTP.EnableHTTPS, cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address(), "https", cfg.HTTP.EnableHTTPS)
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
			stop()
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func newLogger(level int, file string) *logger.Logger {
	if file == "" {
		return logger.New(level)
	}
	return logger.NewWithWriter(level, logger.RotatingFile(file))
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
