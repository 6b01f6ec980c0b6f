package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/dtroode/starboard/internal/client"
	"github.com/dtroode/starboard/internal/config"
	"github.com/dtroode/starboard/internal/datasync"
	"github.com/dtroode/starboard/internal/logger"
	"github.com/dtroode/starboard/internal/model"
	"github.com/dtroode/starboard/internal/service"
	"github.com/dtroode/starboard/internal/storage/cache"
	"github.com/dtroode/starboard/internal/storage/sqlite"
	"github.com/dtroode/starboard/internal/token"
)

// app holds everything a command needs. It is built once per invocation.
type app struct {
	input     *bufio.Reader
	cfg       *config.ClientConfig
	logger    *logger.Logger
	logFile   io.Closer
	durable   *sqlite.Store
	kv        *cache.File
	orch      *datasync.Orchestrator
	classroom *service.Classroom
	integrity *service.Integrity
}

func newApp(ctx context.Context, cfg *config.ClientConfig, stderr io.Writer) (*app, error) {
	a := &app{cfg: cfg}

	if cfg.LogFile != "" {
		w := logger.RotatingFile(cfg.LogFile)
		a.logFile = w
		a.logger = logger.NewWithWriter(cfg.LogLevel, w)
	} else {
		a.logger = logger.NewWithWriter(cfg.LogLevel, stderr)
	}

	durable, err := sqlite.Open(filepath.Join(cfg.DataDir, "starboard.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}
	a.durable = durable

	a.kv = cache.OpenFile(filepath.Join(cfg.DataDir, "cache.json"))

	httpClient := &http.Client{}
	var remotes []model.RemoteTier
	if cfg.PrimaryURL != "" {
		remotes = append(remotes, client.NewHTTPTier("primary", cfg.PrimaryURL, httpClient))
	}
	if cfg.LegacyURL != "" {
		remotes = append(remotes, client.NewHTTPTier("legacy", cfg.LegacyURL, httpClient))
	}

	a.orch = datasync.New(remotes, durable, cache.NewDocuments(a.kv), a.logger,
		datasync.WithTierTimeout(cfg.TierTimeout))
	a.orch.Open(ctx)

	a.classroom = service.NewClassroom(a.orch, service.NewCredentials(0), token.NewJWT(cfg.SessionSecret), a.logger)
	a.integrity = service.NewIntegrity(a.orch, cfg.BackupDir, a.logger)

	return a, nil
}

func (a *app) Close() error {
	var errs []error
	if a.orch != nil {
		errs = append(errs, a.orch.Close())
	}
	if a.durable != nil {
		errs = append(errs, a.durable.Close())
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}

// requireSession returns the logged in teacher or an error telling the user
// to log in.
func (a *app) requireSession() (string, error) {
	tok, _ := a.kv.Get(cache.SessionKey)
	username, err := a.classroom.Authorize(tok)
	if err != nil {
		if errors.Is(err, model.ErrSessionMissing) {
			return "", fmt.Errorf("%w: run 'starboard login <username>' first", err)
		}
		_ = a.kv.Delete(cache.SessionKey)
		return "", fmt.Errorf("%w: log in again", err)
	}
	return username, nil
}
