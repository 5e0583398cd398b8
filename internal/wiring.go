package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/starford/caseificio/internal/backup"
	"github.com/starford/caseificio/internal/service"
	"github.com/starford/caseificio/internal/storage"
	"github.com/starford/caseificio/internal/storage/localfs"
	"github.com/starford/caseificio/internal/storage/sqlstore"
)

// NewLogger builds the structured JSON logger every command uses.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// OpenBackend opens the configured primary backend. In permissive mode with
// a fallback directory the primary is wrapped so failed writes land in a
// local store instead; onFallback, if set, is told about each one.
func OpenBackend(ctx context.Context, cfg StorageConfig, logger *slog.Logger, onFallback func(op string)) (storage.Backend, error) {
	var (
		primary storage.Backend
		err     error
	)
	switch cfg.Driver {
	case DriverSQLite:
		primary, err = sqlstore.OpenSQLite(ctx, cfg.SQLitePath)
	case DriverPostgres:
		primary, err = sqlstore.OpenPostgres(ctx, cfg.PostgresDSN)
	case DriverLocal:
		primary, err = localfs.Open(cfg.LocalDir, logger)
	case DriverMemory:
		primary = storage.NewMemory()
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Strict() || cfg.FallbackDir == "" || cfg.Driver == DriverLocal {
		return primary, nil
	}
	local, err := localfs.Open(cfg.FallbackDir, logger)
	if err != nil {
		primary.Close()
		return nil, fmt.Errorf("open fallback store: %w", err)
	}
	fb := storage.NewFallback(primary, local, cfg.Mode, logger)
	fb.OnFallback = onFallback
	return fb, nil
}

// NewService builds a service over backend from cfg and loads its state.
func NewService(ctx context.Context, cfg *Config, backend storage.Backend, logger *slog.Logger, opts ...service.Option) (*service.Service, error) {
	loc, err := cfg.Scheduler.Location()
	if err != nil {
		return nil, err
	}
	base := []service.Option{
		service.WithLogger(logger),
		service.WithStrict(cfg.Storage.Strict()),
		service.WithLocation(loc),
	}
	svc := service.New(backend, append(base, opts...)...)
	if err := svc.Load(ctx); err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return svc, nil
}

// NewBackupSink returns the sink selected by cfg.
func NewBackupSink(ctx context.Context, cfg BackupConfig) (backup.Sink, error) {
	switch cfg.Driver {
	case BackupS3:
		return backup.NewS3Sink(ctx, backup.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			Prefix:          cfg.S3.Prefix,
			PathStyle:       cfg.S3.PathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
	case BackupFile, "":
		return backup.NewFileSink(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown backup driver %q", cfg.Driver)
	}
}
