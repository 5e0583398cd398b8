package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/caseificio/internal"
	"github.com/starford/caseificio/internal/agendaview"
	"github.com/starford/caseificio/internal/backup"
	"github.com/starford/caseificio/internal/calendar"
	"github.com/starford/caseificio/internal/catalog"
	"github.com/starford/caseificio/internal/mcpserver"
	"github.com/starford/caseificio/internal/service"
	"github.com/starford/caseificio/internal/storage"
	pkgconfig "github.com/starford/caseificio/pkg/config"
)

var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Warn("config file not found, using defaults", slog.String("path", configPath))
	}
	return cfg, nil
}

// openService is shared by the one-shot commands. Their logs go to stderr
// so stdout stays clean for output and for the MCP protocol.
func openService(ctx context.Context, cmd *cli.Command) (*internal.Config, *service.Service, storage.Backend, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	logger := internal.NewLogger(os.Stderr, cfg.App.LogLevel)
	backend, err := internal.OpenBackend(ctx, cfg.Storage, logger, nil)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("open storage: %w", err)
	}
	svc, err := internal.NewService(ctx, cfg, backend, logger)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}
	return cfg, svc, backend, logger, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	_, svc, backend, _, err := openService(ctx, cmd)
	if err != nil {
		return err
	}
	defer backend.Close()
	return mcpserver.New(svc, version).ServeStdio()
}

func printAgenda(ctx context.Context, cmd *cli.Command) error {
	_, svc, backend, _, err := openService(ctx, cmd)
	if err != nil {
		return err
	}
	defer backend.Close()

	from := svc.Today()
	if s := cmd.String("date"); s != "" {
		if from, err = calendar.Parse(s); err != nil {
			return err
		}
	}
	days := int(cmd.Int("days"))
	if days <= 1 {
		date, items := svc.Agenda(ctx, from)
		fmt.Println(agendaview.Day(date, items))
		return nil
	}
	agenda, err := svc.AgendaRange(ctx, from, from.AddDays(days-1))
	if err != nil {
		return err
	}
	fmt.Println(agendaview.Range(agenda))
	return nil
}

func runBackup(ctx context.Context, cmd *cli.Command) error {
	cfg, svc, backend, logger, err := openService(ctx, cmd)
	if err != nil {
		return err
	}
	defer backend.Close()

	sink, err := internal.NewBackupSink(ctx, cfg.Backup)
	if err != nil {
		return err
	}
	location, err := backup.Run(ctx, svc.Snapshot(), sink, time.Now(), logger)
	if err != nil {
		return err
	}
	fmt.Println(location)
	return nil
}

func runRestore(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := internal.NewLogger(os.Stderr, cfg.App.LogLevel)

	path := cmd.String("file")
	var data []byte
	if path == "" {
		sink, err := backup.NewFileSink(cfg.Backup.Dir)
		if err != nil {
			return err
		}
		latest, err := sink.Latest()
		if err != nil {
			return err
		}
		if latest == "" {
			return fmt.Errorf("no backups in %s", cfg.Backup.Dir)
		}
		path = latest
		data, err = sink.Read(latest)
		if err != nil {
			return err
		}
	} else if data, err = os.ReadFile(path); err != nil {
		return fmt.Errorf("read backup: %w", err)
	}

	doc, err := backup.Decode(data)
	if err != nil {
		return err
	}
	backend, err := internal.OpenBackend(ctx, cfg.Storage, logger, nil)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer backend.Close()
	if err := backup.Restore(ctx, doc, backend); err != nil {
		return err
	}
	logger.Info("backup restored",
		slog.String("source", path),
		slog.Time("taken_at", doc.TakenAt),
		slog.Int("cheese_types", len(doc.CheeseTypes)),
		slog.Int("productions", len(doc.Productions)),
		slog.Int("activities", len(doc.Activities)))
	return nil
}

func seed(ctx context.Context, cmd *cli.Command) error {
	types, err := catalog.Load(cmd.String("file"))
	if err != nil {
		return err
	}
	_, svc, backend, logger, err := openService(ctx, cmd)
	if err != nil {
		return err
	}
	defer backend.Close()

	for _, c := range types {
		saved, created, rep, err := svc.UpsertCheeseTypeByName(ctx, c)
		if err != nil {
			return fmt.Errorf("seed %q: %w", c.Name, err)
		}
		logger.Info("cheese type seeded",
			slog.String("name", saved.Name),
			slog.String("id", saved.ID),
			slog.Bool("created", created),
			slog.Int("activities_deleted", len(rep.Deleted)),
			slog.Int("activities_created", len(rep.Created)),
			slog.Int("failures", len(rep.Failures)))
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "caseificio",
		Usage:   "Cheese production tracker: protocol scheduling, recurring tasks and production statistics",
		Version: version,
		Action:  serve,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and event stream",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: runMCP,
			},
			{
				Name:   "agenda",
				Usage:  "Print the agenda for a day or a run of days",
				Action: printAgenda,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "First day (yyyy-MM-dd), default today"},
					&cli.IntFlag{Name: "days", Aliases: []string{"n"}, Usage: "Number of days to print", Value: 1},
				},
			},
			{
				Name:   "backup",
				Usage:  "Write a snapshot of every record to the configured backup target",
				Action: runBackup,
			},
			{
				Name:   "restore",
				Usage:  "Load a backup into the configured storage",
				Action: runRestore,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Backup file, default the newest in backup.dir"},
				},
			},
			{
				Name:   "seed",
				Usage:  "Create or update cheese types from a YAML catalog",
				Action: seed,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "Catalog file", Required: true},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
