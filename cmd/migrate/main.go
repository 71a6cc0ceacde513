package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/sunkaracharan/roifinal/pkg/config"
	"github.com/sunkaracharan/roifinal/pkg/db"
	"github.com/sunkaracharan/roifinal/pkg/logger"
	"github.com/sunkaracharan/roifinal/pkg/migrate"
)

const usage = `usage: migrate [-dir DIR] <command> [arg]

commands needing a database:
  up                  apply all pending migrations
  down                roll back the latest migration
  status              print applied and pending migrations
  version VERSION     migrate up or down to VERSION (YYYYMMDDHHMMSS)

offline commands:
  create NAME         write a new SQL migration into DIR
  validate            check file names and goose annotations in DIR
`

type options struct {
	dir  string
	cmd  string
	arg  string
	logg *logger.Logger
}

func main() {
	dir := flag.String("dir", migrate.DefaultDir, "migrations directory; missing directories fall back to the embedded set")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := options{
		dir:  *dir,
		cmd:  flag.Arg(0),
		arg:  flag.Arg(1),
		logg: logger.New(logger.Options{ServiceName: "migrate"}),
	}
	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", opts.cmd, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	switch opts.cmd {
	case "create":
		if opts.arg == "" {
			return errors.New("migration name is required")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.arg)
		if err != nil {
			return err
		}
		fmt.Println("created", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return err
		}
		fmt.Println("migrations valid")
		return nil
	case "up", "down", "status":
		return withDatabase(ctx, opts, func(sqlDB *sql.DB) error {
			return migrate.Run(ctx, sqlDB, opts.dir, opts.cmd)
		})
	case "version":
		if opts.arg == "" {
			return errors.New("target version is required")
		}
		return withDatabase(ctx, opts, func(sqlDB *sql.DB) error {
			return migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.arg)
		})
	}
	return fmt.Errorf("unknown command %q", opts.cmd)
}

func withDatabase(ctx context.Context, opts options, fn func(*sql.DB) error) error {
	if err := godotenv.Load(); err != nil {
		opts.logg.Debug(ctx, ".env not loaded")
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg := logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": opts.cmd, "dir": opts.dir})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer client.Close()

	sqlDB, err := client.DB().DB()
	if err != nil {
		return err
	}
	if err := fn(sqlDB); err != nil {
		return err
	}
	logg.Info(ctx, "migration command finished")
	return nil
}
