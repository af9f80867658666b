// Command querytalk is the interactive console: ask questions in plain
// English, browse generated sample queries, inspect the schema, and load
// CSV datasets.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/koustreak/querytalk/internal/config"
	"github.com/koustreak/querytalk/internal/database"
	"github.com/koustreak/querytalk/internal/database/mysql"
	"github.com/koustreak/querytalk/internal/database/postgres"
	"github.com/koustreak/querytalk/internal/errs"
	"github.com/koustreak/querytalk/internal/logger"
	"github.com/koustreak/querytalk/internal/nlq"
	"github.com/koustreak/querytalk/internal/sample"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "querytalk:", err)
		os.Exit(1)
	}

	// The console shares a terminal with the prompt, so keep log output
	// human-readable and quiet by default.
	format := cfg.Log.Format
	if format == "json" {
		format = "console"
	}
	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: format,
		Output: os.Stderr,
	})
	logger.SetGlobal(log)

	ctx := context.Background()
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "querytalk: cannot connect:", err)
		os.Exit(1)
	}
	defer db.Close()

	var rng *rand.Rand
	if cfg.Sample.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Sample.Seed))
	}

	r := &repl{
		db:        db,
		interp:    nlq.NewInterpreter(db, log),
		generator: sample.NewGenerator(db, rng, log),
		cfg:       cfg,
		log:       log,
	}
	if err := r.run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "querytalk:", err)
		os.Exit(1)
	}
}

func openDatabase(ctx context.Context, cfg *config.Config) (database.DB, error) {
	if cfg.Database.DSN == "" {
		return nil, errs.New(errs.ErrKindInvalidInput,
			"no DSN configured; set database.dsn or QUERYTALK_DSN")
	}

	switch cfg.Database.Driver {
	case "mysql", "":
		dbCfg := database.DefaultConfig(database.DriverMySQL, cfg.Database.DSN)
		applyOverrides(dbCfg, cfg)
		return mysql.New(ctx, dbCfg)
	case "postgres":
		dbCfg := database.DefaultConfig(database.DriverPostgres, cfg.Database.DSN)
		applyOverrides(dbCfg, cfg)
		return postgres.New(ctx, dbCfg)
	default:
		return nil, errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("unknown database driver %q", cfg.Database.Driver))
	}
}

func applyOverrides(dbCfg *database.Config, cfg *config.Config) {
	if cfg.Database.MaxConns > 0 {
		dbCfg.MaxConns = int32(cfg.Database.MaxConns)
	}
	if cfg.Database.QueryTimeout > 0 {
		dbCfg.QueryTimeout = cfg.Database.QueryTimeout
	}
}
