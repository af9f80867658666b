// Command querytalk-server exposes interpretation and sample generation
// over HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/koustreak/querytalk/internal/config"
	"github.com/koustreak/querytalk/internal/database"
	"github.com/koustreak/querytalk/internal/database/mysql"
	"github.com/koustreak/querytalk/internal/database/postgres"
	"github.com/koustreak/querytalk/internal/errs"
	"github.com/koustreak/querytalk/internal/logger"
	"github.com/koustreak/querytalk/internal/nlq"
	"github.com/koustreak/querytalk/internal/sample"
	"github.com/koustreak/querytalk/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "querytalk-server:", err)
		os.Exit(1)
	}

	log := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	logger.SetGlobal(log)

	ctx := context.Background()
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		log.ErrorWith("cannot connect to database", err, nil)
		os.Exit(1)
	}
	defer db.Close()

	var rng *rand.Rand
	if cfg.Sample.Seed != 0 {
		rng = rand.New(rand.NewSource(cfg.Sample.Seed))
	}

	srv := server.New(
		nlq.NewInterpreter(db, log),
		sample.NewGenerator(db, rng, log),
		db,
		log,
	)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.ErrorWith("shutdown failed", err, nil)
		}
	}()

	log.With().Str("addr", cfg.Server.Addr).Logger().Info("listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.ErrorWith("server failed", err, nil)
		os.Exit(1)
	}
	<-done
}

func openDatabase(ctx context.Context, cfg *config.Config) (database.DB, error) {
	if cfg.Database.DSN == "" {
		return nil, errs.New(errs.ErrKindInvalidInput,
			"no DSN configured; set database.dsn or QUERYTALK_DSN")
	}

	switch cfg.Database.Driver {
	case "mysql", "":
		dbCfg := database.DefaultConfig(database.DriverMySQL, cfg.Database.DSN)
		if cfg.Database.MaxConns > 0 {
			dbCfg.MaxConns = int32(cfg.Database.MaxConns)
		}
		if cfg.Database.QueryTimeout > 0 {
			dbCfg.QueryTimeout = cfg.Database.QueryTimeout
		}
		return mysql.New(ctx, dbCfg)
	case "postgres":
		dbCfg := database.DefaultConfig(database.DriverPostgres, cfg.Database.DSN)
		if cfg.Database.MaxConns > 0 {
			dbCfg.MaxConns = int32(cfg.Database.MaxConns)
		}
		if cfg.Database.QueryTimeout > 0 {
			dbCfg.QueryTimeout = cfg.Database.QueryTimeout
		}
		return postgres.New(ctx, dbCfg)
	default:
		return nil, errs.New(errs.ErrKindInvalidInput,
			fmt.Sprintf("unknown database driver %q", cfg.Database.Driver))
	}
}
