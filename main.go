package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/wfunc/wordimpostor/broadcast"
	"github.com/wfunc/wordimpostor/config"
	"github.com/wfunc/wordimpostor/logger"
	"github.com/wfunc/wordimpostor/monitor"
	"github.com/wfunc/wordimpostor/persistence"
	"github.com/wfunc/wordimpostor/random"
	"github.com/wfunc/wordimpostor/room"
	"github.com/wfunc/wordimpostor/rpc"
	"github.com/wfunc/wordimpostor/server"
	"github.com/wfunc/wordimpostor/services"
	"github.com/wfunc/wordimpostor/session"
	"github.com/wfunc/wordimpostor/timer"
	"github.com/wfunc/wordimpostor/words"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Log.Level, cfg.Log.Development)
	defer logger.Sync()

	table := words.DefaultTable()
	if cfg.Game.WordsFile != "" {
		table, err = words.LoadTable(cfg.Game.WordsFile)
		if err != nil {
			logger.Log.Fatalf("Failed to load word table: %v", err)
		}
		logger.Log.Infof("Loaded %d categories from %s", len(table), cfg.Game.WordsFile)
	}

	seed, err := random.NewSeed()
	if err != nil {
		logger.Log.Fatalf("Failed to seed random source: %v", err)
	}

	sessions := session.NewManager()
	broadcaster := broadcast.NewRoomBroadcaster(sessions)

	rooms := room.NewRoomManager(room.Options{
		Settings: room.Settings{
			MaxPlayers:    cfg.Game.MaxPlayers,
			MinPlayers:    cfg.Game.MinPlayers,
			RematchWindow: cfg.Game.RematchWindow,
			MaskedWord:    cfg.Game.MaskedWord,
			Words:         table,
			Rand:          random.NewLocked(seed),
			Publish:       broadcaster.Publish,
		},
		CodeLength: cfg.Game.CodeLength,
	})
	defer rooms.Close()

	// Initialize Database
	var db persistence.Database = persistence.NewMemory()
	if cfg.Database.Enabled {
		pg := cfg.Database.Postgres
		gormDB, err := persistence.NewGormPostgreSQL(cfg.Database.Driver,
			persistence.DSN(pg.Host, pg.Port, pg.User, pg.Password, pg.DBName))
		if err != nil {
			logger.Log.Fatalf("Failed to connect to database: %v", err)
		}
		logger.Log.Infof("Database connection successful (driver %s).", cfg.Database.Driver)
		db = gormDB
	}
	defer db.Close()
	stats := services.NewStatsService(db, rooms)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mon := monitor.NewMonitor("impostor", reg)

	gameServer := server.NewGameServer(server.Options{
		Addr:              cfg.Server.HTTPAddress,
		RateLimit:         cfg.Server.RateLimit,
		RateBurst:         cfg.Server.RateBurst,
		HeartbeatInterval: cfg.Server.HeartbeatInterval,
	}, rooms, sessions, broadcaster, stats, mon)

	var rpcServer *rpc.Server
	if cfg.Server.RPCAddress != "" {
		rpcServer, err = rpc.NewServer(cfg.Server.RPCAddress, rpc.NewAdminService(stats, mon))
		if err != nil {
			logger.Log.Fatalf("Failed to create RPC server: %v", err)
		}
		go rpcServer.Start()
	}

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		metricsServer = mon.NewServer(cfg.Server.MetricsAddress)
		go func() {
			logger.Log.Infof("Metrics listening on %s", cfg.Server.MetricsAddress)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Errorf("Metrics server stopped: %v", err)
			}
		}()
	}

	scheduler := timer.NewScheduler()
	if cfg.Game.StatsInterval > 0 {
		scheduler.Every(cfg.Game.StatsInterval, gameServer.SampleStats)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- gameServer.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Log.Infof("Received %s, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			logger.Log.Errorf("Game server stopped: %v", err)
		}
	}

	scheduler.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := gameServer.Shutdown(ctx); err != nil {
		logger.Log.Warnf("Shutdown: %v", err)
	}
	if metricsServer != nil {
		metricsServer.Shutdown(ctx)
	}
	if rpcServer != nil {
		rpcServer.Stop()
	}
}
