// cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"hc_engine/pkg/config"
	"hc_engine/pkg/data"
	"hc_engine/pkg/engine"
	"hc_engine/pkg/scheduler"
	"hc_engine/pkg/token"
	"hc_engine/pkg/utils"
)

var (
	configFile = flag.String("config", "config.yaml", "Path to configuration file")
	logFile    = flag.String("log-file", "logs/engine.log", "Log output path")
	debug      = flag.Bool("debug", false, "Enable debug mode")
)

// App holds the wired engine daemon
type App struct {
	engine *engine.Engine
	poker  *scheduler.Poker
	repo   data.Repository
	logger *zap.Logger
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg, *logFile, *debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := initializeApp(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}

	setupGracefulShutdown(ctx, cancel, app, logger)

	logger.Info("Engine daemon running",
		zap.String("engineID", app.engine.ID()),
		zap.Bool("persistence", app.repo != nil),
		zap.Bool("poker", app.poker != nil))

	// Block until shutdown signal
	<-ctx.Done()
}

func initializeApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	initCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	var repo data.Repository
	if cfg.Database.URL != "" {
		pg, err := data.NewPostgresRepository(initCtx, cfg.Database.URL, logger)
		if err != nil {
			return nil, fmt.Errorf("initializing repository: %w", err)
		}
		repo = pg
	}

	voteLed, stakeLed := seedLedgers(cfg, logger)
	custody := cfg.Governance.CustodyAccount

	eng, err := engine.NewEngine(&cfg.Governance, voteLed.Bind(custody), stakeLed.Bind(custody), nil, repo, logger)
	if err != nil {
		if repo != nil {
			repo.Close()
		}
		return nil, fmt.Errorf("initializing engine: %w", err)
	}

	app := &App{
		engine: eng,
		repo:   repo,
		logger: logger,
	}

	if cfg.Poker.Enabled {
		poker, err := scheduler.NewPoker(eng, cfg.Poker, logger)
		if err != nil {
			app.stop()
			return nil, fmt.Errorf("initializing poker: %w", err)
		}
		app.poker = poker
		poker.Start()
	}

	logger.Info("All services started successfully")
	return app, nil
}

// seedLedgers builds the in-memory vote and stake ledgers from the genesis
// balances. Production deployments swap in real ledger adapters here.
func seedLedgers(cfg *config.Config, logger *zap.Logger) (*token.MemoryLedger, *token.MemoryLedger) {
	voteLed := token.NewMemoryLedger()
	for account, amount := range cfg.Genesis.VoteBalances {
		voteLed.Mint(account, amount)
	}
	stakeLed := token.NewMemoryLedger()
	for account, amount := range cfg.Genesis.StakeBalances {
		stakeLed.Mint(account, amount)
	}

	logger.Info("Ledgers seeded",
		zap.Int("voteAccounts", len(cfg.Genesis.VoteBalances)),
		zap.Uint64("voteSupply", voteLed.TotalSupply()),
		zap.Int("stakeAccounts", len(cfg.Genesis.StakeBalances)),
		zap.Uint64("stakeSupply", stakeLed.TotalSupply()))

	return voteLed, stakeLed
}

func (a *App) stop() {
	// Stop services in reverse order
	if a.poker != nil {
		a.poker.Stop()
	}
	a.engine.Close()
	if a.repo != nil {
		a.repo.Close()
	}
	a.logger.Info("All services stopped")
}

func setupGracefulShutdown(ctx context.Context, cancel context.CancelFunc, app *App, logger *zap.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		case <-ctx.Done():
			logger.Info("Context cancelled")
		}

		app.stop()
		cancel()
	}()
}

func initLogger(cfg *config.Config, logFile string, debug bool) (*zap.Logger, error) {
	logCfg := utils.DefaultLogConfig()
	logCfg.Level = cfg.LogLevel
	logCfg.OutputPath = logFile
	logCfg.Debug = debug || cfg.IsDevelopment()
	if debug {
		logCfg.Level = "debug"
	}
	return utils.NewLogger(logCfg)
}
