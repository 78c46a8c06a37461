// Package main provides the aviary binary: the idle engine, the battle arena
// and the interactive console for one save slot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/aviary/internal/config"
	"github.com/cory-johannsen/aviary/internal/game/ai"
	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/combat"
	"github.com/cory-johannsen/aviary/internal/game/command"
	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/dice"
	"github.com/cory-johannsen/aviary/internal/game/forge"
	"github.com/cory-johannsen/aviary/internal/game/idle"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
	"github.com/cory-johannsen/aviary/internal/gameserver"
	"github.com/cory-johannsen/aviary/internal/observability"
	"github.com/cory-johannsen/aviary/internal/save"
	"github.com/cory-johannsen/aviary/internal/scripting"
	"github.com/cory-johannsen/aviary/internal/server"
	"github.com/cory-johannsen/aviary/internal/storage/file"
	"github.com/cory-johannsen/aviary/internal/storage/postgres"
	"github.com/cory-johannsen/aviary/internal/storage/sqlite"
)

// advisorScriptKey is the script set holding the Lua opponent advisor.
const advisorScriptKey = "advisor"

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file; empty = defaults and AVIARY_* environment")
	slotFlag := flag.String("slot", "", "save slot to play; overrides game.slot")
	color := flag.Bool("color", true, "colorize console output")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *slotFlag != "" {
		cfg.Game.Slot = *slotFlag
		if err := cfg.Validate(); err != nil {
			log.Fatalf("invalid slot: %v", err)
		}
	}

	logger, err := observability.NewLogger(cfg.Logging, cfg.Game.Slot)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx := context.Background()

	tables := balance.Default()
	if cfg.Game.BalanceFile != "" {
		tables, err = balance.Load(cfg.Game.BalanceFile)
		if err != nil {
			logger.Fatal("loading balance tables", zap.String("path", cfg.Game.BalanceFile), zap.Error(err))
		}
	}

	speciesDir := filepath.Join(cfg.Game.ContentDir, "species")
	templates, err := creature.LoadTemplates(speciesDir)
	if err != nil {
		logger.Fatal("loading species", zap.String("dir", speciesDir), zap.Error(err))
	}
	logger.Info("species loaded", zap.Int("count", len(templates)))

	src := dice.NewCryptoSource()
	gen := forge.NewGenerator(rarity.NewRoller(src, tables.Rarity, logger), tables, logger)
	env := command.NewEnv(gen, templates)

	backend, closeBackend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("opening save backend", zap.String("backend", cfg.Storage.Backend), zap.Error(err))
	}
	defer closeBackend()

	store := save.NewStore(backend, tables, logger)
	if sum, err := store.Preview(ctx, cfg.Game.Slot); err != nil {
		logger.Warn("previewing slot", zap.Error(err))
	} else if sum != nil {
		logger.Info("resuming slot",
			zap.Int("creatures", sum.Creatures),
			zap.Int("top_level", sum.TopLevel),
			zap.Int("highest_zone", sum.HighestZone),
			zap.Int64("ticks", sum.Ticks),
		)
	}

	engine, err := gameserver.NewEngine(ctx, env, store, cfg.Game.Slot, logger)
	if err != nil {
		logger.Fatal("creating engine", zap.Error(err))
	}
	if err := engine.SetStarter(ctx, cfg.Game.Starter); err != nil {
		logger.Fatal("granting starter", zap.String("species", cfg.Game.Starter), zap.Error(err))
	}

	advisors, scripts, err := buildAdvisors(cfg.Advisor, src, logger)
	if err != nil {
		logger.Fatal("building advisors", zap.Error(err))
	}
	if scripts != nil {
		defer scripts.Close()
	}
	advisor, ok := advisors.AdvisorFor(cfg.Advisor.Kind)
	if !ok {
		logger.Fatal("unknown advisor", zap.String("kind", cfg.Advisor.Kind), zap.Strings("available", advisors.Names()))
	}

	arena := gameserver.NewArena(engine, advisor, cfg.Advisor.Timeout, combat.RealClock{}, logger)
	console := gameserver.NewConsole(engine, arena, command.DefaultRegistry(), os.Stdout, gameserver.Palette{Color: *color}, logger)
	ticks := gameserver.NewTickLoop(engine, gameserver.NewTickerSource(cfg.Game.TickInterval), logger)

	reports := make(chan idle.Report, 16)
	ticks.Subscribe(reports)

	lc := server.NewLifecycle(logger)
	lc.Add("ticks", ticks)
	lc.Add("reports", server.FuncService(func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case rep := <-reports:
				console.Notify(rep)
			}
		}
	}))
	lc.Add("console", server.FuncService(func(ctx context.Context) error {
		return console.Run(ctx, os.Stdin)
	}))

	logger.Info("aviary ready",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("advisor", cfg.Advisor.Kind),
		zap.Duration("tick_interval", cfg.Game.TickInterval),
		zap.Duration("startup", time.Since(start)),
	)

	runErr := lc.Run(ctx)
	ticks.Unsubscribe(reports)
	if err := engine.Save(context.Background()); err != nil {
		logger.Error("final save", zap.Error(err))
	}
	if runErr != nil {
		logger.Error("aviary stopped", zap.Error(runErr))
		_ = logger.Sync()
		os.Exit(1)
	}
}

// openBackend builds the save backend selected by cfg.Storage.Backend. The
// returned func releases it.
func openBackend(ctx context.Context, cfg config.Config, logger *zap.Logger) (save.Backend, func(), error) {
	noop := func() {}
	switch cfg.Storage.Backend {
	case "memory":
		logger.Warn("memory backend selected; progress is lost on exit")
		return save.NewMemoryBackend(), noop, nil
	case "file":
		b, err := file.New(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		return b, noop, nil
	case "sqlite":
		b, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if version, dirty, err := b.SchemaVersion(ctx); err == nil {
			logger.Info("sqlite schema", zap.String("path", cfg.Storage.SQLitePath), zap.Uint("version", version), zap.Bool("dirty", dirty))
		}
		return b, func() {
			if err := b.Close(); err != nil {
				logger.Warn("closing sqlite", zap.Error(err))
			}
		}, nil
	case "postgres":
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		if err := pool.SchemaReady(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pool.Saves(), pool.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

// buildAdvisors registers the random advisor and the configured one. The
// returned script manager is non-nil only for the lua advisor.
func buildAdvisors(cfg config.AdvisorConfig, src dice.Source, logger *zap.Logger) (*ai.Registry, *scripting.Manager, error) {
	reg := ai.NewRegistry()
	if err := reg.Register("random", ai.NewRandomAdvisor(src)); err != nil {
		return nil, nil, err
	}
	switch cfg.Kind {
	case "lua":
		mgr := scripting.NewManager(src, logger)
		if err := mgr.Load(advisorScriptKey, cfg.ScriptPath, scripting.DefaultInstructionLimit); err != nil {
			mgr.Close()
			return nil, nil, fmt.Errorf("loading advisor script: %w", err)
		}
		logger.Info("advisor script loaded", zap.String("path", cfg.ScriptPath))
		if err := reg.Register("lua", ai.NewScriptAdvisor(mgr, advisorScriptKey)); err != nil {
			mgr.Close()
			return nil, nil, err
		}
		return reg, mgr, nil
	case "claude":
		adv := ai.NewClaudeAdvisor(ai.NewClaudeClient(cfg.APIKey), cfg.Model, logger).WithMaxTokens(cfg.MaxTokens)
		if err := reg.Register("claude", adv); err != nil {
			return nil, nil, err
		}
	}
	return reg, nil, nil
}
