// Package main provides a Monte Carlo balance simulator: rarity roll
// distributions per context and battle win rates per zone.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"runtime"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/aviary/internal/config"
	"github.com/cory-johannsen/aviary/internal/game/balance"
	"github.com/cory-johannsen/aviary/internal/game/creature"
	"github.com/cory-johannsen/aviary/internal/game/dice"
	"github.com/cory-johannsen/aviary/internal/game/rarity"
	"github.com/cory-johannsen/aviary/internal/observability"
)

func main() {
	start := time.Now()

	balanceFile := flag.String("balance", "", "balance tables YAML; empty = built-in defaults")
	speciesDir := flag.String("species", "content/species", "species YAML directory")
	rolls := flag.Int("rolls", 100_000, "rarity rolls per context")
	level := flag.Int("level", 0, "upgrade level applied to the rolls")
	multiplier := flag.Float64("multiplier", 1, "catch minigame multiplier")
	battles := flag.Int("battles", 1_000, "battles per zone")
	zones := flag.Int("zones", 5, "number of zones to simulate")
	speciesID := flag.String("fighter", "kestrel", "species of the player fighter")
	tierName := flag.String("tier", "common", "rarity of the player fighter")
	seed := flag.Uint64("seed", 1, "base seed of the deterministic sources")
	workers := flag.Int("workers", runtime.NumCPU(), "parallel battle workers")
	flag.Parse()

	logger, err := observability.NewLogger(config.LoggingConfig{Level: "info", Format: "console"}, "balancesim")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	tables := balance.Default()
	if *balanceFile != "" {
		if tables, err = balance.Load(*balanceFile); err != nil {
			logger.Fatal("loading balance tables", zap.String("path", *balanceFile), zap.Error(err))
		}
	}
	roster, err := creature.LoadTemplates(*speciesDir)
	if err != nil {
		logger.Fatal("loading species", zap.String("dir", *speciesDir), zap.Error(err))
	}
	var fighter *creature.Template
	for _, t := range roster {
		if t.ID == *speciesID {
			fighter = t
		}
	}
	if fighter == nil {
		logger.Fatal("unknown fighter species", zap.String("species", *speciesID))
	}
	tier, err := rarity.ParseTier(*tierName)
	if err != nil {
		logger.Fatal("parsing tier", zap.Error(err))
	}

	src := dice.NewSeededSource(*seed)
	for _, c := range []rarity.Context{rarity.Encounter, rarity.Catch, rarity.Craft} {
		WriteDistribution(os.Stdout, c.String(), RollDistribution(src, tables.Rarity, *level, c, *multiplier, *rolls))
	}

	ctx := context.Background()
	for zone := 1; zone <= *zones; zone++ {
		plan := BattlePlan{Species: fighter, Tier: tier, Zone: zone, Battles: *battles, Workers: *workers, Seed: *seed + uint64(zone)*1_000}
		stats, err := SimulateBattles(ctx, tables, roster, plan)
		if err != nil {
			logger.Fatal("simulating battles", zap.Int("zone", zone), zap.Error(err))
		}
		WriteBattles(os.Stdout, plan, stats)
	}
	logger.Info("simulation complete", zap.Duration("elapsed", time.Since(start)))
}
