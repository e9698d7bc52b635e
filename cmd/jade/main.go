package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jadeengine/jade/internal/config"
	"github.com/jadeengine/jade/internal/core/event"
	coresys "github.com/jadeengine/jade/internal/core/system"
	"github.com/jadeengine/jade/internal/data"
	"github.com/jadeengine/jade/internal/persist"
	"github.com/jadeengine/jade/internal/scene"
	"github.com/jadeengine/jade/internal/scripting"
	"github.com/jadeengine/jade/internal/system"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string, started time.Time) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m              Jade ECS  v0.1.0             \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mengine:\033[0m %s \033[90m(started %s)\033[0m\n\n", name, started.Format(time.DateTime))
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Engine ─────────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/engine.toml"
	if p := os.Getenv("JADE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	started := time.Unix(cfg.Engine.StartTime, 0)
	printBanner(cfg.Engine.Name, started)

	// 3. Scene and event bus
	bus := event.NewBus()
	sc, err := scene.New(bus, log.Named("scene"))
	if err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	subscribeLogging(bus, sc, log.Named("events"))

	// 4. Optional PostgreSQL snapshots
	var snapshots *persist.SnapshotRepo
	if cfg.Database.Enabled {
		printSection("database")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		db, err := persist.NewDB(ctx, cfg.Database, log.Named("db"))
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		version, err := persist.RunMigrations(ctx, db.Pool)
		cancel()
		if err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		printStat("schema version", int(version))
		snapshots = persist.NewSnapshotRepo(db)
		fmt.Println()
	}

	// 5. Populate the scene
	printSection("scene")
	restored, err := restoreScene(sc, snapshots, cfg.Database, log)
	if err != nil {
		return err
	}
	if !restored {
		table, err := data.LoadScene(cfg.Scene.Path)
		if err != nil {
			return fmt.Errorf("load scene: %w", err)
		}
		if _, err := sc.Load(table); err != nil {
			return fmt.Errorf("build scene: %w", err)
		}
		printOK(fmt.Sprintf("loaded %s", cfg.Scene.Path))
	}
	printStat("entities", sc.Transforms().Len())
	printStat("roots", len(sc.Roots()))
	fmt.Println()

	// 6. Scripting
	var engine *scripting.Engine
	if cfg.Scripting.Enabled {
		engine, err = scripting.NewEngine(cfg.Scripting.Dir, sc, log.Named("lua"))
		if err != nil {
			return fmt.Errorf("scripting: %w", err)
		}
		defer engine.Close()
	}

	// 7. Systems
	runner := coresys.NewRunner()
	runner.Register(system.NewEventDispatchSystem(bus, log))
	if engine != nil {
		runner.Register(system.NewScriptSystem(engine))
	}
	runner.Register(system.NewMovementSystem(sc))
	runner.Register(system.NewTransformSystem(sc, log))
	var persistSys *system.PersistenceSystem
	if snapshots != nil {
		persistSys = system.NewPersistenceSystem(sc, snapshots, cfg.Database.SnapshotLabel, log, cfg.Database.SnapshotInterval, cfg.Database.SnapshotKeep)
		runner.Register(persistSys)
	}
	cleanup := system.NewCleanupSystem(sc.World(), log)
	runner.Register(cleanup)

	// 8. Game loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Loop.TickRate)
	defer ticker.Stop()

	printSection("running")
	printReady(fmt.Sprintf("tick %s", cfg.Loop.TickRate))
	if cfg.Loop.Ticks > 0 {
		printReady(fmt.Sprintf("stopping after %d ticks", cfg.Loop.Ticks))
	}
	fmt.Println()

loop:
	for {
		select {
		case <-ticker.C:
			runner.Tick(cfg.Loop.TickRate)
			if cfg.Loop.Ticks > 0 && runner.Ticks() >= uint64(cfg.Loop.Ticks) {
				break loop
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			break loop
		}
	}

	// Deliver anything emitted on the last tick.
	bus.SwapBuffers()
	bus.DispatchAll()

	log.Info("loop stopped",
		zap.Uint64("ticks", runner.Ticks()),
		zap.Duration("uptime", time.Since(started).Round(time.Second)),
		zap.Int("entities", sc.Transforms().Len()),
		zap.Int("destroyed", cleanup.Destroyed()),
	)

	if persistSys != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, err := persistSys.SaveNow(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("final snapshot: %w", err)
		}
	}

	if cfg.Scene.PrintTree {
		for _, root := range sc.Roots() {
			if err := sc.Hierarchy().PrintTree(os.Stdout, root); err != nil {
				return err
			}
		}
	}
	return nil
}

// restoreScene loads the latest snapshot when configured to. It reports
// false when the caller should fall back to the YAML scene.
func restoreScene(sc *scene.Scene, repo *persist.SnapshotRepo, cfg config.DatabaseConfig, log *zap.Logger) (bool, error) {
	if repo == nil || !cfg.RestoreOnStart {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	meta, err := repo.Latest(ctx, cfg.SnapshotLabel)
	if errors.Is(err, persist.ErrNoSnapshot) {
		log.Warn("no snapshot to restore", zap.String("label", cfg.SnapshotLabel))
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("latest snapshot: %w", err)
	}
	records, err := repo.Load(ctx, meta.ID)
	if err != nil {
		return false, fmt.Errorf("load snapshot %d: %w", meta.ID, err)
	}
	if _, err := sc.Restore(records); err != nil {
		return false, fmt.Errorf("restore snapshot %d: %w", meta.ID, err)
	}
	printOK(fmt.Sprintf("restored snapshot %d (%s)", meta.ID, meta.CreatedAt.Format(time.RFC3339)))
	return true, nil
}

func subscribeLogging(bus *event.Bus, sc *scene.Scene, log *zap.Logger) {
	event.Subscribe(bus, func(ev event.EntityCreated) {
		log.Debug("entity created", zap.Uint32("entity", uint32(ev.Entity)), zap.String("name", ev.Name))
	})
	event.Subscribe(bus, func(ev event.EntityDestroyed) {
		log.Info("entity destroyed", zap.Uint32("entity", uint32(ev.Entity)), zap.Int("orphans", len(ev.Orphans)))
	})
	event.Subscribe(bus, func(ev event.ChildAttached) {
		log.Debug("child attached", zap.String("parent", sc.NameOf(ev.Parent)), zap.String("child", sc.NameOf(ev.Child)))
	})
	event.Subscribe(bus, func(ev event.ChildDetached) {
		log.Debug("child detached", zap.Uint32("parent", uint32(ev.Parent)), zap.Uint32("child", uint32(ev.Child)))
	})
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
