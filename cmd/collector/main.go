// collector is the headless data collection service: it polls the area
// state endpoint on an interval and archives every observation to
// PostgreSQL for later playback and analysis.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"

	"github.com/JasperJeuken/SkyTracker/internal/db"
	"github.com/JasperJeuken/SkyTracker/pkg/config"
	"github.com/JasperJeuken/SkyTracker/pkg/skyapi"
)

// Build flags
var version = ""
var commit = ""

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := newCommand()
	if err := cmd.ParseAndRun(ctx, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *ffcli.Command {
	fs := flag.NewFlagSet("collector", flag.ExitOnError)
	return &ffcli.Command{
		ShortUsage: "collector [flags] <subcommand>",
		FlagSet:    fs,
		Exec: func(context.Context, []string) error {
			return flag.ErrHelp
		},
		Subcommands: []*ffcli.Command{
			newVersionCommand(),
			cmdRun(),
			cmdStats(),
			cmdCleanup(),
		},
	}
}

func newVersionCommand() *ffcli.Command {
	return &ffcli.Command{
		Name:       "version",
		ShortUsage: "collector version",
		ShortHelp:  "print version",
		Exec: func(ctx context.Context, args []string) error {
			v := version
			if v == "" {
				if bi, ok := debug.ReadBuildInfo(); ok {
					v = bi.Main.Version
				}
			}
			if v == "" {
				v = "dev"
			}
			if commit != "" {
				fmt.Println(v, commit)
			} else {
				fmt.Println(v)
			}
			return nil
		},
	}
}

func cmdRun() *ffcli.Command {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	configPath := fs.String("config", "configs/config.json", "path to configuration file")
	interval := fs.Duration("interval", 0, "poll interval (0=config value)")
	maxAge := fs.Duration("max-age", 7*24*time.Hour, "delete archived states older than this")
	return &ffcli.Command{
		Name:       "run",
		ShortUsage: "collector run [flags]",
		ShortHelp:  "poll the area and archive states to the database",
		FlagSet:    fs,
		Options: []ff.Option{
			ff.WithEnvVarPrefix("SKYTRACKER"),
		},
		Exec: func(ctx context.Context, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			database, err := db.ReconnectWithRetry(cfg.Database, 5, 2*time.Second)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close()

			if err := database.InitSchema(ctx); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}
			log.Println("Database connected, schema initialized")

			client := skyapi.NewClient(skyapi.Config{
				BaseURL:           cfg.API.BaseURL,
				APIKey:            cfg.API.APIKey,
				Timeout:           time.Duration(cfg.API.TimeoutSeconds) * time.Second,
				RequestsPerSecond: cfg.API.RequestsPerSecond,
			})

			pollInterval := *interval
			if pollInterval <= 0 {
				pollInterval = time.Duration(cfg.Refresh.SnapshotIntervalSeconds) * time.Second
			}

			collector := &Collector{
				client:   client,
				db:       database,
				repo:     db.NewStateRepository(database),
				bounds:   skyapi.Bounds{South: cfg.Map.South, West: cfg.Map.West, North: cfg.Map.North, East: cfg.Map.East},
				interval: pollInterval,
				maxAge:   *maxAge,
				retry:    skyapi.DefaultRetryConfig(),
			}
			return collector.Run(ctx)
		},
	}
}

// Collector manages the archive collection loop.
type Collector struct {
	client   *skyapi.Client
	db       *db.DB
	repo     *db.StateRepository
	bounds   skyapi.Bounds
	interval time.Duration
	maxAge   time.Duration
	retry    skyapi.RetryConfig

	// Statistics
	totalUpdates  int
	totalInserted int
}

// Run starts the collection loop and blocks until the context is cancelled.
func (c *Collector) Run(ctx context.Context) error {
	log.Printf("Collecting area %.2f,%.2f to %.2f,%.2f every %v",
		c.bounds.South, c.bounds.West, c.bounds.North, c.bounds.East, c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Periodic cleanup (every hour)
	cleanupTicker := time.NewTicker(time.Hour)
	defer cleanupTicker.Stop()

	// Stats ticker (every 5 minutes)
	statsTicker := time.NewTicker(5 * time.Minute)
	defer statsTicker.Stop()

	// Do first update immediately
	c.update(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Shutting down collector")
			return nil
		case <-ticker.C:
			c.update(ctx)
		case <-cleanupTicker.C:
			c.cleanup(ctx)
		case <-statsTicker.C:
			c.printStats(ctx)
		}
	}
}

// update fetches the current area state and archives it.
func (c *Collector) update(ctx context.Context) {
	snapshots, err := skyapi.RetryWithBackoff(ctx, c.retry, func() ([]skyapi.Snapshot, error) {
		return c.client.AreaStates(ctx, c.bounds)
	})
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("Area fetch failed: %v (will retry on next cycle)", err)
		}
		return
	}

	inserted, err := c.repo.SaveBatch(ctx, snapshots)
	if err != nil {
		log.Printf("Failed to save batch: %v", err)
		return
	}

	c.totalUpdates++
	c.totalInserted += inserted
	log.Printf("Update #%d: %d aircraft observed, %d new states stored",
		c.totalUpdates, len(snapshots), inserted)
}

// cleanup removes archived states older than the retention window.
func (c *Collector) cleanup(ctx context.Context) {
	if err := c.db.CleanupOldData(ctx, c.maxAge); err != nil {
		log.Printf("Cleanup failed: %v", err)
		return
	}
	log.Println("Cleanup completed")
}

// printStats logs archive statistics.
func (c *Collector) printStats(ctx context.Context) {
	stats, err := c.db.GetStats(ctx)
	if err != nil {
		log.Printf("Failed to get stats: %v", err)
		return
	}

	log.Printf("Stats: %v state records, %v distinct aircraft, %d inserted this run",
		stats["state_records"],
		stats["distinct_aircraft"],
		c.totalInserted,
	)
}

func cmdStats() *ffcli.Command {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", "configs/config.json", "path to configuration file")
	return &ffcli.Command{
		Name:       "stats",
		ShortUsage: "collector stats [flags]",
		ShortHelp:  "print archive statistics",
		FlagSet:    fs,
		Options: []ff.Option{
			ff.WithEnvVarPrefix("SKYTRACKER"),
		},
		Exec: func(ctx context.Context, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			database, err := db.Connect(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close()

			stats, err := database.GetStats(ctx)
			if err != nil {
				return fmt.Errorf("failed to get statistics: %w", err)
			}
			for key, value := range stats {
				fmt.Printf("%s: %v\n", key, value)
			}
			return nil
		},
	}
}

func cmdCleanup() *ffcli.Command {
	fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
	configPath := fs.String("config", "configs/config.json", "path to configuration file")
	maxAge := fs.Duration("max-age", 7*24*time.Hour, "delete archived states older than this")
	return &ffcli.Command{
		Name:       "cleanup",
		ShortUsage: "collector cleanup [flags]",
		ShortHelp:  "delete archived states older than the retention window",
		FlagSet:    fs,
		Options: []ff.Option{
			ff.WithEnvVarPrefix("SKYTRACKER"),
		},
		Exec: func(ctx context.Context, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			database, err := db.Connect(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close()

			if err := database.CleanupOldData(ctx, *maxAge); err != nil {
				return fmt.Errorf("cleanup failed: %w", err)
			}
			fmt.Println("Cleanup complete")
			return nil
		},
	}
}
