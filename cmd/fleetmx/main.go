package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rotorops/fleetmx/internal/constants"
	"github.com/rotorops/fleetmx/internal/engine"
	"github.com/rotorops/fleetmx/internal/log"
	"github.com/rotorops/fleetmx/internal/telemetry"
	"github.com/rotorops/fleetmx/pkg/config"
)

// debounce collapses the burst of filesystem events a single export
// download produces into one pipeline run.
const debounce = 2 * time.Second

func main() {
	cfgFile := flag.String("config", "fleetmx.yaml", "Path to YAML configuration file (missing file uses embedded defaults)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	watch := flag.Bool("watch", false, "Keep running and re-process whenever the daily export changes")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("fleetmx %s\n", constants.Version)
		os.Exit(0)
	}

	cfg, err := loadConfig(*cfgFile)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := log.Init(*debug, cfg.LogFile); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	provider, err := buildProvider(cfg)
	if err != nil {
		log.Errorf("Failed to configure telemetry: %v", err)
		os.Exit(1)
	}

	eng, err := engine.New(cfg, provider, log.GetSugaredLogger())
	if err != nil {
		log.Errorf("Failed to build engine: %v", err)
		os.Exit(1)
	}

	ctx := context.Background()

	if _, err := eng.Run(ctx); err != nil {
		log.Errorf("Run failed: %v", err)
		if !*watch {
			os.Exit(1)
		}
	}

	if *watch {
		if err := watchAndRun(ctx, eng, cfg); err != nil {
			log.Errorf("Watch failed: %v", err)
			os.Exit(1)
		}
	}
}

func loadConfig(cfgFile string) (*config.Config, error) {
	filename, _ := filepath.Abs(cfgFile)
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(filename)
}

// buildProvider wires the configured telemetry backend. SkyRouter
// credentials are pulled from the environment; they never appear in the
// configuration file or in logs.
func buildProvider(cfg *config.Config) (telemetry.Provider, error) {
	switch cfg.Telemetry.Provider {
	case "adsb":
		a := cfg.Telemetry.ADSB
		return telemetry.NewADSBClient(a.BaseURL, a.UserAgent, a.RequestTimeout, log.GetSugaredLogger()), nil
	case "skyrouter":
		s := cfg.Telemetry.SkyRouter
		username := os.Getenv(s.UsernameEnv)
		password := os.Getenv(s.PasswordEnv)
		if username == "" || password == "" {
			return nil, fmt.Errorf("skyrouter credentials not set: export %s and %s", s.UsernameEnv, s.PasswordEnv)
		}
		return telemetry.NewSkyRouterClient(s.BaseURL, username, password, s.RequestTimeout, log.GetSugaredLogger()), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown telemetry provider: %s. Use 'adsb', 'skyrouter', or 'none'", cfg.Telemetry.Provider)
	}
}

// watchAndRun re-runs the pipeline whenever the daily export is rewritten.
// Runs are serialized; events arriving during a run coalesce into at most
// one follow-up run.
func watchAndRun(ctx context.Context, eng *engine.Engine, cfg *config.Config) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory, not the file: exports are typically replaced
	// by rename, which drops a file-level watch.
	if err := watcher.Add(cfg.DataDir); err != nil {
		return fmt.Errorf("watching %s: %w", cfg.DataDir, err)
	}

	dailyName := filepath.Base(cfg.DailyExport)
	log.Infof("watching %s for changes to %s", cfg.DataDir, dailyName)

	var timer *time.Timer
	runCh := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != dailyName {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				select {
				case runCh <- struct{}{}:
				default:
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warnf("watcher error: %v", err)
		case <-runCh:
			if _, err := eng.Run(ctx); err != nil {
				log.Errorf("Run failed: %v", err)
			}
		}
	}
}
