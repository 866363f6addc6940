package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/trafficd/internal/cliconfig"
	"github.com/bft-labs/trafficd/internal/render"
	"github.com/bft-labs/trafficd/pkg/intersection"
	tlog "github.com/bft-labs/trafficd/pkg/log"
	"github.com/bft-labs/trafficd/plugins/configwatcher"
)

const helpDescription = `
Run a single traffic intersection from the terminal.

The controller cycles NS green, yellow and all-red, serves pedestrian
crossings at the next all-red, and switches to flashing red on demand.

Keys (followed by Enter):
  n   request a north-south pedestrian crossing
  e   request an east-west pedestrian crossing
  s   toggle emergency mode
  q   quit
`

var exampleUsage = strings.TrimSpace(`
  trafficd
  trafficd --green 10s --ped-cross 12s --safe-stop
  trafficd --config $HOME/.trafficd/config.toml --watch-config
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "trafficd",
		Short:         "Concurrent traffic-intersection controller",
		Long:          strings.TrimSpace(helpDescription),
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.trafficd/config.toml), then apply flag overrides
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			haveFile := cfgFile != "" && cliconfig.FileExists(cfgFile)
			if haveFile {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			} else if cfgPath != "" {
				return fmt.Errorf("config file %s not found", cfgPath)
			}

			// Apply environment variables (TRAFFICD_*)
			// These override file config but are overridden by flags (checked via changed map)
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cliconfig.SetLogLevel(cfg.LogLevel); err != nil {
				return err
			}

			log := cliconfig.Logger()
			log.Info().Interface("config", cfg).Msg("configuration")

			return run(cfg, cfgFile, haveFile, changed)
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.trafficd/config.toml)")

	root.Flags().DurationVar(&cfg.Green, "green", cfg.Green, "green interval")
	root.Flags().DurationVar(&cfg.Yellow, "yellow", cfg.Yellow, "yellow interval")
	root.Flags().DurationVar(&cfg.AllRed, "all-red", cfg.AllRed, "all-red clearance interval")
	root.Flags().DurationVar(&cfg.PedCross, "ped-cross", cfg.PedCross, "pedestrian walk interval")
	root.Flags().DurationVar(&cfg.InitHold, "init-hold", cfg.InitHold, "how long INIT is shown at startup")
	root.Flags().DurationVar(&cfg.Blink, "blink", cfg.Blink, "emergency flash re-render interval")
	root.Flags().BoolVar(&cfg.AlternateEW, "alternate-ew", cfg.AlternateEW, "serve east-west green on every second cycle")
	root.Flags().BoolVar(&cfg.SafeStop, "safe-stop", cfg.SafeStop, "show all-red before exiting")

	root.Flags().DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "controller watchdog interval")
	root.Flags().StringVar(&cfg.Timer, "timer", cfg.Timer, "phase timer: auto, os or runtime")
	if err := root.Flags().MarkHidden("poll-interval"); err != nil {
		log := cliconfig.Logger()
		log.Info().Err(err).Msg("failed to hide poll-interval flag")
	}

	root.Flags().StringVar(&cfg.Color, "color", cfg.Color, "colorize output: auto, always or never")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: debug, info, warn or error")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload phase timings when the config file changes")

	if err := root.Execute(); err != nil {
		log := cliconfig.Logger()
		log.Error().Err(err).Msg("trafficd")
		os.Exit(1)
	}
}

func run(cfg cliconfig.Config, cfgFile string, haveFile bool, changed map[string]bool) error {
	log := cliconfig.Logger()

	console := render.NewConsole(os.Stdout, useColor(cfg.Color))

	opts := []intersection.Option{
		intersection.WithLogger(tlog.NewZerologAdapterWithLogger(log)),
		intersection.WithRenderer(console),
		intersection.WithInput(os.Stdin),
	}
	if cfg.WatchConfig {
		if haveFile {
			opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.Config{
				Path:    cfgFile,
				Changed: changed,
			}))
		} else {
			log.Warn().Msg("watch-config set but no config file found, not watching")
		}
	}

	x, err := intersection.New(intersection.Config{
		Timings:      cfg.Timings(),
		PollInterval: cfg.PollInterval,
		Timer:        intersection.TimerKind(cfg.Timer),
		SafeStop:     cfg.SafeStop,
	}, opts...)
	if err != nil {
		return fmt.Errorf("create intersection: %w", err)
	}

	// Setup signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if isatty.IsTerminal(os.Stdin.Fd()) {
		console.Help()
	}

	if err := x.Start(ctx); err != nil {
		return fmt.Errorf("start intersection: %w", err)
	}

	// Wait for signal or operator quit
	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("received signal, stopping...")
	case <-x.Done():
		log.Info().Msg("operator quit, stopping...")
	}

	if err := x.Stop(); err != nil {
		return fmt.Errorf("stop intersection: %w", err)
	}
	return nil
}

func useColor(mode string) bool {
	switch mode {
	case cliconfig.ColorAlways:
		return true
	case cliconfig.ColorNever:
		return false
	default:
		return render.ColorSupported(os.Stdout)
	}
}
