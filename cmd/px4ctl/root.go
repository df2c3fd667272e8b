package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AryaMajumder/px4-jmavsim/internal/config"
	"github.com/AryaMajumder/px4-jmavsim/internal/observability"
)

var (
	configPath      string
	timeoutOverride time.Duration
	pollOverride    time.Duration
	logLevel        string

	cfg  config.Config
	term = newUI()
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "px4ctl",
		Short:        "Launch and wire a PX4 SITL ground station",
		Long:         "px4ctl starts the flight-sim stack (jMAVSim SITL, QGroundControl), waits for each piece to come up, patches the autopilot boot script for a second telemetry endpoint, and relays telemetry to MQTT.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			applyFlagOverrides()
			initLogging()
			return nil
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default px4ctl.toml when present)")
	root.PersistentFlags().DurationVar(&timeoutOverride, "timeout", 0, "Override the readiness timeout for gcs and sitl")
	root.PersistentFlags().DurationVar(&pollOverride, "poll-interval", 0, "Override the poll interval for gcs and sitl")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	root.AddCommand(
		newGCSCmd(),
		newSITLCmd(),
		newUpCmd(),
		newStatusCmd(),
		newPatchCmd(),
		newBridgeCmd(),
		newConfigCmd(),
	)
	return root
}

func applyFlagOverrides() {
	if timeoutOverride > 0 {
		cfg.GCS.Timeout = timeoutOverride
		cfg.SITL.Timeout = timeoutOverride
	}
	if pollOverride > 0 {
		cfg.GCS.PollInterval = pollOverride
		cfg.SITL.PollInterval = pollOverride
	}
}

// initLogging feeds file-config values through the environment so precedence
// stays flag > env > file > default.
func initLogging() {
	if logLevel != "" {
		os.Setenv("PX4CTL_LOG_LEVEL", logLevel)
	} else if cfg.Log.Level != "" && os.Getenv("PX4CTL_LOG_LEVEL") == "" {
		os.Setenv("PX4CTL_LOG_LEVEL", cfg.Log.Level)
	}
	if cfg.Log.File != "" && os.Getenv("PX4CTL_LOG_FILE") == "" {
		os.Setenv("PX4CTL_LOG_FILE", cfg.Log.File)
	}
	observability.InitLogger("px4ctl")
}
