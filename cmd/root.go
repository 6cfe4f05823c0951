package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hamen/android-mcp/internal/config"
	"github.com/hamen/android-mcp/internal/logging"
	"github.com/hamen/android-mcp/internal/output"
	"github.com/hamen/android-mcp/internal/version"
)

var (
	cfg    = config.Default()
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "android-mcp",
	Short: "Drive Android devices over adb from MCP clients and the shell",
	Long: `android-mcp exposes an attached Android device as Model Context Protocol
tools: key events, taps, text input, activity launch, screenshots, UI
hierarchy dumps and tapping nodes by their text or content description.

Run "android-mcp serve" to start the MCP server. The other commands call the
same operations directly for scripting and debugging.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default: $XDG_CONFIG_HOME/android-mcp/config.yaml)")
	flags.String("format", "", "Output format: yaml, json (default: json when piped, yaml otherwise)")
	flags.Bool("pretty", false, "Pretty-print JSON output")
	flags.String("log-level", "", "Log level: trace, debug, info, warn, error")
	flags.Bool("log-json", false, "Write logs as JSON lines instead of console text")
	flags.String("adb", "", "Path to the adb binary (default: $ANDROID_HOME/platform-tools/adb, then PATH)")
	flags.String("timeout", "", "Per-call device timeout, as a duration or milliseconds (default 8s)")
	flags.StringP("serial", "s", "", "Target device serial (default: $ANDROID_SERIAL, or the only attached device)")
	rootCmd.PersistentPreRunE = setup
}

// setup loads the config file and environment, applies persistent flags on
// top and configures logging and output.
func setup(cmd *cobra.Command, args []string) error {
	flags := rootCmd.PersistentFlags()
	path, _ := flags.GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}

	if flags.Changed("adb") {
		loaded.ADBPath, _ = flags.GetString("adb")
	}
	if flags.Changed("timeout") {
		raw, _ := flags.GetString("timeout")
		d, err := config.ParseTimeout(raw)
		if err != nil {
			return fmt.Errorf("invalid --timeout %q: %w", raw, err)
		}
		loaded.Timeout = d
	}
	if flags.Changed("log-level") {
		loaded.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-json") {
		loaded.LogJSON, _ = flags.GetBool("log-json")
	}
	if flags.Changed("serial") {
		loaded.DefaultSerial, _ = flags.GetString("serial")
	}
	if err := loaded.Validate(); err != nil {
		return err
	}

	l, err := logging.Setup(nil, loaded.LogLevel, loaded.LogJSON)
	if err != nil {
		return err
	}

	// Use the root persistent flag directly to avoid conflicts with
	// subcommand local flags (e.g. screenshot --format png/jpeg).
	format, _ := flags.GetString("format")
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}
	output.OutputFormat = f
	output.PrettyOutput, _ = flags.GetBool("pretty")

	cfg, logger = loaded, l
	logger.Debug().
		Str("adb", loaded.ADBPath).
		Dur("timeout", loaded.Timeout).
		Str("serial", loaded.DefaultSerial).
		Msg("configuration loaded")
	return nil
}
