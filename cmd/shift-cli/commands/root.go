package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"shift-redeemer/internal/components/telemetry"
	"shift-redeemer/lib/configutil"
	"shift-redeemer/lib/restyutil"
	"time"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	dumpHttp   *string
	verbose    *bool
)

// state shared by every command, filled in before a command runs
var env struct {
	config Config
	tel    telemetry.API
	otel   telemetry.Telemetry
	dump   telemetry.InstrumentOutput
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "shift.json5", "The config file, a bare file name is searched for in parent directories.")
	dumpHttp = rootCmd.PersistentFlags().String("dump-http", "", "Write every HTTP request and response to a new dump directory inside this directory.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug information.")
}

var rootCmd = &cobra.Command{
	Use:   "shift-cli",
	Short: "shift-cli finds Borderlands SHiFT codes and redeems them on your account.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*verbose)

		cfg, err := configutil.ReadWithDefaults(*configPath, defaultConfig())
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		env.config = cfg

		env.otel, err = telemetry.Setup(cmd.Context(), "shift-cli", cfg.Telemetry)
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		env.tel = telemetry.SlogAPI{}

		if *dumpHttp != "" {
			output, err := restyutil.NewFilesystemOutput(*dumpHttp)
			if err != nil {
				return fmt.Errorf("dump http: %w", err)
			}
			env.dump = output
			slog.Info("dumping http exchanges", "dir", output.Directory())
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err := env.otel.Shutdown(ctx)
		if err != nil {
			slog.Warn("failed to flush telemetry", "err", err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
