package main

import (
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coredbg/clrdbg/internal/config"
	"github.com/coredbg/clrdbg/internal/logging"
)

// serveCmd loads configuration and starts the structured logger, then
// reports what the engine would run with. Colourised status lines mirror
// _teacher_ref/examples/debugger/goja-debug/main.go's fatih/color usage
// (color.FgYellow for warnings, a bright banner for the startup line).
func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the engine and report its effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}

			ring := logging.NewRing(256)
			logger := logging.New(slog.LevelInfo, ring)

			color.New(color.FgHiCyan, color.Bold).Fprintln(cmd.OutOrStdout(), "clrdbgd engine ready")
			logger.Info("effective configuration",
				"object_depth", cfg.ObjectDepth,
				"max_array_items", cfg.MaxArrayItems,
				"dereference_depth", cfg.DereferenceDepth,
				"expression_depth", cfg.ExpressionDepth,
				"eval_timeout", cfg.EvalTimeout,
				"property_eval_enabled", cfg.PropertyEvalEnabled,
			)
			color.New(color.FgYellow).Fprintln(cmd.OutOrStdout(),
				"no transport wired: embed internal/debugger.Debugger behind a named-pipe or RPC front end to drive it from a real debug session")
			return nil
		},
	}
}
