// Command clrdbgd hosts the breakpoint lifecycle and variable-inspection
// engine (internal/breakpoint, internal/coordinator, internal/debugger)
// against a .NET runtime debug surface. It is not a transport: the
// named-pipe/gRPC front end that would carry internal/wire's JSON schema
// to a client is an external collaborator per SPEC_FULL.md §1 — this
// binary exists to prove the engine wires together end to end.
//
// Grounded on _examples/Manu343726-cucaracha's cmd/root.go (RootCmd +
// cobra.OnInitialize) and Execute pattern, adapted from a library
// cmd-package to a single main package since this binary has no
// sub-packages of its own.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clrdbgd",
		Short: "Managed-code breakpoint and variable-inspection engine",
		Long: `clrdbgd hosts the breakpoint lifecycle and variable-inspection
engine against a .NET runtime debug surface.

This binary is not a transport: it loads configuration, starts the
logger, and reports the engine's effective settings. Driving it from a
real debug session means embedding internal/debugger.Debugger behind
whatever named-pipe or RPC front end the host process already has.`,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a clrdbg config file")
	root.AddCommand(serveCmd(), versionCmd())
	return root
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
