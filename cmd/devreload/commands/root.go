package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"devreload/config"
	"devreload/internal/server"
	"devreload/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	cfg *config.Config
	log *logger.Logger
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "devreload",
		Short:         "Hot reload for local development servers",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg = config.LoadConfig()
			mode := logger.DevelopmentMode
			if cfg.AppMode == server.ReleaseMode {
				mode = logger.ProductionMode
			}
			log = logger.New(mode)
			logger.SetGlobalLogger(log)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
	}

	root.AddCommand(serveCmd(), listenCmd(), triggerCmd())
	return root
}

// signalContext ends on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
