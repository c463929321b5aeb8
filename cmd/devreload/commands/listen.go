package commands

import (
	"devreload/internal/host"
	"devreload/internal/reload"

	"github.com/spf13/cobra"
)

// listen [-- command args...]: keep a reload listener attached to a page.
// With a command, the page is that process and every reload restarts it.
func listenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen [-- command args...]",
		Short: "Reload a command whenever " + reload.Endpoint + " says so",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signalContext(cmd.Context())
			defer stop()

			var doc host.Document = host.LogDocument{Logger: log.Named("page")}
			if len(args) > 0 {
				c, err := host.NewCommand(args, log.Named("command"))
				if err != nil {
					return err
				}
				doc = c
			}

			page := host.NewPage(doc, host.DefaultListeners(log.Named("reload")), log.Named("page"))
			return page.Run(ctx)
		},
	}
}
