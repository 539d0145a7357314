package root

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"adhdrpg/internal/companion"
	"adhdrpg/internal/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API for a browser front-end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			var chat server.Chat
			if c := newCompanion(a.svc); c != nil {
				monitor := companion.NewMonitor(c.Status, cfg.Companion.PollInterval, nil)
				go monitor.Run(ctx)
				chat = c
			}
			return server.Serve(ctx, cfg.Server.Addr, server.New(a.svc, chat, cfg.Server.CORSOrigins))
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default :8080)")
	return cmd
}
