package root

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"adhdrpg/internal/companion"
	"adhdrpg/internal/tui"
	"adhdrpg/internal/ui"
)

func newBoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Open the TUI dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.RunBoard(ctx, a.svc, cmd.OutOrStdout())
		},
	}

	return cmd
}

func newChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to your companion (opens a chat screen without a message)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			a, cleanup, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			c := newCompanion(a.svc)
			if c == nil {
				return companion.ErrDisabled
			}

			if len(args) == 0 {
				monitor := companion.NewMonitor(c.Status, cfg.Companion.PollInterval, nil)
				go monitor.Run(ctx)
				return tui.RunChat(ctx, c, monitor.Online, cmd.OutOrStdout())
			}

			resp, err := c.Send(ctx, strings.Join(args, " "))
			if errors.Is(err, companion.ErrServerUnavailable) {
				return fmt.Errorf("%w (is the companion server running at %s?)", err, cfg.Companion.ServerURL)
			}
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, ui.Title.Render(ui.IconChat+" ")+resp.Text)
			if resp.Outcome != nil {
				for _, n := range resp.Outcome.Notices {
					fmt.Fprintln(w, "  "+ui.NoticeText(n))
				}
			}
			return nil
		},
	}
	return cmd
}
