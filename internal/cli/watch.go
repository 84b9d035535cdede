package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"library-assistant-be/pkg/events"
	pktNats "library-assistant-be/pkg/nats"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print chat turn events published on NATS",
	Long: `Follow the EVENTS stream and print every new chat turn as it completes.
Requires NATS_URL.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.App.NatsURL == "" {
			return errors.New("NATS_URL is not set")
		}

		sub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
		if err != nil {
			return err
		}
		defer sub.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		p := newPrinter(cmd.OutOrStdout())
		err = sub.Subscribe(ctx, "events.>", "", func(_ context.Context, e events.Event) error {
			p.event(e)
			return nil
		})
		if err != nil {
			return err
		}

		p.dim.Fprintln(p.out, "Watching for chat turns, Ctrl+C to stop")
		<-ctx.Done()
		return nil
	},
}
