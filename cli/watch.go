package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// NewWatchCmd creates the "watch" subcommand. It polls the cart on an
// interval and streams every state event to stdout, one JSON line each,
// until interrupted. Useful for observing the event flow while driving
// the client from another terminal.
func NewWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream state events as JSON lines",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
	cmd.Flags().Duration("interval", 10*time.Second, "Cart poll interval")
	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	interval, _ := cmd.Flags().GetDuration("interval")
	if interval <= 0 {
		return exitError(exitValidation, "interval must be positive")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	sub := a.bus.SubscribeAll()
	defer func() {
		_ = sub.Close()
	}()

	enc := json.NewEncoder(cmd.OutOrStdout())
	done := make(chan struct{})
	go func() {
		defer close(done)
		for event := range sub.Events() {
			_ = enc.Encode(event)
		}
	}()

	a.cart.Load(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = sub.Close()
			<-done
			fmt.Fprintln(cmd.OutOrStdout(), "Stopped.")
			return nil
		case <-ticker.C:
			a.cart.Load(ctx)
		}
	}
}
