package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/cartflow/internal/catalog"
	"github.com/roach88/cartflow/internal/engine"
	"github.com/roach88/cartflow/internal/store"
)

// DemoOptions holds flags for the demo command.
type DemoOptions struct {
	*RootOptions
	User string
}

// NewDemoCommand creates the demo command.
func NewDemoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DemoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted cart through the engine",
		Long: `Run a scripted cart lifecycle against an in-memory engine and print the
resulting event journal.

The checkout activity is the production one, so the cappuccino order may fail
and exercise the retry path. Rerun to see both outcomes.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.User, "user", "demo", "user to run the cart for")

	return cmd
}

// writerNotifier prints notifications to the demo's output stream instead of
// the log.
type writerNotifier struct {
	w io.Writer
}

func (n writerNotifier) Notify(_ context.Context, userID, msg string) error {
	fmt.Fprintf(n.w, "[notify %s] %s\n", userID, msg)
	return nil
}

func runDemo(opts *DemoOptions, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	journal := store.NewMemory()

	eng := engine.New(engine.Config{
		Journal:  journal,
		Notifier: writerNotifier{w: out},
	})
	defer eng.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cartID, err := eng.InitializeCart(ctx, opts.User)
	if err != nil {
		return WrapExitError(ExitFailure, "initialize cart", err)
	}
	fmt.Fprintf(out, "cart %s opened\n", cartID)

	script := []engine.Command{
		{Kind: engine.CmdAddItem, ProductID: catalog.Ristretto},
		{Kind: engine.CmdAddItem, ProductID: catalog.Espresso},
		{Kind: engine.CmdAddItem, ProductID: catalog.Cappuccino},
		{Kind: engine.CmdUpdateQuantity, ProductID: catalog.Cappuccino, Quantity: 2},
		{Kind: engine.CmdRemoveItem, ProductID: catalog.Espresso},
	}
	for _, c := range script {
		if err := eng.Dispatch(ctx, cartID, c); err != nil {
			return WrapExitError(ExitFailure, "dispatch "+c.Kind.String(), err)
		}
	}

	total, err := eng.Checkout(ctx, cartID)
	if err != nil {
		return WrapExitError(ExitFailure, "checkout", err)
	}

	if err := waitIdle(ctx, eng, 10*time.Second); err != nil {
		return WrapExitError(ExitFailure, "cart did not retire", err)
	}

	final, err := eng.Order(cartID)
	if err != nil {
		return WrapExitError(ExitFailure, "read final order", err)
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(out, "\norder %s finished with status %s, total %.2f\n\n", final.OrderID, final.CheckoutStatus, total)

	events, err := journal.Events(ctx, cartID)
	if err != nil {
		return WrapExitError(ExitFailure, "read journal", err)
	}
	return printTrace(out, opts.Format, events)
}

// waitIdle polls until every instance has retired.
func waitIdle(ctx context.Context, eng *engine.Engine, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for eng.Live() > 0 {
		if time.Now().After(deadline) {
			return fmt.Errorf("still %d live instances after %s", eng.Live(), timeout)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	return nil
}

func printTrace(w io.Writer, format string, events []store.Event) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	}

	for _, ev := range events {
		fmt.Fprintf(w, "%3d  %-18s %s\n", ev.Seq, ev.Kind, ev.Summary())
	}
	return nil
}
