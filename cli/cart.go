package cli

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oakmart/shopfront"
)

// NewCartCmd creates the "cart" command group.
func NewCartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and mutate the shopping cart",
	}
	cmd.AddCommand(newCartShowCmd())
	cmd.AddCommand(newCartAddCmd())
	cmd.AddCommand(newCartUpdateCmd())
	cmd.AddCommand(newCartRemoveCmd())
	cmd.AddCommand(newCartClearCmd())
	return cmd
}

func newCartShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the current cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCartOp(cmd, "Cart is up to date.", func(ctx context.Context, cart *shopfront.Cart) bool {
				return cart.Load(ctx)
			})
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func newCartAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add PRODUCT_ID [QUANTITY]",
		Short: "Add a product to the cart",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity := 1
			if len(args) == 2 {
				parsed, err := parseQuantity(args[1])
				if err != nil {
					return err
				}
				quantity = parsed
			}
			return runCartOp(cmd, "Added to cart.", func(ctx context.Context, cart *shopfront.Cart) bool {
				return cart.Add(ctx, args[0], quantity)
			})
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func newCartUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update PRODUCT_ID QUANTITY",
		Short: "Set the quantity of a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			quantity, err := parseQuantity(args[1])
			if err != nil {
				return err
			}
			return runCartOp(cmd, "Cart updated.", func(ctx context.Context, cart *shopfront.Cart) bool {
				return cart.UpdateItem(ctx, args[0], quantity)
			})
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func newCartRemoveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove PRODUCT_ID",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCartOp(cmd, "Removed from cart.", func(ctx context.Context, cart *shopfront.Cart) bool {
				return cart.Remove(ctx, args[0])
			})
		},
	}
	addOutputFlag(cmd)
	return cmd
}

func newCartClearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove everything from the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCartOp(cmd, "Cart cleared.", func(ctx context.Context, cart *shopfront.Cart) bool {
				return cart.Clear(ctx)
			})
		},
	}
	addOutputFlag(cmd)
	return cmd
}

// runCartOp wires the app, requires authentication, runs one cart
// operation, and renders the resulting snapshot.
func runCartOp(cmd *cobra.Command, successNotice string, op func(context.Context, *shopfront.Cart) bool) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if err := a.requireAuth(ctx); err != nil {
		return err
	}

	if !op(ctx, a.cart) {
		a.notifier.ShowError(a.cart.State().Err)
		return exitError(exitRuntime, "%s", a.cart.State().Err)
	}
	a.notifier.ShowSuccess(successNotice)

	state := a.cart.State()
	if outputJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"items":     state.Items,
			"subtotal":  state.Subtotal,
			"itemCount": state.ItemCount,
		})
	}
	printCart(cmd, state)
	return nil
}

func printCart(cmd *cobra.Command, state shopfront.CartState) {
	out := cmd.OutOrStdout()
	if len(state.Items) == 0 {
		fmt.Fprintln(out, "Cart is empty.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRODUCT\tQTY\tPRICE\tLINE TOTAL")
	for _, line := range state.Items {
		lineTotal := line.Product.Price * float64(line.Quantity)
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\n", line.Product.Name, line.Quantity, line.Product.Price, lineTotal)
	}
	_ = w.Flush()
	fmt.Fprintf(out, "Items: %d  Subtotal: %.2f\n", state.ItemCount, state.Subtotal)
}

func parseQuantity(raw string) (int, error) {
	quantity, err := strconv.Atoi(raw)
	if err != nil {
		return 0, exitError(exitValidation, "invalid quantity %q", raw)
	}
	if quantity < 1 {
		return 0, exitError(exitValidation, "quantity must be at least 1")
	}
	return quantity, nil
}
