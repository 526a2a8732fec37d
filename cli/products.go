package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/oakmart/shopfront/api"
	"github.com/oakmart/shopfront/core"
)

// NewProductsCmd creates the "products" command group.
func NewProductsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Browse the product catalog",
	}
	cmd.AddCommand(newProductsListCmd())
	cmd.AddCommand(newProductsShowCmd())
	return cmd
}

func newProductsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of the catalog",
		Args:  cobra.NoArgs,
		RunE:  runProductsList,
	}
	cmd.Flags().Int("page", 0, "Page number (backend default when omitted)")
	cmd.Flags().Int("limit", 0, "Page size (backend default when omitted)")
	addOutputFlag(cmd)
	return cmd
}

func runProductsList(cmd *cobra.Command, _ []string) error {
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.client.ListProducts(cmd.Context(), page, limit)
	if err != nil {
		return exitError(exitRuntime, "%s", api.ErrorMessage(err, "Failed to load products."))
	}

	if outputJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), result)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK")
	for _, p := range result.Products {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%d\n", p.ID, p.Name, p.Price, p.Stock)
	}
	if err := w.Flush(); err != nil {
		return exitError(exitRuntime, "writing output: %v", err)
	}
	if result.TotalPages > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Page %d of %d\n", result.Page, result.TotalPages)
	}
	return nil
}

func newProductsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show PRODUCT_ID",
		Short: "Show one product",
		Args:  cobra.ExactArgs(1),
		RunE:  runProductsShow,
	}
	addOutputFlag(cmd)
	return cmd
}

func runProductsShow(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	product, err := a.client.GetProduct(cmd.Context(), args[0])
	if err != nil {
		return exitError(exitRuntime, "%s", api.ErrorMessage(err, "Failed to load product."))
	}

	if outputJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), product)
	}
	printProduct(cmd, product)
	return nil
}

func printProduct(cmd *cobra.Command, p core.Product) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", p.Name)
	fmt.Fprintf(out, "  ID:    %s\n", p.ID)
	fmt.Fprintf(out, "  Price: %.2f\n", p.Price)
	fmt.Fprintf(out, "  Stock: %d\n", p.Stock)
	if p.Description != "" {
		fmt.Fprintf(out, "  %s\n", p.Description)
	}
}
