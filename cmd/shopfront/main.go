package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakmart/shopfront/cli"
	shopotel "github.com/oakmart/shopfront/otel"
)

// Set via ldflags at build time.
var version = "dev"

var shutdownTracing func(context.Context) error

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "shopfront",
	Short: "Shopfront storefront client CLI",
	Long:  "Shopfront is a CLI for the storefront backend: sessions, profile, catalog, and cart.",
	// SilenceUsage prevents printing usage on every error
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		endpoint, _ := cmd.Flags().GetString("otel-endpoint")
		if endpoint == "" {
			return nil
		}
		shutdown, err := shopotel.SetupTracing(cmd.Context(), endpoint, version)
		if err != nil {
			return err
		}
		shutdownTracing = shutdown
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if shutdownTracing == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ./shopfront.yaml, ~/.shopfront/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose/debug logging")
	rootCmd.PersistentFlags().String("otel-endpoint", "", "OTLP/HTTP trace endpoint (host:port)")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(fmt.Sprintf("shopfront version %s\n", version))

	rootCmd.AddCommand(cli.NewLoginCmd())
	rootCmd.AddCommand(cli.NewLogoutCmd())
	rootCmd.AddCommand(cli.NewWhoamiCmd())
	rootCmd.AddCommand(cli.NewProfileCmd())
	rootCmd.AddCommand(cli.NewProductsCmd())
	rootCmd.AddCommand(cli.NewCartCmd())
	rootCmd.AddCommand(cli.NewWatchCmd())
	rootCmd.AddCommand(cli.NewServeCmd())
}
