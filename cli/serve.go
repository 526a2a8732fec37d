package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakmart/shopfront/devserver"
)

// NewServeCmd creates the "serve" subcommand: a local stub backend the
// client commands can run against without a production deployment.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local stub backend",
		RunE:  runServe,
	}

	cmd.Flags().IntP("port", "p", 3000, "Listen port")
	cmd.Flags().String("host", "127.0.0.1", "Listen host")
	cmd.Flags().String("cors-origin", "*", "Allowed CORS origin")
	cmd.Flags().String("sqlite-path", "", "Path to SQLite database (default: ~/.shopfront/devserver.db)")
	cmd.Flags().Bool("seed", true, "Seed the demo catalog and demo account on startup")
	cmd.Flags().Duration("session-ttl", devserver.DefaultSessionTTL, "Session lifetime")
	cmd.Flags().String("cleanup-schedule", devserver.DefaultCleanupSchedule, "UTC cron schedule for expired-session cleanup")
	cmd.Flags().Duration("read-timeout", 30*time.Second, "HTTP read timeout")
	cmd.Flags().Duration("write-timeout", 60*time.Second, "HTTP write timeout")
	cmd.Flags().Int64("max-body", 1<<20, "Max request body size in bytes")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	host, _ := cmd.Flags().GetString("host")
	port, _ := cmd.Flags().GetInt("port")
	corsOrigin, _ := cmd.Flags().GetString("cors-origin")
	seed, _ := cmd.Flags().GetBool("seed")
	sessionTTL, _ := cmd.Flags().GetDuration("session-ttl")
	cleanupSchedule, _ := cmd.Flags().GetString("cleanup-schedule")
	readTimeout, _ := cmd.Flags().GetDuration("read-timeout")
	writeTimeout, _ := cmd.Flags().GetDuration("write-timeout")
	maxBody, _ := cmd.Flags().GetInt64("max-body")

	dsn, err := resolveServeSQLiteDSN(cmd)
	if err != nil {
		return err
	}

	store, err := devserver.NewSQLiteStore(devserver.SQLiteStoreConfig{DSN: dsn})
	if err != nil {
		return exitError(exitRuntime, "opening sqlite store: %v", err)
	}
	defer func() {
		_ = store.Close()
	}()

	if seed {
		if err := devserver.Seed(cmd.Context(), store); err != nil {
			return exitError(exitRuntime, "seeding demo data: %v", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Seeded demo catalog (demo account: %s / %s)\n",
			devserver.DemoEmail, devserver.DemoPassword)
	}

	logger := slog.Default()
	server := devserver.NewServer(devserver.ServerConfig{
		Store:      store,
		SessionTTL: sessionTTL,
		CORSOrigin: corsOrigin,
		MaxBody:    maxBody,
		Logger:     logger,
	})

	cleaner, err := devserver.NewSessionCleaner(devserver.SessionCleanerConfig{
		Store:    store,
		Schedule: cleanupSchedule,
		Logger:   logger,
	})
	if err != nil {
		return exitError(exitValidation, "%v", err)
	}
	cleaner.Start()
	defer func() {
		_ = cleaner.Stop(context.Background())
	}()

	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(cmd.OutOrStdout(), "Shopfront devserver listening on %s\n", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(cmd.OutOrStdout(), "Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return exitError(exitRuntime, "shutdown error: %v", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return exitError(exitRuntime, "server error: %v", err)
		}
		return nil
	}
}

func resolveServeSQLiteDSN(cmd *cobra.Command) (string, error) {
	sqlitePath, _ := cmd.Flags().GetString("sqlite-path")
	dsn := strings.TrimSpace(sqlitePath)
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("SHOPFRONT_DEVSERVER_PATH"))
	}
	if dsn == "" {
		defaultPath, err := devserver.DefaultSQLitePath()
		if err != nil {
			return "", exitError(exitRuntime, "resolving default sqlite path: %v", err)
		}
		dsn = defaultPath
	}
	return dsn, nil
}
