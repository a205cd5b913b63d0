package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mdobak/go-xerrors"
	"github.com/spf13/cobra"

	"github.com/rcliao/biosynth/internal/api"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Run:   runServe,
	}

	cmd.Flags().String("addr", "", "Listen address (default: $BIOSYNTH_ADDR or :5000)")
	cmd.Flags().Duration("timeout", 0, "Generation deadline per request (default: $BIOSYNTH_TIMEOUT or 30s)")
	cmd.Flags().Bool("debug", false, "Run gin in debug mode")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	addr, _ := cmd.Flags().GetString("addr")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	debug, _ := cmd.Flags().GetBool("debug")
	if addr == "" {
		addr = cfg.Server.Addr
	}
	if timeout <= 0 {
		timeout = cfg.Server.Timeout
	}
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	srv := api.NewServer(newEngine(), s, api.Options{
		Timeout:      timeout,
		Duration:     cfg.Defaults.Duration,
		SamplingRate: cfg.Defaults.SamplingRate,
		Logger:       slog.Default(),
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Starting HTTP server", "addr", addr, "db", getDBPath(), "timeout", timeout)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			err := xerrors.New(err)
			slog.Error("Failed to start server", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	waitForShutdown(server)
}

func waitForShutdown(server *http.Server) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	slog.Info("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server gracefully stopped")
}
