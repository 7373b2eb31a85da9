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
	"strconv"
	"syscall"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rpggio/courses/internal/config"
	"github.com/rpggio/courses/internal/domain/course"
	"github.com/rpggio/courses/internal/mcp"
	"github.com/rpggio/courses/internal/transport"
)

// NewServeCommand creates the serve command.
func NewServeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, or the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}
}

func runServe(cmd *cobra.Command, opts *RootOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// stdout carries JSON-RPC in stdio mode.
	logOut := cmd.OutOrStdout()
	if cfg.Transport.Mode == config.ModeStdio {
		logOut = cmd.ErrOrStderr()
	}
	logger, closeLog, err := newLogger(cfg.Log, logOut)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg.DB)
	if err != nil {
		logger.Error("failed to open store", "driver", cfg.DB.Driver, "error", err)
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		logger.Error("failed to run migrations", "driver", cfg.DB.Driver, "error", err)
		return err
	}

	svc := course.NewService(st.Courses, st.Sequence, logger)
	mcpServer := mcp.NewServer(mcp.Config{Courses: svc, Logger: logger})

	if cfg.Transport.Mode == config.ModeStdio {
		return runStdio(ctx, logger, mcpServer)
	}
	return runHTTP(ctx, logger, cfg.Server, transport.NewServer(svc, transport.Options{
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
		MCP:         mcp.NewHTTPHandler(mcpServer),
	}))
}

func runStdio(ctx context.Context, logger *slog.Logger, server *sdkmcp.Server) error {
	logger.Info("starting stdio transport")

	// Run blocks until stdin closes or ctx is canceled.
	if err := server.Run(ctx, &sdkmcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("stdio server error", "error", err)
		return err
	}
	logger.Info("shutting down")
	return nil
}

// runHTTP serves handler until ctx is canceled, then drains in-flight
// requests for at most the configured shutdown timeout.
func runHTTP(ctx context.Context, logger *slog.Logger, cfg config.ServerConfig, handler http.Handler) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     handler,
		ReadTimeout: cfg.ReadTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		return err
	}
	return nil
}
