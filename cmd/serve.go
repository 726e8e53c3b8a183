package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"smellsense/internal/controller"
	"smellsense/internal/handler"
	"smellsense/pkg/mcp"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the MCP endpoint",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	cmd.Flags().Int("port", 0, "override the configured port")
	cmd.Flags().Bool("no-mcp", false, "do not mount the MCP endpoint")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, cfg, logger, closeFn, err := openService(cmd, "stdout")
	if err != nil {
		return err
	}
	defer closeFn()

	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.App.Port = port
	}

	var mcpServer *mcp.SmellServer
	if noMCP, _ := cmd.Flags().GetBool("no-mcp"); !noMCP {
		mcpServer = mcp.NewSmellServer(svc, logger)
	}
	smellController := controller.NewSmellController(svc, cfg.App.NumWorkers, logger)
	router := handler.SetupRouter(smellController, mcpServer, logger)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.Int("port", cfg.App.Port),
			zap.Bool("mcp", mcpServer != nil),
			zap.Bool("history", svc.HistoryEnabled()))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-cmd.Context().Done():
	}

	logger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
