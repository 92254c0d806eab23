package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Vovarama1992/dislike-coach/internal/ai"
	"github.com/Vovarama1992/dislike-coach/internal/coach"
	"github.com/Vovarama1992/dislike-coach/internal/config"
	"github.com/Vovarama1992/dislike-coach/internal/logger"
	"github.com/Vovarama1992/dislike-coach/internal/mcp"
)

const (
	serverName    = "dislike-coach"
	serverVersion = "1.0.0"
)

// app is everything a command needs once configuration is loaded.
type app struct {
	cfg *config.Config
	log *slog.Logger
	svc coach.Service
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	aiClient, err := ai.NewClient(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	svc := coach.NewService(aiClient, log, coach.WithRetryDelay(cfg.RetryDelay))
	return &app{cfg: cfg, log: log, svc: svc}, nil
}

func (a *app) mcpServer() (*mcp.Server, error) {
	srv := mcp.NewServer(serverName, serverVersion, a.log)
	if err := srv.RegisterTool(coach.AnalyzeTool(a.svc)); err != nil {
		return nil, err
	}
	return srv, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           serverName,
		Short:         "Explain a disliked assistant reply and suggest a better prompt",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.AddCommand(
		newServeCmd(),
		newStdioCmd(),
		newAnalyzeCmd(),
		&cobra.Command{
			Use:   "version",
			Short: "Print the server version",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", serverName, serverVersion)
			},
		},
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}
