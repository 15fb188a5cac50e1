package root

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/wabdoteth/sappy-care/internal/mcp"
	"github.com/wabdoteth/sappy-care/internal/scheduler"
)

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve sappy tools over MCP (stdio)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e, cleanup, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			sched, err := scheduler.New(e.svc, e.cfg.QuestCron, e.log)
			if err != nil {
				return err
			}
			if err := sched.Start(ctx); err != nil {
				return err
			}
			defer sched.Stop()

			server, _ := mcp.NewServer(e.svc, e.log)
			e.log.Info("mcp server starting on stdio", "path", e.cfg.Path())

			serverErr := make(chan error, 1)
			go func() {
				serverErr <- mcpserver.ServeStdio(server)
			}()

			select {
			case <-ctx.Done():
				e.log.Info("shutdown signal received")
				return nil
			case err := <-serverErr:
				if err != nil {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			}
		},
	}
	return cmd
}

func newDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Seed each day's quests on the configured cron schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			e, cleanup, err := openEnv(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			return runDaemon(ctx, e)
		},
	}
	return cmd
}

func runDaemon(ctx context.Context, e *env) error {
	sched, err := scheduler.New(e.svc, e.cfg.QuestCron, e.log)
	if err != nil {
		return err
	}
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	e.log.Info("daemon running", "cron", e.cfg.QuestCron, "next", sched.Next())
	<-ctx.Done()
	e.log.Info("daemon stopping")
	return nil
}
