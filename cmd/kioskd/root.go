package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/genricoloni/queuekiosk/internal/config"
)

const stopTimeout = 15 * time.Second

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:          "kioskd",
		Short:        "Shared music-queue kiosk daemon",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "",
		fmt.Sprintf("Path to config file (default %s)", config.DefaultPath()))

	root.AddCommand(newRunCmd(&cfgPath), newDoctorCmd(&cfgPath))
	return root
}

func newRunCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Runs the kiosk connection and cache core until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), config.Path(*cfgPath))
		},
	}
}

func run(parent context.Context, path config.Path) error {
	if parent == nil {
		parent = context.Background()
	}
	app := fx.New(
		AppOptions,
		fx.Supply(path),
	)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	<-ctx.Done()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}
