package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/noah-isme/exam-seat-api/internal/app"
	"github.com/noah-isme/exam-seat-api/internal/cli"
	"github.com/noah-isme/exam-seat-api/pkg/config"
	"github.com/noah-isme/exam-seat-api/pkg/logger"
)

var version = "1.0.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "seatctl",
		Short: "Operate exam seat allocations",
		Long: `seatctl generates, inspects, exports and clears exam seat allocations against the same
database and configuration as the API server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(cli.NewGenerateCmd(open))
	rootCmd.AddCommand(cli.NewClearCmd(open))
	rootCmd.AddCommand(cli.NewPlanCmd(open))
	rootCmd.AddCommand(cli.NewDatesCmd(open))
	rootCmd.AddCommand(cli.NewExportCmd(open))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed).Sprint("error:"), err)
		stop()
		os.Exit(1)
	}
}

func open() (cli.SeatService, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	application, err := app.New(cfg, logr, app.Options{})
	if err != nil {
		return nil, nil, fmt.Errorf("connect: %w", err)
	}
	return application.Allocations, func() error {
		_ = logr.Sync()
		return application.Close()
	}, nil
}
