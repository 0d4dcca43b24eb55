package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/app"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/config"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/infrastructure/google"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/logging"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/pipeline"
	"github.com/urfave/cli/v3"
)

var version = "dev"

var errRunFailed = errors.New("run finished with error status")

func cmd() *cli.Command {
	return &cli.Command{
		Name:    "autoreport",
		Usage:   "Email attachment reporting pipeline",
		Version: version,
		Flags:   flags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			log := logging.Setup(os.Stderr, cmd.String("log-level"), cmd.String("log-format"))
			return context.WithValue(ctx, loggerKey{}, log), nil
		},
		Commands: []*cli.Command{
			runCommand(),
			serveCommand(),
			showConfigCommand(),
			authorizeCommand(),
		},
	}
}

func logger(ctx context.Context) (*slog.Logger, error) {
	log, ok := ctx.Value(loggerKey{}).(*slog.Logger)
	if !ok {
		return nil, errors.New("failed to get logger from context")
	}
	return log, nil
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Execute one pipeline run and print its report",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "run-id",
				Usage: "Use `ID` as the run identifier instead of a generated one",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log, err := logger(ctx)
			if err != nil {
				return err
			}

			cfg := config.Load(cmd)

			report, err := app.New(log, cfg).RunOnce(ctx, pipeline.RunRequest{
				RunID: cmd.String("run-id"),
				Query: cfg.Query,
			})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.Root().Writer)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("failed to encode report: %w", err)
			}

			if report.Status == domain.StatusError {
				return errRunFailed
			}

			return nil
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API for triggering and inspecting runs",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log, err := logger(ctx)
			if err != nil {
				return err
			}

			return app.New(log, config.Load(cmd)).Serve(ctx)
		},
	}
}

func showConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "show-config",
		Usage: "Print the effective configuration with secrets masked",
		Action: func(_ context.Context, cmd *cli.Command) error {
			for _, entry := range config.Load(cmd).Entries() {
				fmt.Fprintf(cmd.Root().Writer, "%-20s %s\n", entry[0], entry[1])
			}
			return nil
		},
	}
}

func authorizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "authorize",
		Usage: "Run the Google OAuth consent flow and store the token",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log, err := logger(ctx)
			if err != nil {
				return err
			}

			cfg := config.Load(cmd)

			return google.Authorize(ctx, log, cmd.Root().Writer, cfg.CredentialsFile, cfg.TokenFile)
		},
	}
}
