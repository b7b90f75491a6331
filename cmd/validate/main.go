// Command validate runs customer CSV validation from the command line.
//
// It validates an input file, writes the accepted rows and the error
// report to the output directory, and prints a summary. When a
// database URL is provided the run is also persisted.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/WalissonCM/Validacao-de-Dados/internal/core"
	"github.com/WalissonCM/Validacao-de-Dados/internal/logging"
	"github.com/WalissonCM/Validacao-de-Dados/internal/store"
)

func main() {
	// Load .env if present so --database-url picks up DATABASE_URL
	_ = godotenv.Load()

	cmd := &cli.Command{
		Name:  "validate",
		Usage: "Validate a customer CSV file and produce an error report",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "Path to the customer CSV file",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output-dir",
				Aliases: []string{"o"},
				Value:   ".",
				Usage:   "Directory for the valid-customers CSV and the error report",
			},
			&cli.StringFlag{
				Name:    "database-url",
				Sources: cli.EnvVars("DATABASE_URL", "DB_URL"),
				Usage:   "Optional PostgreSQL URL; when set, the run is persisted",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "info",
				Usage: "Log level: debug, info, warn, error",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, c *cli.Command) error {
	logging.Setup(c.String("log-level"), "text")

	input := c.String("input")
	outputDir := c.String("output-dir")

	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	svc, cleanup, err := buildService(ctx, c.String("database-url"))
	if err != nil {
		return err
	}
	defer cleanup()

	summary, err := svc.ValidateFile(ctx, filepath.Base(input), data)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	validPath := filepath.Join(outputDir, "valid_customers.csv")
	if err := writeValidCSV(validPath, summary.Result.Valid); err != nil {
		return err
	}

	reportPath := filepath.Join(outputDir, core.ReportFileName(time.Now()))
	if err := os.WriteFile(reportPath, []byte(summary.Report), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	printSummary(summary, validPath, reportPath)

	if svc.Persistent() {
		slog.Info("run persisted", "run_id", summary.RunID)
	}

	// Row-level defects are reported, not fatal.
	return nil
}

// buildService wires the validation service, with Postgres persistence
// when a database URL is available.
func buildService(ctx context.Context, dbURL string) (*core.Service, func(), error) {
	if dbURL == "" {
		return core.NewService(nil), func() {}, nil
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}

	st := store.New(pool)
	if err := st.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return core.NewService(st), pool.Close, nil
}

// writeValidCSV writes the accepted customers as CSV, header included.
func writeValidCSV(path string, valid []core.ValidRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(core.CustomerCSV(valid)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// printSummary prints run statistics and the per-field error breakdown.
func printSummary(summary *core.RunSummary, validPath, reportPath string) {
	fmt.Printf("File:            %s\n", summary.FileName)
	fmt.Printf("Total records:   %d\n", summary.Total)
	fmt.Printf("Valid records:   %d\n", summary.Valid)
	fmt.Printf("Rows with errors: %d\n", summary.Invalid)
	fmt.Printf("Total errors:    %d\n", len(summary.Result.Errors))

	if counts := core.ErrorsByField(summary.Result.Errors); len(counts) > 0 {
		fmt.Println("\nErrors by field:")
		for _, fc := range counts {
			fmt.Printf("  %-15s %d\n", fc.Field, fc.Count)
		}
	}

	fmt.Printf("\nValid customers: %s\n", validPath)
	fmt.Printf("Error report:    %s\n", reportPath)
}
