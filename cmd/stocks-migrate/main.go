// Command stocks-migrate converts the legacy strain spreadsheet export into
// normalized freeze, tube and thaw records. The run is idempotent: replaying
// the same export against a populated store changes nothing.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	blobcore "nemastocks/internal/blob/core"
	"nemastocks/internal/legacy"
	"nemastocks/internal/migrate"
)

var exitFunc = os.Exit

// main runs the command-line interface using the program arguments and exits
// the process with the status code returned by cli.
func main() {
	code := cli(os.Args[1:], os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("stocks-migrate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath string
		exportPath string
		exportKey  string
		dryRun     bool
	)
	fs.StringVar(&configPath, "config", "", "path to yaml config (optional)")
	fs.StringVar(&exportPath, "export", "", "path to the legacy JSON export file")
	fs.StringVar(&exportKey, "export-key", "", "blob key of the export (overrides -export)")
	fs.BoolVar(&dryRun, "dry-run", false, "run against in-memory stores and report without persisting")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := run(configPath, exportPath, exportKey, dryRun, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "migration failed: %v\n", err)
		return 1
	}
	return 0
}

func run(configPath, exportPath, exportKey string, dryRun bool, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := migrate.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if exportPath != "" {
		cfg.ExportPath = exportPath
	}
	if dryRun {
		cfg.DryRun = true
	}

	logger := log.New(stderr, "stocks-migrate: ", log.LstdFlags)

	store, err := migrate.OpenRecordStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening record store: %w", err)
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}
	blobs, err := migrate.OpenBlobStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening blob store: %w", err)
	}

	loaded, err := loadRecords(ctx, cfg, blobs, exportKey)
	if err != nil {
		return err
	}
	logger.Printf("loaded %d strain records", len(loaded))

	if err := migrate.SeedBoxes(ctx, store); err != nil {
		return fmt.Errorf("seeding boxes: %w", err)
	}

	runner := migrate.NewRunner(store, migrate.NewMetrics(prometheus.DefaultRegisterer), logger)
	report, err := runner.Run(ctx, loaded)
	if err != nil {
		return err
	}

	summary := report.Summary()
	fmt.Fprintf(stdout, "strains: %d  success: %d  skipped: %d  failed: %d  tubes: %d\n",
		summary.Total, summary.Succeeded, summary.Skipped, summary.Failed, summary.Tubes)
	for _, rc := range report.FailureReasons() {
		fmt.Fprintf(stdout, "  %-24s %d\n", rc.Reason, rc.Count)
	}

	keys, err := report.Archive(ctx, blobs, cfg.ReportPrefix)
	if err != nil {
		return err
	}
	for _, key := range keys {
		logger.Printf("archived report %s", key)
	}
	if cfg.DryRun {
		logger.Printf("dry run: no state was persisted")
	}
	return nil
}

func loadRecords(ctx context.Context, cfg migrate.Config, blobs blobcore.Store, exportKey string) ([]legacy.Record, error) {
	if exportKey != "" {
		return migrate.LoadExportBlob(ctx, blobs, exportKey)
	}
	if cfg.ExportPath == "" {
		return nil, fmt.Errorf("no export source: pass -export or -export-key")
	}
	return migrate.LoadExportFile(cfg.ExportPath)
}
