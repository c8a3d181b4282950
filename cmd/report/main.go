// Command report runs one report pipeline and writes the workbook to
// disk.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dartwatch/internal/config"
	"dartwatch/internal/dart"
	"dartwatch/internal/docparse"
	apierrors "dartwatch/internal/errors"
	"dartwatch/internal/exporter"
	"dartwatch/internal/infrastructure"
	"dartwatch/internal/report"
	"dartwatch/pkg/contracts/domain"
)

func main() {
	kind := flag.String("report", "major", "report kind: major or rights")
	begin := flag.String("from", "", "window start (YYYYMMDD)")
	end := flag.String("to", "", "window end (YYYYMMDD)")
	outDir := flag.String("out", "", "output directory (defaults to the configured export directory)")
	flag.Parse()

	if len(*begin) != 8 || len(*end) != 8 || *begin > *end {
		slog.Error("invalid window: -from and -to must be YYYYMMDD with from <= to")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}

	client := dart.NewClient(cfg.Dart, logger)
	service := report.NewService(client, docparse.NewExtractor(),
		cfg.Dart.CapitalLookbackMonths, cfg.Dart.RegistrationLookbackMonths, logger)

	window := domain.DateWindow{Begin: *begin, End: *end}
	ctx := context.Background()

	var result *domain.Report
	switch *kind {
	case "major":
		result, err = service.MajorIssuanceReport(ctx, window)
	case "rights":
		result, err = service.RightsIssueReport(ctx, window)
	default:
		slog.Error("unknown report kind", "kind", *kind)
		os.Exit(2)
	}

	if errors.Is(err, apierrors.ErrNoData) {
		logger.Info("no filings matched the requested window",
			slog.String("from", *begin), slog.String("to", *end))
		return
	}
	if err != nil {
		logger.Error("report run failed", "error", err)
		os.Exit(1)
	}

	writer, err := exporter.NewWorkbookWriter(cfg.Export.Timezone, logger)
	if err != nil {
		logger.Error("failed to create workbook writer", "error", err)
		os.Exit(1)
	}
	data, filename, err := writer.Write(result)
	if err != nil {
		logger.Error("failed to write workbook", "error", err)
		os.Exit(1)
	}

	dir := *outDir
	if dir == "" {
		dir = cfg.Export.OutputDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}

	outPath := filepath.Join(dir, filename)
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		logger.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	logger.Info("report written", slog.String("path", outPath))
	fmt.Println(outPath)
}
