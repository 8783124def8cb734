// Package main provides a one-shot runner for the data processing pipeline.
// It reads the source files, writes the processed CSVs, and replaces the
// stored snapshot without starting the dashboard server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/bookclubapp/bookclub-server/internal/di"
	"github.com/bookclubapp/bookclub-server/internal/di/providers"
	"github.com/bookclubapp/bookclub-server/internal/logger"
	"github.com/bookclubapp/bookclub-server/internal/service"
)

func main() {
	injector := di.NewContainer()

	// Invoke only the pipeline path; the HTTP server provider stays cold.
	pipelineService, err := do.Invoke[*service.PipelineService](injector)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize pipeline: %v\n", err)
		os.Exit(1)
	}
	log := do.MustInvoke[*logger.Logger](injector)

	run, err := pipelineService.Refresh(context.Background())
	if err != nil {
		log.Error("Pipeline run failed", "error", err)
		closeHandles(injector, log)
		os.Exit(1)
	}

	log.Info("Pipeline run completed",
		"run_id", run.ID,
		"source_rows", run.SourceRows,
		"processed", run.Processed,
		"unmatched", run.Unmatched,
		"members", run.MemberCount,
	)

	closeHandles(injector, log)
}

func closeHandles(injector *do.RootScope, log *logger.Logger) {
	if storeHandle, err := do.Invoke[*providers.StoreHandle](injector); err == nil {
		if err := storeHandle.Shutdown(); err != nil {
			log.Error("Failed to close database", "error", err)
		}
	}
	if searchHandle, err := do.Invoke[*providers.SearchIndexHandle](injector); err == nil {
		if err := searchHandle.Shutdown(); err != nil {
			log.Error("Failed to close search index", "error", err)
		}
	}
}
