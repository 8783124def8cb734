package providers

import (
	"context"
	"errors"

	"github.com/samber/do/v2"

	"github.com/bookclubapp/bookclub-server/internal/config"
	"github.com/bookclubapp/bookclub-server/internal/logger"
	"github.com/bookclubapp/bookclub-server/internal/pipeline"
	"github.com/bookclubapp/bookclub-server/internal/service"
	"github.com/bookclubapp/bookclub-server/internal/store"
)

// ProvidePipelineRunner provides the data processing pipeline runner.
func ProvidePipelineRunner(i do.Injector) (*pipeline.Runner, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return pipeline.NewRunner(cfg.Data, log.Logger), nil
}

// ProvidePipelineService provides the pipeline service.
func ProvidePipelineService(i do.Injector) (*service.PipelineService, error) {
	runner := do.MustInvoke[*pipeline.Runner](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPipelineService(runner, storeHandle.Store, indexHandle.Index, log.Logger), nil
}

// RunInitialRefreshIfNeeded runs the pipeline once when the store holds no
// snapshot yet, so a fresh install serves data without a manual refresh.
// Should be called after all services are wired.
func RunInitialRefreshIfNeeded(i do.Injector) {
	pipelineService := do.MustInvoke[*service.PipelineService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx := context.Background()
	if _, err := storeHandle.LatestRun(ctx); !errors.Is(err, store.ErrNoSnapshot) {
		return
	}

	log.Info("Store is empty, running initial pipeline refresh")

	go func() {
		run, err := pipelineService.Refresh(context.Background())
		if err != nil {
			log.Error("Initial pipeline refresh failed", "error", err)
			return
		}
		log.Info("Initial pipeline refresh completed",
			"run_id", run.ID,
			"processed", run.Processed,
			"unmatched", run.Unmatched,
		)
	}()
}
