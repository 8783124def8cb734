package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookclubapp/bookclub-server/internal/logger"
	"github.com/bookclubapp/bookclub-server/internal/service"
)

// ProvideReportService provides the report service.
func ProvideReportService(i do.Injector) (*service.ReportService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReportService(storeHandle.Store, log.Logger), nil
}
