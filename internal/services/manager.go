package services

import (
	"github.com/prepdeck/examprep-service/internal/events"
	"github.com/prepdeck/examprep-service/internal/handoff"
	"github.com/prepdeck/examprep-service/internal/repositories"
	"github.com/prepdeck/examprep-service/internal/utils"
)

// ServiceManager bundles the service layer for handler wiring.
type ServiceManager interface {
	Loader() TestLoader
	Attempt() AttemptService
	Result() ResultService
	Export() ExportService
}

type serviceManager struct {
	loader  TestLoader
	attempt AttemptService
	result  ResultService
	export  ExportService
}

func NewServiceManager(
	repo repositories.Repository,
	publisher events.EventPublisher,
	results handoff.Store,
	logger utils.Logger,
) ServiceManager {
	loader := NewTestLoader(repo, logger)
	return &serviceManager{
		loader:  loader,
		attempt: NewAttemptService(loader, repo, publisher, results, logger),
		result:  NewResultService(repo, results, logger),
		export:  NewExportService(repo, logger),
	}
}

func (m *serviceManager) Loader() TestLoader      { return m.loader }
func (m *serviceManager) Attempt() AttemptService { return m.attempt }
func (m *serviceManager) Result() ResultService   { return m.result }
func (m *serviceManager) Export() ExportService   { return m.export }
