package app

import (
	"github.com/adanyl0v/go-todo-web/internal/config"
	"github.com/adanyl0v/go-todo-web/internal/services"
)

var globalTaskService services.TaskService

// MustInitTaskService sets up the task storage selected by STORAGE_DRIVER.
func MustInitTaskService() {
	logger := globalLogger.With().
		Str("component", "task_service").
		Logger()

	switch driver := config.Global().Storage.Driver; driver {
	case config.StorageDriverPostgres:
		mustConnectPostgres()
		globalTaskService = services.NewTaskService(logger, globalPostgresPool)
	case config.StorageDriverMemory:
		globalTaskService = services.NewMemoryTaskService(logger)
		globalLogger.Warn().Msg("tasks are kept in memory and will be lost on restart")
	default:
		// Config.Validate rejects unknown drivers already.
		panic("unknown storage driver: " + driver)
	}
}

func CloseTaskService() {
	disconnectPostgres()
}
