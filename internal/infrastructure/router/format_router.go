package router

import (
	"silentskies-service/internal/usecase"
	"silentskies-service/pkg/logger"
)

// FormatRouter routes uploaded files to loaders based on their extension
type FormatRouter struct {
	loaders []usecase.TabularLoader
	logger  logger.Logger
}

// NewFormatRouter creates a new format router
func NewFormatRouter(logger logger.Logger) *FormatRouter {
	return &FormatRouter{
		loaders: make([]usecase.TabularLoader, 0),
		logger:  logger,
	}
}

// Register registers a loader
func (r *FormatRouter) Register(loader usecase.TabularLoader) {
	r.loaders = append(r.loaders, loader)
	r.logger.Info("Registered loader", "format", loader.Format())
}

// GetLoader returns the first loader that can read filename
func (r *FormatRouter) GetLoader(filename string) usecase.TabularLoader {
	for _, loader := range r.loaders {
		if loader.CanHandle(filename) {
			return loader
		}
	}
	return nil
}
