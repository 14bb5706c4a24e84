package fit

import (
	"go.uber.org/zap"

	"github.com/arloliu/impfit/internal/options"
	"github.com/arloliu/impfit/model"
)

// ControllerOption configures a Controller.
type ControllerOption = options.Option[*Controller]

// WithLogger sets the diagnostics sink. A nil logger is ignored.
func WithLogger(logger *zap.Logger) ControllerOption {
	return options.NoError(func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithRegistry sets the model-class registry used to resolve freeze schedules.
func WithRegistry(reg *model.Registry) ControllerOption {
	return options.NoError(func(c *Controller) {
		if reg != nil {
			c.registry = reg
		}
	})
}
