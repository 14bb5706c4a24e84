package runner

import (
	"go.uber.org/zap"

	"github.com/arloliu/impfit/fit"
	"github.com/arloliu/impfit/internal/options"
	"github.com/arloliu/impfit/results"
)

// Option configures a Runner.
type Option = options.Option[*Runner]

// WithLogger sets the logger of the runner. The default controller shares it.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	})
}

// WithController replaces the staged fit controller.
func WithController(c *fit.Controller) Option {
	return options.NoError(func(r *Runner) {
		r.controller = c
	})
}

// WithWriter sets the destination of the results document. Without a writer
// results are only returned in the Summary.
func WithWriter(w *results.Writer) Option {
	return options.NoError(func(r *Runner) {
		r.writer = w
	})
}

// WithRecordHook registers a callback invoked after each record is fitted.
func WithRecordHook(hook func(RecordResult)) Option {
	return options.NoError(func(r *Runner) {
		r.hook = hook
	})
}

// WithChainReports logs acceptance and autocorrelation diagnostics for every
// ensemble result.
func WithChainReports() Option {
	return options.NoError(func(r *Runner) {
		r.chainReports = true
	})
}
