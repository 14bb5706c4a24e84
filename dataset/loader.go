package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/arloliu/impfit/errs"
	"github.com/arloliu/impfit/internal/options"
)

// Loader collects spectra from a directory.
type Loader struct {
	dir           string
	files         []string
	excludeEnding string
	extension     string
	minHz, maxHz  float64
	limit         int
	logger        *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption = options.Option[*Loader]

// WithFiles restricts loading to the named files, relative to the directory.
func WithFiles(files ...string) LoaderOption {
	return options.NoError(func(l *Loader) {
		l.files = append([]string(nil), files...)
	})
}

// WithExcludeEnding skips files whose name ends with suffix.
func WithExcludeEnding(suffix string) LoaderOption {
	return options.NoError(func(l *Loader) {
		l.excludeEnding = suffix
	})
}

// WithFrequencyWindow keeps only frequencies within [minHz, maxHz]. A zero
// bound is ignored.
func WithFrequencyWindow(minHz, maxHz float64) LoaderOption {
	return options.New(func(l *Loader) error {
		if minHz < 0 || maxHz < 0 || (maxHz > 0 && minHz > maxHz) {
			return fmt.Errorf("invalid frequency window [%v, %v]", minHz, maxHz)
		}
		l.minHz, l.maxHz = minHz, maxHz

		return nil
	})
}

// WithLimit caps the number of repeats used per file.
func WithLimit(n int) LoaderOption {
	return options.NoError(func(l *Loader) {
		l.limit = n
	})
}

// WithLoaderLogger sets the logger used to report skipped files.
func WithLoaderLogger(logger *zap.Logger) LoaderOption {
	return options.NoError(func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	})
}

// NewLoader creates a loader for dir. An empty dir means the working
// directory.
func NewLoader(dir string, opts ...LoaderOption) (*Loader, error) {
	if dir == "" {
		dir = "."
	}
	l := &Loader{dir: dir, extension: ".csv", logger: zap.NewNop()}

	return options.Build(l, nil, opts...)
}

// Load reads every eligible file. Files that cannot be parsed are logged and
// skipped; an unreadable directory is an error.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	names, err := l.candidates()
	if err != nil {
		return nil, err
	}

	ds, _ := New()
	ds.SetLimit(l.limit)
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if l.excludeEnding != "" && strings.HasSuffix(name, l.excludeEnding) {
			l.logger.Info("skipped file due to excluded ending", zap.String("file", name))
			continue
		}

		s, err := LoadCSV(filepath.Join(l.dir, name))
		if err != nil {
			if errors.Is(err, errs.ErrInvalidDataFile) || errors.Is(err, errs.ErrShapeMismatch) {
				l.logger.Warn("skipped unreadable file", zap.String("file", name), zap.Error(err))
				continue
			}

			return nil, err
		}
		if l.minHz > 0 || l.maxHz > 0 {
			s = s.Window(l.minHz, l.maxHz)
			if len(s.Omega) == 0 {
				l.logger.Warn("no frequencies left in window", zap.String("file", name))
				continue
			}
		}
		if err := ds.Add(s); err != nil {
			return nil, err
		}
	}

	return ds, nil
}

func (l *Loader) candidates() ([]string, error) {
	if len(l.files) > 0 {
		return l.files, nil
	}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read data directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), l.extension) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	return names, nil
}
