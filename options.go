package wsgikit

import (
	"log/slog"

	"github.com/Mikhus/wsgikit/formdata"
)

type options struct {
	limits  formdata.Limits
	tempDir string
	logger  *slog.Logger
}

// Option configures request parsing.
type Option func(*options)

// WithLimits sets the resource ceilings enforced while the body is read.
// The zero value of any field means that dimension is unbounded.
func WithLimits(limits formdata.Limits) Option {
	return func(o *options) {
		o.limits = limits
	}
}

// WithTempDir sets the directory uploaded files are spooled to before they
// are moved. Defaults to the system temp directory.
func WithTempDir(dir string) Option {
	return func(o *options) {
		if dir != "" {
			o.tempDir = dir
		}
	}
}

// WithLogger enables debug-level logging of parse decisions. Nil loggers
// are ignored; logging stays off by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
