package udf

import (
	"sync/atomic"

	"github.com/go-pkgz/lgr"
)

var logger atomic.Pointer[lgr.L]

func init() {
	SetLogger(lgr.NoOp)
}

// SetLogger sets the logger used by the shim. Loaded into a server, the
// library is silent unless a logger is installed. A nil logger disables
// logging.
func SetLogger(l lgr.L) {
	if l == nil {
		l = lgr.NoOp
	}
	logger.Store(&l)
}

func logf(format string, args ...any) {
	(*logger.Load()).Logf(format, args...)
}
