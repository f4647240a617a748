// Package glog adapts clog's Logger interface to github.com/golang/glog, for
// binaries that want glog's leveled file/stderr logging and -v flag instead
// of clog's stdlib fallback. Grounded verbatim on cayley's own
// clog/glog/glog.go.
package glog

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/gremlinsql/compiler/clog"
)

func init() {
	clog.SetLogger(Logger{})
}

// Logger implements clog.Logger on top of glog.
type Logger struct{}

func (Logger) Infof(format string, args ...interface{}) {
	glog.InfoDepth(3, fmt.Sprintf(format, args...))
}
func (Logger) Warningf(format string, args ...interface{}) {
	glog.WarningDepth(3, fmt.Sprintf(format, args...))
}
func (Logger) Errorf(format string, args ...interface{}) {
	glog.ErrorDepth(3, fmt.Sprintf(format, args...))
}
func (Logger) Fatalf(format string, args ...interface{}) {
	glog.FatalDepth(3, fmt.Sprintf(format, args...))
}
