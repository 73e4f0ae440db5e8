package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrAppNameIsEmpty is returned by Init without Log.AppName.
	ErrAppNameIsEmpty = errors.New("config Log.AppName can not be empty")

	// ErrServiceNameIsEmpty is returned by Init without Log.ServiceName, which
	// labels the log metrics.
	ErrServiceNameIsEmpty = errors.New("config Log.ServiceName can not be empty")
)

//nolint:gochecknoglobals // swapped by tests
var writeFailures io.Writer = os.Stderr

// ErrorHandler reports events zerolog could not write, e.g. a full disk under
// the rolling log files. It is installed as zerolog.ErrorHandler by Init.
func ErrorHandler(err error) {
	_, _ = fmt.Fprintf(writeFailures, "inventory-api: could not write log event: %v\n", err)
}
