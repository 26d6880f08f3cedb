package base

import (
	"github.com/relex/gotils/logger"
)

// FailureKind classifies delivery failures for the error reporter
type FailureKind int

// Failure kinds, mirroring the stages of the publishing pipeline
const (
	FormatFailure FailureKind = iota // record could not be rendered
	OpenFailure                      // connection could not be established
	WriteFailure                     // rendered text could not be delivered
	FlushFailure                     // best-effort flush failed
	CloseFailure                     // best-effort close failed
)

func (k FailureKind) String() string {
	switch k {
	case FormatFailure:
		return "format"
	case OpenFailure:
		return "open"
	case WriteFailure:
		return "write"
	case FlushFailure:
		return "flush"
	case CloseFailure:
		return "close"
	default:
		return "unknown"
	}
}

// ErrorReporter receives every failure of the publishing pipeline
//
// Failures are reported here and never returned to the original log call site:
// the logging pipeline must not crash because a downstream shipper is unreachable.
// Implementations must not panic and should be cheap; Report may be called under
// the handler's lock.
type ErrorReporter interface {
	Report(message string, cause error, kind FailureKind)
}

type loggingReporter struct {
	logger logger.Logger
}

// NewLoggingReporter creates the default ErrorReporter which writes failures
// to the agent's own log at warning level
func NewLoggingReporter(parentLogger logger.Logger) ErrorReporter {
	return &loggingReporter{logger: parentLogger}
}

func (r *loggingReporter) Report(message string, cause error, kind FailureKind) {
	if cause != nil {
		r.logger.Warnf("%s failure: %s: %s", kind, message, cause.Error())
	} else {
		r.logger.Warnf("%s failure: %s", kind, message)
	}
}
