package chart_views

import (
	"github.com/sirupsen/logrus"
)

// ErrorKind classifies the failures a balance chart reports.
type ErrorKind string

const (
	// DecodeError means the chart-data payload was missing or malformed.
	DecodeError ErrorKind = "DecodeError"
	// RenderCreationError means the renderer rejected the dataset or panicked.
	RenderCreationError ErrorKind = "RenderCreationError"
	// InvariantViolation means a lifecycle signal arrived out of order. It is absorbed.
	InvariantViolation ErrorKind = "InvariantViolation"
)

// ErrorReporter is the sink for per-element chart failures. Failures never reach the page.
type ErrorReporter interface {
	Report(elementID string, kind ErrorKind, message string)
}

// LogReporter reports through logrus. Invariant violations are warnings, everything
// else is an error.
type LogReporter struct {
	Log logrus.FieldLogger
}

func NewLogReporter() *LogReporter {
	return &LogReporter{Log: logrus.StandardLogger()}
}

func (lr *LogReporter) Report(elementID string, kind ErrorKind, message string) {
	entry := lr.Log.WithFields(logrus.Fields{
		"element": elementID,
		"kind":    string(kind),
	})
	if kind == InvariantViolation {
		entry.Warn(message)
		return
	}
	entry.Error(message)
}
