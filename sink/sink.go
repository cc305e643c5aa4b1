// Package sink provides the process-wide default api.ExceptionSink.
//
// Background goroutines — accept-loop workers, future listener dispatch,
// session-processor callbacks — have no caller to unwind an error to. The
// default sink logs and moves on; callers that need routing to a real
// observability stack inject their own api.ExceptionSink instead of relying
// on this default.
package sink

import (
	"log"
	"sync"

	"github.com/momentics/hioaccept/api"
)

// LogSink reports errors via the standard logger, tagged with the
// component name that raised them.
type LogSink struct {
	mu     sync.Mutex
	logger *log.Logger
}

// NewLogSink builds an ExceptionSink writing through logger. A nil logger
// falls back to log.Default().
func NewLogSink(logger *log.Logger) *LogSink {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSink{logger: logger}
}

// Report implements api.ExceptionSink.
func (s *LogSink) Report(component string, err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Printf("[%s] unhandled error: %v", component, err)
}

var defaultSink api.ExceptionSink = NewLogSink(nil)

// Default returns the process-wide default ExceptionSink.
func Default() api.ExceptionSink { return defaultSink }

// SetDefault replaces the process-wide default sink. Intended for process
// wiring at startup, not for per-call overrides.
func SetDefault(s api.ExceptionSink) {
	if s == nil {
		return
	}
	defaultSink = s
}
