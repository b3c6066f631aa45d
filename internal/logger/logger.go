// Package logger is the pipeline trace log for docq. It stays silent
// unless --verbose is set, and writes to stderr so command output can
// be piped cleanly.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type level string

const (
	levelDebug level = "DEBUG"
	levelInfo  level = "INFO"
	levelWarn  level = "WARN"
)

var state = struct {
	sync.RWMutex
	on  bool
	out io.Writer
}{out: os.Stderr}

// SetVerbose toggles trace output.
func SetVerbose(on bool) {
	state.Lock()
	state.on = on
	state.Unlock()
}

// IsVerbose reports whether trace output is enabled.
func IsVerbose() bool {
	state.RLock()
	defer state.RUnlock()
	return state.on
}

// SetOutput redirects trace output. Stderr by default.
func SetOutput(w io.Writer) {
	state.Lock()
	state.out = w
	state.Unlock()
}

// emit takes the write lock: trace lines from concurrent pipelines
// must not interleave mid-line in the output writer.
func emit(lv level, format string, args ...any) {
	state.Lock()
	defer state.Unlock()
	if !state.on {
		return
	}
	fmt.Fprintf(state.out, "[%s] %s\n", lv, fmt.Sprintf(format, args...))
}

// Debug traces fine-grained pipeline steps.
func Debug(format string, args ...any) { emit(levelDebug, format, args...) }

// Info traces notable pipeline milestones.
func Info(format string, args ...any) { emit(levelInfo, format, args...) }

// Warn traces recoverable problems, such as a provider call that will
// surface as an error to the caller.
func Warn(format string, args ...any) { emit(levelWarn, format, args...) }

// Section marks the start of a pipeline stage in the trace.
func Section(name string) {
	state.Lock()
	defer state.Unlock()
	if !state.on {
		return
	}
	fmt.Fprintf(state.out, "\n== %s ==\n", name)
}
