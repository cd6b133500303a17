// Package logger is the process-wide logger. Only errors are printed
// unless --verbose is set; serve and watch also turn on timestamps.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type level struct {
	tag    string
	always bool
}

var (
	levelDebug = level{tag: "DEBUG"}
	levelInfo  = level{tag: "INFO"}
	levelWarn  = level{tag: "WARN"}
	levelError = level{tag: "ERROR", always: true}
)

var (
	mu         sync.Mutex
	out        io.Writer = os.Stderr
	verbose    bool
	timestamps bool

	// now is swapped in tests.
	now = time.Now
)

func SetVerbose(v bool) {
	mu.Lock()
	verbose = v
	mu.Unlock()
}

func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return verbose
}

// SetTimestamps prefixes lines with the UTC time in RFC 3339.
func SetTimestamps(v bool) {
	mu.Lock()
	timestamps = v
	mu.Unlock()
}

// SetOutput redirects every line to w. The default is stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

func Debug(format string, args ...any) { write(levelDebug, format, args) }
func Info(format string, args ...any)  { write(levelInfo, format, args) }
func Warn(format string, args ...any)  { write(levelWarn, format, args) }

// Error prints even when verbose is off.
func Error(format string, args ...any) { write(levelError, format, args) }

// Section prints a "=== name ===" banner in verbose mode.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(out, "\n=== %s ===\n", name)
	}
}

func write(l level, format string, args []any) {
	mu.Lock()
	defer mu.Unlock()
	if !l.always && !verbose {
		return
	}
	if timestamps {
		fmt.Fprint(out, now().UTC().Format(time.RFC3339), " ")
	}
	fmt.Fprintf(out, "[%s] %s\n", l.tag, fmt.Sprintf(format, args...))
}
