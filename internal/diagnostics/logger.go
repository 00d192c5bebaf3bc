package diagnostics

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Logger prints Reports to an output stream, colorized by severity the way
// the reference analyzer's log.py colors INFO/WARNING/ERROR lines.
type Logger struct {
	mu  sync.Mutex
	out io.Writer

	info  func(a ...interface{}) string
	warn  func(a ...interface{}) string
	error_ func(a ...interface{}) string
}

// NewLogger returns a Logger writing to out.
func NewLogger(out io.Writer) *Logger {
	return &Logger{
		out:    out,
		info:   color.New(color.FgCyan).SprintFunc(),
		warn:   color.New(color.FgYellow).SprintFunc(),
		error_: color.New(color.FgRed, color.Bold).SprintFunc(),
	}
}

// Default is the process-wide logger, writing to stderr.
var Default = NewLogger(os.Stderr)

// Log prints r with its severity-appropriate color and returns r unchanged.
func (l *Logger) Log(r *Report) *Report {
	l.mu.Lock()
	defer l.mu.Unlock()

	prefix := r.Severity + ":"
	switch r.Severity {
	case Info.String():
		prefix = l.info(prefix)
	case Warning.String():
		prefix = l.warn(prefix)
	case Error.String():
		prefix = l.error_(prefix)
	}

	if r.Span != nil {
		fmt.Fprintf(l.out, "%s %s (%s) [%s]\n", prefix, r.Message, r.Span, r.Code)
	} else {
		fmt.Fprintf(l.out, "%s %s [%s]\n", prefix, r.Message, r.Code)
	}
	return r
}
