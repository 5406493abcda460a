// Package logging builds the diagnostic logger. Diagnostics always go to
// standard error, never into a reported payload.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// RedactedValue replaces secrets in log output.
const RedactedValue = "[REDACTED]"

// MinSecretLen is the shortest value redacted. Shorter values would rewrite
// ordinary words in the log.
const MinSecretLen = 8

// Options configures New.
type Options struct {
	Verbose bool      // debug level instead of warn
	Out     io.Writer // defaults to os.Stderr
	Secrets []string  // values replaced with RedactedValue before writing
}

// New returns a logger for the CLI. Only warnings and errors are written
// unless Verbose is set. Output is human readable, with colors only when
// writing to a terminal and NO_COLOR is unset.
func New(opts Options) zerolog.Logger {
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	if len(opts.Secrets) > 0 {
		out = NewFilteringWriter(out, opts.Secrets...)
	}

	console := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.TimeOnly,
		NoColor:    !colorEnabled(opts.Out),
	}
	return zerolog.New(console).Level(selectLevel(opts.Verbose)).With().Timestamp().Logger()
}

func selectLevel(verbose bool) zerolog.Level {
	if verbose {
		return zerolog.DebugLevel
	}
	return zerolog.WarnLevel
}

// colorEnabled reports whether w is a terminal that accepts colors.
func colorEnabled(w io.Writer) bool {
	if w == nil {
		w = os.Stderr
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd())) && os.Getenv("NO_COLOR") == ""
}

// FilteringWriter wraps an io.Writer and redacts a fixed set of secrets.
type FilteringWriter struct {
	w        io.Writer
	replacer *strings.Replacer
}

// NewFilteringWriter returns a writer that replaces every secret with
// RedactedValue. Secrets shorter than MinSecretLen are ignored.
func NewFilteringWriter(w io.Writer, secrets ...string) *FilteringWriter {
	var pairs []string
	for _, s := range secrets {
		if len(s) >= MinSecretLen {
			pairs = append(pairs, s, RedactedValue)
		}
	}
	return &FilteringWriter{w: w, replacer: strings.NewReplacer(pairs...)}
}

// Write implements io.Writer. It reports len(p) on success so callers do not
// see a short write when the redacted text differs in length.
func (fw *FilteringWriter) Write(p []byte) (int, error) {
	if _, err := io.WriteString(fw.w, fw.replacer.Replace(string(p))); err != nil {
		return 0, err
	}
	return len(p), nil
}
