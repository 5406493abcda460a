// Package report turns the result of a command run into the text payload
// sent with a check-in. Formatting is pure: the same inputs always produce
// the same Payload.
package report

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/deixis/hcrun/internal/runner"
)

// MaxBytes is the largest payload the monitoring endpoint accepts. Note this
// is 10000 bytes, not 10KiB.
const MaxBytes = 10000

// Options controls how a payload is built.
type Options struct {
	Detailed bool     // wrap the output with the command line, exit code and duration
	Env      []string // KEY=VALUE pairs prepended to a detailed payload; nil to omit
	Head     bool     // keep the first MaxBytes instead of the last
	LogOnly  bool     // report without changing the check's pass/fail state
	MaxBytes int      // byte budget; MaxBytes when zero
}

func (o Options) budget() int {
	if o.MaxBytes > 0 {
		return o.MaxBytes
	}
	return MaxBytes
}

// Payload is the body and outcome of a completion check-in.
type Payload struct {
	Text     string
	ExitCode *uint8 // nil for a log-only check-in
}

// IsLog reports whether the payload must not affect the check's state.
func (p Payload) IsLog() bool {
	return p.ExitCode == nil
}

// Format builds the payload for res, the result of running argv.
func Format(res *runner.Result, argv []string, opts Options) Payload {
	code := res.ExitCode()
	text := strings.ToValidUTF8(string(res.Output), string(utf8.RuneError))

	if opts.Detailed {
		text = fmt.Sprintf("$ %s 2>&1\n%s\n\nExit Code: %d\nDuration: %s",
			strings.Join(argv, " "), text, code, res.Elapsed)
		if opts.Env != nil {
			text = strings.Join(opts.Env, "\n") + "\n" + text
		}
	}

	p := Payload{Text: Truncate(text, opts.budget(), opts.Head)}
	if !opts.LogOnly {
		p.ExitCode = &code
	}
	return p
}

// Truncate limits s to at most limit bytes. By default the tail is kept;
// head keeps the beginning instead. A multi-byte character cut at the edge
// decodes to replacement characters, which are stripped from that edge so
// the result stays within limit and never carries a broken character.
func Truncate(s string, limit int, head bool) string {
	if len(s) <= limit {
		return s
	}
	placeholder := string(utf8.RuneError)
	if head {
		return strings.TrimRight(strings.ToValidUTF8(s[:limit], placeholder), placeholder)
	}
	return strings.TrimLeft(strings.ToValidUTF8(s[len(s)-limit:], placeholder), placeholder)
}
