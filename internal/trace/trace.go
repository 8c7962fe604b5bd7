// Package trace implements the indented, glyph-prefixed solve tracing
// spec.md's design notes ask to make "structured event records emitted
// through a sink, rendered textually only at the boundary". The glyphs
// interleave directly into a sink the way a branch/backtrack trace
// traditionally reads, but here the sink is an injectable Logger so
// tests can capture trace output without touching stderr.
package trace

import (
	"fmt"
	"strings"
)

const (
	Success     = "✓"
	SuccessSp   = Success + " "
	Fail        = "✗"
	FailSp      = Fail + " "
	Backtrack   = "←"
)

// Logger is the minimal sink Tracer writes through; *log.Logger and
// *testing.T both satisfy a trivial adapter of it.
type Logger interface {
	Printf(format string, args ...interface{})
}

// Tracer indents each message by the depth its caller passes to Printf,
// and is a no-op when Enabled is false (or Out is nil) so hot-path
// callers don't pay for string formatting they'll discard.
type Tracer struct {
	Enabled bool
	Out     Logger
}

func (t *Tracer) Printf(depth int, format string, args ...interface{}) {
	if !t.Enabled || t.Out == nil {
		return
	}
	prefix := strings.Repeat("| ", depth)
	msg := fmt.Sprintf(format, args...)
	lines := strings.Split(strings.TrimSuffix(msg, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	t.Out.Printf("%s", strings.Join(lines, "\n"))
}
