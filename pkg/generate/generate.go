package generate

import (
	"io"

	internalgenerate "github.com/SmitUplenchwar2687/relval/internal/generate"
	"github.com/SmitUplenchwar2687/relval/internal/timestamp"
)

const (
	PatternSteady = internalgenerate.PatternSteady
	PatternBurst  = internalgenerate.PatternBurst
	PatternRamp   = internalgenerate.PatternRamp
)

// Options controls how synthetic records are generated.
type Options = internalgenerate.Options

// Line is one generated record.
type Line = internalgenerate.Line

// DefaultOptions returns defaults aligned with relval CLI behavior.
func DefaultOptions() Options {
	return internalgenerate.DefaultOptions()
}

// Lines creates synthetic records in timestamp order.
func Lines(opts Options) ([]Line, error) {
	return internalgenerate.Lines(opts)
}

// Write renders lines with x's timestamp format.
func Write(w io.Writer, x *timestamp.Extractor, lines []Line) error {
	return internalgenerate.Write(w, x, lines)
}
