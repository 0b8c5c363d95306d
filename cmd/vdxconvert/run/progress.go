package run

import (
	"fmt"
	"io"

	"github.com/samlyndon/vdxconvert/internal/batch"
)

// progressEmitter writes one line per processed file. It keeps a running
// failure count so a long batch can be watched from a terminal or a pipe.
type progressEmitter struct {
	out    io.Writer
	failed int
}

func newProgressEmitter(out io.Writer) *progressEmitter {
	return &progressEmitter{out: out}
}

func (p *progressEmitter) emit(done, total int, outcome batch.Outcome) {
	if outcome.Status == batch.StatusFailed {
		p.failed++
	}
	fmt.Fprintf(p.out, "progress file=%s status=%s done=%d/%d failed=%d\n",
		outcome.Name, outcome.Status, done, total, p.failed)
}
