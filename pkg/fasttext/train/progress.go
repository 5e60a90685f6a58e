package train

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// Progress renders training progress (percent complete, words/sec, ETA,
// current loss) the way the original CLI's stdout monitor does, but as
// a plain io.Writer target instead of a hard-wired std::cerr (spec §4.4
// "Progress / cancellation", §9 design note: "eliminate std::cout
// redirection... let the caller format"). Callers set Driver.Progress to
// one wrapping any writer, or leave it nil to disable reporting entirely;
// neither cmd/fasttext nor FastText.Train sets it.
type Progress struct {
	w        io.Writer
	isTTY    bool
	start    time.Time
	lastLine bool
}

// NewProgress wraps w. If w is os.Stderr (or any *os.File) connected to
// a terminal, successive updates redraw the same line with \r; otherwise
// (piped output, e.g. CI logs) each update is a fresh line, matching
// fastText's own "-" for non-tty behavior.
func NewProgress(w io.Writer) *Progress {
	p := &Progress{w: w, start: timeNow()}
	if f, ok := w.(*os.File); ok {
		p.isTTY = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return p
}

// timeNow is the one seam train uses for wall-clock time, so progress
// rendering can be exercised deterministically in tests.
func timeNow() time.Time { return time.Now() }

// Update prints one progress line: fraction complete, words/sec since
// start, ETA, and the current mean loss (spec §4.4: "prints progress,
// ETA, and current loss").
func (p *Progress) Update(tokensDone, tokensTarget int64, lr float64, loss float64, thread int) {
	if p == nil || p.w == nil {
		return
	}
	elapsed := timeNow().Sub(p.start)
	var pct float64
	if tokensTarget > 0 {
		pct = 100 * float64(tokensDone) / float64(tokensTarget)
	}
	var wps float64
	if elapsed.Seconds() > 0 {
		wps = float64(tokensDone) / elapsed.Seconds() / float64(max(thread, 1))
	}
	var eta time.Duration
	if pct > 0 && pct < 100 {
		eta = time.Duration(float64(elapsed) * (100 - pct) / pct)
	}

	line := fmt.Sprintf("Progress: %5.1f%% words/sec/thread: %8s lr: %8.6f loss: %8.6f ETA: %s",
		pct, humanize.Comma(int64(wps)), lr, loss, humanize.RelTime(timeNow().Add(eta), timeNow(), "", ""))

	if p.isTTY {
		fmt.Fprintf(p.w, "\r%s", line)
		p.lastLine = true
	} else {
		fmt.Fprintln(p.w, line)
	}
}

// Done finalizes the progress line (a trailing newline after the last
// \r-redrawn line, so subsequent log output doesn't clobber it).
func (p *Progress) Done() {
	if p == nil || p.w == nil || !p.lastLine {
		return
	}
	fmt.Fprintln(p.w)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
