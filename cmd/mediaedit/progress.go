package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"media-editor/internal/edit"
)

const defaultBarWidth = 40

// progressBar draws progress on a terminal, or prints a line per change of
// state when the output is not a terminal.
type progressBar struct {
	w        io.Writer
	terminal bool
	width    int

	last  string
	drawn bool
}

func newProgressBar(f *os.File) *progressBar {
	b := &progressBar{w: f, width: defaultBarWidth}
	fd := int(f.Fd())
	if term.IsTerminal(fd) {
		b.terminal = true
		if cols, _, err := term.GetSize(fd); err == nil {
			b.width = barWidth(cols)
		}
	}
	return b
}

// barWidth fits the bar and its " 100%" suffix into cols.
func barWidth(cols int) int {
	w := cols - 8
	if w > 60 {
		w = 60
	}
	if w < 10 {
		w = 10
	}
	return w
}

func (b *progressBar) update(p edit.Progress) {
	line := renderProgress(p, b.width)
	if line == b.last {
		return
	}
	b.last = line

	if b.terminal {
		fmt.Fprintf(b.w, "\r%s", line)
		b.drawn = true
		return
	}
	// Without a terminal only state changes and whole tens are printed.
	if p.Percent == nil || *p.Percent%10 == 0 {
		fmt.Fprintln(b.w, line)
	}
}

// clear erases the bar so other output starts on a clean line.
func (b *progressBar) clear() {
	if b.terminal && b.drawn {
		fmt.Fprintf(b.w, "\r%s\r", strings.Repeat(" ", b.width+8))
		b.drawn = false
		b.last = ""
	}
}

// renderProgress formats p as "[#####.....]  50%" or as the state name when
// no percentage is known.
func renderProgress(p edit.Progress, width int) string {
	if p.Percent == nil {
		return p.State.String()
	}
	pct := *p.Percent
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := width * pct / 100
	return fmt.Sprintf("[%s%s] %3d%%", strings.Repeat("#", filled), strings.Repeat(".", width-filled), pct)
}
