package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

const barWidth = 40

// ProgressBar renders transfer progress for artifact downloads. A zero
// total means the size is unknown and only the byte count is shown.
type ProgressBar struct {
	mu      sync.Mutex
	w       io.Writer
	title   string
	total   int64
	current int64
}

func NewProgressBar(w io.Writer, title string) *ProgressBar {
	return &ProgressBar{w: w, title: title}
}

// SetTotal sets the expected byte count.
func (p *ProgressBar) SetTotal(total int64) {
	p.mu.Lock()
	p.total = total
	p.mu.Unlock()
}

// Increment advances the bar by n bytes and redraws it.
func (p *ProgressBar) Increment(n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current += n
	p.draw()
}

// Finish draws the final state and ends the line.
func (p *ProgressBar) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total > 0 {
		p.current = p.total
	}
	p.draw()
	fmt.Fprintln(p.w)
}

// Writer returns a writer that copies to dst and counts the bytes.
func (p *ProgressBar) Writer(dst io.Writer) io.Writer {
	return countingWriter{dst: dst, bar: p}
}

type countingWriter struct {
	dst io.Writer
	bar *ProgressBar
}

func (c countingWriter) Write(b []byte) (int, error) {
	n, err := c.dst.Write(b)
	if n > 0 {
		c.bar.Increment(int64(n))
	}
	return n, err
}

func (p *ProgressBar) draw() {
	if p.total <= 0 {
		fmt.Fprintf(p.w, "\r%s %s", p.title, FormatBytes(p.current))
		return
	}

	ratio := min(float64(p.current)/float64(p.total), 1)
	filled := int(barWidth * ratio)
	fmt.Fprintf(p.w, "\r%s [%s%s] %3.0f%% (%s/%s)",
		p.title,
		strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled),
		ratio*100,
		FormatBytes(p.current), FormatBytes(p.total))
}

// FormatBytes renders b using binary units, e.g. "1.5 KB".
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
