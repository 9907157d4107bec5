package util

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gosuri/uilive"
)

// LivePrinter maintains a single live-updating terminal line,
// refreshed at a fixed frequency.
type LivePrinter struct {
	mu        sync.Mutex
	printable string

	frequency time.Duration
	doneCh    chan struct{}
	writer    *uilive.Writer
}

func NewLivePrinter(frequency time.Duration) *LivePrinter {
	return &LivePrinter{
		frequency: frequency,
		doneCh:    make(chan struct{}),
		writer:    uilive.New(),
	}
}

// Set replaces the line to be printed on the next refresh.
func (p *LivePrinter) Set(format string, args ...interface{}) {
	p.mu.Lock()
	p.printable = fmt.Sprintf(format, args...)
	p.mu.Unlock()
}

// Bypass returns a writer for permanent lines that scroll past the
// live line instead of being overwritten by it.
func (p *LivePrinter) Bypass() io.Writer {
	return p.writer.Bypass()
}

func (p *LivePrinter) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-p.doneCh:
				return
			case <-ctx.Done():
				return
			case <-time.After(p.frequency):
				p.print()
			}
		}
	}()
}

func (p *LivePrinter) Stop() {
	close(p.doneCh)
	p.print()
}

func (p *LivePrinter) print() {
	p.mu.Lock()
	s := p.printable
	p.mu.Unlock()
	if s == "" {
		return
	}
	fmt.Fprintln(p.writer, s)
	p.writer.Flush()
}
