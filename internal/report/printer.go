// Package report renders traversal results to the console and report files.
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Kind classifies a console event.
type Kind int

const (
	// KindInfo is neutral progress output.
	KindInfo Kind = iota
	// KindFound announces parameters for a seed.
	KindFound
	// KindParam is one parameter name.
	KindParam
	// KindNone announces a seed without parameters.
	KindNone
	// KindError reports a failed run.
	KindError
	// KindDone ends the process output.
	KindDone
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFound:
		return "found"
	case KindParam:
		return "param"
	case KindNone:
		return "none"
	case KindError:
		return "error"
	case KindDone:
		return "done"
	default:
		return "info"
	}
}

// Event is one line of console output.
type Event struct {
	Kind    Kind
	Message string
}

// Printer writes events to a writer, one line each, coloured by kind.
// Events passed to a single Print call are written contiguously.
type Printer struct {
	mu     sync.Mutex
	out    io.Writer
	colors map[Kind]*color.Color
}

// NewPrinter creates a printer. colored forces ANSI colours on or off
// regardless of whether out is a terminal.
func NewPrinter(out io.Writer, colored bool) *Printer {
	colors := map[Kind]*color.Color{
		KindInfo:  color.New(color.FgWhite),
		KindFound: color.New(color.FgGreen),
		KindParam: color.New(color.FgCyan),
		KindNone:  color.New(color.FgYellow),
		KindError: color.New(color.FgRed),
		KindDone:  color.New(color.FgGreen, color.Bold),
	}
	for _, c := range colors {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return &Printer{out: out, colors: colors}
}

// Print writes events in order.
func (p *Printer) Print(events ...Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, e := range events {
		c, ok := p.colors[e.Kind]
		if !ok {
			fmt.Fprintln(p.out, e.Message)
			continue
		}
		c.Fprintln(p.out, e.Message)
	}
}
