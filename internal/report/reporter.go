package report

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/PentesterFlow/ParamCrawler/internal/dispatch"
	"github.com/PentesterFlow/ParamCrawler/internal/logger"
	"github.com/PentesterFlow/ParamCrawler/internal/traversal"
)

// Console lines bracketing a crawl.
const (
	StartingMessage  = "Starting the web crawling process..."
	CompletedMessage = "Web crawling process completed."
)

// Reporter prints results and appends them to an optional report file.
type Reporter struct {
	printer *Printer
	fileMu  sync.Mutex
	log     *logger.Logger
}

// NewReporter creates a reporter writing through printer.
func NewReporter(printer *Printer, log *logger.Logger) *Reporter {
	if log == nil {
		log = logger.Nop()
	}
	return &Reporter{printer: printer, log: log}
}

// Report prints res and, when outputPath is set and parameters were found,
// appends it to outputPath. File errors are logged, never returned.
func (r *Reporter) Report(res *traversal.Result, outputPath string) {
	r.printer.Print(ConsoleEvents(res)...)

	if outputPath == "" || len(res.Parameters) == 0 {
		return
	}
	if err := r.appendFile(outputPath, FileBlock(res)); err != nil {
		r.log.WarnEvent(err, res.Seed, "write_report")
	}
}

// ReportError prints a failed run.
func (r *Reporter) ReportError(err *dispatch.RunError) {
	r.printer.Print(Event{
		Kind:    KindError,
		Message: fmt.Sprintf("Error processing %s: %v", err.Seed, err.Err),
	})
}

// Start prints the opening line.
func (r *Reporter) Start() {
	r.printer.Print(Event{Kind: KindInfo, Message: StartingMessage})
}

// Done prints the completion line.
func (r *Reporter) Done() {
	r.printer.Print(Event{Kind: KindDone, Message: CompletedMessage})
}

// Sink adapts the reporter to dispatcher outcomes.
func (r *Reporter) Sink(outputPath string) dispatch.Sink {
	return func(o dispatch.Outcome) {
		if o.Err != nil {
			r.ReportError(o.Err)
			return
		}
		r.Report(o.Result, outputPath)
	}
}

// appendFile opens, appends and closes path under the reporter's lock.
func (r *Reporter) appendFile(path, block string) error {
	r.fileMu.Lock()
	defer r.fileMu.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open report file: %w", err)
	}
	if _, err := f.WriteString(block); err != nil {
		f.Close()
		return fmt.Errorf("write report file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close report file: %w", err)
	}
	return nil
}

// ConsoleEvents renders res as console events.
func ConsoleEvents(res *traversal.Result) []Event {
	if len(res.Parameters) == 0 {
		return []Event{{
			Kind:    KindNone,
			Message: fmt.Sprintf("[+] No parameters were found for %s.", res.Seed),
		}}
	}

	events := make([]Event, 0, len(res.Parameters)+1)
	events = append(events, Event{
		Kind:    KindFound,
		Message: fmt.Sprintf("[+] Found %d parameters for %s:", len(res.Parameters), res.Seed),
	})
	for _, p := range res.Parameters {
		events = append(events, Event{Kind: KindParam, Message: "    - " + p})
	}
	return events
}

// FileBlock renders res in the report file format.
func FileBlock(res *traversal.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nParameters found for %s:\n", res.Seed)
	for _, p := range res.Parameters {
		fmt.Fprintf(&b, "    - %s\n", p)
	}
	return b.String()
}
