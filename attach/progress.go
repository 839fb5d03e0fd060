package attach

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pterm/pterm"
)

// StageReporter receives pipeline progress. Implementations:
//   - CLIReporter: pretty terminal output using pterm
//   - JSONReporter: one JSON event per line for machine consumption
//   - NopReporter: silence, used in tests
type StageReporter interface {
	// Stage announces a pipeline phase
	Stage(name, message string)
	// Matched reports a unit that found its file group
	Matched(unit, group string, fileCount int)
	// Unmatched reports a unit with no matching group
	Unmatched(unit string)
	// Uploaded reports a bundle that reached its project
	Uploaded(project, filename string, fileCount int)
	// Failure reports a recorded, non-fatal error
	Failure(stage string, err error)
	// Summary closes the run with final counters
	Summary(result *ProcessingResult)
}

// CLIReporter prints progress to the terminal.
type CLIReporter struct{}

func (CLIReporter) Stage(name, message string) {
	pterm.Printf("%s %s\n", pterm.LightCyan(name+":"), message)
}

func (CLIReporter) Matched(unit, group string, fileCount int) {
	pterm.Printf("  %s %-24s -> %s (%d files)\n", pterm.Green("✓"), unit, group, fileCount)
}

func (CLIReporter) Unmatched(unit string) {
	pterm.Printf("  %s %-24s -> no match\n", pterm.Red("✗"), unit)
}

func (CLIReporter) Uploaded(project, filename string, fileCount int) {
	pterm.Printf("  %s %s -> %s (%d files)\n", pterm.Green("✓"), filename, project, fileCount)
}

func (CLIReporter) Failure(stage string, err error) {
	pterm.Error.Printf("%s: %v\n", stage, err)
}

func (CLIReporter) Summary(result *ProcessingResult) {
	pterm.Println()
	pterm.DefaultSection.Println("Run summary")
	pterm.Printf("  Units considered:  %d\n", result.UnitsConsidered)
	pterm.Printf("  Groups matched:    %d\n", result.GroupsMatched)
	pterm.Printf("  Files attached:    %d\n", result.FilesAttached)
	pterm.Printf("  Bundles uploaded:  %d\n", result.BundlesUploaded)
	pterm.Printf("  Bundles published: %d\n", result.BundlesPublished)
	if len(result.Errors) > 0 {
		pterm.Printf("  Errors:            %d\n", len(result.Errors))
		for _, msg := range result.Errors {
			pterm.Printf("    - %s\n", msg)
		}
	}
	if result.Success() {
		pterm.Success.Println("Processing complete")
	} else {
		pterm.Error.Println("Processing attached no files")
	}
}

// JSONReporter writes one event per line to w.
type JSONReporter struct {
	W io.Writer
}

type progressEvent struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

func (r JSONReporter) emit(eventType string, data interface{}) {
	event := progressEvent{Type: eventType, Timestamp: time.Now(), Data: data}
	if encoded, err := json.Marshal(event); err == nil {
		fmt.Fprintln(r.W, string(encoded))
	}
}

func (r JSONReporter) Stage(name, message string) {
	r.emit("stage", map[string]string{"name": name, "message": message})
}

func (r JSONReporter) Matched(unit, group string, fileCount int) {
	r.emit("matched", map[string]interface{}{"unit": unit, "group": group, "files": fileCount})
}

func (r JSONReporter) Unmatched(unit string) {
	r.emit("unmatched", map[string]string{"unit": unit})
}

func (r JSONReporter) Uploaded(project, filename string, fileCount int) {
	r.emit("uploaded", map[string]interface{}{"project": project, "filename": filename, "files": fileCount})
}

func (r JSONReporter) Failure(stage string, err error) {
	r.emit("error", map[string]string{"stage": stage, "error": err.Error()})
}

func (r JSONReporter) Summary(result *ProcessingResult) {
	r.emit("summary", result)
}

// NopReporter discards all progress.
type NopReporter struct{}

func (NopReporter) Stage(string, string)         {}
func (NopReporter) Matched(string, string, int)  {}
func (NopReporter) Unmatched(string)             {}
func (NopReporter) Uploaded(string, string, int) {}
func (NopReporter) Failure(string, error)        {}
func (NopReporter) Summary(*ProcessingResult)    {}
