// Package attach implements the matching-and-aggregation engine of the
// sequencing file pipeline: it decomposes a step's zipped run folder into
// file groups, resolves each input artifact to its owning project,
// matches groups to artifacts by name, folds matched files into
// per-project bundles, and hands the bundles to the publisher.
package attach

import "fmt"

// MemberFile is one file extracted from a step archive.
type MemberFile struct {
	// Name is the base filename, the name the file keeps inside an
	// output bundle
	Name string
	// Path is the full path inside the source archive
	Path string
	// Data is the raw payload
	Data []byte
}

// FileGroup is the set of archive member files sharing one base name
// (filename with the final extension removed). Member order follows the
// source archive.
type FileGroup struct {
	// ID is the base identifier, preserving the case of the first file
	// seen with this base name
	ID    string
	Files []MemberFile
}

// UnitOfWork is one input artifact slot in the step requiring file
// association.
type UnitOfWork struct {
	LIMSID    string
	URI       string
	Name      string // display name, the matching key
	SampleURI string // empty when the artifact has no sample reference
}

// Owner is the resolution target a unit's files aggregate under.
type Owner struct {
	LIMSID        string
	URI           string
	Name          string
	ResearcherURI string
}

// Match records the outcome for one unit of work. Group and Owner are nil
// when matching or resolution found nothing; only matches with both
// contribute to bundling.
type Match struct {
	Unit  UnitOfWork
	Group *FileGroup
	Owner *Owner
	// NotFoundReason explains a nil Owner that resolved cleanly to
	// nothing ("no sample", "no project", ...)
	NotFoundReason string
	// ResolveErr holds a resolution failure distinct from not-found
	ResolveErr error
}

// Contributes reports whether this match takes part in bundling.
func (m Match) Contributes() bool {
	return m.Group != nil && m.Owner != nil
}

// Bundle is the per-owner collection of files destined for one output
// archive. File order follows match-processing order.
type Bundle struct {
	Owner Owner
	Files []MemberFile
	// Units lists the display names of contributing units, for reporting
	Units []string
}

// ProcessingResult aggregates counters and human-readable error strings
// for one run. It is created fresh per run and returned up the stack;
// nothing about it is shared between runs.
type ProcessingResult struct {
	RunID            string
	UnitsConsidered  int
	GroupsTotal      int
	GroupsMatched    int
	FilesAttached    int
	BundlesUploaded  int
	BundlesPublished int
	Errors           []string
}

// AddError appends a formatted error string, preserving insertion order.
func (r *ProcessingResult) AddError(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Success reports the advisory run outcome: attaching at least one file
// is success, and so is having nothing to do (no units, or no file groups
// in the step archives). Only a run that had real work and attached
// nothing counts as failed.
func (r *ProcessingResult) Success() bool {
	if r.FilesAttached > 0 {
		return true
	}
	return r.UnitsConsidered == 0 || r.GroupsTotal == 0
}
