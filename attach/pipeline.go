package attach

import (
	"context"
	"strings"

	"github.com/clarigo/clarigo/errors"
	"github.com/clarigo/clarigo/lims"
	"github.com/clarigo/clarigo/logger"
)

// StepAPI is everything the pipeline needs from the LIMS client.
// *lims.Client satisfies it.
type StepAPI interface {
	OwnershipAPI
	UploadAPI
	StepDetails(ctx context.Context, stepURI string) (*lims.StepDetails, error)
	Artifact(ctx context.Context, artifactURI string) (*lims.Artifact, error)
	FilesForArtifact(ctx context.Context, artifactLIMSID string) ([]*lims.FileRecord, error)
	Download(ctx context.Context, fileURI string) ([]byte, error)
	Researcher(ctx context.Context, researcherURI string) (*lims.Researcher, error)
}

// Notification describes one published bundle for the notifier.
type Notification struct {
	ProjectName   string
	ProjectLIMSID string
	Email         string
	Filename      string
	FileNames     []string
}

// Notifier delivers researcher notifications. Implementations live
// outside the engine; a nil notifier disables notification entirely.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Options configures a pipeline run.
type Options struct {
	ArchiveSuffix string // step attachments to decompose, e.g. ".zip"
	BundleSuffix  string // appended to project names for output archives
	Workers       int    // concurrent ownership resolutions
	Reporter      StageReporter
	Notifier      Notifier
}

// Pipeline wires the engine stages to a LIMS client for end-to-end runs.
type Pipeline struct {
	api      StepAPI
	opts     Options
	reporter StageReporter
}

// NewPipeline creates a pipeline over the given API.
func NewPipeline(api StepAPI, opts Options) *Pipeline {
	if opts.ArchiveSuffix == "" {
		opts.ArchiveSuffix = ".zip"
	}
	if opts.BundleSuffix == "" {
		opts.BundleSuffix = "_sequencing_files.zip"
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Pipeline{api: api, opts: opts, reporter: reporter}
}

// Run processes one workflow step end to end. Only a step whose details
// cannot be retrieved is fatal; every later failure is recorded on the
// result and processing continues.
func (p *Pipeline) Run(ctx context.Context, stepURI string) (*ProcessingResult, error) {
	p.reporter.Stage("step", stepURI)

	details, err := p.api.StepDetails(ctx, stepURI)
	if err != nil {
		return nil, errors.Wrapf(err, "retrieving step %s", stepURI)
	}

	var preErrors []string

	units := p.buildUnits(ctx, details, &preErrors)
	logger.Infow("units of work collected", "count", len(units))

	p.reporter.Stage("archives", "locating and decomposing step archives")
	groups := p.collectGroups(ctx, details, &preErrors)
	logger.Infow("file groups collected", "groups", groups.Len(), "files", groups.FileCount())

	p.reporter.Stage("matching", "resolving ownership and matching file groups")
	aggregator := NewAggregator(NewResolver(p.api), p.reporter, p.opts.Workers)
	bundles, _, result := aggregator.Aggregate(ctx, units, groups)
	result.Errors = append(preErrors, result.Errors...)

	p.reporter.Stage("publish", "uploading project bundles")
	publisher := NewPublisher(p.api, p.reporter, p.opts.BundleSuffix)
	published := publisher.PublishBundles(ctx, bundles, result)

	if p.opts.Notifier != nil {
		p.reporter.Stage("notify", "sending researcher notifications")
		p.notify(ctx, published)
	}

	p.reporter.Summary(result)
	return result, nil
}

// buildUnits turns the step's input-output maps into the ordered,
// input-deduplicated unit-of-work list. An artifact that cannot be
// fetched is recorded and skipped; it cannot be matched without a name.
func (p *Pipeline) buildUnits(ctx context.Context, details *lims.StepDetails, preErrors *[]string) []UnitOfWork {
	seen := make(map[string]bool)
	var units []UnitOfWork

	for _, m := range details.IOMaps {
		if seen[m.InputLIMSID] {
			continue
		}
		seen[m.InputLIMSID] = true

		artifact, err := p.api.Artifact(ctx, m.InputURI)
		if err != nil {
			*preErrors = append(*preErrors, "fetching artifact "+m.InputLIMSID+": "+err.Error())
			p.reporter.Failure("artifact", err)
			continue
		}

		units = append(units, UnitOfWork{
			LIMSID:    artifact.LIMSID,
			URI:       artifact.URI,
			Name:      artifact.Name,
			SampleURI: artifact.SampleURI,
		})
	}

	return units
}

// collectGroups downloads and decomposes every step archive: each
// shared (PerAllInputs) ResultFile output with an attached file whose
// name carries the archive suffix. Group maps from multiple archives are
// merged, later archives winning on identifier collision. A bad archive
// is recorded and the rest still decompose.
func (p *Pipeline) collectGroups(ctx context.Context, details *lims.StepDetails, preErrors *[]string) *GroupSet {
	merged := NewGroupSet()
	seen := make(map[string]bool)

	for _, m := range details.IOMaps {
		if m.OutputType != "ResultFile" || m.GenerationType != "PerAllInputs" {
			continue
		}
		if seen[m.OutputLIMSID] {
			continue
		}
		seen[m.OutputLIMSID] = true

		records, err := p.api.FilesForArtifact(ctx, m.OutputLIMSID)
		if err != nil {
			*preErrors = append(*preErrors, "listing files for output "+m.OutputLIMSID+": "+err.Error())
			p.reporter.Failure("archives", err)
			continue
		}

		for _, record := range records {
			if !strings.HasSuffix(strings.ToLower(record.OriginalLocation), strings.ToLower(p.opts.ArchiveSuffix)) {
				continue
			}

			data, err := p.api.Download(ctx, record.URI)
			if err != nil {
				*preErrors = append(*preErrors, "downloading "+record.OriginalLocation+": "+err.Error())
				p.reporter.Failure("archives", err)
				continue
			}

			set, err := Decompose(data)
			if err != nil {
				*preErrors = append(*preErrors, "decomposing "+record.OriginalLocation+": "+err.Error())
				p.reporter.Failure("archives", err)
				continue
			}

			logger.Debugw("archive decomposed",
				"archive", record.OriginalLocation,
				"groups", set.Len(),
				"files", set.FileCount())
			merged.Merge(set)
		}
	}

	return merged
}

// notify sends one notification per project whose bundle was published.
func (p *Pipeline) notify(ctx context.Context, published []PublishedBundle) {
	notified := make(map[string]bool)

	for _, entry := range published {
		if !entry.Published {
			continue
		}
		owner := entry.Bundle.Owner
		if notified[owner.LIMSID] {
			continue
		}
		notified[owner.LIMSID] = true

		if owner.ResearcherURI == "" {
			logger.Warnw("project has no researcher, skipping notification", "project", owner.Name)
			continue
		}

		researcher, err := p.api.Researcher(ctx, owner.ResearcherURI)
		if err != nil {
			logger.Warnw("researcher lookup failed, skipping notification",
				"project", owner.Name, "error", err)
			continue
		}
		if researcher.Email == "" {
			logger.Warnw("researcher has no email, skipping notification", "project", owner.Name)
			continue
		}

		fileNames := make([]string, 0, len(entry.Bundle.Files))
		for _, f := range entry.Bundle.Files {
			fileNames = append(fileNames, f.Name)
		}

		notification := Notification{
			ProjectName:   owner.Name,
			ProjectLIMSID: owner.LIMSID,
			Email:         researcher.Email,
			Filename:      entry.Filename,
			FileNames:     fileNames,
		}
		if err := p.opts.Notifier.Notify(ctx, notification); err != nil {
			logger.Warnw("notification failed", "project", owner.Name, "error", err)
		}
	}
}
