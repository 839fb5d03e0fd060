package attach

import (
	"context"

	"github.com/clarigo/clarigo/lims"
	"github.com/clarigo/clarigo/logger"
)

// UploadAPI is the slice of the LIMS client the publisher needs.
type UploadAPI interface {
	Upload(ctx context.Context, attachToURI, filename string, content []byte) (*lims.FileRecord, error)
	Publish(ctx context.Context, fileURI string) error
}

// PublishedBundle records one bundle that reached the LIMS.
type PublishedBundle struct {
	Bundle    Bundle
	Filename  string
	Record    *lims.FileRecord
	Published bool
}

// Publisher uploads bundle archives to their owning projects and flips
// each uploaded file's published flag.
type Publisher struct {
	api          UploadAPI
	reporter     StageReporter
	bundleSuffix string
}

// NewPublisher creates a publisher.
func NewPublisher(api UploadAPI, reporter StageReporter, bundleSuffix string) *Publisher {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Publisher{api: api, reporter: reporter, bundleSuffix: bundleSuffix}
}

// PublishBundles builds, uploads, and publishes every bundle. Failures
// are recorded on result and the remaining bundles still get their turn.
// FilesAttached counts only files whose bundle upload succeeded; a failed
// publish toggle keeps the upload's files counted but is recorded as an
// error and the bundle is reported unpublished.
func (p *Publisher) PublishBundles(ctx context.Context, bundles []Bundle, result *ProcessingResult) []PublishedBundle {
	published := make([]PublishedBundle, 0, len(bundles))

	for _, bundle := range bundles {
		filename, archiveBytes, err := BuildArchive(bundle, p.bundleSuffix)
		if err != nil {
			result.AddError("building archive for project %s: %v", bundle.Owner.Name, err)
			p.reporter.Failure("bundle", err)
			continue
		}

		record, err := p.api.Upload(ctx, bundle.Owner.URI, filename, archiveBytes)
		if err != nil {
			result.AddError("uploading %s to project %s: %v", filename, bundle.Owner.Name, err)
			p.reporter.Failure("upload", err)
			continue
		}

		result.BundlesUploaded++
		result.FilesAttached += len(bundle.Files)
		p.reporter.Uploaded(bundle.Owner.Name, filename, len(bundle.Files))

		entry := PublishedBundle{Bundle: bundle, Filename: filename, Record: record}
		if err := p.api.Publish(ctx, record.URI); err != nil {
			result.AddError("publishing %s (%s): %v", filename, record.LIMSID, err)
			p.reporter.Failure("publish", err)
		} else {
			entry.Published = true
			result.BundlesPublished++
			logger.Infow("bundle published",
				"project", bundle.Owner.Name,
				"file_limsid", record.LIMSID,
				"files", len(bundle.Files))
		}

		published = append(published, entry)
	}

	return published
}
