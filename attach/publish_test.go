package attach

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarigo/clarigo/errors"
	"github.com/clarigo/clarigo/lims"
)

// fakeUploadAPI records upload and publish calls and can fail either per
// project URI or per file URI.
type fakeUploadAPI struct {
	uploads     []string // filenames in call order
	publishes   []string // file URIs in call order
	failUpload  map[string]error
	failPublish map[string]error
}

func (f *fakeUploadAPI) Upload(_ context.Context, attachToURI, filename string, content []byte) (*lims.FileRecord, error) {
	if err, ok := f.failUpload[attachToURI]; ok {
		return nil, err
	}
	f.uploads = append(f.uploads, filename)
	return &lims.FileRecord{
		LIMSID:           "40-" + filename,
		URI:              "files/40-" + filename,
		AttachedTo:       attachToURI,
		OriginalLocation: filename,
	}, nil
}

func (f *fakeUploadAPI) Publish(_ context.Context, fileURI string) error {
	if err, ok := f.failPublish[fileURI]; ok {
		return err
	}
	f.publishes = append(f.publishes, fileURI)
	return nil
}

func testBundles() []Bundle {
	return []Bundle{
		{
			Owner: Owner{LIMSID: "P1", URI: "projects/P1", Name: "Alpha"},
			Files: []MemberFile{
				{Name: "a1.fastq", Data: []byte("1")},
				{Name: "a2.fastq", Data: []byte("2")},
			},
		},
		{
			Owner: Owner{LIMSID: "P2", URI: "projects/P2", Name: "Beta"},
			Files: []MemberFile{
				{Name: "b1.fastq", Data: []byte("3")},
			},
		},
	}
}

func TestPublishBundles(t *testing.T) {
	api := &fakeUploadAPI{}
	result := &ProcessingResult{}

	published := NewPublisher(api, nil, "_sequencing_files.zip").PublishBundles(context.Background(), testBundles(), result)

	require.Len(t, published, 2)
	assert.True(t, published[0].Published)
	assert.True(t, published[1].Published)
	assert.Equal(t, []string{"Alpha_sequencing_files.zip", "Beta_sequencing_files.zip"}, api.uploads)
	assert.Len(t, api.publishes, 2)

	assert.Equal(t, 2, result.BundlesUploaded)
	assert.Equal(t, 2, result.BundlesPublished)
	assert.Equal(t, 3, result.FilesAttached)
	assert.Empty(t, result.Errors)
}

func TestPublishBundlesUploadFailureExcludesFiles(t *testing.T) {
	api := &fakeUploadAPI{
		failUpload: map[string]error{"projects/P1": errors.New("storage unavailable")},
	}
	result := &ProcessingResult{}

	published := NewPublisher(api, nil, ".zip").PublishBundles(context.Background(), testBundles(), result)

	// the failed bundle is absent from the published list entirely
	require.Len(t, published, 1)
	assert.Equal(t, "Beta", published[0].Bundle.Owner.Name)

	assert.Equal(t, 1, result.BundlesUploaded)
	assert.Equal(t, 1, result.FilesAttached, "files from a failed upload must not count")
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Alpha")
}

func TestPublishBundlesPublishFailureKeepsUploadCounted(t *testing.T) {
	api := &fakeUploadAPI{
		failPublish: map[string]error{"files/40-Alpha.zip": errors.New("put rejected")},
	}
	result := &ProcessingResult{}

	published := NewPublisher(api, nil, ".zip").PublishBundles(context.Background(), testBundles(), result)

	require.Len(t, published, 2)
	assert.False(t, published[0].Published)
	assert.True(t, published[1].Published)

	assert.Equal(t, 2, result.BundlesUploaded)
	assert.Equal(t, 1, result.BundlesPublished)
	assert.Equal(t, 3, result.FilesAttached)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "publishing")
}
