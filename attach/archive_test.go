package attach

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarigo/clarigo/errors"
)

// makeZip builds an in-memory archive with entries in the given order.
func makeZip(t *testing.T, entries map[string]string, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range order {
		entry, err := w.Create(name)
		require.NoError(t, err)
		_, err = entry.Write([]byte(entries[name]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestDecomposeGroupsByBaseName(t *testing.T) {
	archive := makeZip(t, map[string]string{
		"run1/Sample_A.fastq":    "fwd",
		"run1/Sample_A.md5":      "sum",
		"run1/Sample_B_R1.fastq": "b-fwd",
	}, []string{"run1/Sample_A.fastq", "run1/Sample_A.md5", "run1/Sample_B_R1.fastq"})

	set, err := Decompose(archive)
	require.NoError(t, err)

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, 3, set.FileCount())
	assert.Equal(t, []string{"Sample_A", "Sample_B_R1"}, set.Identifiers())

	group, ok := set.Get("Sample_A")
	require.True(t, ok)
	require.Len(t, group.Files, 2)
	assert.Equal(t, "Sample_A.fastq", group.Files[0].Name)
	assert.Equal(t, "run1/Sample_A.fastq", group.Files[0].Path)
	assert.Equal(t, []byte("fwd"), group.Files[0].Data)
	assert.Equal(t, "Sample_A.md5", group.Files[1].Name)
}

func TestDecomposeSkipsDirectoriesAndMacOSMetadata(t *testing.T) {
	archive := makeZip(t, map[string]string{
		"run1/":                        "",
		"__MACOSX/._Sample_A.fastq":    "junk",
		"run1/__MACOSX/Sample_B.fastq": "junk",
		"run1/Sample_A.fastq":          "data",
	}, []string{"run1/", "__MACOSX/._Sample_A.fastq", "run1/__MACOSX/Sample_B.fastq", "run1/Sample_A.fastq"})

	set, err := Decompose(archive)
	require.NoError(t, err)
	assert.Equal(t, []string{"Sample_A"}, set.Identifiers())
	assert.Equal(t, 1, set.FileCount())
}

func TestDecomposeCaseFoldsIdentifiers(t *testing.T) {
	archive := makeZip(t, map[string]string{
		"SAMPLE_A.fastq": "upper",
		"sample_a.md5":   "lower",
	}, []string{"SAMPLE_A.fastq", "sample_a.md5"})

	set, err := Decompose(archive)
	require.NoError(t, err)

	// one group, identifier keeps the first-seen case
	assert.Equal(t, []string{"SAMPLE_A"}, set.Identifiers())
	group, ok := set.Get("sAmPlE_a")
	require.True(t, ok)
	assert.Len(t, group.Files, 2)
}

func TestDecomposeDotfile(t *testing.T) {
	archive := makeZip(t, map[string]string{".manifest": "m"}, []string{".manifest"})

	set, err := Decompose(archive)
	require.NoError(t, err)
	assert.Equal(t, []string{".manifest"}, set.Identifiers())
}

func TestDecomposeRejectsGarbage(t *testing.T) {
	_, err := Decompose([]byte("not a zip archive"))
	require.Error(t, err)
	assert.True(t, errors.IsArchive(err))
}

func TestDecomposeDeterministic(t *testing.T) {
	archive := makeZip(t, map[string]string{
		"c.fastq": "3",
		"a.fastq": "1",
		"b.fastq": "2",
	}, []string{"c.fastq", "a.fastq", "b.fastq"})

	first, err := Decompose(archive)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Decompose(archive)
		require.NoError(t, err)
		assert.Equal(t, first.Identifiers(), again.Identifiers())
	}
	assert.Equal(t, []string{"c", "a", "b"}, first.Identifiers())
}

func TestGroupSetMerge(t *testing.T) {
	base, err := Decompose(makeZip(t, map[string]string{
		"Sample_A.fastq": "old-a",
		"Sample_B.fastq": "b",
	}, []string{"Sample_A.fastq", "Sample_B.fastq"}))
	require.NoError(t, err)

	later, err := Decompose(makeZip(t, map[string]string{
		"sample_a.fastq": "new-a",
		"Sample_C.fastq": "c",
	}, []string{"sample_a.fastq", "Sample_C.fastq"}))
	require.NoError(t, err)

	base.Merge(later)

	// colliding identifier keeps its slot but takes the later content;
	// new identifiers append after the existing order
	assert.Equal(t, []string{"Sample_A", "Sample_B", "Sample_C"}, base.Identifiers())
	group, ok := base.Get("Sample_A")
	require.True(t, ok)
	require.Len(t, group.Files, 1)
	assert.Equal(t, []byte("new-a"), group.Files[0].Data)
}
