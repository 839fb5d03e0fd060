package lims

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clarigo/clarigo/errors"
)

const stepDetailsDoc = `<?xml version="1.0" encoding="UTF-8"?>
<stp:details xmlns:stp="http://genologics.com/ri/step" uri="https://lims.example.org/api/v2/steps/24-100/details">
  <input-output-maps>
    <input-output-map>
      <input limsid="ART-1" uri="https://lims.example.org/api/v2/artifacts/ART-1"/>
      <output limsid="92-10" uri="https://lims.example.org/api/v2/artifacts/92-10" type="ResultFile" output-generation-type="PerInput"/>
    </input-output-map>
    <input-output-map>
      <input limsid="ART-1" uri="https://lims.example.org/api/v2/artifacts/ART-1"/>
      <output limsid="92-11" uri="https://lims.example.org/api/v2/artifacts/92-11" type="ResultFile" output-generation-type="PerAllInputs"/>
    </input-output-map>
  </input-output-maps>
</stp:details>`

func TestParseStepDetails(t *testing.T) {
	details, err := ParseStepDetails([]byte(stepDetailsDoc))
	require.NoError(t, err)

	require.Len(t, details.IOMaps, 2)
	assert.Equal(t, "ART-1", details.IOMaps[0].InputLIMSID)
	assert.Equal(t, "PerInput", details.IOMaps[0].GenerationType)
	assert.Equal(t, "92-11", details.IOMaps[1].OutputLIMSID)
	assert.Equal(t, "ResultFile", details.IOMaps[1].OutputType)
	assert.Equal(t, "PerAllInputs", details.IOMaps[1].GenerationType)
}

func TestParseStepDetailsMissingOutput(t *testing.T) {
	doc := `<stp:details xmlns:stp="http://genologics.com/ri/step">
  <input-output-maps>
    <input-output-map>
      <input limsid="ART-1" uri="https://lims.example.org/api/v2/artifacts/ART-1"/>
      <output/>
    </input-output-map>
  </input-output-maps>
</stp:details>`

	_, err := ParseStepDetails([]byte(doc))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrParse))
}

func TestParseArtifact(t *testing.T) {
	doc := `<art:artifact xmlns:art="http://genologics.com/ri/artifact" limsid="ART-1" uri="https://lims.example.org/api/v2/artifacts/ART-1">
  <name>Sample001</name>
  <sample limsid="SAM-1" uri="https://lims.example.org/api/v2/samples/SAM-1"/>
</art:artifact>`

	artifact, err := ParseArtifact([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "ART-1", artifact.LIMSID)
	assert.Equal(t, "Sample001", artifact.Name)
	assert.Equal(t, "https://lims.example.org/api/v2/samples/SAM-1", artifact.SampleURI)
}

func TestParseArtifactWithoutSampleIsLegal(t *testing.T) {
	doc := `<art:artifact xmlns:art="http://genologics.com/ri/artifact" limsid="ART-2" uri="u">
  <name>Control Lane</name>
</art:artifact>`

	artifact, err := ParseArtifact([]byte(doc))
	require.NoError(t, err)
	assert.Empty(t, artifact.SampleURI)
}

func TestParseArtifactMissingName(t *testing.T) {
	doc := `<art:artifact xmlns:art="http://genologics.com/ri/artifact" limsid="ART-1" uri="u"/>`
	_, err := ParseArtifact([]byte(doc))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrParse))
	assert.Contains(t, err.Error(), "name")
}

func TestParseSample(t *testing.T) {
	doc := `<smp:sample xmlns:smp="http://genologics.com/ri/sample" limsid="SAM-1" uri="u">
  <name>Sample001</name>
  <project limsid="PRJ-9" uri="https://lims.example.org/api/v2/projects/PRJ-9"/>
</smp:sample>`

	sample, err := ParseSample([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "SAM-1", sample.LIMSID)
	assert.Equal(t, "PRJ-9", sample.ProjectLIMSID)
}

func TestParseSampleWithoutProject(t *testing.T) {
	doc := `<smp:sample xmlns:smp="http://genologics.com/ri/sample" limsid="SAM-2" uri="u">
  <name>Orphan</name>
</smp:sample>`

	sample, err := ParseSample([]byte(doc))
	require.NoError(t, err)
	assert.Empty(t, sample.ProjectURI)
}

func TestParseProject(t *testing.T) {
	doc := `<prj:project xmlns:prj="http://genologics.com/ri/project" limsid="PRJ-9" uri="u">
  <name>Bacterial Genomes 2026</name>
  <researcher uri="https://lims.example.org/api/v2/researchers/103"/>
</prj:project>`

	project, err := ParseProject([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "Bacterial Genomes 2026", project.Name)
	assert.Equal(t, "https://lims.example.org/api/v2/researchers/103", project.ResearcherURI)
}

func TestParseProjectMissingName(t *testing.T) {
	doc := `<prj:project xmlns:prj="http://genologics.com/ri/project" limsid="PRJ-9" uri="u"/>`
	_, err := ParseProject([]byte(doc))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrParse))
}

func TestParseFileRecord(t *testing.T) {
	doc := `<file:file xmlns:file="http://genologics.com/ri/file" limsid="40-201" uri="https://lims.example.org/api/v2/files/40-201">
  <attached-to>https://lims.example.org/api/v2/projects/PRJ-9</attached-to>
  <original-location>Bacterial_Genomes_sequencing_files.zip</original-location>
  <content-location>sftp://lims.example.org/opt/gls/files/40-201</content-location>
  <is-published>false</is-published>
</file:file>`

	record, err := ParseFileRecord([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "40-201", record.LIMSID)
	assert.False(t, record.IsPublished)
	assert.Equal(t, "Bacterial_Genomes_sequencing_files.zip", record.OriginalLocation)
}

func TestParseFileList(t *testing.T) {
	doc := `<file:files xmlns:file="http://genologics.com/ri/file">
  <file limsid="40-100" uri="https://lims.example.org/api/v2/files/40-100"/>
  <file limsid="40-101" uri="https://lims.example.org/api/v2/files/40-101"/>
</file:files>`

	refs, err := ParseFileList([]byte(doc))
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, "40-100", refs[0].LIMSID)
}

func TestParseFileListEmpty(t *testing.T) {
	doc := `<file:files xmlns:file="http://genologics.com/ri/file"/>`
	refs, err := ParseFileList([]byte(doc))
	require.NoError(t, err)
	assert.Empty(t, refs)
}

func TestParseException(t *testing.T) {
	doc := `<exc:exception xmlns:exc="http://genologics.com/ri/exception">
  <message>Artifact with the LIMS id ART-404 not found</message>
</exc:exception>`

	assert.Equal(t, "Artifact with the LIMS id ART-404 not found", parseException([]byte(doc)))
	assert.Empty(t, parseException([]byte(`<file:file xmlns:file="x" uri="u"/>`)))
}
