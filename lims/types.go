package lims

import (
	"encoding/xml"

	"github.com/clarigo/clarigo/errors"
)

// StepDetails holds the ordered input-output artifact mappings of one
// workflow step.
type StepDetails struct {
	URI    string
	IOMaps []IOMap
}

// IOMap is one input-output mapping from a step's details record.
type IOMap struct {
	InputLIMSID    string
	InputURI       string
	OutputLIMSID   string
	OutputURI      string
	OutputType     string // e.g. "ResultFile"
	GenerationType string // "PerInput" or "PerAllInputs"
}

// stepDetailsXML mirrors the wire shape of GET {step}/details.
type stepDetailsXML struct {
	XMLName xml.Name `xml:"details"`
	URI     string   `xml:"uri,attr"`
	IOMaps  []struct {
		Input struct {
			LIMSID string `xml:"limsid,attr"`
			URI    string `xml:"uri,attr"`
		} `xml:"input"`
		Output struct {
			LIMSID         string `xml:"limsid,attr"`
			URI            string `xml:"uri,attr"`
			Type           string `xml:"type,attr"`
			GenerationType string `xml:"output-generation-type,attr"`
		} `xml:"output"`
	} `xml:"input-output-maps>input-output-map"`
}

// ParseStepDetails decodes a step details document. Mappings without both
// an input and an output reference are rejected rather than propagated as
// half-empty records.
func ParseStepDetails(data []byte) (*StepDetails, error) {
	var raw stepDetailsXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding step details")
	}

	details := &StepDetails{URI: raw.URI}
	for _, m := range raw.IOMaps {
		if m.Input.URI == "" || m.Input.LIMSID == "" {
			return nil, errors.NewParseError("step details", "input reference")
		}
		if m.Output.URI == "" || m.Output.LIMSID == "" {
			return nil, errors.NewParseError("step details", "output reference")
		}
		details.IOMaps = append(details.IOMaps, IOMap{
			InputLIMSID:    m.Input.LIMSID,
			InputURI:       m.Input.URI,
			OutputLIMSID:   m.Output.LIMSID,
			OutputURI:      m.Output.URI,
			OutputType:     m.Output.Type,
			GenerationType: m.Output.GenerationType,
		})
	}
	return details, nil
}

// Artifact is a step input or output slot.
type Artifact struct {
	LIMSID    string
	URI       string
	Name      string
	SampleURI string // empty when the artifact carries no sample reference
}

type artifactXML struct {
	XMLName xml.Name `xml:"artifact"`
	LIMSID  string   `xml:"limsid,attr"`
	URI     string   `xml:"uri,attr"`
	Name    string   `xml:"name"`
	Sample  struct {
		URI string `xml:"uri,attr"`
	} `xml:"sample"`
}

// ParseArtifact decodes an artifact record, requiring limsid and name.
// A missing sample reference is legal (control lanes have none) and left
// empty for the resolver to classify.
func ParseArtifact(data []byte) (*Artifact, error) {
	var raw artifactXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding artifact")
	}
	if raw.LIMSID == "" {
		return nil, errors.NewParseError("artifact", "limsid")
	}
	if raw.Name == "" {
		return nil, errors.NewParseError("artifact", "name")
	}
	return &Artifact{
		LIMSID:    raw.LIMSID,
		URI:       raw.URI,
		Name:      raw.Name,
		SampleURI: raw.Sample.URI,
	}, nil
}

// Sample links an artifact to its owning project.
type Sample struct {
	LIMSID        string
	URI           string
	Name          string
	ProjectURI    string // empty when the sample has no project
	ProjectLIMSID string
}

type sampleXML struct {
	XMLName xml.Name `xml:"sample"`
	LIMSID  string   `xml:"limsid,attr"`
	URI     string   `xml:"uri,attr"`
	Name    string   `xml:"name"`
	Project struct {
		URI    string `xml:"uri,attr"`
		LIMSID string `xml:"limsid,attr"`
	} `xml:"project"`
}

// ParseSample decodes a sample record, requiring limsid.
func ParseSample(data []byte) (*Sample, error) {
	var raw sampleXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding sample")
	}
	if raw.LIMSID == "" {
		return nil, errors.NewParseError("sample", "limsid")
	}
	return &Sample{
		LIMSID:        raw.LIMSID,
		URI:           raw.URI,
		Name:          raw.Name,
		ProjectURI:    raw.Project.URI,
		ProjectLIMSID: raw.Project.LIMSID,
	}, nil
}

// Project is the aggregation owner for matched files.
type Project struct {
	LIMSID        string
	URI           string
	Name          string
	ResearcherURI string
}

type projectXML struct {
	XMLName    xml.Name `xml:"project"`
	LIMSID     string   `xml:"limsid,attr"`
	URI        string   `xml:"uri,attr"`
	Name       string   `xml:"name"`
	Researcher struct {
		URI string `xml:"uri,attr"`
	} `xml:"researcher"`
}

// ParseProject decodes a project record, requiring limsid and name.
func ParseProject(data []byte) (*Project, error) {
	var raw projectXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding project")
	}
	if raw.LIMSID == "" {
		return nil, errors.NewParseError("project", "limsid")
	}
	if raw.Name == "" {
		return nil, errors.NewParseError("project", "name")
	}
	return &Project{
		LIMSID:        raw.LIMSID,
		URI:           raw.URI,
		Name:          raw.Name,
		ResearcherURI: raw.Researcher.URI,
	}, nil
}

// Researcher carries the contact address for notifications.
type Researcher struct {
	URI   string
	Email string
}

type researcherXML struct {
	XMLName xml.Name `xml:"researcher"`
	URI     string   `xml:"uri,attr"`
	Email   string   `xml:"email"`
}

// ParseResearcher decodes a researcher record. Email may be empty; the
// notifier treats that as "nobody to notify".
func ParseResearcher(data []byte) (*Researcher, error) {
	var raw researcherXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding researcher")
	}
	return &Researcher{URI: raw.URI, Email: raw.Email}, nil
}

// FileRecord is the metadata record of a file stored in the LIMS.
type FileRecord struct {
	LIMSID           string
	URI              string
	AttachedTo       string
	OriginalLocation string
	ContentLocation  string
	IsPublished      bool
}

type fileRecordXML struct {
	XMLName          xml.Name `xml:"file"`
	LIMSID           string   `xml:"limsid,attr"`
	URI              string   `xml:"uri,attr"`
	AttachedTo       string   `xml:"attached-to"`
	OriginalLocation string   `xml:"original-location"`
	ContentLocation  string   `xml:"content-location"`
	IsPublished      bool     `xml:"is-published"`
}

// ParseFileRecord decodes a file record, requiring a URI so later upload
// and publish calls have an address to work with.
func ParseFileRecord(data []byte) (*FileRecord, error) {
	var raw fileRecordXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding file record")
	}
	if raw.URI == "" {
		return nil, errors.NewParseError("file", "uri")
	}
	return &FileRecord{
		LIMSID:           raw.LIMSID,
		URI:              raw.URI,
		AttachedTo:       raw.AttachedTo,
		OriginalLocation: raw.OriginalLocation,
		ContentLocation:  raw.ContentLocation,
		IsPublished:      raw.IsPublished,
	}, nil
}

// fileListXML mirrors the wire shape of the files query endpoint, which
// returns references only.
type fileListXML struct {
	XMLName xml.Name `xml:"files"`
	Files   []struct {
		LIMSID string `xml:"limsid,attr"`
		URI    string `xml:"uri,attr"`
	} `xml:"file"`
}

// FileRef is a (limsid, uri) pointer from a files query.
type FileRef struct {
	LIMSID string
	URI    string
}

// ParseFileList decodes a files query result into refs.
func ParseFileList(data []byte) ([]FileRef, error) {
	var raw fileListXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decoding file list")
	}
	refs := make([]FileRef, 0, len(raw.Files))
	for _, f := range raw.Files {
		if f.URI == "" {
			return nil, errors.NewParseError("file list entry", "uri")
		}
		refs = append(refs, FileRef{LIMSID: f.LIMSID, URI: f.URI})
	}
	return refs, nil
}

// exceptionXML is the error document the LIMS returns in place of a
// regular record.
type exceptionXML struct {
	XMLName xml.Name `xml:"exception"`
	Message string   `xml:"message"`
}

// parseException returns the embedded message if data is an exception
// document, or "" otherwise.
func parseException(data []byte) string {
	var raw exceptionXML
	if err := xml.Unmarshal(data, &raw); err != nil {
		return ""
	}
	return raw.Message
}
