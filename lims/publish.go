package lims

import (
	"bytes"
	"encoding/xml"
	"io"
	"regexp"

	"github.com/clarigo/clarigo/errors"
)

var isPublishedRe = regexp.MustCompile(`<is-published>[^<]*</is-published>`)

// setPublishedFlag rewrites a file record document so is-published reads
// true. The edit is textual: an existing element has its value replaced,
// otherwise the element is inserted just before the closing root tag.
// Everything else in the document is preserved byte for byte, which is
// what keeps a PUT of the result from clobbering fields this client does
// not model.
func setPublishedFlag(data []byte) ([]byte, error) {
	if isPublishedRe.Match(data) {
		replaced := isPublishedRe.ReplaceAll(data, []byte("<is-published>true</is-published>"))
		return replaced, nil
	}

	closing := bytes.LastIndex(data, []byte("</"))
	if closing < 0 {
		return nil, errors.NewParseError("file", "closing root element")
	}

	var buf bytes.Buffer
	buf.Grow(len(data) + 40)
	buf.Write(data[:closing])
	buf.WriteString("<is-published>true</is-published>")
	buf.Write(data[closing:])
	return buf.Bytes(), nil
}

// xmlEscapeTo writes s to w with XML entities escaped
func xmlEscapeTo(w io.Writer, s string) error {
	return xml.EscapeText(w, []byte(s))
}
