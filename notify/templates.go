package notify

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/clarigo/clarigo/attach"
)

var textBody = texttemplate.Must(texttemplate.New("text").Parse(
	`Dear researcher,

Sequencing files for your project {{.ProjectName}} have been attached
and published in the LIMS as {{.Filename}}.

The bundle contains {{len .FileNames}} file(s):
{{range .FileNames}}  - {{.}}
{{end}}
You can download the bundle from the project page.

This message was sent automatically; replies are not monitored.
`))

var htmlBody = htmltemplate.Must(htmltemplate.New("html").Parse(
	`<html>
<body>
<p>Dear researcher,</p>
<p>Sequencing files for your project <b>{{.ProjectName}}</b> have been
attached and published in the LIMS as <code>{{.Filename}}</code>.</p>
<p>The bundle contains {{len .FileNames}} file(s):</p>
<ul>
{{range .FileNames}}<li><code>{{.}}</code></li>
{{end}}</ul>
<p>You can download the bundle from the project page.</p>
<p><i>This message was sent automatically; replies are not monitored.</i></p>
</body>
</html>
`))

func renderText(n attach.Notification) ([]byte, error) {
	var buf bytes.Buffer
	if err := textBody.Execute(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderHTML(n attach.Notification) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlBody.Execute(&buf, n); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
