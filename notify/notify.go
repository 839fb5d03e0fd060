// Package notify delivers researcher emails for published sequencing
// file bundles. Mail is strictly best-effort: the pipeline records a
// failed send as a warning and never fails a run over it.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"

	"github.com/clarigo/clarigo/attach"
	"github.com/clarigo/clarigo/errors"
	"github.com/clarigo/clarigo/logger"
)

// Mailer sends bundle notifications through a plain SMTP relay. The lab
// relay accepts unauthenticated submissions from the internal network,
// so no SASL support is wired up.
type Mailer struct {
	Host string
	Port int
	From string
	// send is swapped in tests; defaults to smtp.SendMail
	send func(addr, from string, to []string, msg []byte) error
}

// NewMailer creates a mailer for the given relay.
func NewMailer(host string, port int, from string) *Mailer {
	return &Mailer{
		Host: host,
		Port: port,
		From: from,
		send: func(addr, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, nil, from, to, msg)
		},
	}
}

// Notify implements attach.Notifier.
func (m *Mailer) Notify(ctx context.Context, n attach.Notification) error {
	if n.Email == "" {
		return errors.New("notification has no recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := buildMessage(m.From, n)
	if err != nil {
		return errors.Wrap(err, "rendering notification")
	}

	addr := net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
	if err := m.send(addr, m.From, []string{n.Email}, msg); err != nil {
		return errors.Wrapf(err, "sending notification to %s via %s", n.Email, addr)
	}

	logger.Infow("notification sent",
		"project", n.ProjectName,
		"recipient", n.Email,
		"bundle", n.Filename)
	return nil
}

// buildMessage renders the full RFC 5322 message: headers plus a
// multipart/alternative body carrying text and HTML renderings.
func buildMessage(from string, n attach.Notification) ([]byte, error) {
	text, err := renderText(n)
	if err != nil {
		return nil, err
	}
	html, err := renderHTML(n)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	boundary := "clarigo-" + n.ProjectLIMSID

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", n.Email)
	fmt.Fprintf(&buf, "Subject: Sequencing files available for %s\r\n", n.ProjectName)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	buf.Write(text)
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	buf.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	buf.Write(html)
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	return buf.Bytes(), nil
}
