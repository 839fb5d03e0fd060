// Package lims is a client for a Clarity-style LIMS REST API. It covers
// the read operations the attach pipeline needs (steps, artifacts,
// samples, projects, files) and the three-step file upload dance
// (storage location, file record, content POST) plus the publish toggle.
package lims

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/clarigo/clarigo/errors"
	"github.com/clarigo/clarigo/internal/httpclient"
	"github.com/clarigo/clarigo/logger"
)

// Config holds LIMS client configuration
type Config struct {
	BaseURI       string
	Username      string
	Password      string
	Timeout       time.Duration
	RatePerSecond float64
	RateBurst     int
	MaxRetries    int
}

// Client issues authenticated requests against the LIMS API
type Client struct {
	baseURI    string
	username   string
	password   string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
}

// NewClient creates a LIMS API client with defaulting
func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}
	if cfg.RatePerSecond == 0 {
		cfg.RatePerSecond = 5
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = 10
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	guarded := httpclient.New(cfg.Timeout, httpclient.Options{})

	return &Client{
		baseURI:    strings.TrimRight(cfg.BaseURI, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: guarded.Client,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst),
		maxRetries: cfg.MaxRetries,
	}
}

// BaseURI returns the configured server root without a trailing slash
func (c *Client) BaseURI() string {
	return c.baseURI
}

// SetHTTPClient allows overriding the HTTP client for testing
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// apiURI builds {base}/api/v2/{path} with query parameters
func (c *Client) apiURI(path string, query url.Values) string {
	uri := c.baseURI + "/api/v2/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}
	return uri
}

// do issues one authenticated request with rate limiting and retries for
// transient network failures. The caller owns interpretation of the body.
func (c *Client) do(ctx context.Context, method, uri, contentType string, body []byte) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * time.Second
			logger.Debugw("retrying LIMS request", "uri", uri, "attempt", attempt+1, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		data, err := c.doOnce(ctx, method, uri, contentType, body)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, err
		}
	}

	return nil, errors.Wrapf(lastErr, "%s %s failed after %d attempts", method, uri, c.maxRetries)
}

func (c *Client) doOnce(ctx context.Context, method, uri, contentType string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, uri, reader)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/xml")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, uri)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading response from %s", uri)
	}

	if err := statusError(resp.StatusCode, uri, data); err != nil {
		return nil, err
	}
	return data, nil
}

// statusError maps HTTP status codes onto the pipeline error taxonomy
func statusError(status int, uri string, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	msg := parseException(body)
	if msg == "" {
		msg = snippet(body)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return errors.Wrapf(errors.ErrUnauthorized, "%s returned %d: %s", uri, status, msg)
	case status == http.StatusNotFound:
		return errors.Wrapf(errors.ErrNotFound, "%s returned 404: %s", uri, msg)
	case status >= 500:
		return &transientError{errors.Newf("%s returned %d: %s", uri, status, msg)}
	default:
		return errors.Newf("%s returned %d: %s", uri, status, msg)
	}
}

// transientError marks a server-side failure worth retrying
type transientError struct{ error }

func (t *transientError) Unwrap() error { return t.error }

// isRetryableError checks if an error is worth retrying
func isRetryableError(err error) bool {
	var transient *transientError
	if errors.As(err, &transient) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		var errno syscall.Errno
		if errors.As(opErr.Err, &errno) {
			switch errno {
			case syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ETIMEDOUT:
				return true
			}
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, probe := range []string{
		"connection reset by peer",
		"connection refused",
		"i/o timeout",
		"temporary failure",
		"network is unreachable",
	} {
		if strings.Contains(errStr, probe) {
			return true
		}
	}

	return false
}

// snippet trims a response body for error messages
func snippet(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// StepDetails fetches the ordered input-output mappings of a step
func (c *Client) StepDetails(ctx context.Context, stepURI string) (*StepDetails, error) {
	data, err := c.do(ctx, http.MethodGet, strings.TrimRight(stepURI, "/")+"/details", "", nil)
	if err != nil {
		return nil, err
	}
	return ParseStepDetails(data)
}

// Artifact fetches one artifact record by URI
func (c *Client) Artifact(ctx context.Context, artifactURI string) (*Artifact, error) {
	data, err := c.do(ctx, http.MethodGet, artifactURI, "", nil)
	if err != nil {
		return nil, err
	}
	return ParseArtifact(data)
}

// Sample fetches one sample record by URI
func (c *Client) Sample(ctx context.Context, sampleURI string) (*Sample, error) {
	data, err := c.do(ctx, http.MethodGet, sampleURI, "", nil)
	if err != nil {
		return nil, err
	}
	return ParseSample(data)
}

// Project fetches one project record by URI
func (c *Client) Project(ctx context.Context, projectURI string) (*Project, error) {
	data, err := c.do(ctx, http.MethodGet, projectURI, "", nil)
	if err != nil {
		return nil, err
	}
	return ParseProject(data)
}

// Researcher fetches one researcher record by URI
func (c *Client) Researcher(ctx context.Context, researcherURI string) (*Researcher, error) {
	data, err := c.do(ctx, http.MethodGet, researcherURI, "", nil)
	if err != nil {
		return nil, err
	}
	return ParseResearcher(data)
}

// FilesForArtifact queries the file records attached to an artifact and
// fetches the full record for each reference.
func (c *Client) FilesForArtifact(ctx context.Context, artifactLIMSID string) ([]*FileRecord, error) {
	query := url.Values{"fileartifactlimsid": []string{artifactLIMSID}}
	data, err := c.do(ctx, http.MethodGet, c.apiURI("files", query), "", nil)
	if err != nil {
		return nil, err
	}

	refs, err := ParseFileList(data)
	if err != nil {
		return nil, err
	}

	records := make([]*FileRecord, 0, len(refs))
	for _, ref := range refs {
		rec, err := c.FileRecord(ctx, ref.URI)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// FileRecord fetches one file metadata record by URI
func (c *Client) FileRecord(ctx context.Context, fileURI string) (*FileRecord, error) {
	data, err := c.do(ctx, http.MethodGet, fileURI, "", nil)
	if err != nil {
		return nil, err
	}
	return ParseFileRecord(data)
}

// Download retrieves the raw content of a stored file
func (c *Client) Download(ctx context.Context, fileURI string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, strings.TrimRight(fileURI, "/")+"/download", "", nil)
}

// Upload attaches a new file to the record at attachToURI and uploads its
// content. Three calls: create a storage location, create the file record
// from the storage response, POST the content as multipart form data.
// Returns the created file record.
func (c *Client) Upload(ctx context.Context, attachToURI, filename string, content []byte) (*FileRecord, error) {
	storagePayload := fmt.Sprintf(`<file:file xmlns:file="http://genologics.com/ri/file">
    <attached-to>%s</attached-to>
    <original-location>%s</original-location>
</file:file>`, xmlEscape(attachToURI), xmlEscape(filename))

	storageResp, err := c.do(ctx, http.MethodPost, c.apiURI("glsstorage", nil), "application/xml", []byte(storagePayload))
	if err != nil {
		return nil, errors.Wrap(err, "creating storage location")
	}
	if msg := parseException(storageResp); msg != "" {
		return nil, errors.Wrapf(errors.ErrUpload, "storage location rejected: %s", msg)
	}

	// The files endpoint takes the storage response verbatim
	fileResp, err := c.do(ctx, http.MethodPost, c.apiURI("files", nil), "application/xml", storageResp)
	if err != nil {
		return nil, errors.Wrap(err, "creating file record")
	}
	if msg := parseException(fileResp); msg != "" {
		return nil, errors.Wrapf(errors.ErrUpload, "file record rejected: %s", msg)
	}

	record, err := ParseFileRecord(fileResp)
	if err != nil {
		return nil, err
	}

	if err := c.uploadContent(ctx, record.URI, filename, content); err != nil {
		return nil, err
	}

	logger.Debugw("uploaded file", "limsid", record.LIMSID, "filename", filename, "bytes", len(content))
	return record, nil
}

// uploadContent POSTs file bytes to {file}/upload as multipart form data
func (c *Client) uploadContent(ctx context.Context, fileURI, filename string, content []byte) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return errors.Wrap(err, "building multipart body")
	}
	if _, err := part.Write(content); err != nil {
		return errors.Wrap(err, "writing multipart body")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "closing multipart body")
	}

	uploadURI := strings.TrimRight(fileURI, "/") + "/upload"
	if _, err := c.do(ctx, http.MethodPost, uploadURI, writer.FormDataContentType(), buf.Bytes()); err != nil {
		return errors.Wrap(err, "uploading file content")
	}
	return nil
}

// Publish flips the is-published flag on a file record to true. The
// record's XML is edited textually so every other field and attribute
// survives the round trip untouched.
func (c *Client) Publish(ctx context.Context, fileURI string) error {
	data, err := c.do(ctx, http.MethodGet, fileURI, "", nil)
	if err != nil {
		return errors.Wrap(err, "fetching file record for publish")
	}

	updated, err := setPublishedFlag(data)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, http.MethodPut, fileURI, "application/xml", updated)
	if err != nil {
		return errors.Wrap(err, "updating file record")
	}
	if msg := parseException(resp); msg != "" {
		return errors.Wrapf(errors.ErrUpload, "publish rejected: %s", msg)
	}

	record, err := ParseFileRecord(resp)
	if err != nil {
		return err
	}
	if !record.IsPublished {
		return errors.Wrapf(errors.ErrUpload, "server did not persist is-published on %s", fileURI)
	}
	return nil
}

// xmlEscape escapes a value for embedding in an XML payload
func xmlEscape(s string) string {
	var buf bytes.Buffer
	// EscapeText cannot fail writing to a bytes.Buffer
	_ = xmlEscapeTo(&buf, s)
	return buf.String()
}
