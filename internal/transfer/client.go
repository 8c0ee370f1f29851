// Package transfer wraps the two backend contracts used by the portfolio front end:
// document submission and artifact download URLs.
package transfer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

const (
	uploadPath      = "/api/upload"
	downloadPath    = "/api/download/"
	pdfDownloadPath = "/api/download/pdf/"

	// formField is the multipart field name the backend reads the document from.
	formField = "file"
)

// File is a single document handed to the backend.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// RawSubmission is the untouched JSON body of a successful upload.
// Its shape is controlled by the backend and interpreted by the profile package.
type RawSubmission []byte

// Options configures the client.
type Options struct {
	// Timeout bounds a whole submission. Zero means no timeout; the caller's context still applies.
	Timeout time.Duration
	// HTTPClient overrides the underlying client, mostly for tests.
	HTTPClient *http.Client
}

// Client issues requests against a fixed backend base address.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given base address, e.g. "http://localhost:8080".
func New(baseURL string, opts *Options) (*Client, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid backend base URL %q", baseURL)
	}
	if opts == nil {
		opts = &Options{}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// BaseURL returns the configured backend address without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Submit sends the document as a multipart body with a single "file" field.
// There are no retries: a failed submission is reported to the caller as-is.
func (c *Client) Submit(ctx context.Context, file File) (RawSubmission, error) {
	endpoint := c.baseURL + uploadPath

	body, contentType, err := encodeFile(file)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Message: "failed to encode multipart body", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: endpoint, Message: "failed to read response body", Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{URL: endpoint, Status: resp.StatusCode, Body: string(respBody)}
	}

	log.Printf("[transfer] uploaded %q (%d bytes response) in %v", file.Name, len(respBody), time.Since(start))
	return RawSubmission(respBody), nil
}

// DownloadURL returns the ZIP artifact address for an upload.
func (c *Client) DownloadURL(fileID string) (string, error) {
	return c.artifactURL(downloadPath, fileID)
}

// PDFDownloadURL returns the PDF artifact address for an upload.
func (c *Client) PDFDownloadURL(fileID string) (string, error) {
	return c.artifactURL(pdfDownloadPath, fileID)
}

// artifactURL appends the identifier as a single path segment. It is opaque, so
// characters such as "/", "?" or "#" are escaped rather than interpreted.
func (c *Client) artifactURL(prefix, fileID string) (string, error) {
	if fileID == "" {
		return "", ErrEmptyFileID
	}
	return c.baseURL + prefix + url.PathEscape(fileID), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func encodeFile(file File) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`, formField, quoteEscaper.Replace(file.Name)))
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if file.Body != nil {
		if _, err := io.Copy(part, file.Body); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return &buf, mw.FormDataContentType(), nil
}
