package upload

import (
	"bytes"
	"io"
	"mime"
	"regexp"

	"github.com/gabriel-vasile/mimetype"

	"github.com/jonathan/resume2portfolio/internal/transfer"
)

// MaxSizeHint is shown next to the picker. The backend enforces the real limit.
const MaxSizeHint = 10 << 20

// AcceptHint is the picker's accept attribute.
const AcceptHint = ".pdf,.png,.jpg,.jpeg"

// acceptedType matches the declared MIME type anywhere, e.g. "application/pdf" or "image/png".
var acceptedType = regexp.MustCompile(`pdf.*|image.*`)

// sniffLen is how much of the body is inspected when the declared type is missing.
const sniffLen = 3072

// Accepts reports whether a MIME type is one the backend can extract from.
func Accepts(contentType string) bool {
	return contentType != "" && acceptedType.MatchString(contentType)
}

// resolveContentType fills in a missing or generic declared type by sniffing the
// first bytes of the body. The returned file still yields the complete body.
func resolveContentType(file transfer.File) (transfer.File, error) {
	if mediaType, _, err := mime.ParseMediaType(file.ContentType); err == nil &&
		mediaType != "" && mediaType != "application/octet-stream" {
		return file, nil
	}
	if file.Body == nil {
		return file, nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file.Body, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return file, err
	}
	head = head[:n]

	file.ContentType = mimetype.Detect(head).String()
	file.Body = io.MultiReader(bytes.NewReader(head), file.Body)
	return file, nil
}
