package lambdaapi

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"
	"time"
)

// Compressor selects and applies a content encoding for a reply body.
// Returning an empty contentEncoding means passthrough: the body is
// sent unmodified.
type Compressor interface {
	Compress(body []byte, acceptedEncodings []string) (encoded []byte, contentEncoding string, err error)
}

// GzipCompressor gzips reply bodies when the client accepts gzip.
type GzipCompressor struct {
	// Level is a compress/gzip level; zero means gzip.DefaultCompression.
	Level int
}

// Compress implements Compressor.
func (c GzipCompressor) Compress(body []byte, acceptedEncodings []string) ([]byte, string, error) {
	accepted := false
	for _, enc := range acceptedEncodings {
		if strings.EqualFold(enc, "gzip") {
			accepted = true
			break
		}
	}
	if !accepted {
		return body, "", nil
	}

	level := c.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, "", err
	}
	if _, err := w.Write(body); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), "gzip", nil
}

// MIMELookup resolves a file extension or bare content type to a full
// MIME type.
type MIMELookup interface {
	Lookup(extOrType string) string
}

// DefaultMIME resolves through the platform MIME table with a fixed
// fallback.
func DefaultMIME() MIMELookup {
	return defaultMIME{}
}

type defaultMIME struct{}

func (defaultMIME) Lookup(extOrType string) string {
	if strings.Contains(extOrType, "/") {
		return extOrType
	}
	ext := extOrType
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "application/octet-stream"
}

// StatusDescriber renders a status code with its reason phrase, as some
// reply shapes (ALB statusDescription) require.
type StatusDescriber interface {
	Describe(code int) string
}

// DefaultStatusDescriber uses the standard reason phrases.
func DefaultStatusDescriber() StatusDescriber {
	return stdStatus{}
}

type stdStatus struct{}

func (stdStatus) Describe(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return fmt.Sprintf("%d", code)
	}
	return fmt.Sprintf("%d %s", code, text)
}

// LinkOptions configures a signed link request.
type LinkOptions struct {
	// Expiry bounds the link lifetime; zero means the signer's default.
	Expiry time.Duration

	// Download forces an attachment disposition when supported.
	Download bool
}

// LinkSigner issues a fetchable URL for a stored resource, typically a
// presigned object link. Handlers call it as an ordinary asynchronous
// step; it is not part of the dispatch control flow. Implementations
// should wrap storage failures in FileError so the error chain can
// recognize them.
type LinkSigner interface {
	Sign(ctx context.Context, ref string, opts LinkOptions) (string, error)
}
