package lambdaapi

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

// Request is the canonical inbound request, built once per dispatch by
// the normalizer. Fields are never mutated after the pipeline starts;
// the parsed body is the only lazily derived field and is memoized on
// first access.
type Request struct {
	// ID is a per-dispatch identifier: the gateway request ID when the
	// event carries one, otherwise a freshly minted UUID.
	ID string

	Method string
	Path   string

	// Params holds the path parameters bound by the route match. The
	// wildcard remainder, when present, is under "*".
	Params map[string]string

	// Query holds query parameters; every key is multi-value capable
	// regardless of the source format's shape.
	Query url.Values

	// Body is the raw request body. Transport-encoded (base64) bodies
	// are decoded eagerly during normalization, so Body is always the
	// raw bytes.
	Body []byte

	// IsBase64 records whether the inbound body arrived base64-encoded.
	IsBase64 bool

	// Format is the wire format the event arrived in.
	Format Format

	// Stage and SourceIP are carried from the gateway context block
	// when present.
	Stage    string
	SourceIP string

	// RawHeaders preserves the original wire casing for pass-through.
	RawHeaders map[string]string

	header        http.Header
	albMultiValue bool

	bodyOnce sync.Once
	bodyVal  any
	bodyErr  error
}

// Header returns the first value for a header name, case-insensitively.
func (r *Request) Header(name string) string {
	return r.header.Get(name)
}

// HeaderValues returns all values for a header name.
func (r *Request) HeaderValues(name string) []string {
	return r.header.Values(name)
}

// Headers returns the canonical header map. Treat it as read-only.
func (r *Request) Headers() http.Header {
	return r.header
}

// ContentType returns the declared media type without parameters, or
// the empty string when absent or unparseable.
func (r *Request) ContentType() string {
	ct := r.header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mt
}

// ParsedBody decodes the body by its declared content type: JSON bodies
// become map[string]any (or []any for arrays), form-encoded bodies
// become url.Values, anything else is returned as a string. The result
// is computed on first access and cached for the rest of the dispatch.
func (r *Request) ParsedBody() (any, error) {
	r.bodyOnce.Do(func() {
		r.bodyVal, r.bodyErr = parseBody(r.ContentType(), r.Body)
	})
	return r.bodyVal, r.bodyErr
}

// BodyJSON exposes the raw body through a gjson result for cheap field
// access without a full decode.
func (r *Request) BodyJSON() gjson.Result {
	return gjson.ParseBytes(r.Body)
}

func parseBody(contentType string, body []byte) (any, error) {
	if len(body) == 0 {
		return nil, nil
	}
	switch {
	case contentType == "application/json" || strings.HasSuffix(contentType, "+json"):
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, &FormatError{Reason: "invalid JSON body", Err: err}
		}
		return v, nil
	case contentType == "application/x-www-form-urlencoded":
		vals, err := url.ParseQuery(string(body))
		if err != nil {
			return nil, &FormatError{Reason: "invalid form body", Err: err}
		}
		return vals, nil
	default:
		return string(body), nil
	}
}

// acceptedEncodings splits the Accept-Encoding header into bare codec
// names, dropping q-values.
func (r *Request) acceptedEncodings() []string {
	raw := r.header.Get("Accept-Encoding")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	encs := make([]string, 0, len(parts))
	for _, p := range parts {
		enc := strings.TrimSpace(p)
		if i := strings.IndexByte(enc, ';'); i >= 0 {
			enc = strings.TrimSpace(enc[:i])
		}
		if enc != "" {
			encs = append(encs, enc)
		}
	}
	return encs
}
