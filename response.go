package lambdaapi

import (
	"encoding/json"
	"net/http"
)

// Response is the canonical outbound response, mutated incrementally by
// pipeline units. A terminal send commits it: further sends return
// ErrResponseCommitted and status/header writes become no-ops.
type Response struct {
	status     int
	header     http.Header
	body       []byte
	isBase64   bool
	terminated bool

	mime MIMELookup
}

func newResponse() *Response {
	return &Response{header: make(http.Header)}
}

// Status sets the reply status code. If no status is ever set, the
// response normalizer substitutes 200.
func (r *Response) Status(code int) *Response {
	if !r.terminated {
		r.status = code
	}
	return r
}

// Header sets a header, replacing any existing values for the key.
func (r *Response) Header(key, value string) *Response {
	if !r.terminated {
		r.header.Set(key, value)
	}
	return r
}

// AddHeader appends a value to a header, keeping it multi-valued.
func (r *Response) AddHeader(key, value string) *Response {
	if !r.terminated {
		r.header.Add(key, value)
	}
	return r
}

// ContentType sets the Content-Type header.
func (r *Response) ContentType(ct string) *Response {
	return r.Header("Content-Type", ct)
}

// Type sets the Content-Type from a file extension ("pdf", ".html") or a
// bare type name, resolved through the configured MIME lookup.
func (r *Response) Type(extOrType string) *Response {
	if r.mime != nil {
		return r.Header("Content-Type", r.mime.Lookup(extOrType))
	}
	return r.ContentType(extOrType)
}

// Send commits the raw body as the terminal reply.
func (r *Response) Send(body []byte) error {
	return r.commit(body, false)
}

// SendString commits a text body.
func (r *Response) SendString(body string) error {
	return r.commit([]byte(body), false)
}

// JSON encodes v and commits it with an application/json content type.
func (r *Response) JSON(v any) error {
	if r.terminated {
		return ErrResponseCommitted
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if r.header.Get("Content-Type") == "" {
		r.header.Set("Content-Type", "application/json")
	}
	return r.commit(b, false)
}

// HTML commits an HTML body.
func (r *Response) HTML(body string) error {
	if r.terminated {
		return ErrResponseCommitted
	}
	if r.header.Get("Content-Type") == "" {
		r.header.Set("Content-Type", "text/html")
	}
	return r.commit([]byte(body), false)
}

// Binary commits a binary body. The response normalizer re-encodes it
// to the transport encoding expected by the source format.
func (r *Response) Binary(body []byte, contentType string) error {
	if r.terminated {
		return ErrResponseCommitted
	}
	if contentType != "" {
		r.header.Set("Content-Type", contentType)
	}
	return r.commit(body, true)
}

// Error commits a JSON error body with the given status.
func (r *Response) Error(status int, msg string) error {
	if r.terminated {
		return ErrResponseCommitted
	}
	r.status = status
	if r.header.Get("Content-Type") == "" {
		r.header.Set("Content-Type", "application/json")
	}
	b, err := json.Marshal(map[string]string{"error": msg})
	if err != nil {
		return err
	}
	return r.commit(b, false)
}

// Redirect commits an empty reply with a Location header. Status must
// be a 3xx code; 302 is the conventional choice.
func (r *Response) Redirect(status int, location string) error {
	if r.terminated {
		return ErrResponseCommitted
	}
	r.status = status
	r.header.Set("Location", location)
	return r.commit(nil, false)
}

// Committed reports whether a terminal send has occurred.
func (r *Response) Committed() bool { return r.terminated }

// StatusCode returns the status set so far; zero means unset.
func (r *Response) StatusCode() int { return r.status }

// Body returns the committed body.
func (r *Response) Body() []byte { return r.body }

// Headers returns the response header map.
func (r *Response) Headers() http.Header { return r.header }

// IsBase64 reports whether the body is flagged binary.
func (r *Response) IsBase64() bool { return r.isBase64 }

func (r *Response) commit(body []byte, base64Flag bool) error {
	if r.terminated {
		return ErrResponseCommitted
	}
	r.body = body
	r.isBase64 = base64Flag
	r.terminated = true
	return nil
}
