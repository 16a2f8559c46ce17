package lambdaapi

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Format identifies the gateway wire format an event arrived in.
type Format int

const (
	// FormatUnknown means the event shape was not recognized.
	FormatUnknown Format = iota
	// FormatAPIGatewayV1 is the REST API proxy integration payload.
	FormatAPIGatewayV1
	// FormatAPIGatewayV2 is the HTTP API payload, version 2.0.
	FormatAPIGatewayV2
	// FormatALB is the Application Load Balancer target group payload.
	FormatALB
)

func (f Format) String() string {
	switch f {
	case FormatAPIGatewayV1:
		return "apigateway-v1"
	case FormatAPIGatewayV2:
		return "apigateway-v2"
	case FormatALB:
		return "alb"
	default:
		return "unknown"
	}
}

type gatewayEventV1 struct {
	HTTPMethod                      string              `json:"httpMethod"`
	Path                            string              `json:"path"`
	Headers                         map[string]string   `json:"headers"`
	MultiValueHeaders               map[string][]string `json:"multiValueHeaders"`
	QueryStringParameters           map[string]string   `json:"queryStringParameters"`
	MultiValueQueryStringParameters map[string][]string `json:"multiValueQueryStringParameters"`
	Body                            string              `json:"body"`
	IsBase64Encoded                 bool                `json:"isBase64Encoded"`
	RequestContext                  struct {
		RequestID string `json:"requestId"`
		Stage     string `json:"stage"`
		Identity  struct {
			SourceIP string `json:"sourceIp"`
		} `json:"identity"`
	} `json:"requestContext"`
}

type gatewayEventV2 struct {
	Version         string            `json:"version"`
	RawPath         string            `json:"rawPath"`
	RawQueryString  string            `json:"rawQueryString"`
	Headers         map[string]string `json:"headers"`
	Cookies         []string          `json:"cookies"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
	RequestContext  struct {
		RequestID string `json:"requestId"`
		Stage     string `json:"stage"`
		HTTP      struct {
			Method   string `json:"method"`
			Path     string `json:"path"`
			SourceIP string `json:"sourceIp"`
		} `json:"http"`
	} `json:"requestContext"`
}

type albEvent struct {
	HTTPMethod                      string              `json:"httpMethod"`
	Path                            string              `json:"path"`
	Headers                         map[string]string   `json:"headers"`
	MultiValueHeaders               map[string][]string `json:"multiValueHeaders"`
	QueryStringParameters           map[string]string   `json:"queryStringParameters"`
	MultiValueQueryStringParameters map[string][]string `json:"multiValueQueryStringParameters"`
	Body                            string              `json:"body"`
	IsBase64Encoded                 bool                `json:"isBase64Encoded"`
}

// normalize converts a raw event in the given (or detected) format into
// the canonical request. Normalization failures short-circuit before the
// pipeline: no partial request is ever handed to user code.
func normalize(raw []byte, hint Format) (*Request, error) {
	format := hint
	if format == FormatUnknown {
		var err error
		if format, err = detectFormat(raw); err != nil {
			return nil, err
		}
	}

	switch format {
	case FormatAPIGatewayV1:
		return normalizeV1(raw)
	case FormatAPIGatewayV2:
		return normalizeV2(raw)
	case FormatALB:
		return normalizeALB(raw)
	default:
		return nil, &FormatError{Reason: "unrecognized event shape"}
	}
}

func normalizeV1(raw []byte) (*Request, error) {
	var ev gatewayEventV1
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, &FormatError{Format: FormatAPIGatewayV1, Reason: "malformed event", Err: err}
	}
	if ev.HTTPMethod == "" {
		return nil, &FormatError{Format: FormatAPIGatewayV1, Reason: "missing httpMethod"}
	}

	req := &Request{
		ID:       ev.RequestContext.RequestID,
		Method:   strings.ToUpper(ev.HTTPMethod),
		Path:     ev.Path,
		Format:   FormatAPIGatewayV1,
		Stage:    ev.RequestContext.Stage,
		SourceIP: ev.RequestContext.Identity.SourceIP,
	}
	req.header, req.RawHeaders = mergeHeaders(ev.Headers, ev.MultiValueHeaders)
	req.Query = mergeQuery(ev.QueryStringParameters, ev.MultiValueQueryStringParameters)

	if err := decodeBody(req, ev.Body, ev.IsBase64Encoded, FormatAPIGatewayV1); err != nil {
		return nil, err
	}
	finishRequest(req)
	return req, nil
}

func normalizeV2(raw []byte) (*Request, error) {
	var ev gatewayEventV2
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, &FormatError{Format: FormatAPIGatewayV2, Reason: "malformed event", Err: err}
	}
	if ev.RequestContext.HTTP.Method == "" {
		return nil, &FormatError{Format: FormatAPIGatewayV2, Reason: "missing request method"}
	}

	req := &Request{
		ID:       ev.RequestContext.RequestID,
		Method:   strings.ToUpper(ev.RequestContext.HTTP.Method),
		Path:     ev.RawPath,
		Format:   FormatAPIGatewayV2,
		Stage:    ev.RequestContext.Stage,
		SourceIP: ev.RequestContext.HTTP.SourceIP,
	}
	if req.Path == "" {
		req.Path = ev.RequestContext.HTTP.Path
	}
	req.header, req.RawHeaders = mergeHeaders(ev.Headers, nil)
	// The v2 payload strips cookies out of the header block.
	for _, c := range ev.Cookies {
		req.header.Add("Cookie", c)
	}

	req.Query = url.Values{}
	if ev.RawQueryString != "" {
		q, err := url.ParseQuery(ev.RawQueryString)
		if err != nil {
			return nil, &FormatError{Format: FormatAPIGatewayV2, Reason: "malformed query string", Err: err}
		}
		req.Query = q
	}

	if err := decodeBody(req, ev.Body, ev.IsBase64Encoded, FormatAPIGatewayV2); err != nil {
		return nil, err
	}
	finishRequest(req)
	return req, nil
}

func normalizeALB(raw []byte) (*Request, error) {
	var ev albEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, &FormatError{Format: FormatALB, Reason: "malformed event", Err: err}
	}
	if ev.HTTPMethod == "" {
		return nil, &FormatError{Format: FormatALB, Reason: "missing httpMethod"}
	}

	req := &Request{
		Method: strings.ToUpper(ev.HTTPMethod),
		Path:   ev.Path,
		Format: FormatALB,
		// The ALB toggles single vs multi-value headers per target
		// group; the reply must mirror the inbound mode.
		albMultiValue: len(ev.MultiValueHeaders) > 0,
	}
	req.header, req.RawHeaders = mergeHeaders(ev.Headers, ev.MultiValueHeaders)
	req.Query = mergeQuery(ev.QueryStringParameters, ev.MultiValueQueryStringParameters)

	if err := decodeBody(req, ev.Body, ev.IsBase64Encoded, FormatALB); err != nil {
		return nil, err
	}
	finishRequest(req)
	return req, nil
}

// mergeHeaders unifies single and multi-value header blocks into one
// case-insensitive map, preferring the multi-value block when both are
// present. The original wire casing is preserved separately.
func mergeHeaders(single map[string]string, multi map[string][]string) (http.Header, map[string]string) {
	h := make(http.Header, len(single)+len(multi))
	raw := make(map[string]string, len(single)+len(multi))
	if len(multi) > 0 {
		for k, vs := range multi {
			for _, v := range vs {
				h.Add(k, v)
			}
			raw[k] = strings.Join(vs, ", ")
		}
		return h, raw
	}
	for k, v := range single {
		h.Set(k, v)
		raw[k] = v
	}
	return h, raw
}

// mergeQuery unifies single and multi-value query blocks, preferring the
// multi-value block.
func mergeQuery(single map[string]string, multi map[string][]string) url.Values {
	if len(multi) > 0 {
		return url.Values(multi)
	}
	q := make(url.Values, len(single))
	for k, v := range single {
		q.Set(k, v)
	}
	return q
}

// decodeBody decodes transport-encoded bodies eagerly so downstream
// content-type parsing always sees raw bytes.
func decodeBody(req *Request, body string, isBase64 bool, format Format) error {
	req.IsBase64 = isBase64
	if body == "" {
		return nil
	}
	if isBase64 {
		b, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return &FormatError{Format: format, Reason: "invalid base64 body", Err: err}
		}
		req.Body = b
		return nil
	}
	req.Body = []byte(body)
	return nil
}

func finishRequest(req *Request) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.Path == "" {
		req.Path = "/"
	}
}

type replyV1 struct {
	StatusCode        int                 `json:"statusCode"`
	Headers           map[string]string   `json:"headers,omitempty"`
	MultiValueHeaders map[string][]string `json:"multiValueHeaders,omitempty"`
	Body              string              `json:"body"`
	IsBase64Encoded   bool                `json:"isBase64Encoded"`
}

type replyV2 struct {
	StatusCode      int               `json:"statusCode"`
	Headers         map[string]string `json:"headers,omitempty"`
	Cookies         []string          `json:"cookies,omitempty"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

type replyALB struct {
	StatusCode        int                 `json:"statusCode"`
	StatusDescription string              `json:"statusDescription"`
	Headers           map[string]string   `json:"headers,omitempty"`
	MultiValueHeaders map[string][]string `json:"multiValueHeaders,omitempty"`
	Body              string              `json:"body"`
	IsBase64Encoded   bool                `json:"isBase64Encoded"`
}

// denormalize re-serializes the canonical response into the wire shape
// the source format expects. Binary bodies are re-encoded to base64; a
// response with no explicit status becomes 200.
func denormalize(res *Response, format Format, albMulti bool, status StatusDescriber) ([]byte, error) {
	code := res.status
	if code == 0 {
		code = http.StatusOK
	}

	body := string(res.body)
	if res.isBase64 {
		body = base64.StdEncoding.EncodeToString(res.body)
	}

	switch format {
	case FormatAPIGatewayV2:
		headers := make(map[string]string, len(res.header))
		var cookies []string
		for k, vs := range res.header {
			// Set-Cookie is inherently multi-valued; the v2 shape keeps
			// it as a separate array. Everything else comma-joins.
			if http.CanonicalHeaderKey(k) == "Set-Cookie" {
				cookies = append(cookies, vs...)
				continue
			}
			headers[k] = strings.Join(vs, ", ")
		}
		return json.Marshal(replyV2{
			StatusCode:      code,
			Headers:         headers,
			Cookies:         cookies,
			Body:            body,
			IsBase64Encoded: res.isBase64,
		})

	case FormatALB:
		reply := replyALB{
			StatusCode:        code,
			StatusDescription: status.Describe(code),
			Body:              body,
			IsBase64Encoded:   res.isBase64,
		}
		if albMulti {
			reply.MultiValueHeaders = map[string][]string(res.header)
		} else {
			reply.Headers = flattenJoin(res.header)
		}
		return json.Marshal(reply)

	default:
		return json.Marshal(replyV1{
			StatusCode:        code,
			Headers:           flattenLast(res.header),
			MultiValueHeaders: map[string][]string(res.header),
			Body:              body,
			IsBase64Encoded:   res.isBase64,
		})
	}
}

// flattenJoin comma-joins multi-value headers into single strings.
func flattenJoin(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		out[k] = strings.Join(vs, ", ")
	}
	return out
}

// flattenLast keeps the last value per key; the multi-value block
// carries the rest.
func flattenLast(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		if len(vs) > 0 {
			out[k] = vs[len(vs)-1]
		}
	}
	return out
}
