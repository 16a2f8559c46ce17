package lambdaapi

// fingerprint is a cheap structural predicate over a raw event, checked
// before any full decode.
type fingerprint interface {
	match(v eventView) bool
}

// hasFields matches when every path exists.
func hasFields(paths ...string) fingerprint {
	return fieldsPresent{paths: paths}
}

type fieldsPresent struct {
	paths []string
}

func (f fieldsPresent) match(v eventView) bool {
	for _, p := range f.paths {
		if !v.has(p) {
			return false
		}
	}
	return true
}

// fieldEquals matches when the path exists and equals value.
func fieldEquals(path, value string) fingerprint {
	return fieldValue{path: path, value: value}
}

type fieldValue struct {
	path  string
	value string
}

func (f fieldValue) match(v eventView) bool {
	s, ok := v.str(f.path)
	return ok && s == f.value
}

// allOf matches when every fingerprint matches.
func allOf(fps ...fingerprint) fingerprint {
	return conjunction{fps: fps}
}

type conjunction struct {
	fps []fingerprint
}

func (c conjunction) match(v eventView) bool {
	for _, fp := range c.fps {
		if !fp.match(v) {
			return false
		}
	}
	return true
}

// formatChecks are tried in order. The ALB shape also carries httpMethod,
// so its elb marker is checked before the plain v1 shape.
var formatChecks = []struct {
	format Format
	fp     fingerprint
}{
	{FormatAPIGatewayV2, allOf(fieldEquals("version", "2.0"), hasFields("requestContext.http.method", "rawPath"))},
	{FormatALB, hasFields("requestContext.elb", "httpMethod")},
	{FormatAPIGatewayV1, hasFields("httpMethod", "path", "requestContext")},
}

// detectFormat fingerprints the raw event against the known gateway
// shapes.
func detectFormat(raw []byte) (Format, error) {
	v, err := inspect(raw)
	if err != nil {
		return FormatUnknown, &FormatError{Reason: "malformed event", Err: err}
	}
	for _, c := range formatChecks {
		if c.fp.match(v) {
			return c.format, nil
		}
	}
	return FormatUnknown, &FormatError{Reason: "unrecognized event shape"}
}
