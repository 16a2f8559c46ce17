package lambdaapi

import (
	"errors"

	"github.com/tidwall/gjson"
)

// errInvalidEvent is reported when the inbound payload is not JSON at all.
var errInvalidEvent = errors.New("event is not valid JSON")

// eventView provides cheap field access over a raw event so format
// fingerprints can be checked without a full decode.
type eventView struct {
	raw []byte
}

func inspect(raw []byte) (eventView, error) {
	if !gjson.ValidBytes(raw) {
		return eventView{}, errInvalidEvent
	}
	return eventView{raw: raw}, nil
}

// has reports whether the path exists in the event.
func (v eventView) has(path string) bool {
	return gjson.GetBytes(v.raw, path).Exists()
}

// str returns the string value at path, or false when absent or not a
// string.
func (v eventView) str(path string) (string, bool) {
	r := gjson.GetBytes(v.raw, path)
	if !r.Exists() || r.Type != gjson.String {
		return "", false
	}
	return r.String(), true
}
