package feed

import (
	"github.com/tidwall/gjson"
)

// Payload is a decoded JSON document whose top level is an array or an object.
type Payload struct {
	root gjson.Result
}

// ParsePayload validates body and wraps it. Anything other than a JSON array or object
// is rejected as malformed.
func ParsePayload(body []byte) (Payload, error) {
	if !gjson.ValidBytes(body) {
		return Payload{}, Reject(ReasonMalformed, "response is not valid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() && !root.IsObject() {
		return Payload{}, Reject(ReasonMalformed, "top-level JSON value is %s, want array or object", root.Type)
	}
	return Payload{root: root}, nil
}

// Root exposes the parsed document.
func (p Payload) Root() gjson.Result {
	return p.root
}

// First returns the first element of an array payload.
func (p Payload) First() (gjson.Result, error) {
	if !p.root.IsArray() {
		return gjson.Result{}, Reject(ReasonMalformed, "expected a JSON array of items")
	}
	items := p.root.Array()
	if len(items) == 0 {
		return gjson.Result{}, Reject(ReasonEmptyFeed, "empty response")
	}
	return items[0], nil
}
