package feed

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Record is a fully extracted and accepted result. Extractors never return a partial one.
type Record struct {
	Name       string
	Rate       string
	Locator    string
	ObservedAt time.Time
	Source     string
}

// Window is the accepted age range, in whole seconds, inclusive on both ends.
type Window struct {
	MinAge int64
	MaxAge int64
}

// DefaultWindow accepts records between 0 and 3 seconds old.
var DefaultWindow = Window{MinAge: 0, MaxAge: 3}

// Contains reports whether age falls inside the window.
func (w Window) Contains(age int64) bool {
	return age >= w.MinAge && age <= w.MaxAge
}

// Filters are the per-request acceptance rules. A nil Window means DefaultWindow.
type Filters struct {
	Window    *Window
	Threshold decimal.NullDecimal
	Keyword   string
}

// FreshnessWindow returns the window to apply.
func (f Filters) FreshnessWindow() Window {
	if f.Window == nil {
		return DefaultWindow
	}
	return *f.Window
}

// Response is the single JSON body emitted per lookup.
type Response struct {
	Record     *Record
	LocatorKey string
	Err        string
}

// RecordResponse renders a record under the given locator key.
func RecordResponse(rec Record, locatorKey string) Response {
	if locatorKey == "" {
		locatorKey = LocatorJobID
	}
	return Response{Record: &rec, LocatorKey: locatorKey}
}

// ErrorResponse renders a failure.
func ErrorResponse(err error) Response {
	return Response{Err: err.Error()}
}

// MarshalJSON keeps the key order brainrot_name, money_per_sec, locator.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Record == nil {
		return marshalPlain(struct {
			Error string `json:"error"`
		}{Error: r.Err})
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	pairs := [][2]string{
		{"brainrot_name", r.Record.Name},
		{"money_per_sec", r.Record.Rate},
		{r.LocatorKey, r.Record.Locator},
	}
	for i, kv := range pairs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalPlain(kv[0])
		if err != nil {
			return nil, err
		}
		val, err := marshalPlain(kv[1])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalPlain encodes v without HTML escaping so join scripts and "<=" stay readable.
func marshalPlain(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
