package feed

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Reason classifies why a source did not yield a record.
type Reason string

const (
	ReasonTransport        Reason = "TransportError"
	ReasonRateLimited      Reason = "RateLimited"
	ReasonUpstream         Reason = "UpstreamError"
	ReasonHTTPStatus       Reason = "HttpError"
	ReasonMalformed        Reason = "MalformedResponse"
	ReasonEmptyFeed        Reason = "EmptyFeed"
	ReasonMissingTimestamp Reason = "MissingTimestamp"
	ReasonStaleOrFuture    Reason = "StaleOrFuture"
	ReasonNoEmbed          Reason = "NoEmbed"
	ReasonNoFields         Reason = "NoFields"
	ReasonKeywordMismatch  Reason = "KeywordMismatch"
	ReasonBelowThreshold   Reason = "BelowThreshold"
	ReasonInvalidNumeric   Reason = "InvalidNumeric"
	ReasonIncompleteRecord Reason = "IncompleteRecord"
)

// Rejection is the diagnostic returned when a source yields no record.
type Rejection struct {
	Reason     Reason
	Source     string
	Detail     string
	StatusCode int
	AgeSeconds int64
	Value      decimal.Decimal
	Err        error
}

// Reject builds a rejection with a formatted detail message.
func Reject(reason Reason, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Detail: fmt.Sprintf(format, args...)}
}

func (r *Rejection) Error() string {
	var b strings.Builder
	b.WriteString("no active brainrots")
	if r.Source != "" {
		b.WriteString(" from ")
		b.WriteString(r.Source)
	}
	b.WriteString(": ")
	b.WriteString(string(r.Reason))
	switch {
	case r.Detail != "":
		b.WriteString(" (")
		b.WriteString(r.Detail)
		b.WriteString(")")
	case r.Err != nil:
		b.WriteString(" (")
		b.WriteString(r.Err.Error())
		b.WriteString(")")
	}
	return b.String()
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

// WithSource returns a copy attributed to the given source.
func (r *Rejection) WithSource(label string) *Rejection {
	cp := *r
	cp.Source = label
	return &cp
}
