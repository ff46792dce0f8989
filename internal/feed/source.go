package feed

import (
	"fmt"
	"strings"
)

// Kind identifies the payload shape a source returns.
type Kind string

const (
	// KindChatChannel is a chat platform channel history endpoint.
	KindChatChannel Kind = "chat_channel"
	// KindGenericAPI is a REST endpoint returning flat entries.
	KindGenericAPI Kind = "generic_api"
)

// UnmarshalText 解析配置中的 kind 字段，兼容常用别名。
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind normalises a kind name.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "chat_channel", "chat", "discord":
		return KindChatChannel, nil
	case "generic_api", "generic", "api":
		return KindGenericAPI, nil
	default:
		return "", fmt.Errorf("unknown source kind %q", raw)
	}
}

// Accept returns the Accept header value used when polling this kind.
func (k Kind) Accept() string {
	if k == KindGenericAPI {
		return "application/json"
	}
	return "*/*"
}

// Source describes one polled endpoint. It is built once from configuration.
type Source struct {
	Name      string
	URL       string
	Kind      Kind
	Auth      string
	Referer   string
	UserAgent string
}

// Label returns the name used in logs and rejection messages.
func (s Source) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.URL
}

// Locator response keys.
const (
	LocatorJobID      = "job_id"
	LocatorJoinScript = "join_script"
)

// Feed is one deployment variant: an ordered source list and the response key for the locator.
type Feed struct {
	Name       string
	LocatorKey string
	Sources    []Source
}
