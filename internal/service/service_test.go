package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"brainrot-feed/internal/feed"
	"brainrot-feed/internal/fetcher"
)

var testNow = time.Date(2025, 8, 5, 12, 0, 10, 0, time.UTC)

type stubFetcher struct {
	calls     []string
	responses map[string]string
	failures  map[string]error
}

func (s *stubFetcher) Fetch(ctx context.Context, src feed.Source) (feed.Payload, error) {
	s.calls = append(s.calls, src.Name)
	if err, ok := s.failures[src.Name]; ok {
		return feed.Payload{}, err
	}
	return feed.ParsePayload([]byte(s.responses[src.Name]))
}

func chatBody(ts time.Time, name, rate, jobID string) string {
	return fmt.Sprintf(`[{"id":"1","timestamp":%q,"embeds":[{"fields":[`+
		`{"name":"Name","value":%q},{"name":"Money per sec","value":%q},{"name":"Job ID","value":%q}]}]}]`,
		ts.Format(time.RFC3339Nano), name, rate, jobID)
}

func newTestService(f fetcher.Fetcher) *Service {
	return New(f, zerolog.Nop(), WithClock(func() time.Time { return testNow }))
}

func sources(names ...string) []feed.Source {
	out := make([]feed.Source, 0, len(names))
	for _, name := range names {
		out = append(out, feed.Source{Name: name, URL: "https://example.invalid/" + name, Kind: feed.KindChatChannel})
	}
	return out
}

func TestLookupStopsAtFirstAccepted(t *testing.T) {
	stub := &stubFetcher{
		responses: map[string]string{
			"a": chatBody(testNow.Add(-10*time.Second), "Old Rot", "$1M", "old"),
			"b": chatBody(testNow.Add(-2*time.Second), "Disco Monkey", "**$2.1M**", "```abc123```"),
			"c": chatBody(testNow.Add(-time.Second), "Never Read", "$9M", "zzz"),
		},
	}

	rec, err := newTestService(stub).Lookup(context.Background(), sources("a", "b", "c"), feed.Filters{})
	if err != nil {
		t.Fatalf("应返回记录: %v", err)
	}
	if rec.Name != "Disco Monkey" || rec.Source != "b" {
		t.Fatalf("应采用第二个来源的记录: %+v", rec)
	}
	if strings.Join(stub.calls, ",") != "a,b" {
		t.Fatalf("成功后不应继续请求, 调用顺序 %v", stub.calls)
	}
}

func TestLookupReturnsLastRejection(t *testing.T) {
	stub := &stubFetcher{
		failures: map[string]error{
			"a": &feed.Rejection{Reason: feed.ReasonTransport, Err: errors.New("dial tcp: connection refused")},
			"b": &feed.Rejection{Reason: feed.ReasonTransport, Err: errors.New("read: connection reset by peer")},
		},
	}

	_, err := newTestService(stub).Lookup(context.Background(), sources("a", "b"), feed.Filters{})
	var rej *feed.Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("期望 *feed.Rejection, 实际 %v", err)
	}
	if rej.Source != "b" || rej.Reason != feed.ReasonTransport {
		t.Fatalf("应返回最后一个来源的错误: %+v", rej)
	}
	if !strings.Contains(err.Error(), "connection reset by peer") {
		t.Fatalf("错误信息应包含底层传输错误: %s", err.Error())
	}
	if len(stub.calls) != 2 {
		t.Fatalf("所有来源都应被尝试, 实际 %v", stub.calls)
	}
}

func TestLookupWrapsPlainErrors(t *testing.T) {
	stub := &stubFetcher{failures: map[string]error{"a": errors.New("boom")}}

	_, err := newTestService(stub).Lookup(context.Background(), sources("a"), feed.Filters{})
	var rej *feed.Rejection
	if !errors.As(err, &rej) || rej.Reason != feed.ReasonTransport || rej.Source != "a" {
		t.Fatalf("普通错误应包装为 TransportError: %v", err)
	}
}

func TestLookupNoSources(t *testing.T) {
	_, err := newTestService(&stubFetcher{}).Lookup(context.Background(), nil, feed.Filters{})
	if !errors.Is(err, ErrNoSources) {
		t.Fatalf("期望 ErrNoSources, 实际 %v", err)
	}
}

func TestLookupCancelledContext(t *testing.T) {
	stub := &stubFetcher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := newTestService(stub).Lookup(ctx, sources("a"), feed.Filters{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("期望 context.Canceled, 实际 %v", err)
	}
	if len(stub.calls) != 0 {
		t.Fatal("取消后不应请求来源")
	}
}

func TestLookupEndToEndOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(chatBody(testNow.Add(-2*time.Second), "Disco Monkey", "**$2.1M**", "```abc123```")))
	}))
	defer srv.Close()

	f := fetcher.New(fetcher.Options{Timeout: time.Second}, zerolog.Nop())
	svc := newTestService(f)
	src := []feed.Source{{Name: "channel", URL: srv.URL, Kind: feed.KindChatChannel, Auth: "token"}}

	rec, err := svc.Lookup(context.Background(), src, feed.Filters{})
	if err != nil {
		t.Fatalf("应返回记录: %v", err)
	}
	if rec.Name != "Disco Monkey" || rec.Rate != "$2.1M" || rec.Locator != "abc123" {
		t.Fatalf("记录不正确: %+v", rec)
	}

	filters := feed.Filters{Threshold: decimal.NewNullDecimal(decimal.NewFromInt(3_000_000))}
	_, err = svc.Lookup(context.Background(), src, filters)
	var rej *feed.Rejection
	if !errors.As(err, &rej) || rej.Reason != feed.ReasonBelowThreshold {
		t.Fatalf("morethan=3000000 应返回 BelowThreshold, 实际 %v", err)
	}
}

func TestLookupLogsRecordAge(t *testing.T) {
	stub := &stubFetcher{responses: map[string]string{
		"a": chatBody(testNow.Add(-7*time.Second), "Old Rot", "$1M", "old"),
	}}
	var buf bytes.Buffer
	svc := New(stub, zerolog.New(&buf).Level(zerolog.DebugLevel), WithClock(func() time.Time { return testNow }))

	if _, err := svc.Lookup(context.Background(), sources("a"), feed.Filters{}); err == nil {
		t.Fatal("过期记录应被拒绝")
	}
	if !strings.Contains(buf.String(), `"age_seconds":7`) {
		t.Fatalf("拒绝日志应包含 age_seconds: %s", buf.String())
	}
}
