package alerting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"brainrot-feed/internal/feed"
)

func testNote() Notification {
	return Notification{
		Feed:       "1m10m",
		LocatorKey: feed.LocatorJoinScript,
		Record: feed.Record{
			Name:       "Disco Monkey",
			Rate:       "$2.1M",
			Locator:    "abc123",
			ObservedAt: time.Now(),
			Source:     "1m10m-a",
		},
		Value:     decimal.NewNullDecimal(decimal.NewFromInt(2_100_000)),
		Threshold: decimal.NewNullDecimal(decimal.NewFromInt(1_000_000)),
	}
}

func TestTelegramNotifierSuccess(t *testing.T) {
	received := make(map[string]string)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "sendMessage") {
			t.Fatalf("路径应包含 sendMessage, 实际 %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("解析请求体失败: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	if err := notifier.Notify(context.Background(), testNote()); err != nil {
		t.Fatalf("Telegram Notify 应成功: %v", err)
	}

	if received["chat_id"] != "chat" {
		t.Fatalf("chat_id 不正确: %#v", received)
	}
	text := received["text"]
	for _, want := range []string{"Disco Monkey", "$2.1M", "join_script: abc123", "> 1000000"} {
		if !strings.Contains(text, want) {
			t.Fatalf("消息应包含 %q: %s", want, text)
		}
	}
}

func TestTelegramNotifierError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false})
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	if err := notifier.Notify(context.Background(), testNote()); err == nil {
		t.Fatal("ok=false 应报错")
	}
}

func TestTelegramNotifierHTTPStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	notifier := NewTelegramNotifier("token", "chat", srv.URL, time.Second, testLogger())
	if err := notifier.Notify(context.Background(), testNote()); err == nil {
		t.Fatal("HTTP 403 应报错")
	}
}

func TestRenderSimulated(t *testing.T) {
	note := testNote()
	note.Simulated = true
	note.LocatorKey = ""
	text := renderMessage(note)
	if !strings.Contains(text, "simulated") || !strings.Contains(text, "job_id: abc123") {
		t.Fatalf("模拟消息格式不正确: %s", text)
	}
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
