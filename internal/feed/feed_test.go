package feed

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseKindAliases(t *testing.T) {
	cases := map[string]Kind{
		"chat_channel": KindChatChannel,
		"Discord":      KindChatChannel,
		" chat ":       KindChatChannel,
		"generic_api":  KindGenericAPI,
		"API":          KindGenericAPI,
	}
	for raw, want := range cases {
		got, err := ParseKind(raw)
		if err != nil {
			t.Fatalf("%q 不应报错: %v", raw, err)
		}
		if got != want {
			t.Fatalf("%q 期望 %s, 实际 %s", raw, want, got)
		}
	}
	if _, err := ParseKind("rss"); err == nil {
		t.Fatal("未知 kind 应报错")
	}
}

func TestResponseKeyOrder(t *testing.T) {
	rec := Record{Name: "Disco Monkey", Rate: "$2.1M", Locator: "abc123"}

	body, err := json.Marshal(RecordResponse(rec, LocatorJobID))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"brainrot_name":"Disco Monkey","money_per_sec":"$2.1M","job_id":"abc123"}`
	if string(body) != want {
		t.Fatalf("期望 %s, 实际 %s", want, body)
	}

	body, err = json.Marshal(RecordResponse(rec, LocatorJoinScript))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(body), `"join_script":"abc123"`) {
		t.Fatalf("应使用 join_script 键: %s", body)
	}
	if strings.Contains(string(body), "job_id") {
		t.Fatalf("不应同时包含 job_id: %s", body)
	}
}

func TestErrorResponse(t *testing.T) {
	rej := Reject(ReasonBelowThreshold, "money_per_sec %s <= threshold %s", "2100000", "3000000").WithSource("channel-a")
	body, err := json.Marshal(ErrorResponse(rej))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]string
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("错误响应只能包含 error 键: %s", body)
	}
	if !strings.Contains(decoded["error"], "BelowThreshold") || !strings.Contains(decoded["error"], "channel-a") {
		t.Fatalf("错误信息缺少原因或来源: %s", decoded["error"])
	}
}

func TestRejectionUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	rej := &Rejection{Reason: ReasonTransport, Err: cause}
	if !errors.Is(rej, cause) {
		t.Fatal("Rejection 应可 unwrap 出底层错误")
	}
	if !strings.Contains(rej.Error(), "connection refused") {
		t.Fatalf("传输错误应包含底层信息: %s", rej.Error())
	}
}

func TestParsePayload(t *testing.T) {
	if _, err := ParsePayload([]byte(`"just a string"`)); err == nil {
		t.Fatal("标量 JSON 应视为 malformed")
	}
	if _, err := ParsePayload([]byte(`{not json`)); err == nil {
		t.Fatal("非法 JSON 应报错")
	}

	p, err := ParsePayload([]byte(`[]`))
	if err != nil {
		t.Fatalf("空数组应可解析: %v", err)
	}
	_, err = p.First()
	var rej *Rejection
	if !errors.As(err, &rej) || rej.Reason != ReasonEmptyFeed {
		t.Fatalf("空数组应返回 EmptyFeed, 实际 %v", err)
	}

	p, err = ParsePayload([]byte(`{"message":"Unknown Channel"}`))
	if err != nil {
		t.Fatalf("对象应可解析: %v", err)
	}
	if _, err := p.First(); !errors.As(err, &rej) || rej.Reason != ReasonMalformed {
		t.Fatalf("对象调用 First 应返回 MalformedResponse, 实际 %v", err)
	}
}

func TestWindowContains(t *testing.T) {
	w := DefaultWindow
	for _, age := range []int64{0, 1, 2, 3} {
		if !w.Contains(age) {
			t.Fatalf("%d 秒应在窗口内", age)
		}
	}
	for _, age := range []int64{-1, 4, 5} {
		if w.Contains(age) {
			t.Fatalf("%d 秒不应在窗口内", age)
		}
	}
}
