package app

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"brainrot-feed/internal/alerting"
	"brainrot-feed/internal/extract"
	"brainrot-feed/internal/feed"
	"brainrot-feed/internal/fetcher"
)

// SimulateAlert 用给定字段构造一条聊天消息，走完整的提取流程后推送告警。
func (a *App) SimulateAlert(ctx context.Context, opts SimulateOptions) error {
	notifier := a.newNotifier()
	if notifier == nil {
		return errors.New("未配置任何告警通道")
	}

	f, err := a.resolveFeed(opts.Feed)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	static := &staticFetcher{message: simulatedMessage(now, opts)}
	src := feed.Source{Name: "simulated", URL: "simulated://" + f.Name, Kind: feed.KindChatChannel}

	rec, err := a.newService(static).Lookup(ctx, []feed.Source{src}, feed.Filters{})
	if err != nil {
		return err
	}

	note := alerting.Notification{
		Feed:       f.Name,
		LocatorKey: f.LocatorKey,
		Record:     rec,
		Simulated:  true,
	}
	if value, err := extract.ParseAmount(rec.Rate); err == nil {
		note.Value = decimal.NewNullDecimal(value)
	}
	return notifier.Notify(ctx, note)
}

func simulatedMessage(now time.Time, opts SimulateOptions) map[string]any {
	return map[string]any{
		"id":        "simulated",
		"timestamp": now.Format(time.RFC3339Nano),
		"embeds": []any{map[string]any{
			"title": "Brainrot found",
			"fields": []map[string]string{
				{"name": "Name", "value": opts.Name},
				{"name": "Money per sec", "value": "**" + opts.Rate + "**"},
				{"name": "Job ID", "value": "```" + opts.Locator + "```"},
			},
		}},
	}
}

type staticFetcher struct {
	message map[string]any
}

func (s *staticFetcher) Fetch(ctx context.Context, src feed.Source) (feed.Payload, error) {
	body, err := json.Marshal([]any{s.message})
	if err != nil {
		return feed.Payload{}, err
	}
	return feed.ParsePayload(body)
}

var _ fetcher.Fetcher = (*staticFetcher)(nil)
