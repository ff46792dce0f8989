// Package extract turns a fetched payload into an accepted record or a rejection.
package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"brainrot-feed/internal/feed"
)

// joinScriptTemplate builds the locator for generic API entries from serverId and jobId.
const joinScriptTemplate = `game:GetService("TeleportService"):TeleportToPlaceInstance(%s, "%s", game.Players.LocalPlayer)`

type candidate struct {
	record feed.Record
	age    int64
}

// Extract reads the most recent item of payload according to kind and applies the
// freshness, keyword, threshold and completeness checks in that order. The first
// failing check is returned as a *feed.Rejection.
func Extract(payload feed.Payload, kind feed.Kind, filters feed.Filters, now time.Time) (feed.Record, error) {
	var (
		c   candidate
		err error
	)
	switch kind {
	case feed.KindChatChannel:
		c, err = fromChatMessage(payload, now)
	case feed.KindGenericAPI:
		c, err = fromAPIEntry(payload, now)
	default:
		return feed.Record{}, feed.Reject(feed.ReasonMalformed, "unsupported source kind %q", kind)
	}
	if err != nil {
		return feed.Record{}, err
	}

	if err := check(c, filters); err != nil {
		return feed.Record{}, err
	}
	return c.record, nil
}

func fromChatMessage(payload feed.Payload, now time.Time) (candidate, error) {
	msg, err := payload.First()
	if err != nil {
		return candidate{}, err
	}

	raw := strings.TrimSpace(msg.Get("timestamp").String())
	if raw == "" {
		return candidate{}, feed.Reject(feed.ReasonMissingTimestamp, "message has no timestamp")
	}
	observed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return candidate{}, &feed.Rejection{Reason: feed.ReasonMissingTimestamp, Detail: fmt.Sprintf("unparseable timestamp %q", raw), Err: err}
	}

	embeds := msg.Get("embeds").Array()
	if len(embeds) == 0 {
		return candidate{}, feed.Reject(feed.ReasonNoEmbed, "message has no embeds")
	}
	var fields []gjson.Result
	for _, embed := range embeds {
		if fields = embed.Get("fields").Array(); len(fields) > 0 {
			break
		}
	}
	if len(fields) == 0 {
		return candidate{}, feed.Reject(feed.ReasonNoFields, "embeds carry no fields")
	}

	values := matchFields(fields, chatMarkers)
	return candidate{
		record: feed.Record{
			Name:       values[targetName],
			Rate:       values[targetRate],
			Locator:    values[targetLocator],
			ObservedAt: observed,
		},
		age: now.Unix() - observed.Unix(),
	}, nil
}

func fromAPIEntry(payload feed.Payload, now time.Time) (candidate, error) {
	entry, err := payload.First()
	if err != nil {
		return candidate{}, err
	}

	lastSeen := entry.Get("lastSeen")
	if !lastSeen.Exists() || lastSeen.Type == gjson.Null || strings.TrimSpace(lastSeen.String()) == "" {
		return candidate{}, feed.Reject(feed.ReasonMissingTimestamp, "entry has no lastSeen")
	}
	ms := lastSeen.Int()

	var locator string
	jobID := strings.TrimSpace(entry.Get("jobId").String())
	serverID := strings.TrimSpace(entry.Get("serverId").String())
	if jobID != "" && serverID != "" {
		locator = fmt.Sprintf(joinScriptTemplate, serverID, jobID)
	}

	return candidate{
		record: feed.Record{
			Name:       strings.TrimSpace(entry.Get("name").String()),
			Rate:       strings.TrimSpace(entry.Get("moneyPerSec").String()),
			Locator:    locator,
			ObservedAt: time.UnixMilli(ms),
		},
		age: now.Unix() - ms/1000,
	}, nil
}

func check(c candidate, filters feed.Filters) error {
	window := filters.FreshnessWindow()
	if !window.Contains(c.age) {
		return &feed.Rejection{
			Reason:     feed.ReasonStaleOrFuture,
			AgeSeconds: c.age,
			Detail:     fmt.Sprintf("timestamp outside %d-%ds window: %d seconds", window.MinAge, window.MaxAge, c.age),
		}
	}

	if keyword := strings.TrimSpace(filters.Keyword); keyword != "" {
		if !strings.Contains(strings.ToLower(c.record.Name), strings.ToLower(keyword)) {
			return feed.Reject(feed.ReasonKeywordMismatch, "brainrot_name %q does not match whitelisted %q", c.record.Name, keyword)
		}
	}

	if filters.Threshold.Valid {
		value, err := ParseAmount(c.record.Rate)
		if err != nil {
			return err
		}
		if !value.GreaterThan(filters.Threshold.Decimal) {
			return &feed.Rejection{
				Reason: feed.ReasonBelowThreshold,
				Value:  value,
				Detail: fmt.Sprintf("money_per_sec %s <= threshold %s", value.String(), filters.Threshold.Decimal.String()),
			}
		}
	}

	if c.record.Name == "" || c.record.Rate == "" || c.record.Locator == "" {
		return feed.Reject(feed.ReasonIncompleteRecord, "missing brainrot_name, money_per_sec, or locator")
	}
	return nil
}
