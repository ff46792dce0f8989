package extract

import (
	"strings"

	"github.com/tidwall/gjson"
)

type target int

const (
	targetName target = iota
	targetRate
	targetLocator
	targetCount
)

type marker struct {
	label     string
	target    target
	transform func(string) string
}

// chatMarkers maps embed field labels to record fields. Labels are matched
// case-insensitively as substrings, and the first matching field per target wins.
var chatMarkers = []marker{
	{label: "name", target: targetName, transform: strings.TrimSpace},
	{label: "money per sec", target: targetRate, transform: stripEmphasis},
	{label: "job id", target: targetLocator, transform: stripCode},
	{label: "join script", target: targetLocator, transform: stripCode},
}

func matchFields(fields []gjson.Result, markers []marker) [targetCount]string {
	var values [targetCount]string
	for _, field := range fields {
		label := strings.ToLower(field.Get("name").String())
		value := field.Get("value").String()
		for _, m := range markers {
			if values[m.target] != "" || !strings.Contains(label, m.label) {
				continue
			}
			values[m.target] = m.transform(value)
		}
	}
	return values
}

func stripEmphasis(v string) string {
	v = strings.ReplaceAll(v, "**", "")
	v = strings.ReplaceAll(v, "__", "")
	return strings.Trim(strings.TrimSpace(v), "*")
}

// stripCode unwraps inline code and fenced blocks, dropping a language tag on the
// fence's first line.
func stripCode(v string) string {
	v = strings.TrimSpace(v)
	if rest, ok := strings.CutPrefix(v, "```"); ok {
		if idx := strings.IndexByte(rest, '\n'); idx > 0 && isFenceTag(rest[:idx]) && hasCode(rest[idx+1:]) {
			rest = rest[idx+1:]
		}
		v = rest
	}
	v = strings.ReplaceAll(v, "```", "")
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(v), "`"))
}

func hasCode(s string) bool {
	return strings.TrimSpace(strings.ReplaceAll(s, "```", "")) != ""
}

func isFenceTag(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-') {
			return false
		}
	}
	return true
}
