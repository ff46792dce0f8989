package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"brainrot-feed/internal/feed"
)

var (
	amountPattern  = regexp.MustCompile(`^(\d+(?:\.\d+)?|\.\d+)([kmb])?(?:[^0-9a-z.]|$)`)
	amountCleaner  = strings.NewReplacer("$", "", ",", "", " ", "", "*", "")
	unitMultiplier = map[string]decimal.Decimal{
		"k": decimal.NewFromInt(1_000),
		"m": decimal.NewFromInt(1_000_000),
		"b": decimal.NewFromInt(1_000_000_000),
	}
)

// ParseAmount normalises shorthand money strings such as "$1.5M/s", "350k" or
// "900,000" into a plain value. The number must lead the string; a K, M or B
// directly after it scales the value, and only a unit such as "/s" may follow.
func ParseAmount(raw string) (decimal.Decimal, error) {
	cleaned := amountCleaner.Replace(strings.ToLower(strings.TrimSpace(raw)))
	match := amountPattern.FindStringSubmatch(cleaned)
	if match == nil {
		return decimal.Decimal{}, feed.Reject(feed.ReasonInvalidNumeric, "%q is not a money amount", raw)
	}

	value, err := decimal.NewFromString(match[1])
	if err != nil {
		return decimal.Decimal{}, &feed.Rejection{Reason: feed.ReasonInvalidNumeric, Detail: "parse " + match[1], Err: err}
	}
	if mul, ok := unitMultiplier[match[2]]; ok {
		value = value.Mul(mul)
	}
	return value, nil
}

// ParseThreshold parses the optional "morethan" input. Blank input means no threshold.
func ParseThreshold(raw string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.NullDecimal{}, nil
	}
	value, err := ParseAmount(raw)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(value), nil
}
