package constraint

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Rule identifies which constraint a raw value failed.
type Rule string

const (
	RuleRange        Rule = "range"
	RuleSign         Rule = "sign"
	RuleNonEmpty     Rule = "non_empty"
	RulePattern      Rule = "pattern"
	RuleType         Rule = "type"
	RuleRequired     Rule = "required"
	RuleImmutable    Rule = "immutable"
	RuleUnknownKind  Rule = "unknown_kind"
	RuleUnknownField Rule = "unknown_field"
)

// Violation describes a single field-level constraint failure. It carries
// the field path, the rule that was broken and the offending raw value so
// callers can surface every problem in one pass.
type Violation struct {
	Field   string `json:"field"`
	Rule    Rule   `json:"rule"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message"`
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s (%s)", v.Field, v.Message, v.Rule)
}

// NewViolation builds a violation for the given field, rule and raw value.
func NewViolation(field string, rule Rule, value any, msg string) *Violation {
	return &Violation{Field: field, Rule: rule, Value: value, Message: msg}
}

var (
	percentCeiling = decimal.NewFromInt(100)
	ratioCeiling   = decimal.NewFromInt(1)

	// Ethereum-style account address, the only wallet format copy-trading
	// sources currently use.
	addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
)

// Decimal parses a raw value into a decimal without applying any bound.
// Strings, JSON numbers and native Go numerics are accepted; binary floats
// are converted through their shortest decimal representation so no
// artificial precision is invented.
func Decimal(field string, raw any) (decimal.Decimal, *Violation) {
	switch v := raw.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		if err != nil {
			return decimal.Zero, NewViolation(field, RulePattern, raw, "not a valid decimal number")
		}
		return d, nil
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		if err != nil {
			return decimal.Zero, NewViolation(field, RulePattern, raw, "not a valid decimal number")
		}
		return d, nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return decimal.Zero, NewViolation(field, RuleRange, raw, "must be a finite number")
		}
		return decimal.NewFromFloat(v), nil
	case float32:
		return Decimal(field, float64(v))
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	default:
		return decimal.Zero, NewViolation(field, RuleType, raw, "must be a number or numeric string")
	}
}

// Amount parses a non-negative monetary amount.
func Amount(field string, raw any) (decimal.Decimal, *Violation) {
	d, viol := Decimal(field, raw)
	if viol != nil {
		return decimal.Zero, viol
	}
	if d.IsNegative() {
		return decimal.Zero, NewViolation(field, RuleSign, raw, "must not be negative")
	}
	return d, nil
}

// PositiveAmount parses a strictly positive monetary amount.
func PositiveAmount(field string, raw any) (decimal.Decimal, *Violation) {
	d, viol := Decimal(field, raw)
	if viol != nil {
		return decimal.Zero, viol
	}
	if !d.IsPositive() {
		return decimal.Zero, NewViolation(field, RuleSign, raw, "must be greater than zero")
	}
	return d, nil
}

// Percent parses a percentage bounded to [0,100] inclusive.
func Percent(field string, raw any) (decimal.Decimal, *Violation) {
	d, viol := Decimal(field, raw)
	if viol != nil {
		return decimal.Zero, viol
	}
	if d.IsNegative() || d.GreaterThan(percentCeiling) {
		return decimal.Zero, NewViolation(field, RuleRange, raw, "must be between 0 and 100")
	}
	return d, nil
}

// Ratio parses a fraction bounded to [0,1] inclusive.
func Ratio(field string, raw any) (decimal.Decimal, *Violation) {
	d, viol := Decimal(field, raw)
	if viol != nil {
		return decimal.Zero, viol
	}
	if d.IsNegative() || d.GreaterThan(ratioCeiling) {
		return decimal.Zero, NewViolation(field, RuleRange, raw, "must be between 0 and 1")
	}
	return d, nil
}

// PositiveInt parses a strictly positive integer.
func PositiveInt(field string, raw any) (int, *Violation) {
	var n int64
	switch v := raw.(type) {
	case int:
		n = int64(v)
	case int64:
		n = v
	case float64:
		if v != math.Trunc(v) {
			return 0, NewViolation(field, RuleType, raw, "must be a whole number")
		}
		n = int64(v)
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0, NewViolation(field, RuleType, raw, "must be a whole number")
		}
		n = i
	default:
		return 0, NewViolation(field, RuleType, raw, "must be an integer")
	}
	if n <= 0 {
		return 0, NewViolation(field, RuleSign, raw, "must be greater than zero")
	}
	return int(n), nil
}

// NonEmptyString parses a string that must contain at least one
// non-whitespace character.
func NonEmptyString(field string, raw any) (string, *Violation) {
	s, ok := raw.(string)
	if !ok {
		return "", NewViolation(field, RuleType, raw, "must be a string")
	}
	if strings.TrimSpace(s) == "" {
		return "", NewViolation(field, RuleNonEmpty, raw, "must not be empty")
	}
	return s, nil
}

// Address parses a wallet address string.
func Address(field string, raw any) (string, *Violation) {
	s, viol := NonEmptyString(field, raw)
	if viol != nil {
		return "", viol
	}
	if !addressPattern.MatchString(s) {
		return "", NewViolation(field, RulePattern, raw, "must be a 0x-prefixed 40-hex-digit address")
	}
	return s, nil
}

// Bool parses a boolean value.
func Bool(field string, raw any) (bool, *Violation) {
	b, ok := raw.(bool)
	if !ok {
		return false, NewViolation(field, RuleType, raw, "must be a boolean")
	}
	return b, nil
}

// Timestamp parses an instant from a time.Time or an RFC 3339 string.
// Monotonicity between paired timestamps (updatedAt vs createdAt) is the
// containing schema's responsibility, not the primitive's.
func Timestamp(field string, raw any) (time.Time, *Violation) {
	switch v := raw.(type) {
	case time.Time:
		if v.IsZero() {
			return time.Time{}, NewViolation(field, RuleRange, raw, "must be a valid instant")
		}
		return v.UTC(), nil
	case string:
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return time.Time{}, NewViolation(field, RulePattern, raw, "must be an RFC 3339 timestamp")
		}
		return t.UTC(), nil
	default:
		return time.Time{}, NewViolation(field, RuleType, raw, "must be a timestamp")
	}
}

// StringList parses a non-empty list of non-empty strings.
func StringList(field string, raw any) ([]string, *Violation) {
	items, ok := raw.([]any)
	if !ok {
		if ss, isStrings := raw.([]string); isStrings {
			items = make([]any, len(ss))
			for i, s := range ss {
				items[i] = s
			}
		} else {
			return nil, NewViolation(field, RuleType, raw, "must be a list of strings")
		}
	}
	if len(items) == 0 {
		return nil, NewViolation(field, RuleNonEmpty, raw, "must contain at least one entry")
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, viol := NonEmptyString(fmt.Sprintf("%s[%d]", field, i), item)
		if viol != nil {
			return nil, viol
		}
		out = append(out, s)
	}
	return out, nil
}
