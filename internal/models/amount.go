package models

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a currency amount as submitted by a client. A blank or null
// value decodes to zero with Set false. Input that is not a number decodes
// with Invalid true so validation can report it against the field.
type Amount struct {
	decimal.Decimal
	Set     bool
	Invalid bool
}

// AmountOf returns a set Amount holding d.
func AmountOf(d decimal.Decimal) Amount {
	return Amount{Decimal: d, Set: true}
}

// MustAmount parses s and panics on failure. Intended for tests and constants.
func MustAmount(s string) Amount {
	return AmountOf(decimal.RequireFromString(s))
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if string(b) == "null" {
		*a = Amount{}
		return nil
	}

	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*a = Amount{Invalid: true}
			return nil
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*a = Amount{}
			return nil
		}
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		*a = Amount{Invalid: true}
		return nil
	}
	*a = Amount{Decimal: d, Set: true}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Set {
		return []byte("null"), nil
	}
	return a.Decimal.MarshalJSON()
}
