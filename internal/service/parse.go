package service

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ParseID parses a path or query identifier. Malformed ids cannot name an
// existing row, so they surface as ErrNotFound.
func ParseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return id, nil
}

func parseRef(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, invalid(field, "must be a valid uuid")
	}
	return id, nil
}

func parseOptionalRef(field string, raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := parseRef(field, *raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// parseMoney accepts a non-negative decimal string
func parseMoney(field, raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, invalid(field, "must be a decimal number")
	}
	if d.IsNegative() {
		return decimal.Zero, invalid(field, "must not be negative")
	}
	return d, nil
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return invalid(field, "must be one of "+strings.Join(allowed, ", "))
}

// optionalText maps blank strings to nil for nullable text columns
func optionalText(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// NullableTime is a patch field that tells an absent key from an explicit
// null. Set is false when the key is missing; a null leaves Value nil.
type NullableTime struct {
	Set   bool
	Value *time.Time
}

func (n *NullableTime) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	n.Value = &t
	return nil
}

func (n NullableTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Value)
}
