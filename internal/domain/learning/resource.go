package learning

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Levels is the fixed processing order.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

type Category string

const (
	CategoryFree Category = "free"
	CategoryPaid Category = "paid"
)

var Categories = []Category{CategoryFree, CategoryPaid}

// Text is a string field from model output. Models occasionally emit numbers or
// booleans where strings were requested, so those are kept as their literal text.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	case '{', '[':
		return fmt.Errorf("expected text, got %s", kindOf(data[0]))
	default:
		// numbers, true, false
		if !json.Valid(data) {
			return fmt.Errorf("invalid text value %q", data)
		}
		*t = Text(data)
		return nil
	}
}

func (t Text) String() string {
	return string(t)
}

func kindOf(b byte) string {
	if b == '{' {
		return "object"
	}
	return "array"
}

// Resource is one recommended item. Fields the model adds beyond the known ones
// are kept in Extra and written back alongside them.
type Resource struct {
	Title         Text `json:"title"`
	URL           Text `json:"url"`
	Description   Text `json:"description"`
	Type          Text `json:"type"`
	EstimatedTime Text `json:"estimatedTime,omitempty"`
	Price         Text `json:"price"`

	Extra map[string]json.RawMessage `json:"-"`
}

type resourceFields Resource

var resourceKeys = []string{"title", "url", "description", "type", "estimatedTime", "price"}

func (r *Resource) UnmarshalJSON(data []byte) error {
	var known resourceFields
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*r = Resource(known)
	r.Extra = nil
	for key, raw := range fields {
		if isResourceKey(key) {
			continue
		}
		if r.Extra == nil {
			r.Extra = make(map[string]json.RawMessage)
		}
		r.Extra[key] = raw
	}
	return nil
}

func (r Resource) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(resourceFields(r))
	if err != nil || len(r.Extra) == 0 {
		return known, err
	}

	merged := make(map[string]json.RawMessage, len(r.Extra)+len(resourceKeys))
	for k, v := range r.Extra {
		merged[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// isResourceKey matches the way encoding/json binds keys to fields.
func isResourceKey(key string) bool {
	for _, k := range resourceKeys {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}
