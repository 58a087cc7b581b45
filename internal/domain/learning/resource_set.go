package learning

import (
	"bytes"
	"encoding/json"

	"resource-finder/internal/domain/currency"
)

// ResourceSet groups resources by level and category. Any level or category may be
// absent. Values the model adds outside that shape are kept as raw JSON in Extra
// and written back unchanged.
type ResourceSet struct {
	Levels map[Level]*Slots
	Extra  map[string]json.RawMessage
}

// Slots holds the categories of one level. A nil *Slots is a JSON null level.
type Slots struct {
	Items map[Category][]Resource
	Extra map[string]json.RawMessage
}

type PriceNormalizer interface {
	Normalize(price, target string) string
}

// Items returns the resources stored under level and category, or nil.
func (s ResourceSet) Items(level Level, cat Category) []Resource {
	slots := s.Levels[level]
	if slots == nil {
		return nil
	}
	return slots.Items[cat]
}

// Put stores items under level and category, creating the level if needed.
func (s *ResourceSet) Put(level Level, cat Category, items ...Resource) {
	if s.Levels == nil {
		s.Levels = make(map[Level]*Slots)
	}
	slots := s.Levels[level]
	if slots == nil {
		slots = &Slots{}
		s.Levels[level] = slots
	}
	if slots.Items == nil {
		slots.Items = make(map[Category][]Resource)
	}
	if items == nil {
		items = []Resource{}
	}
	slots.Items[cat] = items
}

// ConvertPrices returns a copy of s with every paid price rewritten into target.
// Free entries are never modified and absent slots are not created.
func (s ResourceSet) ConvertPrices(n PriceNormalizer, target string) ResourceSet {
	out := s.Clone()

	for _, level := range Levels {
		slots := out.Levels[level]
		if slots == nil {
			continue
		}
		paid, ok := slots.Items[CategoryPaid]
		if !ok {
			continue
		}
		for i := range paid {
			price := paid[i].Price.String()
			if price == "" || price == currency.FreeMarker {
				continue
			}
			paid[i].Price = Text(n.Normalize(price, target))
		}
	}
	return out
}

// Clone deep-copies the set so conversions never alias a cached value.
func (s ResourceSet) Clone() ResourceSet {
	out := ResourceSet{Extra: cloneRaw(s.Extra)}
	if s.Levels == nil {
		return out
	}
	out.Levels = make(map[Level]*Slots, len(s.Levels))
	for level, slots := range s.Levels {
		if slots == nil {
			out.Levels[level] = nil
			continue
		}
		copied := &Slots{Extra: cloneRaw(slots.Extra)}
		if slots.Items != nil {
			copied.Items = make(map[Category][]Resource, len(slots.Items))
			for cat, items := range slots.Items {
				if items == nil {
					copied.Items[cat] = nil
					continue
				}
				dup := make([]Resource, len(items))
				for i, r := range items {
					r.Extra = cloneRaw(r.Extra)
					dup[i] = r
				}
				copied.Items[cat] = dup
			}
		}
		out.Levels[level] = copied
	}
	return out
}

// Count reports the number of resources across all slots.
func (s ResourceSet) Count() int {
	n := 0
	for _, slots := range s.Levels {
		if slots == nil {
			continue
		}
		for _, items := range slots.Items {
			n += len(items)
		}
	}
	return n
}

// IsObject reports whether the set was decoded from, or built as, a JSON object.
func (s ResourceSet) IsObject() bool {
	return s.Levels != nil || s.Extra != nil
}

func (s ResourceSet) MarshalJSON() ([]byte, error) {
	if !s.IsObject() {
		return []byte("null"), nil
	}
	merged := make(map[string]any, len(s.Levels)+len(s.Extra))
	for k, v := range s.Extra {
		merged[k] = v
	}
	for level, slots := range s.Levels {
		merged[string(level)] = slots
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes every object-valued key as a level. Anything else is kept raw.
func (s *ResourceSet) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	out := ResourceSet{Levels: make(map[Level]*Slots, len(fields))}
	for key, raw := range fields {
		switch rawKind(raw) {
		case '{':
			var slots Slots
			if err := json.Unmarshal(raw, &slots); err != nil {
				out.keep(key, raw)
				continue
			}
			out.Levels[Level(key)] = &slots
		case 'n':
			out.Levels[Level(key)] = nil
		default:
			out.keep(key, raw)
		}
	}
	*s = out
	return nil
}

func (s *ResourceSet) keep(key string, raw json.RawMessage) {
	if s.Extra == nil {
		s.Extra = make(map[string]json.RawMessage)
	}
	s.Extra[key] = raw
}

func (s *Slots) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	merged := make(map[string]any, len(s.Items)+len(s.Extra))
	for k, v := range s.Extra {
		merged[k] = v
	}
	for cat, items := range s.Items {
		merged[string(cat)] = items
	}
	return json.Marshal(merged)
}

// UnmarshalJSON decodes every array of resources as a category. Values that do not
// decode as resources are kept raw and left out of price conversion.
func (s *Slots) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	out := Slots{Items: make(map[Category][]Resource, len(fields))}
	for key, raw := range fields {
		switch rawKind(raw) {
		case '[':
			var items []Resource
			if err := json.Unmarshal(raw, &items); err == nil {
				out.Items[Category(key)] = items
				continue
			}
		case 'n':
			out.Items[Category(key)] = nil
			continue
		}
		if out.Extra == nil {
			out.Extra = make(map[string]json.RawMessage)
		}
		out.Extra[key] = raw
	}
	*s = out
	return nil
}

func rawKind(raw json.RawMessage) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

func cloneRaw(m map[string]json.RawMessage) map[string]json.RawMessage {
	if m == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(m))
	for k, v := range m {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
