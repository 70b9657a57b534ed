package api

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"
)

// Entity is one row returned by the remote API. Fields keep the decoded JSON
// values (string, float64, bool, nil, []any, map[string]any).
type Entity struct {
	ID     string
	Fields map[string]any
}

// NewEntity builds an entity from a field map, taking the id from "id".
func NewEntity(fields map[string]any) Entity {
	e := Entity{Fields: fields}
	if fields != nil {
		e.ID = stringify(fields["id"])
	}
	return e
}

// String returns the field rendered as text; missing fields are "".
func (e Entity) String(field string) string {
	return stringify(e.Fields[field])
}

// Float returns a numeric field, parsing strings such as "12.50".
func (e Entity) Float(field string) (float64, bool) {
	switch v := e.Fields[field].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		return f, err == nil
	}
	return 0, false
}

// Bool returns a boolean field; "true"/"false" strings are accepted.
func (e Entity) Bool(field string) bool {
	switch v := e.Fields[field].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// Keys returns the field names in sorted order.
func (e Entity) Keys() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Payload returns a copy of the fields suitable for a create/update body.
func (e Entity) Payload() map[string]any {
	out := make(map[string]any, len(e.Fields))
	for k, v := range e.Fields {
		out[k] = v
	}
	return out
}

func stringify(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		return strconv.FormatBool(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
}

// entityFromResult converts a gjson object into an Entity.
func entityFromResult(r gjson.Result) (Entity, error) {
	if !r.IsObject() {
		return Entity{}, fmt.Errorf("expected object, got %s", r.Type)
	}
	fields, ok := r.Value().(map[string]any)
	if !ok {
		return Entity{}, fmt.Errorf("could not decode object")
	}
	return NewEntity(fields), nil
}

// ParseList accepts either a JSON array of objects or an object with a
// "results" array, the two list shapes the backend returns.
func ParseList(body []byte) ([]Entity, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid JSON list response")
	}
	root := gjson.ParseBytes(body)
	switch {
	case root.IsArray():
	case root.IsObject() && root.Get("results").IsArray():
		root = root.Get("results")
	default:
		return nil, fmt.Errorf("unexpected list response shape: %s", root.Type)
	}

	items := root.Array()
	entities := make([]Entity, 0, len(items))
	for i, item := range items {
		e, err := entityFromResult(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// ParseEntity decodes a single-object response.
func ParseEntity(body []byte) (Entity, error) {
	if !gjson.ValidBytes(body) {
		return Entity{}, fmt.Errorf("invalid JSON entity response")
	}
	return entityFromResult(gjson.ParseBytes(body))
}
