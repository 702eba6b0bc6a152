package validation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the outcome of normalizing a raw payload value.
type Kind int

const (
	// Absent means the value was missing, null or an empty string.
	Absent Kind = iota
	OK
	// ParseError means a string was supplied but it is not valid JSON.
	ParseError
	// TypeError means the value has the wrong shape.
	TypeError
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case OK:
		return "ok"
	case ParseError:
		return "parse_error"
	case TypeError:
		return "type_error"
	default:
		return "unknown"
	}
}

// ListResult is the normalized form of an array-valued field.
type ListResult struct {
	Kind  Kind
	Items []any
}

// NormalizeList accepts a native array or a JSON-encoded array string.
func NormalizeList(raw any) ListResult {
	switch v := raw.(type) {
	case nil:
		return ListResult{Kind: Absent}
	case []any:
		return ListResult{Kind: OK, Items: v}
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return ListResult{Kind: OK, Items: items}
	case []map[string]any:
		items := make([]any, len(v))
		for i, m := range v {
			items[i] = m
		}
		return ListResult{Kind: OK, Items: items}
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return ListResult{Kind: Absent}
		}
		var decoded any
		dec := json.NewDecoder(strings.NewReader(s))
		dec.UseNumber()
		if err := dec.Decode(&decoded); err != nil || dec.More() {
			return ListResult{Kind: ParseError}
		}
		if decoded == nil {
			return ListResult{Kind: Absent}
		}
		if items, ok := decoded.([]any); ok {
			return ListResult{Kind: OK, Items: items}
		}
		return ListResult{Kind: TypeError}
	default:
		return ListResult{Kind: TypeError}
	}
}

// StringListResult is the normalized form of a list of strings. Items are
// trimmed. On TypeError, BadIndex points at the first non-string element, or
// is -1 when the container itself was wrong.
type StringListResult struct {
	Kind     Kind
	Items    []string
	BadIndex int
}

// NormalizeStringList normalizes a list whose elements must all be strings.
func NormalizeStringList(raw any) StringListResult {
	list := NormalizeList(raw)
	if list.Kind != OK {
		return StringListResult{Kind: list.Kind, BadIndex: -1}
	}
	items := make([]string, 0, len(list.Items))
	for i, item := range list.Items {
		s, ok := item.(string)
		if !ok {
			return StringListResult{Kind: TypeError, BadIndex: i}
		}
		items = append(items, strings.TrimSpace(s))
	}
	return StringListResult{Kind: OK, Items: items, BadIndex: -1}
}

// BoolResult is the normalized form of a boolean field.
type BoolResult struct {
	Kind  Kind
	Value bool
}

// NormalizeBool accepts a native boolean or the strings "true"/"false" in any
// case. Absent values normalize to false.
func NormalizeBool(raw any) BoolResult {
	switch v := raw.(type) {
	case nil:
		return BoolResult{Kind: Absent}
	case bool:
		return BoolResult{Kind: OK, Value: v}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "":
			return BoolResult{Kind: Absent}
		case "true":
			return BoolResult{Kind: OK, Value: true}
		case "false":
			return BoolResult{Kind: OK, Value: false}
		}
	}
	return BoolResult{Kind: TypeError}
}

// StringResult is the normalized form of a scalar text field.
type StringResult struct {
	Kind  Kind
	Value string
}

// NormalizeString trims text values. Numbers are accepted and rendered in
// their JSON form so that numeric phone numbers or postal codes survive.
func NormalizeString(raw any) StringResult {
	switch v := raw.(type) {
	case nil:
		return StringResult{Kind: Absent}
	case string:
		return StringResult{Kind: OK, Value: strings.TrimSpace(v)}
	case json.Number:
		return StringResult{Kind: OK, Value: v.String()}
	case float64:
		return StringResult{Kind: OK, Value: strconv.FormatFloat(v, 'f', -1, 64)}
	case int, int64, int32:
		return StringResult{Kind: OK, Value: fmt.Sprint(v)}
	default:
		return StringResult{Kind: TypeError}
	}
}

// NormalizeObject accepts a JSON object or a JSON-encoded object string.
func NormalizeObject(raw any) (map[string]any, Kind) {
	switch v := raw.(type) {
	case nil:
		return nil, Absent
	case map[string]any:
		return v, OK
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, Absent
		}
		var decoded map[string]any
		dec := json.NewDecoder(strings.NewReader(s))
		dec.UseNumber()
		if err := dec.Decode(&decoded); err != nil {
			return nil, ParseError
		}
		if decoded == nil {
			return nil, Absent
		}
		return decoded, OK
	default:
		return nil, TypeError
	}
}
