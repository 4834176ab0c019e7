package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RawInput is an untyped booking submission as decoded from JSON.
type RawInput map[string]interface{}

// GetText coerces the value under key to text. Missing, null, false, zero
// and empty values all become the empty string.
func (in RawInput) GetText(key string) string {
	if in == nil {
		return ""
	}
	val, ok := in[key]
	if !ok {
		return ""
	}
	return coerceText(val)
}

func coerceText(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return ""
	case float64:
		if v == 0 {
			return ""
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		if v == 0 {
			return ""
		}
		return strconv.Itoa(v)
	case int64:
		if v == 0 {
			return ""
		}
		return strconv.FormatInt(v, 10)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return v.String()
		}
		return coerceText(f)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				parts = append(parts, "")
				continue
			}
			parts = append(parts, coerceElement(item))
		}
		return strings.Join(parts, ",")
	case map[string]interface{}:
		return "[object Object]"
	default:
		return fmt.Sprint(v)
	}
}

// coerceElement formats an array element, where falsy scalars keep their
// literal text.
func coerceElement(val interface{}) string {
	switch v := val.(type) {
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return v.String()
	default:
		return coerceText(v)
	}
}
