package core

// The storefront backend is inconsistent about response nesting: some
// deployments wrap payloads under a "data" key, others return them flat,
// and product detail responses add a third "product" wrapper. The helpers
// here make that polymorphism explicit with a fixed precedence order so the
// rest of the codebase never touches raw response maps.

// Unwrap resolves the envelope shape of a response body. When the body
// carries a "data" object the inner object is returned; otherwise the body
// itself is the payload. A nil body yields an empty map.
func Unwrap(body map[string]any) map[string]any {
	if body == nil {
		return map[string]any{}
	}
	if inner, ok := body["data"].(map[string]any); ok {
		return inner
	}
	return body
}

// UnwrapProduct resolves a product detail payload. Precedence:
// data.product, data, product, then the body itself.
func UnwrapProduct(body map[string]any) map[string]any {
	if body == nil {
		return map[string]any{}
	}
	if inner, ok := body["data"].(map[string]any); ok {
		if product, ok := inner["product"].(map[string]any); ok {
			return product
		}
		return inner
	}
	if product, ok := body["product"].(map[string]any); ok {
		return product
	}
	return body
}

// StringField returns the named field as a string, or "" when absent or
// not a string.
func StringField(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	s, _ := m[key].(string)
	return s
}

// NumberField returns the named field as a float64. JSON numbers decode as
// float64; other numeric types are coerced.
func NumberField(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// IntField returns the named field as an int, truncating any fractional
// part the backend sends.
func IntField(m map[string]any, key string) (int, bool) {
	f, ok := NumberField(m, key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// MapField returns the named field as an object, or nil when absent or not
// an object.
func MapField(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	inner, _ := m[key].(map[string]any)
	return inner
}

// SliceField returns the named field as a slice of objects, skipping any
// element that is not an object.
func SliceField(m map[string]any, key string) []map[string]any {
	if m == nil {
		return nil
	}
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
