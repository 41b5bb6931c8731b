package state

// Clone returns a deep copy of v. Mappings and []any slices are copied
// recursively; other values are returned as is.
func Clone(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneMap(val)
	case []any:
		return cloneSlice(val)
	default:
		return v
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	result := make(map[string]any, len(m))
	for k, v := range m {
		result[k] = Clone(v)
	}
	return result
}

func cloneSlice(s []any) []any {
	if s == nil {
		return nil
	}
	result := make([]any, len(s))
	for i, v := range s {
		result[i] = Clone(v)
	}
	return result
}

// Merge copies every key of src into dst, replacing existing values.
// dst keeps its identity so holders of a reference see the result.
func Merge(dst, src map[string]any) {
	for k, v := range src {
		dst[k] = v
	}
}
