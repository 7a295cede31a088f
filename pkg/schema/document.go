package schema

// Document is a decoded response body. Numbers are kept as json.Number so
// 64-bit identifiers survive decoding.
type Document map[string]any

// Get walks nested objects and returns the value at path, or nil
func (d Document) Get(path ...string) any {
	return lookup(map[string]any(d), path...)
}

// Has reports whether the value at path is present and not null
func (d Document) Has(path ...string) bool {
	return d.Get(path...) != nil
}

func lookup(v any, path ...string) any {
	for _, key := range path {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[key]
	}
	return v
}

func object(v any, path ...string) map[string]any {
	m, _ := lookup(v, path...).(map[string]any)
	return m
}

func array(v any, path ...string) []any {
	a, _ := lookup(v, path...).([]any)
	return a
}

// first returns the first non-nil value
func first(values ...any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
