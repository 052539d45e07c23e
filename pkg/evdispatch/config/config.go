package config

// Config wraps a map[string]any for type-safe value extraction.
// All accessor methods return default values if the key is missing
// or the value cannot be converted to the requested type.
type Config struct {
	data map[string]any
}

// New creates a Config from the given map.
// If data is nil, an empty Config is returned.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

// String returns the string value for key, or defaultVal if missing or not a string.
func (c Config) String(key, defaultVal string) string {
	if s, ok := c.data[key].(string); ok {
		return s
	}
	return defaultVal
}

// Bool returns the boolean value for key, or defaultVal if missing or not a bool.
func (c Config) Bool(key string, defaultVal bool) bool {
	if b, ok := c.data[key].(bool); ok {
		return b
	}
	return defaultVal
}

// Int returns the integer value for key, or defaultVal if missing or not convertible.
//
// Accepts:
//   - int: used directly (YAML integers)
//   - int64: converted to int
//   - float64: converted only if there is no fractional part (JSON numbers)
func (c Config) Int(key string, defaultVal int) int {
	v, ok := c.intValue(key)
	if !ok {
		return defaultVal
	}
	return v
}

func (c Config) intValue(key string) (int, bool) {
	switch val := c.data[key].(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case float64:
		if val == float64(int(val)) {
			return int(val), true
		}
	}
	return 0, false
}

// StringSlice returns the string slice for key, or defaultVal if missing or
// if any element is not a string.
func (c Config) StringSlice(key string, defaultVal []string) []string {
	switch val := c.data[key].(type) {
	case []string:
		return val
	case []any:
		result := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return defaultVal
			}
			result = append(result, s)
		}
		return result
	}
	return defaultVal
}

// Section returns the nested mapping under key as a Config.
// A missing or non-mapping value yields an empty Config.
func (c Config) Section(key string) Config {
	m, _ := asMap(c.data[key])
	return New(m)
}

// Maps returns the list of mappings under key, one Config per element.
// The second result is false if the key is missing, is not a list, or any
// element is not a mapping.
func (c Config) Maps(key string) ([]Config, bool) {
	items, ok := c.data[key].([]any)
	if !ok {
		return nil, false
	}
	out := make([]Config, 0, len(items))
	for _, item := range items {
		m, ok := asMap(item)
		if !ok {
			return nil, false
		}
		out = append(out, New(m))
	}
	return out, true
}

// Any returns the raw value for key, or defaultVal if missing.
func (c Config) Any(key string, defaultVal any) any {
	v, ok := c.data[key]
	if !ok {
		return defaultVal
	}
	return v
}

// Has returns true if the key exists in the config.
func (c Config) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Config:
		return m.data, true
	}
	return nil, false
}
