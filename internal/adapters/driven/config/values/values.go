// Package values converts loosely typed settings, as decoded from TOML or
// passed in tests, into the Go types the config layer asks for.
package values

// String returns v as a string, or "" for any other type.
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int accepts TOML integers (int64) and plain ints. Floats are truncated.
func Int(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

// Float widens integers.
func Float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

// Bool returns v as a bool, or false for any other type.
func Bool(v any) bool {
	b, _ := v.(bool)
	return b
}

// Strings accepts []string or a TOML array, keeping only its string items.
func Strings(v any) []string {
	switch s := v.(type) {
	case []string:
		return s
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	}
	return nil
}
