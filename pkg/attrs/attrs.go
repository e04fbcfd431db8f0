// Package attrs works on the alternating key/value lists handed to slog:
// [key1, value1, key2, value2, ...].
package attrs

// ExtractString returns the string stored under key, or "" when the key is
// absent or its value is not a string.
func ExtractString(attrs []any, key string) string {
	for i := 0; i < len(attrs)-1; i += 2 {
		k, ok := attrs[i].(string)
		if !ok || k != key {
			continue
		}
		if v, ok := attrs[i+1].(string); ok {
			return v
		}
	}
	return ""
}

// AppendIfMissing adds key=value unless key already carries a non-empty
// string. Empty values are never added.
func AppendIfMissing(attrs []any, key, value string) []any {
	if value == "" || ExtractString(attrs, key) != "" {
		return attrs
	}
	return append(attrs, key, value)
}

// Audit tags attrs as an audit record for event. Audit lines are filtered
// downstream on log_type.
func Audit(attrs []any, event string) []any {
	return append(attrs, "event", event, "log_type", "audit")
}
