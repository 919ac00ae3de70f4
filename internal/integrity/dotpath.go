package integrity

import (
	"encoding/json"
	"strings"
)

// Dot-path access over the document's map form. Free-form paths exist only
// at this boundary: incoming paths are checked against the settable-path
// registry before any rule runs, and after merging the map is decoded back
// into the typed player.Document, so a path that maps to no real field can
// never reach the database.

// getPath resolves a dot-notation path in a nested map. The second return
// reports whether every segment existed.
func getPath(m map[string]interface{}, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var current interface{} = m
	for _, part := range parts {
		node, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// setPath writes value at a dot-notation path, creating intermediate maps
// as needed. A non-map intermediate is replaced by a map.
func setPath(m map[string]interface{}, path string, value interface{}) {
	parts := strings.Split(path, ".")
	current := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// topLevel returns the first segment of a dot path.
func topLevel(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}

// pathWithin reports whether path equals prefix or is nested under it.
func pathWithin(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+".")
}

// resolveUpdate finds the value a rule bound to rulePath should see in an
// update batch: either the exact key, or the sub-value of a whole-namespace
// write (rule on "status.medical", batch key "status").
func resolveUpdate(updates map[string]interface{}, rulePath string) (interface{}, bool) {
	if v, ok := updates[rulePath]; ok {
		return v, true
	}
	for key, v := range updates {
		if pathWithin(rulePath, key) {
			sub, ok := v.(map[string]interface{})
			if !ok {
				return nil, false
			}
			rest := strings.TrimPrefix(rulePath, key+".")
			return getPath(sub, rest)
		}
	}
	return nil, false
}

// decodeAs converts a loosely typed JSON value (as produced by gin binding
// or a map round trip) into a concrete type via a JSON round trip.
func decodeAs[T any](value interface{}) (T, error) {
	var out T
	b, err := json.Marshal(value)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(b, &out)
	return out, err
}

// toFloat coerces the numeric representations JSON decoding can produce.
func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
