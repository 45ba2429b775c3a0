package models

// Profile is the loosely-typed account record returned by the upstream API.
// No field or shape is guaranteed, so every accessor degrades to the zero
// value instead of failing.
type Profile map[string]any

// Bool reports whether the field is present and strictly boolean true.
// String "true", 1, and other truthy shapes deliberately do not count.
func (p Profile) Bool(key string) bool {
	if p == nil {
		return false
	}
	v, ok := p[key].(bool)
	return ok && v
}

// Str returns the field as a string, or "" when absent or not a string.
func (p Profile) Str(key string) string {
	if p == nil {
		return ""
	}
	v, _ := p[key].(string)
	return v
}

// Map returns a nested mapping, or nil when absent or not a mapping.
func (p Profile) Map(key string) Profile {
	if p == nil {
		return nil
	}
	switch v := p[key].(type) {
	case Profile:
		return v
	case map[string]any:
		return Profile(v)
	default:
		return nil
	}
}

// List returns the field as a slice, or nil. A single non-list value is
// wrapped as a one-element list so `role: "chef"` and `roles: ["chef"]`
// read the same way.
func (p Profile) List(key string) []any {
	if p == nil {
		return nil
	}
	switch v := p[key].(type) {
	case []any:
		return v
	case nil:
		return nil
	default:
		return []any{v}
	}
}
