package models

import "github.com/jrsteele09/studygroup-client/internal/utils"

// Profile is the backend profile resource. Its shape is defined by the backend, so it is kept
// as a loose JSON object and read through tolerant accessors.
type Profile map[string]any

// Email returns "email" when present, otherwise the nested "user.email".
func (p Profile) Email() string {
	if p == nil {
		return ""
	}
	var nested string
	if user, ok := p["user"].(map[string]any); ok {
		nested, _ = user["email"].(string)
	}
	return utils.FirstNonEmpty(p.String("email"), nested)
}

// String returns a top-level string field, or "" when the field is missing or not a string.
func (p Profile) String(key string) string {
	if p == nil {
		return ""
	}
	s, _ := p[key].(string)
	return s
}

// Clone returns a shallow copy so state snapshots do not share the map with callers.
func (p Profile) Clone() Profile {
	if p == nil {
		return nil
	}
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
