package genclient

import "strings"

// Status is a decoded vendor status object. Vendors disagree on field
// names and nesting, so the helpers here do the duck-typed digging once
// and each provider decides which keys matter for its response shape.
type Status map[string]any

// State returns the lifecycle state reported under "status" or "state",
// lower-cased. Unknown shapes yield "".
func (s Status) State() string {
	return strings.ToLower(s.FirstString("status", "state"))
}

// FirstString returns the first of the named keys holding a non-empty
// string value.
func (s Status) FirstString(keys ...string) string {
	for _, k := range keys {
		if v, ok := s[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// URL walks the named keys looking for a download URL. A key may hold
// the URL directly, an object with an "audio_url"/"url" field, or a list
// of such objects; the first hit wins.
func (s Status) URL(keys ...string) string {
	for _, k := range keys {
		v, ok := s[k]
		if !ok {
			continue
		}
		if u := urlFromValue(v); u != "" {
			return u
		}
	}
	return ""
}

func urlFromValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.HasPrefix(val, "http") {
			return val
		}
	case map[string]any:
		for _, k := range []string{"audio_url", "video_url", "url", "uri"} {
			if s, ok := val[k].(string); ok && s != "" {
				return s
			}
		}
	case []any:
		for _, item := range val {
			if u := urlFromValue(item); u != "" {
				return u
			}
		}
	}
	return ""
}

// ErrorMessage returns the vendor's failure text, if any.
func (s Status) ErrorMessage() string {
	return s.FirstString("error", "message")
}
