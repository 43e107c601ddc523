package llu

import "encoding/json"

// Masked replaces sensitive values too short to partially reveal.
const Masked = "****"

// Field names whose values never appear in logs unmasked.
var sensitiveKeys = map[string]bool{
	"token":         true,
	"email":         true,
	"password":      true,
	"firstName":     true,
	"lastName":      true,
	"Authorization": true,
}

// MaskValue obscures a secret for logging: the first 3 and last 4
// characters survive, the rest is elided. Values of 8 characters or fewer
// are replaced entirely.
func MaskValue(v string) string {
	if len(v) <= 8 {
		return Masked
	}
	return v[:3] + "..." + v[len(v)-4:]
}

// MaskHeaders returns a copy of h with sensitive header values masked.
func MaskHeaders(h map[string]string) map[string]string {
	masked := make(map[string]string, len(h))
	for k, v := range h {
		if sensitiveKeys[k] && v != "" {
			masked[k] = MaskValue(v)
		} else {
			masked[k] = v
		}
	}
	return masked
}

// MaskMap returns a copy of m with sensitive values masked. Nested objects
// and arrays are walked.
func MaskMap(m map[string]any) map[string]any {
	masked := make(map[string]any, len(m))
	for k, v := range m {
		if s, ok := v.(string); ok && sensitiveKeys[k] && s != "" {
			masked[k] = MaskValue(s)
			continue
		}
		masked[k] = maskAny(v)
	}
	return masked
}

func maskAny(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return MaskMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = maskAny(e)
		}
		return out
	default:
		return v
	}
}

// maskJSON masks a raw JSON document for logging. Non-object payloads are
// returned unchanged.
func maskJSON(raw []byte) []byte {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return raw
	}
	out, err := json.Marshal(MaskMap(m))
	if err != nil {
		return raw
	}
	return out
}
