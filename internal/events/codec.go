package events

import (
	"bytes"
	"encoding/json"
	"sort"
)

// Marshal encodes an event in canonical form: stable struct field order (as
// declared on Event) plus sorted map keys, matching encoding/json's default
// behaviour for maps — Go already sorts map[string]T keys during Marshal, so
// the codec only has to guarantee it never round-trips through an
// unordered map itself. HTML escaping is disabled so operator characters in
// labels/names aren't rewritten, which would otherwise break the
// byte-identical round-trip required by spec.md §3 invariant 3.
func Marshal(e Event) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return nil, err
	}
	// json.Encoder.Encode appends a trailing newline; Marshal callers expect
	// the same contract as encoding/json.Marshal (no trailing newline).
	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return out, nil
}

// Unmarshal decodes an event. It does not check the "exactly one payload
// field" union invariant; Event.Validate does, and applier.Apply calls it.
func Unmarshal(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Canonicalize re-encodes an arbitrary decoded JSON value (as produced by
// json.Unmarshal into `any`) with deterministic key ordering and integral
// floats rewritten without a trailing fractional part, mirroring the
// teacher's payload-alias canonicalization in internal/sim/patch.go. It is a
// standalone helper (with MarshalCanonical): Marshal, the debug export and
// the snapshot codec do not call it.
func Canonicalize(v any) any {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]any, len(val))
		for _, k := range keys {
			out[k] = Canonicalize(val[k])
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Canonicalize(item)
		}
		return out
	case float64:
		if val == float64(int64(val)) {
			return int64(val)
		}
		return val
	default:
		return v
	}
}

// MarshalCanonical decodes data into a generic JSON value, canonicalizes it,
// and re-encodes it with sorted map keys and no HTML escaping.
func MarshalCanonical(data []byte) ([]byte, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	canonical := Canonicalize(v)
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(canonical); err != nil {
		return nil, err
	}
	out := buf.Bytes()
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	return out, nil
}
