package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical renders ev as canonical JSON.
//
// Expected and actual values are encoded through [Repr] so arbitrary Go
// values (errors, floats, types) become stable strings. Object keys are
// ordered by UTF-16 code units, strings are NFC normalized and <, > and &
// are not escaped. Fields irrelevant to the event's kind are omitted.
func MarshalCanonical(ev Event) ([]byte, error) {
	return marshalCanonical(canonicalMap(ev))
}

func canonicalMap(ev Event) map[string]any {
	m := map[string]any{"kind": string(ev.Kind)}
	if ev.RunID != "" {
		m["run_id"] = ev.RunID
	}
	if ev.Message != "" {
		m["message"] = ev.Message
	}
	if ev.Kind.IsOutcome() {
		if ev.Expected != nil {
			m["expected"] = Repr(ev.Expected)
		}
		if ev.Actual != nil {
			m["actual"] = Repr(ev.Actual)
		}
	}
	if ev.Location != nil {
		m["file"] = ev.Location.File
		m["line"] = ev.Location.Line
	}
	if len(ev.Units) > 0 {
		m["units"] = stringList(ev.Units)
	}
	if len(ev.Contexts) > 0 {
		m["contexts"] = stringList(ev.Contexts)
	}
	if ev.Group != "" {
		m["group"] = ev.Group
	}
	if ev.Unit != "" {
		m["unit"] = ev.Unit
	}
	if ev.Kind == KindSummary {
		m["counts"] = map[string]any{
			"units": ev.Counts.Units,
			"pass":  ev.Counts.Pass,
			"fail":  ev.Counts.Fail,
			"error": ev.Counts.Error,
		}
	}
	return m
}

func stringList(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return marshalCanonicalString(val)
	case int:
		return []byte(strconv.Itoa(val)), nil
	case bool:
		return []byte(strconv.FormatBool(val)), nil
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := marshalCanonical(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareUTF16)

		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := marshalCanonicalString(k)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := marshalCanonical(val[k])
			if err != nil {
				return nil, fmt.Errorf("value for key %q: %w", k, err)
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// marshalCanonicalString encodes s after NFC normalization without HTML
// escaping. U+2028 and U+2029 are emitted literally.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	return unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes produced by
// encoding/json back into literal characters. An escape preceded by an odd
// run of backslashes is literal text and is kept.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+5 < len(data) && string(data[i+1:i+5]) == "u202" &&
			(data[i+5] == '8' || data[i+5] == '9') && trailingBackslashes(out)%2 == 0 {
			if data[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		out = append(out, data[i])
	}
	return out
}

func trailingBackslashes(b []byte) int {
	n := 0
	for i := len(b) - 1; i >= 0 && b[i] == '\\'; i-- {
		n++
	}
	return n
}

// compareUTF16 orders strings by UTF-16 code units, which differs from Go's
// byte-wise UTF-8 ordering for characters outside the BMP.
func compareUTF16(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
