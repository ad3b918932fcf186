package evidence

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// doc is a decoded upstream JSON object. Every accessor tolerates missing keys
// and unexpected types.
type doc map[string]any

// sub returns the nested object at key, or an empty doc.
func (d doc) sub(key string) doc {
	if m, ok := d[key].(map[string]any); ok {
		return m
	}
	return doc{}
}

// str returns the trimmed string at key, or "".
func (d doc) str(key string) string {
	s, _ := d[key].(string)
	return strings.TrimSpace(s)
}

// firstStr returns the first non-empty string among keys.
func (d doc) firstStr(keys ...string) string {
	for _, k := range keys {
		if s := d.str(k); s != "" {
			return s
		}
	}
	return ""
}

// list returns the array at key, or nil.
func (d doc) list(key string) []any {
	l, _ := d[key].([]any)
	return l
}

// num returns the integral number at key.
func (d doc) num(key string) (int64, bool) {
	return toInt64(d[key])
}

// count returns the number at key, or zero.
func (d doc) count(key string) int64 {
	n, _ := d.num(key)
	return n
}

// has reports whether key holds a non-empty value.
func (d doc) has(key string) bool {
	return truthy(d[key])
}

// strList returns the string values of the array or the single string at key.
func (d doc) strList(key string) []string {
	switch v := d[key].(type) {
	case string:
		if s := strings.TrimSpace(v); s != "" {
			return []string{s}
		}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return nil
}

// tags returns the lowercased tags of a Hugging Face document, falling back
// to the card tags and to GitHub topics.
func (d doc) tags() []string {
	raw := d.strList("tags")
	if len(raw) == 0 {
		raw = d.sub("cardData").strList("tags")
	}
	if len(raw) == 0 {
		raw = d.strList("topics")
	}
	out := make([]string, len(raw))
	for i, t := range raw {
		out[i] = strings.ToLower(t)
	}
	return out
}

// siblings returns the bundled file names of a Hugging Face document.
func (d doc) siblings() []string {
	var names []string
	for _, item := range d.list("siblings") {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := m["rfilename"].(string); ok && name != "" {
			names = append(names, name)
		}
	}
	return names
}

// engagement returns downloads and likes, falling back to the card values.
func (d doc) engagement() (downloads, likes int64) {
	card := d.sub("cardData")
	if n, ok := d.num("downloads"); ok {
		downloads = n
	} else {
		downloads = card.count("downloads")
	}
	if n, ok := d.num("likes"); ok {
		likes = n
	} else {
		likes = card.count("likes")
	}
	return max(downloads, 0), max(likes, 0)
}

// truthy mirrors the usual JSON notion of an empty value.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return strings.TrimSpace(t) != ""
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// toInt64 converts the numeric shapes produced by JSON decoding.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return int64(f), true
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil {
			return i, true
		}
	}
	return 0, false
}

// containsAny reports whether s contains any of the needles.
func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// anyContains reports whether any value contains any of the needles.
func anyContains(values []string, needles []string) bool {
	for _, v := range values {
		if containsAny(v, needles) {
			return true
		}
	}
	return false
}

// truncateRunes keeps at most n runes of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
