package ai

import (
	"strings"

	"github.com/goccy/go-json"

	"github.com/ama5ter/spec2testdata/internal/gen"
)

// Recover parses a raw model completion into a payload. It first attempts a
// direct JSON parse; on failure it strips a surrounding code fence (tagged
// like ```json or bare) and retries. Input that stays unparseable fails with
// MalformedResponseError — there is deliberately no empty-payload fallback,
// because swallowing garbage output here masks generation failures upstream.
//
// A parsed object missing the request or response key gets an empty object
// backfilled for it: partial output is tolerated, total unparseability is not.
func Recover(raw string) (*gen.Payload, error) {
	obj, ok := parseObject(raw)
	if !ok {
		obj, ok = parseObject(stripCodeFence(raw))
	}
	if !ok {
		return nil, &MalformedResponseError{Raw: raw}
	}

	p := &gen.Payload{}
	if v, present := obj["request"]; present {
		p.Request = v
	} else {
		p.Request = map[string]any{}
	}
	if v, present := obj["response"]; present {
		p.Response = v
	} else {
		p.Response = map[string]any{}
	}
	return p, nil
}

func parseObject(s string) (map[string]any, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	if obj == nil {
		// "null" parses but carries nothing recoverable.
		return nil, false
	}
	return obj, true
}

// stripCodeFence removes a leading and trailing markdown code fence. The
// opening fence may carry a language tag; whatever follows it on the same
// line is discarded.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
