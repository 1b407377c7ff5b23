package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(.*?)```")

// ExtractionError reports that no JSON object could be recovered from a
// model response. Raw carries the original text for diagnostics.
type ExtractionError struct {
	Raw string
}

func (e *ExtractionError) Error() string {
	return "could not extract a JSON object from response"
}

// ExtractJSON recovers a JSON object from an arbitrary text blob. Models are
// instructed to return bare JSON but may wrap it in prose or markdown fences,
// so three strategies are tried in order:
//
//  1. parse the whole text as a JSON object
//  2. parse the interior of the first ```json fenced block
//  3. parse the substring from the first '{' to the last '}'
func ExtractJSON(text string) (json.RawMessage, error) {
	if raw, ok := parseObject(text); ok {
		return raw, nil
	}

	if m := fencedJSONPattern.FindStringSubmatch(text); m != nil {
		if raw, ok := parseObject(m[1]); ok {
			return raw, nil
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		if raw, ok := parseObject(text[start : end+1]); ok {
			return raw, nil
		}
	}

	return nil, &ExtractionError{Raw: text}
}

// parseObject accepts only JSON objects; a bare array or scalar is a miss.
// The validated input is returned verbatim rather than re-marshaled, so
// quirks like duplicate top-level keys reach the decoder unchanged.
func parseObject(s string) (json.RawMessage, bool) {
	s = strings.TrimSpace(s)
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, false
	}
	return json.RawMessage(s), true
}
