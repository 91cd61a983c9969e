package gemini

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// parseStrategy is one attempt at recovering a responseSchema from raw
// model text. Strategies are pure: same input, same output.
type parseStrategy struct {
	name  string
	parse func(text string) (*responseSchema, bool)
}

// parseStrategies is the ordered recovery chain. Each strategy is more
// permissive than the one before it; the first success wins.
var parseStrategies = []parseStrategy{
	{name: "strict", parse: parseStrict},
	{name: "first_object", parse: parseFirstObject},
	{name: "brace_trim", parse: parseBraceTrim},
	{name: "regex_extract", parse: parseRegexExtract},
}

// recoverResponse runs the cleanup passes and the strategy chain over the
// raw model text. It returns the recovered schema and the name of the
// strategy that succeeded, or ok=false when nothing could be salvaged.
func recoverResponse(raw string) (schema *responseSchema, strategy string, ok bool) {
	text := stripControlChars(raw)
	text = stripCodeFences(text)
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, "", false
	}

	for _, s := range parseStrategies {
		if parsed, ok := s.parse(text); ok {
			return parsed, s.name, true
		}
	}
	return nil, "", false
}

// stripControlChars removes ASCII control characters except tab, newline,
// and carriage return. Models occasionally emit raw control bytes that
// make encoding/json reject otherwise valid documents.
func stripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

// stripCodeFences removes a surrounding markdown code fence, with or
// without a language tag, leaving the fenced body.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return s
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop a language tag like "json" on the fence line.
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(trimmed[:idx])
		if len(firstLine) <= 10 && !strings.ContainsAny(firstLine, "{}[]") {
			trimmed = trimmed[idx+1:]
		}
	}
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}

// parseStrict is a plain unmarshal of the whole text.
func parseStrict(text string) (*responseSchema, bool) {
	var schema responseSchema
	if err := json.Unmarshal([]byte(text), &schema); err != nil {
		return nil, false
	}
	return &schema, true
}

// parseFirstObject decodes the first complete JSON value from the text,
// ignoring anything after it. This recovers responses where the model
// appends prose after the JSON document.
func parseFirstObject(text string) (*responseSchema, bool) {
	dec := json.NewDecoder(strings.NewReader(text))
	var schema responseSchema
	if err := dec.Decode(&schema); err != nil {
		return nil, false
	}
	return &schema, true
}

// parseBraceTrim cuts the text down to the outermost balanced braces and
// retries. This recovers responses with prose on both sides of the JSON.
func parseBraceTrim(text string) (*responseSchema, bool) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end <= start {
		return nil, false
	}
	return parseStrict(text[start : end+1])
}

// entryObjectPattern matches individual JSON objects that look like
// per-position entries, keyed on a position-like field.
var entryObjectPattern = regexp.MustCompile(
	`\{[^{}]*"(?:position|index|no|p)"\s*:\s*"?\d+"?[^{}]*\}`)

// parseRegexExtract is the last resort: it harvests entry-shaped objects
// out of structurally broken text (for example an unterminated array) and
// rebuilds a minimal response from them.
func parseRegexExtract(text string) (*responseSchema, bool) {
	matches := entryObjectPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil, false
	}

	var buf bytes.Buffer
	buf.WriteString(`{"items":[`)
	written := 0
	for _, m := range matches {
		if !json.Valid([]byte(m)) {
			continue
		}
		if written > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(m)
		written++
	}
	if written == 0 {
		return nil, false
	}
	buf.WriteString(`]}`)

	return parseStrict(buf.String())
}
