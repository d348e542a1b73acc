// Package llmutils holds small helpers for wrangling LLM output, which
// often arrives with prose or code fences around the JSON payload.
package llmutils

import (
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// CleanJSON trims any prose before the first JSON opener and after the
// last closer, e.g. `Sure, here you go: {...}`.
func CleanJSON(bs []byte) []byte {
	start := firstIndex(bs, '{', '[')
	if start >= 0 {
		bs = bs[start:]
	}
	end := lastIndex(bs, '}', ']')
	if end >= 0 {
		bs = bs[:end+1]
	}
	return bs
}

func firstIndex(bs []byte, a, b byte) int {
	ia, ib := bytes.IndexByte(bs, a), bytes.IndexByte(bs, b)
	switch {
	case ia < 0:
		return ib
	case ib < 0:
		return ia
	}
	return min(ia, ib)
}

func lastIndex(bs []byte, a, b byte) int {
	return max(bytes.LastIndexByte(bs, a), bytes.LastIndexByte(bs, b))
}

// TrimBackticks strips a surrounding ```json ... ``` fence, if present.
func TrimBackticks(text string) string {
	const fence = "```"
	start := strings.Index(text, fence)
	if start < 0 {
		return text
	}
	rest := text[start+len(fence):]
	// skip the language tag on the opening fence
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		if open := strings.IndexAny(rest[:nl], "{["); open < 0 {
			rest = rest[nl+1:]
		}
	}
	if end := strings.LastIndex(rest, fence); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

func ToJSON(val any) string {
	js, _ := json.Marshal(val)
	return string(js)
}

func ToJSONIndent(val any) string {
	js, _ := json.MarshalIndent(val, "", "\t")
	return string(js)
}

func ToYAML(val any) string {
	ys, _ := yaml.Marshal(val)
	return string(ys)
}

func BackticksJSON(js string) string {
	return "\n```json\n" + strings.TrimSpace(js) + "\n```\n"
}
