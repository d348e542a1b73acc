package llmutils_test

import (
	"testing"

	"github.com/lmfoundry/locallm/llmutils"
	"github.com/stretchr/testify/assert"
)

func TestCleanJSON(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `{"a":1}`, string(llmutils.CleanJSON([]byte(`Sure, here you go: {"a":1}`))))
	assert.Equal(t, `{"a":1}`, string(llmutils.CleanJSON([]byte(`{"a":1} hope that helps!`))))
	assert.Equal(t, `[1,2]`, string(llmutils.CleanJSON([]byte("```json\n[1,2]\n```"))))
	// nothing JSON-like: returned as is
	assert.Equal(t, `plain text`, string(llmutils.CleanJSON([]byte(`plain text`))))
}

func TestTrimBackticks(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `{"a":1}`, llmutils.TrimBackticks("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, llmutils.TrimBackticks("```\n{\"a\":1}\n```"))
	assert.Equal(t, `no fences`, llmutils.TrimBackticks(`no fences`))
}

func TestToJSON(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `{"x":1}`, llmutils.ToJSON(map[string]int{"x": 1}))
	assert.Contains(t, llmutils.ToJSONIndent(map[string]int{"x": 1}), "\t")
	assert.Contains(t, llmutils.BackticksJSON(`{"x":1}`), "```json")
	assert.Contains(t, llmutils.ToYAML(map[string]int{"x": 1}), "x: 1")
}
