package metricskey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsDefinitions(t *testing.T) {
	for _, m := range Metrics {
		require.NotNil(t, m)
		assert.NotEmpty(t, m.Name, "metric name must not be empty")
		assert.NotEmpty(t, m.Help, "metric %s must have help text", m.Name)
		assert.NotEmpty(t, m.RequiredTags, "metric %s must declare tags", m.Name)
	}
}

func TestMetricsUniqueNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Metrics {
		assert.False(t, seen[m.Name], "duplicate metric name %s", m.Name)
		seen[m.Name] = true
	}
}
