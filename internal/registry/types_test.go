package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProbeStatusPresentation(t *testing.T) {
	statuses := []ProbeStatus{StatusPending, StatusRefreshing, StatusOK, StatusFailed}
	seen := map[string]bool{}
	for _, s := range statuses {
		assert.NotEmpty(t, s.Icon())
		assert.NotEmpty(t, string(s.Color()))
		seen[s.IconFallback()] = true
		assert.Equal(t, string(s), s.String())
	}
	assert.Len(t, seen, len(statuses))
}
