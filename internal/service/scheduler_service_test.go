package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDailySpec(t *testing.T) {
	spec, err := buildDailySpec("09:30")
	require.NoError(t, err)
	assert.Equal(t, "0 30 9 * * *", spec)
}

func TestBuildDailySpecRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "9", "24:00", "10:60", "ten:30", "10:30:00"} {
		_, err := buildDailySpec(raw)
		assert.Error(t, err, "expected %q to be rejected", raw)
	}
}
