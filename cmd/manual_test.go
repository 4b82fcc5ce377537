package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCPUList(t *testing.T) {
	cpus, err := parseCPUList("7, 3,1")
	require.NoError(t, err)
	assert.Equal(t, []int{7, 3, 1}, cpus)

	cpus, err = parseCPUList("5")
	require.NoError(t, err)
	assert.Equal(t, []int{5}, cpus)
}

func TestParseCPUListErrors(t *testing.T) {
	for _, raw := range []string{"", " , ,", "1,two,3", "1,2,1"} {
		_, err := parseCPUList(raw)
		assert.ErrorIs(t, err, ErrInvalidArguments, "input %q", raw)
	}
}

func TestManualValidationErrorMessage(t *testing.T) {
	err := &ManualValidationError{
		Unknown:   []int{42, 43},
		InUse:     []int{0},
		Available: []int{1, 2, 3},
	}
	msg := err.Error()
	assert.Contains(t, msg, "non-existent CPU ids: 42-43")
	assert.Contains(t, msg, "CPUs already in use: 0")
	assert.Contains(t, msg, "available CPUs: 1-3")
}
