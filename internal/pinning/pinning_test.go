package pinning

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "0#1_1#3_2#7", String([]int{1, 3, 7}))
	assert.Equal(t, "0#5", String([]int{5}))
	assert.Equal(t, "", String(nil))
}

func TestStringOrderIndependent(t *testing.T) {
	want := "0#1_1#3_2#7"
	for _, perm := range [][]int{
		{1, 3, 7}, {1, 7, 3}, {3, 1, 7}, {3, 7, 1}, {7, 1, 3}, {7, 3, 1},
	} {
		assert.Equal(t, want, String(perm))
	}
}

func TestStringDedupes(t *testing.T) {
	assert.Equal(t, "0#1_1#3", String([]int{3, 1, 3, 1}))
}

func TestRanges(t *testing.T) {
	tests := []struct {
		cpus []int
		want string
	}{
		{nil, ""},
		{[]int{4}, "4"},
		{[]int{0, 1, 2, 3}, "0-3"},
		{[]int{0, 1, 2, 3, 8, 10, 11}, "0-3,8,10-11"},
		{[]int{11, 10, 8, 3, 2, 1, 0}, "0-3,8,10-11"},
		{[]int{5, 5, 6}, "5-6"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Ranges(tt.cpus))
	}
}
