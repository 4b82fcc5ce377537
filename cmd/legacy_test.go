package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		in   []string
		want []string
	}{
		{[]string{"--add", "vm1", "2", "0"}, []string{"add", "vm1", "2", "0"}},
		{[]string{"--add-manual", "vm1", "1,3"}, []string{"add-manual", "vm1", "1,3"}},
		{[]string{"--remove", "vm1"}, []string{"remove", "vm1"}},
		{[]string{"--list"}, []string{"list"}},
		{[]string{"--topology"}, []string{"topology"}},
		{[]string{"--free-cpus"}, []string{"free-cpus"}},
		{[]string{"--help"}, []string{"help"}},
		{[]string{"add", "vm1", "2", "0"}, []string{"add", "vm1", "2", "0"}},
		{[]string{"--state-file", "/tmp/x", "list"}, []string{"--state-file", "/tmp/x", "list"}},
		{nil, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeLegacyArgs(tt.in))
	}
}

func TestNormalizeLegacyArgsDoesNotMutateInput(t *testing.T) {
	in := []string{"--add", "vm1"}
	_ = NormalizeLegacyArgs(in)
	assert.Equal(t, []string{"--add", "vm1"}, in)
}
