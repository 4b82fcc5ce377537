package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinvirt/internal/topology"
)

// Two sockets, two cores per socket, two threads per core, with logical ids
// laid out the way x86 firmware usually numbers them: first threads 0..3,
// sibling threads 16..19.
func sampleTopology() *topology.Topology {
	return &topology.Topology{CPUs: []topology.LogicalCPU{
		{ID: 0, CoreID: 0, SocketID: 0},
		{ID: 16, CoreID: 0, SocketID: 0},
		{ID: 1, CoreID: 1, SocketID: 0},
		{ID: 17, CoreID: 1, SocketID: 0},
		{ID: 2, CoreID: 0, SocketID: 1},
		{ID: 18, CoreID: 0, SocketID: 1},
		{ID: 3, CoreID: 1, SocketID: 1},
		{ID: 19, CoreID: 1, SocketID: 1},
	}}
}

func noneUsed() map[int]bool { return map[int]bool{} }

func TestAllocateOneThreadPerCore(t *testing.T) {
	got, err := Allocate(sampleTopology(), Request{VCPUs: 2, TargetSocket: 0}, noneUsed())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, got)
}

func TestAllocateInsufficientPhysicalCores(t *testing.T) {
	used := map[int]bool{0: true, 16: true, 1: true, 17: true}
	_, err := Allocate(sampleTopology(), Request{VCPUs: 2, TargetSocket: 0}, used)
	assert.ErrorIs(t, err, ErrInsufficientCores)
}

func TestAllocateMultiSocketFallback(t *testing.T) {
	used := map[int]bool{0: true, 16: true, 1: true, 17: true}
	got, err := Allocate(sampleTopology(),
		Request{VCPUs: 2, TargetSocket: 0, AllowMultiSocket: true}, used)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, got)
}

func TestAllocatePrefersTargetSocketBeforeSpilling(t *testing.T) {
	// Multi-socket permits spillover but socket 0 must be exhausted first.
	got, err := Allocate(sampleTopology(),
		Request{VCPUs: 3, TargetSocket: 0, AllowMultiSocket: true}, noneUsed())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)
}

func TestAllocateHyperthreadPacking(t *testing.T) {
	got, err := Allocate(sampleTopology(),
		Request{VCPUs: 3, TargetSocket: 0, UseHyperthreads: true}, noneUsed())
	require.NoError(t, err)
	// Both threads of core (0,0) before the first thread of core (0,1),
	// returned sorted ascending.
	assert.Equal(t, []int{0, 1, 16}, got)
}

func TestAllocateHyperthreadInsufficientThreads(t *testing.T) {
	_, err := Allocate(sampleTopology(),
		Request{VCPUs: 5, TargetSocket: 0, UseHyperthreads: true}, noneUsed())
	assert.ErrorIs(t, err, ErrInsufficientCores)
}

func TestAllocateNoSuchSocket(t *testing.T) {
	_, err := Allocate(sampleTopology(), Request{VCPUs: 1, TargetSocket: 99}, noneUsed())
	assert.ErrorIs(t, err, ErrNoSuchSocket)
}

func TestAllocateInvalidRequest(t *testing.T) {
	for _, vcpus := range []int{0, -3} {
		_, err := Allocate(sampleTopology(), Request{VCPUs: vcpus, TargetSocket: NoSocket}, noneUsed())
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
}

func TestAllocateNoPreference(t *testing.T) {
	got, err := Allocate(sampleTopology(), Request{VCPUs: 4, TargetSocket: NoSocket}, noneUsed())
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, got)
}

func TestAllocatePartiallyUsedCore(t *testing.T) {
	// First thread of core (0,0) taken: the non-HT strategy must pick the
	// sibling as that core's representative.
	used := map[int]bool{0: true}
	got, err := Allocate(sampleTopology(), Request{VCPUs: 2, TargetSocket: 0}, used)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 16}, got)
}

func TestAllocateNeverDoubleAllocates(t *testing.T) {
	topo := sampleTopology()
	used := map[int]bool{}

	for i := 0; i < 4; i++ {
		got, err := Allocate(topo,
			Request{VCPUs: 2, TargetSocket: NoSocket, UseHyperthreads: true}, used)
		require.NoError(t, err)
		for _, id := range got {
			require.False(t, used[id], "cpu %d allocated twice", id)
			used[id] = true
		}
	}
	assert.Len(t, used, 8)

	_, err := Allocate(topo, Request{VCPUs: 1, TargetSocket: NoSocket, UseHyperthreads: true}, used)
	assert.ErrorIs(t, err, ErrInsufficientCores)
}

func TestAllocateDeterministic(t *testing.T) {
	req := Request{VCPUs: 3, TargetSocket: 1, AllowMultiSocket: true, UseHyperthreads: true}
	first, err := Allocate(sampleTopology(), req, noneUsed())
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Allocate(sampleTopology(), req, noneUsed())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
