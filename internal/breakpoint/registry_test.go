package breakpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coredbg/clrdbg/internal/corapi"
)

type fakeNative struct {
	armed   bool
	armErr  error
	armCalls, disarmCalls int
}

func (n *fakeNative) Arm() error {
	n.armCalls++
	if n.armErr != nil {
		return n.armErr
	}
	n.armed = true
	return nil
}

func (n *fakeNative) Disarm() error {
	n.disarmCalls++
	n.armed = false
	return nil
}

type fakeBackend struct {
	docs    []corapi.PDBDocument
	natives map[uint32]map[uint32]*fakeNative
}

func newFakeBackend(docs []corapi.PDBDocument) *fakeBackend {
	return &fakeBackend{docs: docs, natives: make(map[uint32]map[uint32]*fakeNative)}
}

func (b *fakeBackend) Documents() ([]corapi.PDBDocument, error) { return b.docs, nil }

func (b *fakeBackend) CreateNativeBreakpoint(moduleID uint64, methodToken, ilOffset uint32) (corapi.NativeBreakpoint, error) {
	if b.natives[methodToken] == nil {
		b.natives[methodToken] = make(map[uint32]*fakeNative)
	}
	n := &fakeNative{}
	b.natives[methodToken][ilOffset] = n
	return n, nil
}

func sampleDocs() []corapi.PDBDocument {
	return []corapi.PDBDocument{
		{
			Path: "C:\\src\\Program.cs",
			Methods: []corapi.PDBMethod{
				{
					Token: 100, FirstLine: 1, LastLine: 20,
					SequencePoints: []corapi.SequencePoint{
						{StartLine: 5, EndLine: 5, ILOffset: 10},
						{StartLine: 10, EndLine: 10, ILOffset: 20},
					},
				},
				{
					// Nested local function: innermost (largest FirstLine <= line).
					Token: 101, FirstLine: 8, LastLine: 12,
					SequencePoints: []corapi.SequencePoint{
						{StartLine: 9, EndLine: 9, ILOffset: 4},
					},
				},
			},
		},
	}
}

func TestSetBreakpointResolvesAndArms(t *testing.T) {
	backend := newFakeBackend(sampleDocs())
	r := NewRegistry(backend)

	bp, err := r.SetBreakpoint("bp1", "Program.cs", 5, 1, "", true)
	require.NoError(t, err)
	assert.Equal(t, Armed, bp.State())
	assert.Equal(t, uint32(100), bp.Resolution().MethodToken)
	assert.Equal(t, uint32(10), bp.Resolution().ILOffset)
	assert.True(t, backend.natives[100][10].armed)
}

func TestSetBreakpointPicksInnermostMethod(t *testing.T) {
	backend := newFakeBackend(sampleDocs())
	r := NewRegistry(backend)

	bp, err := r.SetBreakpoint("bp1", "Program.cs", 9, 1, "", true)
	require.NoError(t, err)
	assert.Equal(t, uint32(101), bp.Resolution().MethodToken)
	assert.Equal(t, uint32(4), bp.Resolution().ILOffset)
}

func TestSetBreakpointUnbindable(t *testing.T) {
	backend := newFakeBackend(sampleDocs())
	r := NewRegistry(backend)

	bp, err := r.SetBreakpoint("bp1", "Program.cs", 999, 1, "", true)
	require.NoError(t, err)
	assert.Equal(t, Unresolved, bp.State())
	assert.NotEmpty(t, bp.FailReason())
}

func TestMultiplexingSharesOneArming(t *testing.T) {
	backend := newFakeBackend(sampleDocs())
	r := NewRegistry(backend)

	bp1, err := r.SetBreakpoint("bp1", "Program.cs", 5, 1, "", true)
	require.NoError(t, err)
	bp2, err := r.SetBreakpoint("bp2", "Program.cs", 5, 1, "x > 0", true)
	require.NoError(t, err)

	assert.Equal(t, bp1.Resolution(), bp2.Resolution())
	loc, ok := r.FindLocation(0, 100, 10)
	require.True(t, ok)
	assert.Len(t, loc.Breakpoints(), 2)
	assert.Equal(t, 1, backend.natives[100][10].armCalls)
}

func TestDisableOneOfTwoKeepsArmed(t *testing.T) {
	backend := newFakeBackend(sampleDocs())
	r := NewRegistry(backend)

	_, err := r.SetBreakpoint("bp1", "Program.cs", 5, 1, "", true)
	require.NoError(t, err)
	_, err = r.SetBreakpoint("bp2", "Program.cs", 5, 1, "", true)
	require.NoError(t, err)

	require.NoError(t, r.SetEnabled("bp1", false))
	assert.True(t, backend.natives[100][10].armed)

	require.NoError(t, r.SetEnabled("bp2", false))
	assert.False(t, backend.natives[100][10].armed)
}

func TestRemoveRetiresAndDisarmsWhenEmpty(t *testing.T) {
	backend := newFakeBackend(sampleDocs())
	r := NewRegistry(backend)

	bp, err := r.SetBreakpoint("bp1", "Program.cs", 5, 1, "", true)
	require.NoError(t, err)
	require.NoError(t, r.Remove("bp1"))
	assert.Equal(t, Retired, bp.State())
	_, ok := r.FindLocation(0, 100, 10)
	assert.False(t, ok)
}

func TestOnModuleLoadReresolvesUnresolved(t *testing.T) {
	backend := newFakeBackend(nil)
	r := NewRegistry(backend)

	bp, err := r.SetBreakpoint("bp1", "Program.cs", 5, 1, "", true)
	require.NoError(t, err)
	assert.Equal(t, Unresolved, bp.State())

	backend.docs = sampleDocs()
	require.NoError(t, r.OnModuleLoad())
	assert.Equal(t, Armed, bp.State())
}
