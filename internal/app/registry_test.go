package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auralab/auralab/internal/core"
)

type nopSignal struct{}

func (nopSignal) TrySend(core.Frame) error { return nil }
func (nopSignal) Close()                   {}

func TestBindRejectsSecondLobby(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Bind("c1", "lb1", true, nopSignal{}))
	err := r.Bind("c1", "lb2", false, nopSignal{})
	assert.ErrorIs(t, err, ErrAlreadyBound)

	b, ok := r.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "lb1", string(b.Lobby))
	assert.True(t, b.IsHost)
}

type taggedSignal struct {
	nopSignal
	tag string
}

func TestUpdateSignalRepointsBinding(t *testing.T) {
	r := NewRegistry()

	assert.False(t, r.UpdateSignal("c1", taggedSignal{tag: "new"}))

	require.NoError(t, r.Bind("c1", "lb1", true, taggedSignal{tag: "old"}))
	assert.True(t, r.UpdateSignal("c1", taggedSignal{tag: "new"}))

	b, ok := r.Get("c1")
	require.True(t, ok)
	assert.Equal(t, "new", b.Signal.(taggedSignal).tag)
	assert.Equal(t, "lb1", string(b.Lobby))
	assert.True(t, b.IsHost)
}

func TestUnbindIsIdempotent(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Bind("c1", "lb1", false, nopSignal{}))

	r.Unbind("c1")
	r.Unbind("c1") // disconnect-after-leave race: must be a no-op

	_, ok := r.Get("c1")
	assert.False(t, ok)

	// A fresh bind after unbind succeeds.
	assert.NoError(t, r.Bind("c1", "lb2", false, nopSignal{}))
}
