package debounce

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reload struct{ query string }

func TestOnlyLatestTriggerSettles(t *testing.T) {
	d := New(time.Millisecond)

	first := d.Trigger(reload{"c"})
	second := d.Trigger(reload{"cr"})
	require.True(t, d.IsActive())

	_, ok := d.Settled(first().(FiredMsg))
	assert.False(t, ok, "superseded trigger")

	msg, ok := d.Settled(second().(FiredMsg))
	require.True(t, ok)
	assert.Equal(t, reload{"cr"}, msg)
	assert.False(t, d.IsActive())

	_, ok = d.Settled(second().(FiredMsg))
	assert.False(t, ok, "a fired trigger settles once")
}

func TestCancelDropsPending(t *testing.T) {
	d := New(time.Millisecond)
	cmd := d.Trigger(reload{"x"})
	d.Cancel()
	assert.False(t, d.IsActive())

	_, ok := d.Settled(cmd().(FiredMsg))
	assert.False(t, ok)
}

func TestForeignMessageIgnored(t *testing.T) {
	a, b := New(time.Millisecond), New(time.Millisecond)
	cmd := a.Trigger(reload{"x"})
	b.Trigger(reload{"y"})

	_, ok := b.Settled(cmd().(FiredMsg))
	assert.False(t, ok)
}
