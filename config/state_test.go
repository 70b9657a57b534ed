package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewState(dir)
	defer s.Close()

	require.NoError(t, s.SetHelpScreensSeen(0b101))
	require.NoError(t, s.SetLastResource("alerts"))

	loaded := NewState(dir)
	defer loaded.Close()
	require.NoError(t, loaded.RefreshState())
	assert.Equal(t, uint32(0b101), loaded.GetHelpScreensSeen())
	assert.Equal(t, "alerts", loaded.GetLastResource())

	_, err := os.Stat(filepath.Join(dir, StateFileName+".tmp"))
	assert.True(t, os.IsNotExist(err), "temporary file is renamed away")
}

func TestSaveMergesSeenScreens(t *testing.T) {
	dir := t.TempDir()
	a, b := NewState(dir), NewState(dir)
	defer a.Close()
	defer b.Close()

	require.NoError(t, a.SetHelpScreensSeen(0b001))
	require.NoError(t, b.SetHelpScreensSeen(0b100))

	fresh := NewState(dir)
	defer fresh.Close()
	require.NoError(t, fresh.RefreshState())
	assert.Equal(t, uint32(0b101), fresh.GetHelpScreensSeen())
}

func TestLoadStateUsesHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	s := LoadState()
	defer s.Close()
	assert.Zero(t, s.GetHelpScreensSeen())
	require.NoError(t, s.SetLastResource("roles"))

	_, err := os.Stat(filepath.Join(home, ".bizdesk", StateFileName))
	assert.NoError(t, err)
}

func TestCorruptStateFileIsReported(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StateFileName), []byte("{"), 0644))
	s := NewState(dir)
	defer s.Close()
	assert.Error(t, s.RefreshState())
}
