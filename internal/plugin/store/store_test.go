package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zettel/internal/logger"
)

type stats struct {
	Username string `json:"username"`
	Notes    int    `json:"numberOfNotes"`
}

func newPlugin(t *testing.T) *Plugin {
	t.Helper()
	p := New(filepath.Join(t.TempDir(), "data"), logger.Nop())
	require.NoError(t, p.Init(context.Background()))
	return p
}

func TestSetSaveReload(t *testing.T) {
	p := newPlugin(t)
	s, err := p.Load("user.json", Options{})
	require.NoError(t, err)

	require.NoError(t, s.Set("userStats", stats{Username: "ada", Notes: 3}))
	assert.True(t, s.Dirty())
	require.NoError(t, s.Save())
	assert.False(t, s.Dirty())

	fresh := New(p.Dir(), logger.Nop())
	s2, err := fresh.Load("user.json", Options{})
	require.NoError(t, err)

	var got stats
	ok, err := s2.Get("userStats", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stats{Username: "ada", Notes: 3}, got)
}

func TestGetMissingKey(t *testing.T) {
	p := newPlugin(t)
	s, err := p.Load("directories.json", Options{})
	require.NoError(t, err)

	var vault string
	ok, err := s.Get("currentVault", &vault)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, vault)
}

func TestReloadDiscardsUnsaved(t *testing.T) {
	p := newPlugin(t)
	s, err := p.Load("a.json", Options{})
	require.NoError(t, err)

	require.NoError(t, s.Set("k", 1))
	require.NoError(t, s.Reload())
	assert.False(t, s.Has("k"))
}

func TestAutoSaveWritesImmediately(t *testing.T) {
	p := newPlugin(t)
	s, err := p.Load("auto.json", Options{AutoSave: true})
	require.NoError(t, err)

	require.NoError(t, s.Set("k", "v"))
	_, err = os.Stat(s.Path())
	require.NoError(t, err)

	deleted, err := s.Delete("k")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.False(t, s.Dirty())
}

func TestLoadReturnsSameStore(t *testing.T) {
	p := newPlugin(t)
	a, err := p.Load("x.json", Options{})
	require.NoError(t, err)
	b, err := p.Load("x.json", Options{})
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestLoadRejectsPaths(t *testing.T) {
	p := newPlugin(t)
	for _, name := range []string{"", "../escape.json", "dir/file.json", ".hidden"} {
		_, err := p.Load(name, Options{})
		assert.True(t, errors.Is(err, ErrInvalidName), name)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	p := newPlugin(t)
	require.NoError(t, os.WriteFile(filepath.Join(p.Dir(), "bad.json"), []byte("{not json"), 0o644))

	_, err := p.Load("bad.json", Options{})
	assert.Error(t, err)
}

func TestCloseSavesDirtyStores(t *testing.T) {
	p := newPlugin(t)
	s, err := p.Load("late.json", Options{})
	require.NoError(t, err)
	require.NoError(t, s.Set("k", true))

	require.NoError(t, p.Close())

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"k": true`)
}

func TestKeysAndEntries(t *testing.T) {
	p := newPlugin(t)
	s, err := p.Load("k.json", Options{})
	require.NoError(t, err)
	require.NoError(t, s.Set("b", 2))
	require.NoError(t, s.Set("a", 1))

	assert.Equal(t, []string{"a", "b"}, s.Keys())
	entries := s.Entries()
	assert.JSONEq(t, "1", string(entries["a"]))
}

func TestLoadNullFileIsEmpty(t *testing.T) {
	p := newPlugin(t)
	require.NoError(t, os.WriteFile(filepath.Join(p.Dir(), "user.json"), []byte("null"), 0o644))

	s, err := p.Load("user.json", Options{})
	require.NoError(t, err)
	assert.Empty(t, s.Keys())

	require.NoError(t, s.Set("userStats", stats{Username: "ada"}))
	require.NoError(t, s.Save())
	require.NoError(t, s.Reload())
	assert.True(t, s.Has("userStats"))
}
