package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c := New(t.TempDir(), time.Minute)

	type payload struct {
		Tasks []string `json:"tasks"`
	}
	want := payload{Tasks: []string{"a", "b"}}

	require.NoError(t, c.Set("k1", want))

	var got payload
	hit, err := c.Get("k1", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, want, got)
}

func TestCache_MissOnAbsent(t *testing.T) {
	c := New(t.TempDir(), time.Minute)

	var out map[string]any
	hit, err := c.Get("nope", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCache_ExpiredEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, 50*time.Millisecond)

	require.NoError(t, c.Set("k", "v"))

	// Backdate the entry past the TTL.
	path := filepath.Join(dir, "k.json")
	old := time.Now().Add(-time.Minute)
	require.NoError(t, os.Chtimes(path, old, old))

	var out string
	hit, err := c.Get("k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "expired entry should be removed")
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, time.Minute)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0o644))

	var out map[string]any
	hit, err := c.Get("bad", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestCache_Clear(t *testing.T) {
	dir := t.TempDir()
	c := New(dir, time.Minute)

	require.NoError(t, c.Set("a", 1))
	require.NoError(t, c.Set("b", 2))
	require.NoError(t, c.Clear())

	var out int
	hit, err := c.Get("a", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	// Clearing an empty or missing directory is fine.
	assert.NoError(t, New(filepath.Join(dir, "absent"), time.Minute).Clear())
}

func TestKey_Stable(t *testing.T) {
	k1, err := Key(map[string]any{"status": "active", "limit": 50})
	require.NoError(t, err)
	k2, err := Key(map[string]any{"status": "active", "limit": 50})
	require.NoError(t, err)
	k3, err := Key(map[string]any{"status": "done", "limit": 50})
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}
