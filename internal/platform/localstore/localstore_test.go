package localstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("greeting", payload{Name: "chef", Count: 3}))

	var got payload
	ok, err := store.Get("greeting", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, payload{Name: "chef", Count: 3}, got)
}

func TestMissingKey(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	var got payload
	ok, err := store.Get("absent", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSurvivesReload(t *testing.T) {
	dir := t.TempDir()

	store, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("token", "tok-123"))

	reloaded, err := New(dir)
	require.NoError(t, err)

	var token string
	ok, err := reloaded.Get("token", &token)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "tok-123", token)
}

func TestDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("token", "tok-123"))
	require.NoError(t, store.Delete("token"))
	require.NoError(t, store.Delete("token")) // absent key is a no-op

	var token string
	ok, err := store.Get("token", &token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCorruptFileDegradesToEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte("{not json"), 0o600))

	store, err := New(dir)
	require.NoError(t, err)

	var got string
	ok, err := store.Get("anything", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}
