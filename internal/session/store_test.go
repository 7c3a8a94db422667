package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_LoadMissing(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent"), nil)

	set, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, set)
}

func TestFileStore_SaveLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), ".crossref")
	store := NewFileStore(dir, nil)

	want := CookieSet{
		{Name: "li_at", Value: "token", Domain: ".linkedin.com", Path: "/", Secure: true, HTTPOnly: true, SameSite: "None", Expires: 1767225600},
		{Name: "JSESSIONID", Value: "ajax:1"},
	}
	require.NoError(t, store.Save(want))

	got, ok, err := store.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)

	st, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
}

func TestFileStore_SaveReplaces(t *testing.T) {
	store := NewFileStore(t.TempDir(), nil)

	require.NoError(t, store.Save(CookieSet{{Name: "old", Value: "1"}}))
	require.NoError(t, store.Save(CookieSet{{Name: "new", Value: "2"}}))

	got, ok, err := store.Load()
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].Name)

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp", "temp file left behind")
	}
}

func TestFileStore_LoadUnusable(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "malformed json", content: `{not json`},
		{name: "not an array", content: `{"name": "li_at"}`},
		{name: "missing name", content: `[{"value": "x"}]`},
		{name: "empty name", content: `[{"name": "", "value": "x"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, CookieFileName), []byte(tt.content), 0o600))

			set, ok, err := NewFileStore(dir, nil).Load()
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, set)
		})
	}
}

func TestFileStore_Clear(t *testing.T) {
	store := NewFileStore(t.TempDir(), nil)
	require.NoError(t, store.Save(CookieSet{{Name: "a", Value: "1"}}))

	require.NoError(t, store.Clear())
	_, ok, err := store.Load()
	require.NoError(t, err)
	assert.False(t, ok)

	// clearing twice is fine
	assert.NoError(t, store.Clear())
}

func TestFileStore_ClearMissingDir(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nope"), nil)
	assert.NoError(t, store.Clear())
}

func TestFileStore_Info(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(dir, nil)

	info, err := store.Info()
	require.NoError(t, err)
	assert.False(t, info.Exists)
	assert.Equal(t, filepath.Join(dir, CookieFileName), info.Path)

	require.NoError(t, store.Save(CookieSet{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}}))
	info, err = store.Info()
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.True(t, info.Valid)
	assert.Equal(t, 2, info.Cookies)
	assert.False(t, info.Modified.IsZero())

	require.NoError(t, os.WriteFile(store.Path(), []byte("garbage"), 0o600))
	info, err = store.Info()
	require.NoError(t, err)
	assert.True(t, info.Exists)
	assert.False(t, info.Valid)
}
