package views

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playerload/internal/storage"
)

func TestHistoryView_NoStore(t *testing.T) {
	v := NewHistoryView(nil)

	out := v.View()
	assert.Contains(t, out, "History unavailable")
	assert.NotContains(t, out, "--history")
}

func TestHistoryView_EmptyStore(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()

	v := NewHistoryView(store)
	assert.Contains(t, v.View(), "No history found.")
}
