package utils

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeWriteWith(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out.txt")
	require.NoError(t, SafeWriteWith(p, func(w io.Writer) error {
		_, err := io.WriteString(w, "hello")
		return err
	}))
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(b))

	boom := errors.New("boom")
	bad := filepath.Join(dir, "bad.txt")
	assert.ErrorIs(t, SafeWriteWith(bad, func(io.Writer) error { return boom }), boom)
	_, err = os.Stat(bad)
	assert.True(t, os.IsNotExist(err))
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, EnsureDir(nested))
	require.NoError(t, SafeWriteFile(filepath.Join(root, ProjectFileName), []byte("{}")))

	got, err := FindProjectRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, root, got)

	_, err = FindProjectRoot(t.TempDir())
	assert.ErrorIs(t, err, ErrNoProjectRoot)
}
