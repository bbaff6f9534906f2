package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveStream(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	path, n, err := s.SaveStream("abc_essay.txt", strings.NewReader("hello world"), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(11), n)
	assert.Equal(t, filepath.Join(dir, "abc_essay.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	_, _, err = s.SaveStream("abc_essay.txt", strings.NewReader("again"), 100)
	assert.Error(t, err, "existing names are never overwritten")

	require.NoError(t, s.Delete("abc_essay.txt"))
	require.NoError(t, s.Delete("abc_essay.txt"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestSaveStreamTooLarge(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.SaveStream("big.txt", strings.NewReader("0123456789"), 5)
	assert.ErrorIs(t, err, ErrTooLarge)
	_, statErr := os.Stat(s.Path("big.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestPathStripsDirectories(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, s.Path("evil.txt"), s.Path("../../evil.txt"))
}
