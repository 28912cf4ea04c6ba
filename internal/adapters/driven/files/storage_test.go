package files

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/intake/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestStorage_Open(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.txt", "hello")

	rc, err := New().Open(context.Background(), p)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestStorage_Open_Missing(t *testing.T) {
	_, err := New().Open(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, domain.ErrIO)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStorage_Remove(t *testing.T) {
	dir := t.TempDir()
	p := writeFile(t, dir, "a.txt", "hello")
	s := New()

	require.NoError(t, s.Remove(context.Background(), p))
	_, err := os.Stat(p)
	assert.True(t, os.IsNotExist(err))

	// Second removal is a no-op
	assert.NoError(t, s.Remove(context.Background(), p))
}

func TestStorage_Stage(t *testing.T) {
	src := writeFile(t, t.TempDir(), "Report.PDF", "bytes")
	dest := t.TempDir()
	s := New()

	staged, err := s.Stage(context.Background(), src, dest)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(staged, dest))
	assert.Equal(t, ".PDF", filepath.Ext(staged))

	data, err := os.ReadFile(staged)
	require.NoError(t, err)
	assert.Equal(t, "bytes", string(data))

	// The source is untouched
	_, err = os.Stat(src)
	assert.NoError(t, err)

	size, err := s.Size(context.Background(), staged)
	require.NoError(t, err)
	assert.Equal(t, int64(5), size)
}

func TestStorage_Stage_MissingSource(t *testing.T) {
	_, err := New().Stage(context.Background(), filepath.Join(t.TempDir(), "nope"), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrIO)
}
