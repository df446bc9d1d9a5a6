package files

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"codesight/internal/apperr"
	"codesight/internal/sniff"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCode(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "main.GO")
	require.NoError(t, os.WriteFile(good, []byte("package main\n"), 0o644))
	bad := filepath.Join(dir, "image.png")
	require.NoError(t, os.WriteFile(bad, []byte{0x89}, 0o644))

	code, err := ReadCode(good)
	require.NoError(t, err)
	assert.Equal(t, "package main\n", code)

	_, err = ReadCode(bad)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = ReadCode(filepath.Join(dir, "missing.py"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestListCode(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "a.py")
	newer := filepath.Join(dir, "b.ts")
	require.NoError(t, os.WriteFile(older, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(newer, []byte("y"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("z"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.js"), 0o755))

	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(older, past, past))

	got, err := ListCode(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{newer, older}, got)
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Loaded main.go (2 lines)", Summary("/src/main.go", "a\nb"))
	assert.Equal(t, "Loaded x.py (0 lines)", Summary("x.py", ""))
}

func TestSaveOutput(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)

	path, err := SaveOutput(dir, "print(1)\n", sniff.Python, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "optimized-code-2025-03-04T05-06-07.py"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "print(1)\n", string(data))

	_, err = SaveOutput(dir, "  ", sniff.Python, now)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	assert.Equal(t, "optimized-code-2025-03-04T05-06-07.txt", OutputName(sniff.PlainText, now))
}

func TestDiffStats(t *testing.T) {
	st, ok := DiffStats("a\nb\nc", "a\nB\nc\nd")
	require.True(t, ok)
	assert.Equal(t, 3, st.OriginalLines)
	assert.Equal(t, 4, st.OutputLines)
	assert.Equal(t, 2, st.Added)
	assert.Equal(t, 1, st.Removed)
	assert.Equal(t, 33, st.Change)
	assert.Equal(t, "+33%", st.Improvement())

	st, ok = DiffStats("a\nb\nc\nd", "a\nd")
	require.True(t, ok)
	assert.Equal(t, 0, st.Added)
	assert.Equal(t, 2, st.Removed)
	assert.Equal(t, "-50%", st.Improvement())

	st, ok = DiffStats("same\n", "same")
	require.True(t, ok)
	assert.Zero(t, st.Added)
	assert.Zero(t, st.Removed)
	assert.Equal(t, "0%", st.Improvement())

	_, ok = DiffStats("", "x")
	assert.False(t, ok)
}
