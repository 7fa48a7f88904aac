package archive

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daily-intel/internal/types"
)

var ist = time.FixedZone("IST", 19800)

func TestSaveUsesReportDay(t *testing.T) {
	dir := t.TempDir()
	a := New(dir, 30, ist)

	// 20:00 UTC on the 7th is already the 8th in IST
	b := &types.ReportBundle{RunID: "run-1", GeneratedAt: time.Date(2025, 3, 7, 20, 0, 0, 0, time.UTC)}
	p, err := a.Save(b, []byte("<html>one</html>"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2025-03-08.html"), p)

	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "<html>one</html>", string(got))

	js, err := os.ReadFile(filepath.Join(dir, "2025-03-08.json"))
	require.NoError(t, err)
	assert.Contains(t, string(js), `"run_id": "run-1"`)

	_, err = a.Save(b, []byte("<html>two</html>"))
	require.NoError(t, err)
	got, _ = os.ReadFile(p)
	assert.Equal(t, "<html>two</html>", string(got))
}

func TestCompressOlder(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 3, 8, 5, 0, 0, 0, ist)
	a := New(dir, 7, ist)
	a.now = func() time.Time { return now }

	old := filepath.Join(dir, "2025-02-20.html")
	fresh := filepath.Join(dir, "2025-03-07.html")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{old, fresh, other} {
		require.NoError(t, os.WriteFile(p, []byte("report "+filepath.Base(p)), 0o644))
	}
	stale := now.AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(old, stale, stale))
	require.NoError(t, os.Chtimes(other, stale, stale))
	require.NoError(t, os.Chtimes(fresh, now.Add(-time.Hour), now.Add(-time.Hour)))

	n, err := a.CompressOlder()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, other)

	f, err := os.Open(old + ".gz")
	require.NoError(t, err)
	defer f.Close()
	gr, err := gzip.NewReader(f)
	require.NoError(t, err)
	body, err := io.ReadAll(gr)
	require.NoError(t, err)
	assert.Equal(t, "report 2025-02-20.html", string(body))
}

func TestCompressOlderDisabledOrMissingDir(t *testing.T) {
	n, err := New(t.TempDir(), 0, ist).CompressOlder()
	assert.NoError(t, err)
	assert.Zero(t, n)

	n, err = New(filepath.Join(t.TempDir(), "absent"), 7, ist).CompressOlder()
	assert.NoError(t, err)
	assert.Zero(t, n)
}
