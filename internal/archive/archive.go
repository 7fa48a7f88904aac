package archive

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"daily-intel/internal/types"
)

// Archive keeps a dated copy of each report on disk. It is best effort and
// never a source of truth for a run.
type Archive struct {
	mu            sync.Mutex
	dir           string
	retentionDays int
	loc           *time.Location
	now           func() time.Time
}

func New(dir string, retentionDays int, loc *time.Location) *Archive {
	if dir == "" {
		dir = "reports"
	}
	if loc == nil {
		loc = time.FixedZone("IST", 19800)
	}
	return &Archive{dir: dir, retentionDays: retentionDays, loc: loc, now: time.Now}
}

func (a *Archive) dailyPath(t time.Time, ext string) string {
	return filepath.Join(a.dir, t.In(a.loc).Format("2006-01-02")+ext)
}

// Save writes <dir>/YYYY-MM-DD.html and a .json copy of the bundle, both
// named for the bundle's generation day. A rerun on the same day replaces
// them.
func (a *Archive) Save(b *types.ReportBundle, html []byte) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	day := b.GeneratedAt
	if day.IsZero() {
		day = a.now()
	}
	p := a.dailyPath(day, ".html")
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	if err := writeFile(p, html); err != nil {
		return "", err
	}

	js, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return p, err
	}
	return p, writeFile(a.dailyPath(day, ".json"), js)
}

// writeFile goes through a temp file so a crash never leaves half a report.
func writeFile(p string, data []byte) error {
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, p)
}

// CompressOlder gzips archived reports last modified before the retention
// window and returns how many it compressed. Files it cannot handle are
// skipped.
func (a *Archive) CompressOlder() (int, error) {
	if a.retentionDays <= 0 {
		return 0, nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	cutoff := a.now().AddDate(0, 0, -a.retentionDays)
	n := 0
	err := filepath.WalkDir(a.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			if p == a.dir && os.IsNotExist(err) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if ext := filepath.Ext(p); ext != ".html" && ext != ".json" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		// an earlier run compressed it but could not remove the original
		if _, err := os.Stat(gz); err == nil {
			_ = os.Remove(p)
			return nil
		}
		if gzipFile(p, gz) == nil {
			_ = os.Remove(p)
			n++
		}
		return nil
	})
	return n, err
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}
