package files

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"codesight/internal/apperr"
	"codesight/internal/sniff"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const maxFileBytes = 256 << 10

// AllowedExtensions are the file types that can be attached.
var AllowedExtensions = []string{
	".js", ".ts", ".py", ".java", ".cpp", ".cs", ".go", ".rs",
	".php", ".rb", ".html", ".css", ".sql", ".json", ".txt",
}

func allowed(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, a := range AllowedExtensions {
		if ext == a {
			return true
		}
	}
	return false
}

// ReadCode reads a source file for attaching.
func ReadCode(path string) (string, error) {
	if !allowed(path) {
		return "", apperr.Validation(fmt.Sprintf("unsupported file type %q (allowed: %s)",
			filepath.Ext(path), strings.Join(AllowedExtensions, " ")))
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", apperr.Validation(fmt.Sprintf("%s is a directory", path))
	}
	if info.Size() > maxFileBytes {
		return "", apperr.Validation(fmt.Sprintf("%s is too large (%d bytes)", filepath.Base(path), info.Size()))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Summary is a one-line description of a loaded file.
func Summary(path, content string) string {
	return fmt.Sprintf("Loaded %s (%d lines)", filepath.Base(path), countLines(content))
}

// ListCode returns the attachable files in dir, newest first.
func ListCode(dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	type fileInfo struct {
		path  string
		mtime time.Time
	}

	var infos []fileInfo
	for _, e := range entries {
		if e.IsDir() || !allowed(e.Name()) {
			continue
		}
		fi := fileInfo{path: filepath.Join(dir, e.Name())}
		if stat, err := e.Info(); err == nil {
			fi.mtime = stat.ModTime()
		}
		infos = append(infos, fi)
	}

	sort.SliceStable(infos, func(i, j int) bool {
		return infos[i].mtime.After(infos[j].mtime)
	})

	out := make([]string, 0, len(infos))
	for _, fi := range infos {
		out = append(out, fi.path)
	}
	return out, nil
}

// OutputName is optimized-code-<UTC timestamp>.<ext for lang>.
func OutputName(lang sniff.Language, now time.Time) string {
	return fmt.Sprintf("optimized-code-%s.%s", now.UTC().Format("2006-01-02T15-04-05"), lang.Extension())
}

// SaveOutput writes code into dir and returns the file path.
func SaveOutput(dir, code string, lang sniff.Language, now time.Time) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", apperr.Validation("no optimized code to save")
	}
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, OutputName(lang, now))
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// Stats compares attached code with optimized code line by line.
type Stats struct {
	OriginalLines int
	OutputLines   int
	Added         int
	Removed       int
	// Change is the line-count change in percent, rounded.
	Change int
}

func (s Stats) Improvement() string {
	if s.Change > 0 {
		return fmt.Sprintf("+%d%%", s.Change)
	}
	return fmt.Sprintf("%d%%", s.Change)
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}

func withNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

// DiffStats reports false when either side is empty.
func DiffStats(original, output string) (Stats, bool) {
	if original == "" || output == "" {
		return Stats{}, false
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(withNewline(original), withNewline(output))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	st := Stats{OriginalLines: countLines(original), OutputLines: countLines(output)}
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			st.Added += countLines(d.Text)
		case diffmatchpatch.DiffDelete:
			st.Removed += countLines(d.Text)
		}
	}
	st.Change = int(math.Round(float64(st.OutputLines-st.OriginalLines) / float64(st.OriginalLines) * 100))
	return st, true
}
