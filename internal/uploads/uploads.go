// Package uploads stores user-supplied files under the data directory.
//
// Stored names are <prefix><UTC timestamp>-<sanitized original name>.
// Paths handed back to callers are relative to the data directory so they
// survive moving the data directory as a whole.
package uploads

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/mesh-intelligence/karte/pkg/types"
)

// DefaultDir is the uploads directory name inside the data directory.
const DefaultDir = "uploads"

// stampLayout formats the UTC upload time embedded in stored names.
const stampLayout = "20060102T150405Z"

// Prefixes used by the web UI and CLI for stored files.
const (
	PrefixResource = "res_"
	PrefixIdea     = "idea_"
)

// File is one uploaded file: its original name and contents.
type File struct {
	Name   string
	Reader io.Reader
}

// Dir writes uploads into Root, a directory named Name inside the data
// directory.
type Dir struct {
	DataDir string
	Name    string

	// now returns the current time; tests replace it.
	now func() time.Time
}

// New returns a Dir for dataDir. An empty name selects DefaultDir.
func New(dataDir, name string) *Dir {
	if name == "" {
		name = DefaultDir
	}
	return &Dir{DataDir: dataDir, Name: name, now: time.Now}
}

// Root returns the uploads directory path.
func (d *Dir) Root() string {
	return filepath.Join(d.DataDir, d.Name)
}

// Save copies r into a new file named from prefix, the current UTC time
// and the sanitized filename. It returns the stored path relative to the
// data directory, using forward slashes.
func (d *Dir) Save(prefix, filename string, r io.Reader) (string, error) {
	return d.write(d.storedName(prefix, filename), r)
}

// SaveAll saves every file and returns the stored paths joined with
// types.LocalPathSeparator. No files yields "". Names that repeat within
// the batch get a -1, -2, ... suffix before the extension. The first
// failure stops the batch; files already written stay on disk.
func (d *Dir) SaveAll(prefix string, files []File) (string, error) {
	paths := make([]string, 0, len(files))
	used := make(map[string]bool, len(files))
	for _, f := range files {
		name := d.storedName(prefix, f.Name)
		ext := path.Ext(name)
		base := strings.TrimSuffix(name, ext)
		for i := 1; used[name]; i++ {
			name = fmt.Sprintf("%s-%d%s", base, i, ext)
		}
		used[name] = true

		p, err := d.write(name, f.Reader)
		if err != nil {
			return "", err
		}
		paths = append(paths, p)
	}
	return types.JoinPaths(paths), nil
}

func (d *Dir) storedName(prefix, filename string) string {
	return prefix + d.now().UTC().Format(stampLayout) + "-" + Sanitize(filename)
}

func (d *Dir) write(name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(d.Root(), 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}

	f, err := os.OpenFile(filepath.Join(d.Root(), name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close upload: %w", err)
	}
	return path.Join(filepath.ToSlash(d.Name), name), nil
}

// Abs resolves a stored relative path against the data directory.
func (d *Dir) Abs(rel string) string {
	return filepath.Join(d.DataDir, filepath.FromSlash(rel))
}

// Split returns the individual paths of a joined local path field.
func Split(localPath string) []string {
	return types.SplitPaths(localPath)
}

// Sanitize replaces every rune outside [A-Za-z0-9._-] with '_'. Directory
// components are dropped first so a name can never escape the uploads
// directory.
func Sanitize(filename string) string {
	filename = filename[strings.LastIndexAny(filename, `/\`)+1:]
	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
