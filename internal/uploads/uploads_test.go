package uploads

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedDir(t *testing.T) *Dir {
	t.Helper()
	d := New(t.TempDir(), "")
	d.now = func() time.Time { return time.Date(2026, 6, 1, 9, 30, 5, 0, time.FixedZone("JST", 9*3600)) }
	return d
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"my report (v2).pdf", "my_report__v2_.pdf"},
		{"見積書.xlsx", "___.xlsx"},
		{"a-b_c.D9", "a-b_c.D9"},
		{"../../etc/passwd", "passwd"},
		{`C:\Users\sato\photo.png`, "photo.png"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestDir_Save(t *testing.T) {
	d := fixedDir(t)

	rel, err := d.Save(PrefixResource, "spec sheet.pdf", strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	assert.Equal(t, "uploads/res_20260601T003005Z-spec_sheet.pdf", rel)

	data, err := os.ReadFile(d.Abs(rel))
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))
	assert.Equal(t, filepath.Join(d.DataDir, "uploads"), d.Root())
}

func TestDir_SaveCustomName(t *testing.T) {
	d := New(t.TempDir(), "files")

	rel, err := d.Save(PrefixIdea, "logo.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "files/idea_"), rel)
	assert.True(t, strings.HasSuffix(rel, "-logo.png"), rel)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestDir_SaveReadFailure(t *testing.T) {
	d := fixedDir(t)

	_, err := d.Save(PrefixResource, "x.txt", failingReader{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk gone")
}

func TestDir_SaveUnwritableRoot(t *testing.T) {
	dataDir := t.TempDir()
	// A regular file where the uploads directory should be.
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, DefaultDir), []byte("x"), 0o644))

	_, err := New(dataDir, "").Save(PrefixResource, "x.txt", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestDir_SaveAll(t *testing.T) {
	d := fixedDir(t)

	joined, err := d.SaveAll(PrefixResource, []File{
		{Name: "a.txt", Reader: strings.NewReader("a")},
		{Name: "b.txt", Reader: strings.NewReader("b")},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"uploads/res_20260601T003005Z-a.txt;uploads/res_20260601T003005Z-b.txt", joined)

	paths := Split(joined)
	require.Len(t, paths, 2)
	for _, p := range paths {
		_, err := os.Stat(d.Abs(p))
		assert.NoError(t, err)
	}
}

func TestDir_SaveAllRepeatedNames(t *testing.T) {
	d := fixedDir(t)

	joined, err := d.SaveAll(PrefixIdea, []File{
		{Name: "image.png", Reader: strings.NewReader("first")},
		{Name: "image.png", Reader: strings.NewReader("second")},
		{Name: "dir/image.png", Reader: strings.NewReader("third")},
	})
	require.NoError(t, err)

	paths := Split(joined)
	assert.Equal(t, []string{
		"uploads/idea_20260601T003005Z-image.png",
		"uploads/idea_20260601T003005Z-image-1.png",
		"uploads/idea_20260601T003005Z-image-2.png",
	}, paths)
	for i, want := range []string{"first", "second", "third"} {
		got, err := os.ReadFile(d.Abs(paths[i]))
		require.NoError(t, err)
		assert.Equal(t, want, string(got))
	}
}

func TestDir_SaveAllEmpty(t *testing.T) {
	joined, err := fixedDir(t).SaveAll(PrefixResource, nil)
	require.NoError(t, err)
	assert.Equal(t, "", joined)
	assert.Empty(t, Split(joined))
}
