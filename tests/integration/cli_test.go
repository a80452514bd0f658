// CLI integration tests for karte.
package integration

import (
	"encoding/csv"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/karte/pkg/types"
)

// TestMain builds the karte binary once before running tests.
func TestMain(m *testing.M) {
	projectRoot, err := FindProjectRoot()
	if err != nil {
		SetBuildErr(err)
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "karte-test-*")
	if err != nil {
		SetBuildErr(err)
		os.Exit(1)
	}
	binPath := filepath.Join(tmpDir, "karte")
	SetKarteBin(binPath)

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/karte")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		SetBuildErr(&BuildError{
			Err:    err,
			Output: string(output),
		})
		os.Exit(1)
	}

	code := m.Run()

	os.RemoveAll(tmpDir)
	os.Exit(code)
}

func TestInit(t *testing.T) {
	env := NewTestEnv(t)

	result := env.MustRunKarte("init")
	assert.Contains(t, result.Stdout, "karte initialized")

	assert.FileExists(t, filepath.Join(env.DataDir, types.DefaultDBFile))
	assert.DirExists(t, filepath.Join(env.DataDir, "uploads"))

	// The existing config.yaml is kept.
	data, err := os.ReadFile(filepath.Join(env.Config, "config.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "listen")

	env.MustRunKarte("init")
}

func TestCaseLifecycle(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunKarte("init")

	// Create a case and record progress on it.
	p := ParseJSON[types.Project](t, env.MustRunKarte("--json", "project", "add",
		"--title", "Acme Portal", "--client", "Acme", "--priority", types.PriorityHigh).Stdout)
	require.Equal(t, int64(1), p.ID)
	assert.Equal(t, types.DefaultStatus, p.Status)

	env.MustRunKarte("note", "add", "--project", "1", "--date", "2026-06-01",
		"--content", "Kickoff with the client", "--progress", "10")
	env.MustRunKarte("note", "add", "--project", "1", "--date", "2026-06-08",
		"--content", "Estimate accepted", "--next-action", "Start build", "--progress", "30")
	env.MustRunKarte("project", "update", "1", "--status", types.StatusTesting)

	// Attach a file and an idea.
	src := filepath.Join(t.TempDir(), "brief.txt")
	require.NoError(t, os.WriteFile(src, []byte("brief"), 0o644))
	r := ParseJSON[types.Resource](t, env.MustRunKarte("--json", "resource", "add",
		"--project", "1", "--kind", types.ResourceKindLocal, "--file", src).Stdout)
	require.Len(t, r.LocalPaths(), 1)
	assert.FileExists(t, filepath.Join(env.DataDir, r.LocalPaths()[0]))

	env.MustRunKarte("idea", "add", "--title", "Dark mode", "--pinned")

	show := env.MustRunKarte("project", "show", "1")
	assert.Contains(t, show.Stdout, "Acme Portal")
	assert.Contains(t, show.Stdout, types.StatusTesting)
	assert.Contains(t, show.Stdout, "Notes (2)")
	assert.Contains(t, show.Stdout, "Resources (1)")
	assert.Contains(t, show.Stdout, "next: Start build")

	list := env.MustRunKarte("project", "list")
	assert.Contains(t, list.Stdout, "Acme Portal")
	assert.Contains(t, list.Stdout, types.PriorityHigh)
}

func TestSearch(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunKarte("init")
	env.MustRunKarte("project", "add", "--title", "Acme Portal")
	env.MustRunKarte("note", "add", "--project", "1", "--content", "Phone call")
	env.MustRunKarte("resource", "add", "--title", "ACME style guide", "--url", "https://acme.example")
	env.MustRunKarte("idea", "add", "--note", "nothing relevant")

	type hit struct {
		Kind types.Kind `json:"kind"`
		ID   int64      `json:"id"`
	}
	hits := ParseJSON[[]hit](t, env.MustRunKarte("--json", "search", "acme").Stdout)
	require.Len(t, hits, 2)
	kinds := []types.Kind{hits[0].Kind, hits[1].Kind}
	assert.ElementsMatch(t, []types.Kind{types.KindProject, types.KindResource}, kinds)

	// A note is not found by its case title.
	hits = ParseJSON[[]hit](t, env.MustRunKarte("--json", "search", "phone").Stdout)
	require.Len(t, hits, 1)
	assert.Equal(t, types.KindNote, hits[0].Kind)

	none := env.MustRunKarte("search", "zzz")
	assert.Contains(t, none.Stdout, "0 hit(s)")
}

func TestExport(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunKarte("init")
	env.MustRunKarte("project", "add", "--title", "Acme Portal", "--owner", "Sato")
	env.MustRunKarte("project", "add", "--title", "Beta Site")

	result := env.MustRunKarte("export", "projects")
	records, err := csv.NewReader(strings.NewReader(result.Stdout)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "id", records[0][0])
	assert.Equal(t, []string{"1", "Acme Portal"}, records[1][:2])
	assert.Equal(t, []string{"2", "Beta Site"}, records[2][:2])

	out := filepath.Join(t.TempDir(), "projects.jsonl")
	env.MustRunKarte("export", "projects", "--format", "jsonl", "--out", out)
	rows := ReadJSONLFile[map[string]any](t, out)
	require.Len(t, rows, 2)
	assert.Equal(t, "Sato", rows[0]["owner"])
	assert.Nil(t, rows[1]["owner"], "NULL columns export as null")
}

func TestReset(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunKarte("init")
	env.MustRunKarte("project", "add", "--title", "Acme Portal")
	env.MustRunKarte("note", "add", "--project", "1", "--content", "Kickoff")

	refused := env.RunKarte("reset")
	assert.Equal(t, 1, refused.ExitCode)
	assert.Contains(t, refused.Stderr, "--yes")

	env.MustRunKarte("reset", "--yes")
	notes := ParseJSON[[]types.Note](t, env.MustRunKarte("--json", "note", "list").Stdout)
	assert.Empty(t, notes)

	p := ParseJSON[types.Project](t, env.MustRunKarte("--json", "project", "add", "--title", "Fresh").Stdout)
	assert.Equal(t, int64(1), p.ID, "ids restart after reset")
}

func TestExitCodes(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRunKarte("init")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"version", []string{"version"}, 0},
		{"unknown command", []string{"frobnicate"}, 1},
		{"missing required flag", []string{"project", "add"}, 1},
		{"record not found", []string{"project", "show", "42"}, 1},
		{"unknown table", []string{"export", "invoices"}, 1},
		{"unknown log level", []string{"--log-level", "chatty", "project", "list"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := env.RunKarte(tt.args...)
			assert.Equal(t, tt.want, result.ExitCode, "stdout: %s\nstderr: %s", result.Stdout, result.Stderr)
		})
	}

	t.Run("unwritable data dir", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, nil, 0o644))
		result := env.RunKarte("--data-dir", filepath.Join(blocker, "data"), "project", "list")
		assert.Equal(t, 2, result.ExitCode, "stderr: %s", result.Stderr)
	})
}
