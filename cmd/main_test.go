package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"smellsense/internal/smells"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deadCode = "public void run() {\n    if (false) {\n        cleanup();\n    }\n    process();\n}\n"

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--no-color", "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestTaxonomyCommand(t *testing.T) {
	out, err := run(t, "", "taxonomy")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, len(smells.AllKinds()))
	assert.True(t, strings.HasPrefix(lines[0], " 0  GodClass"), lines[0])
	assert.Contains(t, lines[0], "structural")
	assert.True(t, strings.HasPrefix(lines[15], "15  Clean"), lines[15])
}

func TestClassifyCommandFromFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "Runner.java", deadCode)

	out, err := run(t, "", "classify", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, path+": DeadCode ("), out)
	assert.Contains(t, out, "[heuristics only]")
	assert.Contains(t, out, "is never executed")
}

func TestClassifyCommandFromStdin(t *testing.T) {
	out, err := run(t, deadCode, "classify", "--language", "Java", "--json", "-")
	require.NoError(t, err)

	var payload struct {
		Verdict struct {
			PrimarySmell string `json:"primary_smell"`
			Degraded     bool   `json:"degraded"`
		} `json:"verdict"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, "DeadCode", payload.Verdict.PrimarySmell)
	assert.True(t, payload.Verdict.Degraded)
}

func TestClassifyCommandErrors(t *testing.T) {
	_, err := run(t, "   \n", "classify", "-")
	assert.ErrorContains(t, err, "is empty")

	_, err = run(t, "", "classify", filepath.Join(t.TempDir(), "missing.java"))
	assert.ErrorContains(t, err, "failed to read")

	_, err = run(t, deadCode, "classify", "--save", "--language", "java", "-")
	assert.ErrorContains(t, err, "verdict history is not configured")

	_, err = run(t, "", "history")
	assert.ErrorContains(t, err, "verdict history is not configured")

	_, err = run(t, "", "--config", writeFile(t, t.TempDir(), "bad.ini", "x=1"), "taxonomy")
	assert.NoError(t, err, "taxonomy does not load the configuration")

	_, err = run(t, deadCode, "--config", writeFile(t, t.TempDir(), "bad.ini", "x=1"), "classify", "-")
	assert.ErrorContains(t, err, "unsupported config format")
}

func TestScanCommand(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "Runner.java", deadCode)
	writeFile(t, root, "pkg/clean.py", "def add(left, right):\n    return left + right\n")
	writeFile(t, root, "notes.txt", "not code")

	out, err := run(t, "", "scan", "--workers", "2", "--json", root)
	require.NoError(t, err)

	var payload struct {
		Files []struct {
			Path    string `json:"path"`
			Verdict struct {
				PrimarySmell string `json:"primary_smell"`
			} `json:"verdict"`
		} `json:"files"`
		Tally map[string]int `json:"tally"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	require.Len(t, payload.Files, 2)
	assert.Equal(t, "Runner.java", payload.Files[0].Path)
	assert.Equal(t, "DeadCode", payload.Files[0].Verdict.PrimarySmell)
	assert.Equal(t, "Clean", payload.Files[1].Verdict.PrimarySmell)
	assert.Equal(t, map[string]int{"DeadCode": 1, "Clean": 1}, payload.Tally)

	out, err = run(t, "", "scan", root)
	require.NoError(t, err)
	assert.Contains(t, out, "Runner.java: DeadCode (")
	assert.Contains(t, out, "2 files:\n")
}

func TestHistoryCommand(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "smellsense.toml", fmt.Sprintf(
		"[store]\nbackend = \"kuzu\"\n\n[kuzu]\npath = %q\n", filepath.Join(dir, "verdicts.kuzu")))
	source := writeFile(t, dir, "Runner.java", deadCode)

	out, err := run(t, "", "--config", cfgPath, "classify", "--save", source)
	require.NoError(t, err)
	assert.Contains(t, out, "recorded as ")

	out, err = run(t, "", "--config", cfgPath, "history", "--limit", "5")
	require.NoError(t, err)
	assert.Contains(t, out, source+"  DeadCode (")
	assert.Contains(t, out, "primary:\n  DeadCode             1\n")

	_, err = run(t, "", "--config", cfgPath, "history", "--limit", "0")
	assert.ErrorContains(t, err, "limit must be positive")
}
