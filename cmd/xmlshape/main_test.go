package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const ymap = `<?xml version="1.0" encoding="UTF-8"?>
<CMapData>
    <entities>
        <Item type="CEntityDef">
            <archetypeName>propA</archetypeName>
            <flags value="0"/>
            <lodDist>100</lodDist>
        </Item>
    </entities>
</CMapData>
`

func run(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := _main(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestMain_Usage(t *testing.T) {
	code, _, _ := run(t, "")
	require.Equal(t, exitUsage, code, "a command is required")

	code, out, _ := run(t, "", "--version")
	require.Equal(t, exitOK, code)
	require.Contains(t, out, "xmlshape version")

	code, out, _ = run(t, "", "--help")
	require.Equal(t, exitOK, code)
	require.Contains(t, out, "filter")

	code, _, _ = run(t, "", "frobnicate")
	require.Equal(t, exitUsage, code)
}

func TestFilterCommand(t *testing.T) {
	t.Run("MissingArguments", func(t *testing.T) {
		dir := t.TempDir()
		code, _, errout := run(t, "", "filter", "--dir", dir, "--file", "map.xml", "--flags", "1")
		require.Equal(t, exitUsage, code)
		require.Contains(t, errout, "--archetype is required")

		code, _, _ = run(t, "", "filter", "--dir", dir, "--file", "map.xml", "--archetype", "propA")
		require.Equal(t, exitUsage, code, "at least one assignment is needed")

		code, _, _ = run(t, "", "filter", "--dir", dir, "--file", "map.xml", "--archetype", "propA", "--set", "novalue")
		require.Equal(t, exitUsage, code)

		code, _, _ = run(t, "", "filter", "--dir", dir, "--file", "map.xml", "--archetype", "propA", "--set", "archetypeName=x")
		require.Equal(t, exitUsage, code, "the filter field is read-only")
	})

	t.Run("NotFound", func(t *testing.T) {
		code, _, _ := run(t, "", "filter", "--dir", t.TempDir(), "--file", "map.xml", "--archetype", "propA", "--flags", "1")
		require.Equal(t, exitNotFound, code)
	})

	t.Run("Malformed", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "map.xml"), []byte("<CMapData>"), 0o644))
		code, _, _ := run(t, "", "filter", "--dir", dir, "--file", "map.xml", "--archetype", "propA", "--flags", "1")
		require.Equal(t, exitDocument, code)
	})

	t.Run("Success", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "map.xml")
		require.NoError(t, os.WriteFile(path, []byte(ymap), 0o644))

		code, out, _ := run(t, "", "filter", "--dir", dir, "--file", "map.xml",
			"--archetype", "propA", "--flags", "545", "--lodDist", "300")
		require.Equal(t, exitOK, code)
		require.Contains(t, out, `Matched objects (archetypeName == "propA"): 1`)

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Contains(t, string(b), `<flags value="545"/>`)
		require.Contains(t, string(b), `<lodDist value="300"/>`)
	})

	t.Run("EmptyValue", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "map.xml")
		require.NoError(t, os.WriteFile(path, []byte(ymap), 0o644))

		code, out, _ := run(t, "", "filter", "--dir", dir, "--file", "map.xml",
			"--archetype", "propA", "--flags", "")
		require.Equal(t, exitOK, code, "an empty --flags is an assignment")
		require.Contains(t, out, `flags @value updated: 1 => ""`)

		b, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Contains(t, string(b), `<flags value=""/>`)
		require.Contains(t, string(b), `<lodDist>100</lodDist>`, "lodDist was not given")
	})
}

func TestRenameCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "house01.model.ydr.xml"), []byte(`<Drawable><Name>house01.model</Name></Drawable>`), 0o644))

	code, out, _ := run(t, "", "rename", "--dir", dir)
	require.Equal(t, exitOK, code)
	require.Contains(t, out, "created file: house01.ydr.xml")
	require.FileExists(t, filepath.Join(dir, "house01.ydr.xml"))
	require.NoFileExists(t, filepath.Join(dir, "house01.model.ydr.xml"))

	code, _, _ = run(t, "", "rename", "--dir", filepath.Join(dir, "missing"))
	require.Equal(t, exitNotFound, code)
}

func TestRunCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "map.xml"), []byte(ymap), 0o644))

	jobs := "dir: " + dir + "\nfilters:\n  - file: map.xml\n    value: propA\n    set:\n      flags: 7\n"
	jobfile := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(jobfile, []byte(jobs), 0o644))

	code, _, _ := run(t, "", "run", "--dry-run", jobfile)
	require.Equal(t, exitOK, code)
	b, err := os.ReadFile(filepath.Join(dir, "map.xml"))
	require.NoError(t, err)
	require.Equal(t, ymap, string(b), "dry run leaves the file alone")

	code, _, _ = run(t, "", "run", jobfile)
	require.Equal(t, exitOK, code)
	b, err = os.ReadFile(filepath.Join(dir, "map.xml"))
	require.NoError(t, err)
	require.Contains(t, string(b), `<flags value="7"/>`)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("filters: []\n"), 0o644))
	code, _, _ = run(t, "", "run", bad)
	require.Equal(t, exitUsage, code)
}

func TestLintCommand(t *testing.T) {
	code, out, _ := run(t, `<a><b x="1"/></a>`, "lint", "--compact")
	require.Equal(t, exitOK, code)
	require.Equal(t, `<a><b x="1"/></a>`, out)

	code, _, errout := run(t, `<a>`, "lint")
	require.Equal(t, exitDocument, code)
	require.Contains(t, errout, "-:")

	code, _, _ = run(t, "", "lint", filepath.Join(t.TempDir(), "missing.xml"))
	require.Equal(t, exitNotFound, code)
}
