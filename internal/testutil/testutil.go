// Package testutil provides sandboxed directories and configuration for
// bookscape tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEnv is a per-test scratch directory holding the databases and run
// artefacts a test produces. Paths handed out by it never leave that
// directory.
type TestEnv struct {
	t       *testing.T
	rootDir string
}

// NewTestEnv returns an environment rooted in t.TempDir.
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	return &TestEnv{t: t, rootDir: t.TempDir()}
}

func (e *TestEnv) RootDir() string {
	return e.rootDir
}

// Path joins elem under the sandbox root and fails the test if the result
// would point outside of it.
func (e *TestEnv) Path(elem ...string) string {
	e.t.Helper()

	p := filepath.Join(append([]string{e.rootDir}, elem...)...)
	if !e.isWithinSandbox(p) {
		e.t.Fatalf("%s is outside the test directory %s", p, e.rootDir)
	}
	return p
}

func (e *TestEnv) isWithinSandbox(path string) bool {
	rel, err := filepath.Rel(e.rootDir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ReadFile returns the contents of a run artefact such as a report or a
// metrics dump.
func (e *TestEnv) ReadFile(name string) []byte {
	e.t.Helper()

	data, err := os.ReadFile(e.Path(name))
	require.NoError(e.t, err, "reading %s", name)
	return data
}

func (e *TestEnv) ReadFileString(name string) string {
	e.t.Helper()
	return string(e.ReadFile(name))
}
