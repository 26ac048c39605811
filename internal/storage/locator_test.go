package storage

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/filedo/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o750))
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o640))
	return p
}

func twoRoots(t *testing.T) (string, string) {
	t.Helper()
	base := t.TempDir()
	r1 := filepath.Join(base, "files", "surat")
	r2 := filepath.Join(base, "files2", "surat")
	require.NoError(t, os.MkdirAll(r1, 0o750))
	require.NoError(t, os.MkdirAll(r2, 0o750))
	return r1, r2
}

func TestLocate_FirstRootWins(t *testing.T) {
	r1, r2 := twoRoots(t)
	want := writeFile(t, r1, "a.txt", "from r1")
	writeFile(t, r2, "a.txt", "from r2")

	res := Locate([]string{"a.txt"}, []string{r1, r2})

	require.Equal(t, 1, res.Count())
	assert.Equal(t, []string{want}, res.Paths())
	assert.Equal(t, r1, res.Found[0].Root)

	res = Locate([]string{"a.txt"}, []string{r2, r1})
	assert.Equal(t, r2, res.Found[0].Root)
}

func TestLocate_FallsThroughToLaterRoot(t *testing.T) {
	r1, r2 := twoRoots(t)
	want := writeFile(t, r2, "secret_report.pdf", "content")

	path, ok := LocateSingle("secret_report.pdf", []string{r1, r2})
	require.True(t, ok)
	assert.Equal(t, want, path)
}

func TestLocate_MissingIsOmitted(t *testing.T) {
	r1, _ := twoRoots(t)

	res := Locate([]string{"missing.txt"}, []string{r1})

	assert.Empty(t, res.Paths())
	assert.Equal(t, 0, res.Count())
	assert.Equal(t, []string{"missing.txt"}, res.Missing)

	_, ok := LocateSingle("missing.txt", []string{r1})
	assert.False(t, ok)
}

func TestLocate_KeepsRequestOrderAndScattering(t *testing.T) {
	r1, r2 := twoRoots(t)
	b := writeFile(t, r2, "b.txt", "b")
	a := writeFile(t, r1, "a.txt", "a")

	res := Locate([]string{"b.txt", "nope.txt", "a.txt"}, []string{r1, r2})

	assert.Equal(t, []string{b, a}, res.Paths())
	assert.Equal(t, []string{"nope.txt"}, res.Missing)
	assert.Equal(t, 2, res.Count())
}

func TestLocate_IgnoresDirectoriesAndSubdirs(t *testing.T) {
	r1, _ := twoRoots(t)
	require.NoError(t, os.Mkdir(filepath.Join(r1, "dir.txt"), 0o750))
	writeFile(t, filepath.Join(r1, "nested"), "deep.txt", "x")

	res := Locate([]string{"dir.txt", "deep.txt"}, []string{r1})
	assert.Equal(t, 0, res.Count())
}

func TestLocate_CaseSensitive(t *testing.T) {
	r1, _ := twoRoots(t)
	writeFile(t, r1, "Report.PDF", "x")

	if _, err := os.Stat(filepath.Join(r1, "report.pdf")); err == nil {
		t.Skip("case-insensitive filesystem")
	}

	_, ok := LocateSingle("report.pdf", []string{r1})
	assert.False(t, ok)
}

func TestLocate_RejectsNonBaseNames(t *testing.T) {
	r1, r2 := twoRoots(t)
	writeFile(t, r1, "a.txt", "x")
	// r2/../../files/surat/a.txt would reach r1 if joined blindly
	traversal := filepath.Join("..", "..", "files", "surat", "a.txt")

	for _, name := range []string{"", ".", "..", traversal, "SK/2024/001", `..\a.txt`} {
		_, ok := LocateSingle(name, []string{r2})
		assert.False(t, ok, "name %q", name)
	}
}

func TestSearchRoots(t *testing.T) {
	configured := []string{"/files/surat", "/files2/surat"}

	assert.Equal(t, []string{"/files3/surat"}, SearchRoots("/files3/surat", configured))
	assert.Equal(t, configured, SearchRoots("", configured))
}

type fixedChooser int

func (f fixedChooser) IntN(n int) int { return int(f) % n }

func TestPickRoot(t *testing.T) {
	roots := []string{"/a", "/b", "/c"}

	got, err := PickRoot(roots, fixedChooser(1))
	require.NoError(t, err)
	assert.Equal(t, "/b", got)

	got, err = PickRoot(roots, rand.New(rand.NewPCG(1, 2)))
	require.NoError(t, err)
	assert.Contains(t, roots, got)

	got, err = PickRoot(roots, nil)
	require.NoError(t, err)
	assert.Contains(t, roots, got)
}

func TestPickRoot_NoRoots(t *testing.T) {
	_, err := PickRoot(nil, fixedChooser(0))
	assert.ErrorIs(t, err, common.ErrNoStorageConfigured)
}

func TestPickRoot_CoversAllRoots(t *testing.T) {
	roots := []string{"/a", "/b", "/c"}
	rnd := rand.New(rand.NewPCG(42, 42))
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		r, err := PickRoot(roots, rnd)
		require.NoError(t, err)
		seen[r] = true
	}
	assert.Len(t, seen, 3)
}
