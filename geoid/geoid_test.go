package geoid

import (
	"errors"
	"io/fs"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A 3 x 4 grid whose rows are wrapped at odd places, padded with extra
// whitespace and containing two no-data nodes.
const testGrid = `  34.00000 138.00000 0.500000 0.500000 3 4 1 ver2.1
35.1000  35.2000 999.0000
   35.3000 35.4000 35.5000

35.6000 35.7000 36.0000   36.1000 999.0000
36.3000
`

func writeFile(t *testing.T, dir, name, text string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, ioutil.WriteFile(path, []byte(text), 0644))
	return path
}

func TestReadASCII(t *testing.T) {
	m, err := ReadASCII(strings.NewReader(testGrid))
	require.NoError(t, err)

	assert.Equal(t, [2]float64{34, 138}, m.Origin)
	assert.Equal(t, [2]float64{0.5, 0.5}, m.Delta)
	assert.Equal(t, [2]int{3, 4}, m.Nodes)
	assert.Equal(t, "1 ver2.1", m.Version)
	assert.Equal(t, 10, m.Count())

	table := []struct {
		i, j int
		v    float64
		ok   bool
	}{
		{0, 0, 35.1, true},
		{0, 2, 0, false},
		{0, 3, 35.3, true},
		{1, 0, 35.4, true},
		{1, 3, 35.7, true},
		{2, 0, 36.0, true},
		{2, 1, 36.1, true},
		{2, 2, 0, false},
		{2, 3, 36.3, true},
		{3, 0, 0, false},
	}
	for n, test := range table {
		v, ok := m.At(test.i, test.j)
		if v != test.v || ok != test.ok {
			t.Errorf("%d) Expected At(%d, %d) = (%g, %v), got (%g, %v)",
				n+1, test.i, test.j, test.v, test.ok, v, ok)
		}
	}
}

func TestReadASCIIErrors(t *testing.T) {
	table := []struct {
		name, text string
	}{
		{"empty", ""},
		{"short header", "34 138 0.5 0.5 3\n"},
		{"bad header", "34 138 x 0.5 3 4\n"},
		{"bad count", "34 138 0.5 0.5 1 4\n1 2 3 4\n"},
		{"bad sample", "34 138 0.5 0.5 2 2\n1 2 x 4\n"},
		{"too few", "34 138 0.5 0.5 2 2\n1 2 3\n"},
		{"too many", "34 138 0.5 0.5 2 2\n1 2 3 4 5\n"},
	}
	for _, test := range table {
		_, err := ReadASCII(strings.NewReader(test.text))
		assert.Error(t, err, test.name)
	}
}

func TestReadASCIILongLines(t *testing.T) {
	// All samples on a single line, much longer than bufio.MaxScanTokenSize.
	rows, cols := 300, 500
	sb := &strings.Builder{}
	sb.WriteString("20.0 120.0 0.01666 0.025 300 500 long\n")
	for k := 0; k < rows*cols; k++ {
		if k == 7 {
			sb.WriteString("999.0000 ")
		} else {
			sb.WriteString("35.1234 ")
		}
	}
	sb.WriteString("\n")
	require.Greater(t, sb.Len(), 1<<20)

	m, err := ReadASCII(strings.NewReader(sb.String()))
	require.NoError(t, err)
	assert.Equal(t, rows*cols-1, m.Count())
	v, ok := m.At(rows-1, cols-1)
	assert.True(t, ok)
	assert.Equal(t, 35.1234, v)
	_, ok = m.At(0, 7)
	assert.False(t, ok)
}

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m, err := ReadASCII(strings.NewReader(testGrid))
	require.NoError(t, err)

	path := filepath.Join(dir, CacheFile)
	require.NoError(t, WriteCache(path, m))

	m2, err := ReadCache(path)
	require.NoError(t, err)

	assert.Equal(t, m.Header, m2.Header)
	assert.Equal(t, m.Indices(), m2.Indices())
	for _, idx := range m.Indices() {
		i, j := m.Coords(idx)
		v1, _ := m.At(i, j)
		v2, ok := m2.At(i, j)
		assert.True(t, ok)
		assert.Equal(t, v1, v2, "node (%d, %d)", i, j)
	}

	// No temporary files are left behind.
	infos, err := ioutil.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestReadCacheCorrupt(t *testing.T) {
	dir := t.TempDir()
	m, err := ReadASCII(strings.NewReader(testGrid))
	require.NoError(t, err)
	path := filepath.Join(dir, CacheFile)
	require.NoError(t, WriteCache(path, m))
	good, err := ioutil.ReadFile(path)
	require.NoError(t, err)

	table := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"bad flag", append([]byte{7, 0, 0, 0}, good[4:]...)},
		{"truncated", good[:len(good)-3]},
		{"trailing", append(append([]byte{}, good...), 0)},
	}
	for _, test := range table {
		require.NoError(t, ioutil.WriteFile(path, test.data, 0644))
		_, err := ReadCache(path)
		assert.True(t, errors.Is(err, ErrCorruptCache), test.name)
	}

	// Unopenable caches are corrupt too, and keep the underlying error.
	_, err = ReadCache(filepath.Join(dir, "missing.gcache"))
	assert.True(t, errors.Is(err, ErrCorruptCache))
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestStoreLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SourceFile, testGrid)

	s := &Store{Dir: dir}
	m, err := s.Load()
	require.NoError(t, err)
	assert.True(t, s.Built)
	assert.NoError(t, s.CacheWriteErr)
	assert.FileExists(t, filepath.Join(dir, CacheFile))

	// The second load must come from the cache, even without the source.
	require.NoError(t, os.Remove(filepath.Join(dir, SourceFile)))
	m2, err := s.Load()
	require.NoError(t, err)
	assert.False(t, s.Built)
	assert.Equal(t, m.Header, m2.Header)
	assert.Equal(t, m.Indices(), m2.Indices())
}

func TestStoreLoadMissing(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.True(t, errors.Is(err, ErrMissingSourceFile))
	assert.Contains(t, err.Error(), SourceFile)
}

func TestStoreLoadCorrupt(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SourceFile, testGrid)
	writeFile(t, dir, CacheFile, "not a cache")

	_, err := Load(dir)
	assert.True(t, errors.Is(err, ErrCorruptCache))
	assert.False(t, errors.Is(err, ErrMissingSourceFile))
}

func TestStoreCacheWriteFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SourceFile, testGrid)

	s := &Store{Dir: dir, CacheFile: filepath.Join("no", "such", "dir.gcache")}
	m, err := s.Load()
	require.NoError(t, err)
	assert.Error(t, s.CacheWriteErr)
	assert.Equal(t, 10, m.Count())
}

func TestStoreNormalizes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, SourceFile,
		"20.0 120.0 0.34 0.51 4 3 x\n1 2 3 4 5 6 7 8 9 10 11 12\n")

	for pass := 0; pass < 2; pass++ {
		m, err := Load(dir)
		require.NoError(t, err)
		// floor(0.34 * 3) / 3 and floor(0.51 * 2) / 2
		assert.Equal(t, [2]float64{1.0 / 3, 0.5}, m.Delta, "pass %d", pass)
	}
}
