package io

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gcfg.v1"

	"github.com/geoelev/geoelev/geoid"
)

func TestExampleConfig(t *testing.T) {
	w := DefaultWrapper()
	require.NoError(t, gcfg.ReadStringInto(w, ExampleConfigFile))
	assert.Equal(t, DefaultWrapper(), w)
	assert.NoError(t, w.Check())
}

func TestReadConfig(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "geoelev.cfg")
	require.NoError(t, ioutil.WriteFile(fname, []byte(`
[Geoid]
Dir = /data/gsi
CacheFile = geoid.bin

[Verify]
ReferenceFile = check.txt
Tolerance = 0.0005

[Transect]
Lat = 36.5
Points = 20
`), 0644))

	w, err := ReadConfig(fname)
	require.NoError(t, err)
	assert.Equal(t, "/data/gsi", w.Geoid.Dir)
	assert.Equal(t, geoid.SourceFile, w.Geoid.SourceFile)
	assert.Equal(t, "geoid.bin", w.Geoid.CacheFile)
	assert.True(t, w.Verify.ValidReferenceFile())
	assert.Equal(t, 0.0005, w.Verify.Tolerance)
	assert.Equal(t, 36.5, w.Transect.Lat)
	assert.Equal(t, 20, w.Transect.Points)
	assert.True(t, w.Transect.ValidLonRange())
	assert.False(t, w.Run.ValidLogFile())

	s := w.Geoid.Store()
	assert.Equal(t, filepath.Join("/data/gsi", "geoid.bin"), s.CachePath())
}

func TestReadConfigErrors(t *testing.T) {
	dir := t.TempDir()
	table := []string{
		"[Geoid]\nDir =\n",
		"[Verify]\nTolerance = -1\n",
		"[Nonsense]\nX = 1\n",
		"[Transect]\nPoints = many\n",
	}
	for i, text := range table {
		fname := filepath.Join(dir, "bad.cfg")
		require.NoError(t, ioutil.WriteFile(fname, []byte(text), 0644))
		_, err := ReadConfig(fname)
		assert.Error(t, err, "%d) %q", i+1, text)
	}

	_, err := ReadConfig(filepath.Join(dir, "missing.cfg"))
	assert.Error(t, err)

	w, err := ReadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultWrapper(), w)
}
