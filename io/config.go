package io

import (
	"fmt"

	"gopkg.in/gcfg.v1"

	"github.com/geoelev/geoelev/geoid"
)

const (
	ExampleConfigFile = `[Geoid]

#######################
# Optional Parameters #
#######################

# Directory containing the GSI geoid grid. The first run parses the grid and
# writes a binary cache next to it, which is used on every later run. If the
# cache is deleted it will be rebuilt.
# Dir = .

# Name of the GSI grid file and of its cache. Relative names are resolved
# against Dir.
# SourceFile = gsigeo2011_ver2_1.asc
# CacheFile = gsigeo2011_ver2_1.gcache

[Run]

# Output files which are useful for profiling and debugging. Generally, there
# isn't a reason to use these unless something goes wrong.
# LogFile = log.out
# ProfileFile = prof.out

[Verify]

# Used with the -Verify flag. The reference file contains whitespace-separated
# columns of latitude, longitude and undulation, such as the check points
# published alongside the GSI grid. Lines beginning with '#' are ignored.
# ReferenceFile = path/to/reference.txt

# Largest acceptable difference between the reference and the interpolated
# undulation, in meters.
# Tolerance = 0.001

[Transect]

# Used with the -Transect flag: plots the undulation along a parallel.
# Lat = 35.0
# LonMin = 130.0
# LonMax = 145.0
# Points = 500
# PlotFile = transect.png

[Serve]

# Used with the -Serve flag: address the HTTP lookup service listens on.
# Address = :8080`
)

type GeoidConfig struct {
	Dir, SourceFile, CacheFile string
}

func (con *GeoidConfig) ValidDir() bool {
	return con.Dir != ""
}

// Store returns a geoid.Store for the configured files.
func (con *GeoidConfig) Store() *geoid.Store {
	return &geoid.Store{
		Dir: con.Dir, SourceFile: con.SourceFile, CacheFile: con.CacheFile,
	}
}

type RunConfig struct {
	LogFile, ProfileFile string
}

func (con *RunConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *RunConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}

type VerifyConfig struct {
	ReferenceFile string
	Tolerance     float64
}

func (con *VerifyConfig) ValidReferenceFile() bool {
	return con.ReferenceFile != ""
}
func (con *VerifyConfig) ValidTolerance() bool {
	return con.Tolerance >= 0
}

type TransectConfig struct {
	Lat, LonMin, LonMax float64
	Points              int
	PlotFile            string
}

func (con *TransectConfig) ValidLat() bool {
	return con.Lat >= -90 && con.Lat <= 90
}
func (con *TransectConfig) ValidLonRange() bool {
	return con.LonMin < con.LonMax
}
func (con *TransectConfig) ValidPoints() bool {
	return con.Points > 1
}
func (con *TransectConfig) ValidPlotFile() bool {
	return con.PlotFile != ""
}

type ServeConfig struct {
	Address string
}

func (con *ServeConfig) ValidAddress() bool {
	return con.Address != ""
}

// Wrapper holds every section of a configuration file.
type Wrapper struct {
	Geoid    GeoidConfig
	Run      RunConfig
	Verify   VerifyConfig
	Transect TransectConfig
	Serve    ServeConfig
}

func DefaultWrapper() *Wrapper {
	w := &Wrapper{}
	w.Geoid.Dir = "."
	w.Geoid.SourceFile = geoid.SourceFile
	w.Geoid.CacheFile = geoid.CacheFile
	w.Verify.Tolerance = 0.001
	w.Transect.Lat = 35
	w.Transect.LonMin, w.Transect.LonMax = 130, 145
	w.Transect.Points = 500
	w.Transect.PlotFile = "transect.png"
	w.Serve.Address = ":8080"
	return w
}

// ReadConfig reads the configuration file fname on top of the defaults. An
// empty name returns the defaults.
func ReadConfig(fname string) (*Wrapper, error) {
	w := DefaultWrapper()
	if fname == "" {
		return w, nil
	}
	if err := gcfg.ReadFileInto(w, fname); err != nil {
		return nil, err
	}
	if err := w.Check(); err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return w, nil
}

// Check validates the sections that every mode relies on.
func (w *Wrapper) Check() error {
	if !w.Geoid.ValidDir() {
		return fmt.Errorf("Invalid/non-existent 'Dir' value.")
	} else if !w.Verify.ValidTolerance() {
		return fmt.Errorf("'Tolerance' must be non-negative, but is %g.",
			w.Verify.Tolerance)
	}
	return nil
}
