package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"strings"
	"syscall"
	"time"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/geoelev/geoelev/geoid"
	"github.com/geoelev/geoelev/io"
	"github.com/geoelev/geoelev/math/interpolate"
	"github.com/geoelev/geoelev/plot"
	"github.com/geoelev/geoelev/server"
	"github.com/geoelev/geoelev/tabular"
	"github.com/geoelev/geoelev/verify"
)

// FileGroup contains utility files for logging and writing profiles to.
type FileGroup struct {
	log, prof *os.File
}

// Close closes the files inside FileGroup.
func (fg *FileGroup) Close() {
	if fg.log != nil {
		err := fg.log.Close()
		if err != nil { log.Fatal(err.Error()) }
	}

	if fg.prof != nil {
		pprof.StopCPUProfile()
		err := fg.prof.Close()
		if err != nil { log.Fatal(err.Error()) }
	}
}

func main() {
	var (
		configFile               string
		verifyMode, transectMode bool
		serveMode, exampleConfig bool
	)

	flag.StringVar(
		&configFile, "Config", "",
		"Configuration file. If not given, the grid is looked for in the " +
			"working directory and every other value takes its default.",
	)
	flag.BoolVar(
		&verifyMode, "Verify", false,
		"Compare interpolated undulations against [Verify] ReferenceFile.",
	)
	flag.BoolVar(
		&transectMode, "Transect", false,
		"Plot the undulation along the parallel described by [Transect].",
	)
	flag.BoolVar(
		&serveMode, "Serve", false,
		"Serve undulation and elevation lookups over HTTP at [Serve] Address.",
	)
	flag.BoolVar(
		&exampleConfig, "ExampleConfig", false,
		"Prints an example configuration file to stdout.",
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr,
			"Usage: %s [flags] input_table output_table\n" +
				"       %s [flags] -Verify | -Transect | -Serve\n",
			os.Args[0], os.Args[0],
		)
		flag.PrintDefaults()
	}

	flag.Parse()

	modeName, err := getModeName(map[string]bool{
		"Verify": verifyMode,
		"Transect": transectMode,
		"Serve": serveMode,
		"ExampleConfig": exampleConfig,
	})
	if err != nil { log.Fatal(err.Error()) }

	if modeName == "ExampleConfig" {
		fmt.Println(io.ExampleConfigFile)
		return
	}

	con, err := io.ReadConfig(configFile)
	if err != nil { log.Fatal(err.Error()) }

	switch modeName {
	case "Convert":
		args := flag.Args()
		if len(args) != 2 {
			flag.Usage()
			os.Exit(2)
		}
		in, out := args[0], args[1]
		if _, err := os.Stat(in); err != nil {
			log.Fatalf("Input table '%s' does not exist.", in)
		} else if _, err := os.Stat(out); err == nil {
			log.Fatalf(
				"Output table '%s' already exists. Remove it or choose " +
					"another name.", out,
			)
		}

		fg := setupRun(con)
		convertMain(con, in, out)
		fg.Close()

	case "Verify":
		if !con.Verify.ValidReferenceFile() {
			log.Fatal("Invalid/non-existent 'ReferenceFile' value.")
		}
		fg := setupRun(con)
		ok := verifyMain(con)
		fg.Close()
		if !ok { os.Exit(1) }

	case "Transect":
		tr := &con.Transect
		if !tr.ValidLat() {
			log.Fatal("Invalid 'Lat' value.")
		} else if !tr.ValidLonRange() {
			log.Fatal("'LonMin' must be smaller than 'LonMax'.")
		} else if !tr.ValidPoints() {
			log.Fatal("'Points' must be at least 2.")
		} else if !tr.ValidPlotFile() {
			log.Fatal("Invalid/non-existent 'PlotFile' value.")
		}
		fg := setupRun(con)
		transectMain(con)
		fg.Close()

	case "Serve":
		if !con.Serve.ValidAddress() {
			log.Fatal("Invalid/non-existent 'Address' value.")
		}
		fg := setupRun(con)
		serveMain(con, fg)

	default:
		panic("Impossible")
	}
}

// getModeName returns the mode selected by the boolean mode flags. With no
// mode flag set, the tool converts a table.
func getModeName(modes map[string]bool) (string, error) {
	setNames := []string{}
	for name, set := range modes {
		if set { setNames = append(setNames, name) }
	}

	if len(setNames) == 0 {
		return "Convert", nil
	}

	if len(setNames) > 1 {
		return "", fmt.Errorf(
			"The following flags were set: %s, but geoelev " +
				"only accepts one mode flag at a time.",
			strings.Join(setNames, ", "),
		)
	}

	return setNames[0], nil
}

func setupRun(con *io.Wrapper) *FileGroup {
	fg := &FileGroup{}
	var err error

	// Set up log file.
	if con.Run.ValidLogFile() {
		fg.log, err = os.Create(con.Run.LogFile)
		if err != nil { log.Fatal(err.Error()) }
		log.SetOutput(fg.log)
	}

	// Set up profile file.
	if con.Run.ValidProfileFile() {
		fg.prof, err = os.Create(con.Run.ProfileFile)
		if err != nil { log.Fatal(err.Error()) }
		err = pprof.StartCPUProfile(fg.prof)
		if err != nil { log.Fatal(err.Error()) }
	}

	return fg
}

// loadModel loads the geoid grid and reports first-run and cache problems to
// the user.
func loadModel(con *io.Wrapper) interpolate.BiInterpolator {
	store := con.Geoid.Store()
	if !fileExists(store.CachePath()) && fileExists(store.SourcePath()) {
		fmt.Println(
			"Reading the geoid grid for the first time. This takes a while; " +
				"later runs will be much faster.",
		)
	}

	m, err := store.Load()
	if errors.Is(err, geoid.ErrMissingSourceFile) {
		log.Fatalf("%s (the grid is distributed by GSI Japan)", err.Error())
	} else if err != nil {
		log.Fatal(err.Error())
	}

	if store.CacheWriteErr != nil {
		fmt.Printf(
			"Warning: the geoid cache could not be saved (%s). The grid " +
				"will be read from scratch next time.\n",
			store.CacheWriteErr.Error(),
		)
	}

	return interpolate.NewBiLinear(m.Geometry(), m)
}

func convertMain(con *io.Wrapper, in, out string) {
	intr := loadModel(con)

	rep, err := tabular.ConvertFile(in, out, intr)
	if err != nil { log.Fatal(err.Error()) }

	log.Printf(
		"Columns: lat=%d, lon=%d, height=%d, delimiter=%q, %d header row(s).",
		rep.Columns.Lat(), rep.Columns.Lon(), rep.Columns.Height(),
		rep.Columns.Delim, rep.Columns.HeaderRows,
	)
	fmt.Println(rep.Message())
}

func verifyMain(con *io.Wrapper) bool {
	ref, err := verify.ReadReference(con.Verify.ReferenceFile)
	if err != nil { log.Fatal(err.Error()) }

	intr := loadModel(con)
	s := verify.Compare(intr, ref, con.Verify.Tolerance)
	fmt.Println(s.String())

	for _, i := range s.Failed {
		log.Printf(
			"(%.5f, %.5f): reference %.4f",
			ref.Lats[i], ref.Lons[i], ref.Undulations[i],
		)
	}

	return s.OK()
}

func transectMain(con *io.Wrapper) {
	intr := loadModel(con)

	tc := &con.Transect
	tr := &plot.Transect{
		Lat: tc.Lat, LonMin: tc.LonMin, LonMax: tc.LonMax, Points: tc.Points,
	}
	n := tr.Plot(intr, tc.PlotFile)
	if n == 0 {
		log.Fatalf(
			"The parallel %g lies entirely outside the geoid grid.",
			con.Transect.Lat,
		)
	}
	plt.Execute()

	fmt.Printf("Wrote %d points to %s.\n", n, con.Transect.PlotFile)
}

// serveMain runs the lookup service until it fails or the process is
// interrupted. fg is closed before returning so that profiles are flushed.
func serveMain(con *io.Wrapper, fg *FileGroup) {
	intr := loadModel(con)
	e := server.New(intr)

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := e.Shutdown(sctx); err != nil { log.Println(err.Error()) }
	}()

	err := e.Start(con.Serve.Address)
	fg.Close()
	if !errors.Is(err, http.ErrServerClosed) {
		e.Logger.Fatal(err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
