package geoid

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/geoelev/geoelev/geom"
)

// ReadASCIIFile reads the plain-text grid located at the given path.
func ReadASCIIFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := ReadASCII(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

/*
ReadASCII parses a plain-text geoid grid. The format is:

	originLat originLon deltaLat deltaLon rowCount colCount version...
	v(0,0) v(0,1) ... v(0,colCount-1) v(1,0) ...

The samples are given in row-major order starting from the southwest corner.
Rows are not required to start on a new line and any amount of whitespace may
separate two samples. Samples equal to NoData are dropped.
*/
func ReadASCII(r io.Reader) (*Model, error) {
	br := bufio.NewReader(r)
	first, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, err
	} else if strings.TrimSpace(first) == "" {
		return nil, fmt.Errorf("empty grid file")
	}
	hd, err := parseHeader(first)
	if err != nil {
		return nil, err
	}

	sc := bufio.NewScanner(br)
	sc.Split(bufio.ScanWords)

	vals := map[int]float64{}
	n, total := 0, hd.Len()
	for sc.Scan() {
		if n == total {
			return nil, fmt.Errorf(
				"more than the %d samples given in the header", total,
			)
		}
		v, err := strconv.ParseFloat(sc.Text(), 64)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %q is not a number",
				n+1, sc.Text())
		}
		if v != NoData {
			vals[n] = v
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if n != total {
		return nil, fmt.Errorf(
			"found %d samples, but the header gives %d x %d",
			n, hd.Nodes[0], hd.Nodes[1],
		)
	}

	return NewModel(*hd, vals), nil
}

func parseHeader(line string) (*Header, error) {
	toks := strings.Fields(line)
	if len(toks) < 6 {
		return nil, fmt.Errorf(
			"grid header needs at least 6 fields, but has %d", len(toks),
		)
	}

	var fs [4]float64
	for k := range fs {
		f, err := strconv.ParseFloat(toks[k], 64)
		if err != nil {
			return nil, fmt.Errorf("grid header field %d: %q is not a number",
				k+1, toks[k])
		}
		fs[k] = f
	}
	var ns [2]int
	for k := range ns {
		n, err := strconv.Atoi(toks[4+k])
		if err != nil || n < 2 {
			return nil, fmt.Errorf("grid header field %d: %q is not a valid "+
				"node count", 5+k, toks[4+k])
		}
		ns[k] = n
	}
	if fs[2] <= 0 || fs[3] <= 0 {
		return nil, fmt.Errorf("grid spacing must be positive, got %g and %g",
			fs[2], fs[3])
	}

	hd := &Header{Version: strings.Join(toks[6:], " ")}
	hd.Grid = *geom.NewGrid(
		[2]float64{fs[0], fs[1]}, [2]float64{fs[2], fs[3]}, ns,
	)
	return hd, nil
}
