package tabular

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

const (
	// InvalidElevation replaces the height of rows whose undulation is
	// unknown.
	InvalidElevation = "999999"
	// ElevationDigits is the number of decimal places written for
	// elevations.
	ElevationDigits = 3
)

var (
	// ErrMalformedRow is returned when a data row lacks a numeric latitude,
	// longitude or height.
	ErrMalformedRow = errors.New("malformed row")
)

// Undulator gives the geoid undulation at a point, or false if the point is
// not covered by the geoid model.
type Undulator interface {
	Eval(lat, lon float64) (float64, bool)
}

// Report summarizes a conversion.
type Report struct {
	Columns Columns
	// Rows is the number of data rows converted.
	Rows int
	// Invalid is the number of rows outside the geoid model, written with
	// InvalidElevation.
	Invalid int
}

// HasInvalid returns true if any row was outside the geoid model.
func (rep *Report) HasInvalid() bool { return rep.Invalid > 0 }

// Message returns a status line for the user.
func (rep *Report) Message() string {
	if rep.HasInvalid() {
		return fmt.Sprintf(
			"The geoid height could not be found for %d of %d rows. Please "+
				"check them: their elevation has been set to %s.",
			rep.Invalid, rep.Rows, InvalidElevation,
		)
	}
	return fmt.Sprintf("Converted %d rows successfully.", rep.Rows)
}

// ConvertFile converts the table at inPath and writes the result to outPath,
// which must not exist yet. If the conversion fails, nothing is left at
// outPath.
func ConvertFile(inPath, outPath string, u Undulator) (*Report, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, err
	}

	rep, err := Convert(in, out, u)
	if err != nil {
		out.Close()
		os.Remove(outPath)
		return nil, fmt.Errorf("%s: %w", inPath, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(outPath)
		return nil, err
	}
	return rep, nil
}

// Convert reads a delimited table from r and writes it to w with the height
// column replaced by height - undulation. Header rows are copied, and all
// other fields are left untouched. Rows outside the geoid model are written
// with InvalidElevation and counted in the Report.
func Convert(r io.Reader, w io.Writer, u Undulator) (*Report, error) {
	br := bufio.NewReader(r)
	head, err := readLines(br, 2)
	if err != nil {
		return nil, err
	}
	cols, err := Detect(head)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(io.MultiReader(
		strings.NewReader(strings.Join(head, "")), br,
	))
	cr.Comma = cols.Delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	bw := bufio.NewWriter(w)
	rep := &Report{Columns: *cols}
	// next is the line the following record must start on. csv.Reader
	// skips empty lines, so a gap means a blank row. Blank lines at the end
	// of the table are ignored.
	next := 1
	for n := 0; ; n++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedRow, err)
		}

		line, _ := cr.FieldPos(0)
		if line != next {
			return nil, fmt.Errorf("%w: line %d: empty row",
				ErrMalformedRow, next)
		}
		last, _ := cr.FieldPos(len(rec) - 1)
		next = last + strings.Count(rec[len(rec)-1], "\n") + 1

		if n >= cols.HeaderRows {
			ok, err := cols.convert(rec, u)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %s",
					ErrMalformedRow, line, err)
			}
			rep.Rows++
			if !ok {
				rep.Invalid++
			}
		}

		if err := writeRow(bw, rec, cols.Delim); err != nil {
			return nil, err
		}
	}

	if err := bw.Flush(); err != nil {
		return nil, err
	}
	return rep, nil
}

// convert replaces the height field of rec with an elevation. It returns
// false if rec is outside the geoid model.
func (c *Columns) convert(rec []string, u Undulator) (bool, error) {
	var xs [roleNum]float64
	for r, col := range c.Idx {
		if col >= len(rec) {
			return false, fmt.Errorf("no %s column (%d fields)",
				Role(r), len(rec))
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(rec[col]), 64)
		if err != nil {
			return false, fmt.Errorf("%s %q is not a number",
				Role(r), rec[col])
		}
		xs[r] = x
	}

	n, ok := u.Eval(xs[Lat], xs[Lon])
	if !ok {
		rec[c.Height()] = InvalidElevation
		return false, nil
	}
	rec[c.Height()] = strconv.FormatFloat(
		xs[Height]-n, 'f', ElevationDigits, 64,
	)
	return true, nil
}

func writeRow(w *bufio.Writer, rec []string, delim rune) error {
	for i, field := range rec {
		if i > 0 {
			if _, err := w.WriteRune(delim); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(field); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

// readLines reads up to n lines from r, keeping their line endings.
func readLines(r *bufio.Reader, n int) ([]string, error) {
	var lines []string
	for len(lines) < n {
		line, err := r.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
	}
	return lines, nil
}
