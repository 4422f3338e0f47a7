/*package tabular converts the ellipsoidal heights in delimited text tables
into elevations.
*/
package tabular

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnrecognizedFormat is returned when the delimiter or one of the
	// required columns of a table cannot be identified.
	ErrUnrecognizedFormat = errors.New("unrecognized table format")
)

// Delimiters are tried in this order.
var delimiters = []rune{',', '\t', ' '}

// Role is the meaning of a table column.
type Role int

const (
	Lat Role = iota
	Lon
	Height
	roleNum
)

func (r Role) String() string {
	switch r {
	case Lat:
		return "latitude"
	case Lon:
		return "longitude"
	case Height:
		return "height"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

// Columns describes the layout of a table.
type Columns struct {
	// Idx gives the column index of each Role.
	Idx [roleNum]int
	// Delim separates the fields of a row.
	Delim rune
	// HeaderRows is the number of rows copied to the output unchanged.
	HeaderRows int
}

// Lat returns the index of the latitude column.
func (c *Columns) Lat() int { return c.Idx[Lat] }

// Lon returns the index of the longitude column.
func (c *Columns) Lon() int { return c.Idx[Lon] }

// Height returns the index of the height column.
func (c *Columns) Height() int { return c.Idx[Height] }

// A rule assigns a role to every column whose lower-cased, trimmed name
// matches.
type rule struct {
	role  Role
	match func(name string) bool
}

func named(s string) func(string) bool {
	return func(name string) bool { return name == s }
}

func containsAll(subs ...string) func(string) bool {
	return func(name string) bool {
		for _, sub := range subs {
			if !strings.Contains(name, sub) {
				return false
			}
		}
		return true
	}
}

// rules are applied column by column, left to right. When several columns
// match the same role the rightmost one wins. A column may be assigned more
// than one role.
var rules = []rule{
	{Height, named("z")},
	{Height, named("alt")},
	{Height, named("altitude")},
	{Height, named("z/altitude")},
	{Height, containsAll("altitude", "z")},

	{Lat, named("latitude")},
	{Lat, named("lat")},
	{Lat, containsAll("latitude", "y")},

	{Lon, named("longitude")},
	{Lon, named("lng")},
	{Lon, named("lon")},
	{Lon, named("long")},
	{Lon, containsAll("longitude", "x")},
}

// HeaderRows returns the number of header rows of a table whose first line
// is given: 1 if the line names latitude, longitude and altitude columns and
// 2 otherwise (a row of units or types follows the names).
func HeaderRows(first string) int {
	s := strings.ToLower(first)
	has := func(sub string) bool { return strings.Contains(s, sub) }

	if has("latitude") && has("longitude") && has("altitude") {
		return 1
	}
	if has("lat") && (has("long") || has("lon") || has("lng")) && has("alt") {
		return 1
	}
	return 2
}

// Detect identifies the layout of a table from its first two lines. The
// second line is only used if the first is not a recognizable header.
func Detect(lines []string) (*Columns, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty table", ErrUnrecognizedFormat)
	}

	c := &Columns{HeaderRows: HeaderRows(lines[0])}
	if c.HeaderRows > len(lines) {
		return nil, fmt.Errorf(
			"%w: no column names found", ErrUnrecognizedFormat,
		)
	}
	header := strings.TrimSpace(lines[c.HeaderRows-1])

	var names []string
	for _, d := range delimiters {
		if names = strings.Split(header, string(d)); len(names) > 2 {
			c.Delim = d
			break
		}
	}
	if c.Delim == 0 {
		return nil, fmt.Errorf("%w: cannot determine the delimiter of %q",
			ErrUnrecognizedFormat, header)
	}

	for r := range c.Idx {
		c.Idx[r] = -1
	}
	for col, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		for _, rl := range rules {
			if rl.match(name) {
				c.Idx[rl.role] = col
			}
		}
	}

	var missing []string
	for r, col := range c.Idx {
		if col == -1 {
			missing = append(missing, Role(r).String())
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: no %s column in %q", ErrUnrecognizedFormat,
			strings.Join(missing, " or "), header)
	}

	return c, nil
}
