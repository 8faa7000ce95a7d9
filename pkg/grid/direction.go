package grid

import (
	"strings"

	"github.com/matzehuels/imagestitch/pkg/errors"
)

// Direction selects which axis is filled first.
type Direction int

const (
	// RowMajor fills rows left to right; width is the bounded axis ("X").
	RowMajor Direction = iota
	// ColumnMajor fills columns top to bottom; height is the bounded axis ("Y").
	ColumnMajor
)

// ParseDirection parses "X" or "Y" (case-insensitive).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "X":
		return RowMajor, nil
	case "Y":
		return ColumnMajor, nil
	}
	return RowMajor, errors.New(errors.ErrCodeInvalidDirection, "invalid direction: %q (must be X or Y)", s)
}

// String returns the command-line spelling, "X" or "Y".
func (d Direction) String() string {
	if d == ColumnMajor {
		return "Y"
	}
	return "X"
}

// Set implements pflag.Value.
func (d *Direction) Set(s string) error {
	v, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Type implements pflag.Value.
func (d *Direction) Type() string { return "X|Y" }

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, used by TOML configs.
func (d *Direction) UnmarshalText(b []byte) error {
	return d.Set(string(b))
}

// axes returns the accessors for the bounded (major) and derived (minor) axis.
func (d Direction) axes() (major, minor axis) {
	if d == ColumnMajor {
		return height, width
	}
	return width, height
}

// dimension assembles a Dimension from major and minor axis lengths.
func (d Direction) dimension(major, minor int) Dimension {
	if d == ColumnMajor {
		return Dimension{Width: minor, Height: major}
	}
	return Dimension{Width: major, Height: minor}
}

// cell maps an (outer, inner) traversal position to (row, col).
// Outer advances once per full run of the major axis.
func (d Direction) cell(outer, inner int) (row, col int) {
	if d == ColumnMajor {
		return inner, outer
	}
	return outer, inner
}
