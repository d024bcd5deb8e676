package table

import (
	"fmt"
	"math"

	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/util"
)

// Curve is a one dimensional calibration table with linear interpolation between
// breakpoints. Inputs outside the breakpoint range are clamped to the ends.
type Curve struct {
	ID string
	X  []float64
	Y  []float64
}

// Map is a two dimensional calibration table with bilinear interpolation.
// Values is indexed as Values[yIndex][xIndex].
type Map struct {
	ID     string
	X      []float64
	Y      []float64
	Values [][]float64
}

func NewCurve(id string, config configuration.CurveTableConfig) (*Curve, error) {
	if len(config.X) <= 0 || len(config.X) != len(config.Y) {
		return nil, fmt.Errorf("table %s: curve needs the same, non-zero number of x and y values", id)
	}
	if err := checkAxis(config.X); err != nil {
		return nil, fmt.Errorf("table %s: %w", id, err)
	}
	return &Curve{
		ID: id,
		X:  config.X,
		Y:  config.Y,
	}, nil
}

func NewMap(id string, config configuration.MapTableConfig) (*Map, error) {
	if len(config.X) <= 0 || len(config.Y) <= 0 {
		return nil, fmt.Errorf("table %s: map needs at least one x and one y breakpoint", id)
	}
	if err := checkAxis(config.X); err != nil {
		return nil, fmt.Errorf("table %s: x axis: %w", id, err)
	}
	if err := checkAxis(config.Y); err != nil {
		return nil, fmt.Errorf("table %s: y axis: %w", id, err)
	}
	if len(config.Values) != len(config.Y) {
		return nil, fmt.Errorf("table %s: expected %d rows, got %d", id, len(config.Y), len(config.Values))
	}
	for i, row := range config.Values {
		if len(row) != len(config.X) {
			return nil, fmt.Errorf("table %s: row %d: expected %d values, got %d", id, i, len(config.X), len(row))
		}
	}
	return &Map{
		ID:     id,
		X:      config.X,
		Y:      config.Y,
		Values: config.Values,
	}, nil
}

func checkAxis(axis []float64) error {
	for i := 1; i < len(axis); i++ {
		if !(axis[i] > axis[i-1]) {
			return fmt.Errorf("breakpoints must be strictly increasing: %v", axis)
		}
	}
	return nil
}

// Eval returns the interpolated value at x, NaN if x is NaN
func (c *Curve) Eval(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	i, ratio := locate(c.X, x)
	if ratio == 0 {
		return c.Y[i]
	}
	return c.Y[i] + ratio*(c.Y[i+1]-c.Y[i])
}

// Eval returns the bilinear interpolated value at (x, y), NaN if any input is NaN
func (m *Map) Eval(x float64, y float64) float64 {
	if math.IsNaN(x) || math.IsNaN(y) {
		return math.NaN()
	}
	xi, xr := locate(m.X, x)
	yi, yr := locate(m.Y, y)

	row := m.Values[yi]
	lower := interpolate(row, xi, xr)
	if yr == 0 {
		return lower
	}
	upper := interpolate(m.Values[yi+1], xi, xr)
	return lower + yr*(upper-lower)
}

func interpolate(row []float64, i int, ratio float64) float64 {
	if ratio == 0 {
		return row[i]
	}
	return row[i] + ratio*(row[i+1]-row[i])
}

// locate returns the index of the breakpoint at or below value and the
// relative position towards the next breakpoint in [0, 1).
// Values outside the axis are clamped.
func locate(axis []float64, value float64) (index int, ratio float64) {
	last := len(axis) - 1
	if value <= axis[0] {
		return 0, 0
	}
	if value >= axis[last] {
		return last, 0
	}
	for i := 0; i < last; i++ {
		if value < axis[i+1] {
			return i, util.Ratio(value, axis[i], axis[i+1])
		}
	}
	return last, 0
}
