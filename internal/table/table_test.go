package table

import (
	"math"
	"testing"

	"github.com/markusressel/act2go/internal/configuration"
	"github.com/stretchr/testify/assert"
)

func createCurve(t *testing.T) *Curve {
	curve, err := NewCurve("clt_idle", configuration.CurveTableConfig{
		X: []float64{-20, 20, 80},
		Y: []float64{1400, 1000, 800},
	})
	assert.NoError(t, err)
	return curve
}

func createMap(t *testing.T) *Map {
	m, err := NewMap("vvt", configuration.MapTableConfig{
		X: []float64{1000, 3000},
		Y: []float64{20, 100},
		Values: [][]float64{
			{0, 20},
			{10, 40},
		},
	})
	assert.NoError(t, err)
	return m
}

func TestCurve_Breakpoints(t *testing.T) {
	// GIVEN
	curve := createCurve(t)

	// THEN
	assert.Equal(t, 1400.0, curve.Eval(-20))
	assert.Equal(t, 1000.0, curve.Eval(20))
	assert.Equal(t, 800.0, curve.Eval(80))
}

func TestCurve_Interpolation(t *testing.T) {
	// GIVEN
	curve := createCurve(t)

	// WHEN
	result := curve.Eval(50)

	// THEN
	assert.InDelta(t, 900.0, result, 0.0001)
}

func TestCurve_Clamped(t *testing.T) {
	// GIVEN
	curve := createCurve(t)

	// THEN
	assert.Equal(t, 1400.0, curve.Eval(-40))
	assert.Equal(t, 800.0, curve.Eval(120))
	assert.Equal(t, 800.0, curve.Eval(math.Inf(1)))
}

func TestCurve_NaN(t *testing.T) {
	// GIVEN
	curve := createCurve(t)

	// THEN
	assert.True(t, math.IsNaN(curve.Eval(math.NaN())))
}

func TestCurve_SinglePoint(t *testing.T) {
	// GIVEN
	curve, err := NewCurve("const", configuration.CurveTableConfig{X: []float64{0}, Y: []float64{14.2}})

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 14.2, curve.Eval(-100))
	assert.Equal(t, 14.2, curve.Eval(100))
}

func TestNewCurve_Invalid(t *testing.T) {
	_, err := NewCurve("a", configuration.CurveTableConfig{X: []float64{1, 2}, Y: []float64{1}})
	assert.Error(t, err)

	_, err = NewCurve("b", configuration.CurveTableConfig{X: []float64{2, 1}, Y: []float64{1, 2}})
	assert.Error(t, err)

	_, err = NewCurve("c", configuration.CurveTableConfig{})
	assert.Error(t, err)
}

func TestMap_Corners(t *testing.T) {
	// GIVEN
	m := createMap(t)

	// THEN
	assert.Equal(t, 0.0, m.Eval(1000, 20))
	assert.Equal(t, 20.0, m.Eval(3000, 20))
	assert.Equal(t, 10.0, m.Eval(1000, 100))
	assert.Equal(t, 40.0, m.Eval(3000, 100))
}

func TestMap_Bilinear(t *testing.T) {
	// GIVEN
	m := createMap(t)

	// WHEN
	result := m.Eval(2000, 60)

	// THEN
	// average of all four corners
	assert.InDelta(t, 17.5, result, 0.0001)
}

func TestMap_Clamped(t *testing.T) {
	// GIVEN
	m := createMap(t)

	// THEN
	assert.Equal(t, 0.0, m.Eval(0, 0))
	assert.Equal(t, 40.0, m.Eval(9000, 200))
	assert.InDelta(t, 10.0, m.Eval(2000, 0), 0.0001)
}

func TestMap_NaN(t *testing.T) {
	// GIVEN
	m := createMap(t)

	// THEN
	assert.True(t, math.IsNaN(m.Eval(math.NaN(), 50)))
	assert.True(t, math.IsNaN(m.Eval(2000, math.NaN())))
}

func TestNewMap_Invalid(t *testing.T) {
	_, err := NewMap("rows", configuration.MapTableConfig{
		X:      []float64{1, 2},
		Y:      []float64{1, 2},
		Values: [][]float64{{1, 2}},
	})
	assert.Error(t, err)

	_, err = NewMap("cols", configuration.MapTableConfig{
		X:      []float64{1, 2},
		Y:      []float64{1},
		Values: [][]float64{{1}},
	})
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	// GIVEN
	registry, err := NewRegistryFromConfig([]configuration.TableConfig{
		{ID: "curve", Curve: &configuration.CurveTableConfig{X: []float64{0, 1}, Y: []float64{0, 1}}},
		{ID: "map", Map: &configuration.MapTableConfig{X: []float64{0}, Y: []float64{0}, Values: [][]float64{{5}}}},
	})
	assert.NoError(t, err)

	// WHEN
	curve, curveErr := registry.Curve("curve")
	m, mapErr := registry.Map("map")
	_, missingErr := registry.Curve("map")

	// THEN
	assert.NoError(t, curveErr)
	assert.NoError(t, mapErr)
	assert.Error(t, missingErr)
	assert.Equal(t, 0.5, curve.Eval(0.5))
	assert.Equal(t, 5.0, m.Eval(3, 3))
	assert.ElementsMatch(t, []string{"curve", "map"}, registry.Ids())
}

func TestRegistry_NoTable(t *testing.T) {
	// WHEN
	_, err := NewRegistryFromConfig([]configuration.TableConfig{{ID: "empty"}})

	// THEN
	assert.Error(t, err)
}
