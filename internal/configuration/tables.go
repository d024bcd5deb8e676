package configuration

type TableConfig struct {
	ID    string            `json:"id"`
	Curve *CurveTableConfig `json:"curve,omitempty"`
	Map   *MapTableConfig   `json:"map,omitempty"`
}

// CurveTableConfig is a one dimensional calibration curve, y = f(x)
type CurveTableConfig struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// MapTableConfig is a two dimensional calibration table, value = f(x, y).
// Values is indexed as Values[yIndex][xIndex].
type MapTableConfig struct {
	X      []float64   `json:"x"`
	Y      []float64   `json:"y"`
	Values [][]float64 `json:"values"`
}
