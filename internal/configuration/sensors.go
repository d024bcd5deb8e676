package configuration

import "time"

type SensorConfig struct {
	ID string `json:"id"`

	// plausibility range, readings outside of it are treated as unavailable
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`

	PollingRate time.Duration `json:"pollingRate,omitempty"`
	Timeout     time.Duration `json:"timeout,omitempty"`
	// number of samples used for the moving average, <= 1 disables smoothing
	RollingWindowSize int `json:"rollingWindowSize,omitempty"`

	Virtual  *VirtualSensorConfig  `json:"virtual,omitempty"`
	File     *FileSensorConfig     `json:"file,omitempty"`
	Cmd      *CmdSensorConfig      `json:"cmd,omitempty"`
	HwMon    *HwMonSensorConfig    `json:"hwMon,omitempty"`
	Function *FunctionSensorConfig `json:"function,omitempty"`
}

type VirtualSensorConfig struct {
	// initial value, the sensor is unavailable until set when missing
	Value *float64 `json:"value,omitempty"`
}

type FileSensorConfig struct {
	Path string `json:"path"`
	// factor applied to the raw file content, defaults to 1
	Scale float64 `json:"scale,omitempty"`
}

type CmdSensorConfig struct {
	Exec    string        `json:"exec"`
	Args    []string      `json:"args"`
	Timeout time.Duration `json:"timeout,omitempty"`
}

const (
	HwMonFeatureTemp    = "temp"
	HwMonFeatureVoltage = "in"
	HwMonFeatureFan     = "fan"
)

type HwMonSensorConfig struct {
	Platform string `json:"platform"`
	// one of temp | in | fan
	Feature string `json:"feature"`
	Index   int    `json:"index"`
	// factor applied to the raw value, defaults to 0.001 for temp and in (milli units) and 1 for fan
	Scale float64 `json:"scale,omitempty"`
}

const (
	FunctionSum     = "sum"
	FunctionAverage = "average"
	FunctionMinimum = "minimum"
	FunctionMaximum = "maximum"
)

type FunctionSensorConfig struct {
	Type    string   `json:"type"`
	Sensors []string `json:"sensors"`
}
