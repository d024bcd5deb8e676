package configuration

import "time"

// DefaultTelemetryRecords is the default address table of named telemetry records
var DefaultTelemetryRecords = map[string]int{
	ControllerTypeVvt:        0,
	ControllerTypeIdle:       256,
	ControllerTypeEtb:        512,
	ControllerTypeAlternator: 768,
	ControllerTypeBoost:      1024,
}

type TelemetryConfig struct {
	Enabled bool `json:"enabled"`
	// Records maps record names to their base address in the telemetry image
	Records map[string]int       `json:"records"`
	Can     CanTelemetryConfig   `json:"can"`
	File    *FileTelemetryConfig `json:"file,omitempty"`
}

type CanTelemetryConfig struct {
	Enabled   bool          `json:"enabled"`
	Interface string        `json:"interface"`
	BaseId    uint32        `json:"baseId"`
	Rate      time.Duration `json:"rate"`
}

type FileTelemetryConfig struct {
	Path string `json:"path"`
	// defaults to 1s
	Rate time.Duration `json:"rate,omitempty"`
}
