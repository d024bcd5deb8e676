package sensors

import (
	"fmt"

	"github.com/markusressel/act2go/internal/configuration"
)

type Sensor interface {
	GetId() string

	GetConfig() configuration.SensorConfig

	// GetValue returns the current raw value of this sensor
	GetValue() (float64, error)
}

// Source provides the latest readings of other sensors
type Source interface {
	Get(id string) Reading
}

// NewSensor creates the sensor described by the given config.
// hwmonPath is the resolved sysfs input file of a hwmon sensor and ignored otherwise,
// source is used by function sensors to read their inputs.
func NewSensor(config configuration.SensorConfig, hwmonPath string, source Source) (Sensor, error) {
	if config.Virtual != nil {
		sensor := &VirtualSensor{
			Config: config,
		}
		if config.Virtual.Value != nil {
			sensor.SetValue(*config.Virtual.Value)
		}
		return sensor, nil
	}

	if config.File != nil {
		return &FileSensor{
			Config: config,
		}, nil
	}

	if config.Cmd != nil {
		return &CmdSensor{
			Config: config,
		}, nil
	}

	if config.HwMon != nil {
		if len(hwmonPath) <= 0 {
			return nil, fmt.Errorf("no hwmon input found for sensor: %s", config.ID)
		}
		return &HwMonSensor{
			Input:  hwmonPath,
			Config: config,
		}, nil
	}

	if config.Function != nil {
		if source == nil {
			return nil, fmt.Errorf("function sensor %s requires a sensor source", config.ID)
		}
		return &FunctionSensor{
			Config: config,
			source: source,
		}, nil
	}

	return nil, fmt.Errorf("no matching sensor type for sensor: %s", config.ID)
}
