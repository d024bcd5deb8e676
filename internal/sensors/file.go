package sensors

import (
	"fmt"

	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/util"
)

type FileSensor struct {
	Config configuration.SensorConfig `json:"configuration"`
}

func (sensor FileSensor) GetId() string {
	return sensor.Config.ID
}

func (sensor FileSensor) GetConfig() configuration.SensorConfig {
	return sensor.Config
}

func (sensor FileSensor) GetValue() (float64, error) {
	filePath, err := util.ExpandHomePath(sensor.Config.File.Path)
	if err != nil {
		return 0, err
	}

	value, err := util.ReadFloatFromFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("sensor %s: unable to read number from file %s: %w", sensor.GetId(), filePath, err)
	}

	return value * scaleOrDefault(sensor.Config.File.Scale, 1), nil
}

func scaleOrDefault(scale float64, fallback float64) float64 {
	if scale == 0 {
		return fallback
	}
	return scale
}
