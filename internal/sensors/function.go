package sensors

import (
	"fmt"

	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/util"
)

// FunctionSensor derives its value from other sensors
type FunctionSensor struct {
	Config configuration.SensorConfig `json:"configuration"`

	source Source
}

func (sensor FunctionSensor) GetId() string {
	return sensor.Config.ID
}

func (sensor FunctionSensor) GetConfig() configuration.SensorConfig {
	return sensor.Config
}

func (sensor FunctionSensor) GetValue() (float64, error) {
	ids := sensor.Config.Function.Sensors
	if len(ids) <= 0 {
		return 0, fmt.Errorf("sensor %s: no input sensors", sensor.GetId())
	}

	var values []float64
	for _, id := range ids {
		value, ok := sensor.source.Get(id).Get()
		if !ok {
			return 0, fmt.Errorf("sensor %s: input sensor %s is unavailable", sensor.GetId(), id)
		}
		values = append(values, value)
	}

	switch sensor.Config.Function.Type {
	case configuration.FunctionSum:
		return sum(values), nil
	case configuration.FunctionAverage:
		return util.Avg(values), nil
	case configuration.FunctionMinimum:
		return util.Min(values), nil
	case configuration.FunctionMaximum:
		return util.Max(values), nil
	default:
		return 0, fmt.Errorf("sensor %s: unknown function type '%s'", sensor.GetId(), sensor.Config.Function.Type)
	}
}

func sum(values []float64) (result float64) {
	for _, v := range values {
		result += v
	}
	return result
}
