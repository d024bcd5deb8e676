package sensors

import (
	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/util"
)

// HwMonSensor reads a sysfs input of a lm-sensors chip
type HwMonSensor struct {
	// absolute path of the input file, i.e. /sys/class/hwmon/hwmon2/in1_input
	Input  string                     `json:"input"`
	Config configuration.SensorConfig `json:"configuration"`
}

func (sensor HwMonSensor) GetId() string {
	return sensor.Config.ID
}

func (sensor HwMonSensor) GetConfig() configuration.SensorConfig {
	return sensor.Config
}

func (sensor HwMonSensor) GetValue() (float64, error) {
	value, err := util.ReadFloatFromFile(sensor.Input)
	if err != nil {
		return 0, err
	}
	return value * sensor.scale(), nil
}

// temperatures and voltages are exposed in milli units
func (sensor HwMonSensor) scale() float64 {
	switch sensor.Config.HwMon.Feature {
	case configuration.HwMonFeatureTemp, configuration.HwMonFeatureVoltage:
		return scaleOrDefault(sensor.Config.HwMon.Scale, 0.001)
	default:
		return scaleOrDefault(sensor.Config.HwMon.Scale, 1)
	}
}
