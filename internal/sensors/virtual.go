package sensors

import (
	"errors"
	"math"
	"sync/atomic"

	"github.com/markusressel/act2go/internal/configuration"
)

var ErrNoValue = errors.New("no value set")

// VirtualSensor holds a value that is set from the outside, i.e. via the API
type VirtualSensor struct {
	Config configuration.SensorConfig `json:"configuration"`

	bits atomic.Uint64
	set  atomic.Bool
}

func (sensor *VirtualSensor) GetId() string {
	return sensor.Config.ID
}

func (sensor *VirtualSensor) GetConfig() configuration.SensorConfig {
	return sensor.Config
}

func (sensor *VirtualSensor) GetValue() (float64, error) {
	if !sensor.set.Load() {
		return 0, ErrNoValue
	}
	return math.Float64frombits(sensor.bits.Load()), nil
}

func (sensor *VirtualSensor) SetValue(value float64) {
	sensor.bits.Store(math.Float64bits(value))
	sensor.set.Store(true)
}
