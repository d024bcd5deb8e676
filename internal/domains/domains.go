// Package domains connects the generic controller to the sensors and
// calibration tables of each physical subsystem.
package domains

import (
	"fmt"

	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/controller"
	"github.com/markusressel/act2go/internal/sensors"
	"github.com/markusressel/act2go/internal/table"
)

// Tables provides calibration tables by id
type Tables interface {
	Curve(id string) (*table.Curve, error)
	Map(id string) (*table.Map, error)
}

// New creates the domain for the given controller configuration
func New(config configuration.ControllerConfig, source sensors.Source, tables Tables) (controller.Domain, error) {
	switch config.Type {
	case configuration.ControllerTypeVvt:
		return newVvt(config, source, tables)
	case configuration.ControllerTypeIdle:
		return newIdle(config, source, tables)
	case configuration.ControllerTypeEtb:
		return newEtb(config, source, tables)
	case configuration.ControllerTypeAlternator:
		return newAlternator(config, source, tables)
	case configuration.ControllerTypeBoost:
		return newBoost(config, source, tables)
	default:
		return controller.Domain{}, fmt.Errorf("controller %s: unsupported type '%s'", config.ID, config.Type)
	}
}

func missingConfig(config configuration.ControllerConfig) error {
	return fmt.Errorf("controller %s: missing '%s' configuration", config.ID, config.Type)
}

// optionalCurve returns nil if no id is given
func optionalCurve(tables Tables, id string) (*table.Curve, error) {
	if len(id) <= 0 {
		return nil, nil
	}
	return tables.Curve(id)
}

// evalMap looks up the given map, unavailable unless both axis inputs are valid
func evalMap(m *table.Map, x sensors.Reading, y sensors.Reading) sensors.Reading {
	xValue, xOk := x.Get()
	yValue, yOk := y.Get()
	if m == nil || !xOk || !yOk {
		return sensors.Unavailable()
	}
	return sensors.Valid(m.Eval(xValue, yValue))
}

func evalCurve(c *table.Curve, x sensors.Reading) sensors.Reading {
	value, ok := x.Get()
	if c == nil || !ok {
		return sensors.Unavailable()
	}
	return sensors.Valid(c.Eval(value))
}

// perInstance reads the sensor assigned to the given instance
type perInstance struct {
	source  sensors.Source
	sensors []string
}

func (p perInstance) Observe(index int) sensors.Reading {
	if index < 0 || index >= len(p.sensors) || len(p.sensors[index]) <= 0 {
		return sensors.Unavailable()
	}
	return p.source.Get(p.sensors[index])
}

func (p perInstance) IsWired(index int) bool {
	return index >= 0 && index < len(p.sensors) && len(p.sensors[index]) > 0
}

// curveOpenLoop is a feed-forward model over the load of the domain, 0 without curve
type curveOpenLoop struct {
	curve *table.Curve
}

func (c curveOpenLoop) OpenLoop(load float64) float64 {
	if c.curve == nil {
		return 0
	}
	return c.curve.Eval(load)
}

type sensorLoad struct {
	source sensors.Source
	id     string
}

func (s sensorLoad) Load() sensors.Reading {
	return s.source.Get(s.id)
}

type singleSensor struct {
	source sensors.Source
	id     string
}

func (s singleSensor) Observe(int) sensors.Reading {
	return s.source.Get(s.id)
}
