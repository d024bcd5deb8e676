package domains

import (
	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/controller"
	"github.com/markusressel/act2go/internal/sensors"
	"github.com/markusressel/act2go/internal/table"
)

// Idle holds the engine speed at a coolant temperature dependent target
type Idle struct {
	source        sensors.Source
	coolantSensor string
	targetRpm     *table.Curve
}

func newIdle(config configuration.ControllerConfig, source sensors.Source, tables Tables) (controller.Domain, error) {
	if config.Idle == nil {
		return controller.Domain{}, missingConfig(config)
	}

	targetRpm, err := tables.Curve(config.Idle.TargetRpmTable)
	if err != nil {
		return controller.Domain{}, err
	}
	openLoop, err := optionalCurve(tables, config.Idle.OpenLoopTable)
	if err != nil {
		return controller.Domain{}, err
	}

	idle := &Idle{
		source:        source,
		coolantSensor: config.Idle.CoolantSensor,
		targetRpm:     targetRpm,
	}

	return controller.Domain{
		Setpoint: idle,
		Observer: singleSensor{source: source, id: config.Idle.RpmSensor},
		OpenLoop: curveOpenLoop{curve: openLoop},
		Load:     sensorLoad{source: source, id: config.Idle.CoolantSensor},
	}, nil
}

func (i *Idle) Setpoint(int) sensors.Reading {
	return evalCurve(i.targetRpm, i.source.Get(i.coolantSensor))
}
