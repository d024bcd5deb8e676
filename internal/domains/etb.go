package domains

import (
	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/controller"
	"github.com/markusressel/act2go/internal/sensors"
	"github.com/markusressel/act2go/internal/table"
)

// Etb positions the electronic throttle bodies according to the pedal
type Etb struct {
	perInstance

	rpmSensor   string
	pedalSensor string
	pedalMap    *table.Map
}

func newEtb(config configuration.ControllerConfig, source sensors.Source, tables Tables) (controller.Domain, error) {
	if config.Etb == nil {
		return controller.Domain{}, missingConfig(config)
	}

	pedalMap, err := tables.Map(config.Etb.PedalTable)
	if err != nil {
		return controller.Domain{}, err
	}
	openLoop, err := optionalCurve(tables, config.Etb.OpenLoopTable)
	if err != nil {
		return controller.Domain{}, err
	}

	etb := &Etb{
		perInstance: perInstance{
			source:  source,
			sensors: config.Etb.PositionSensors,
		},
		rpmSensor:   config.Etb.RpmSensor,
		pedalSensor: config.Etb.PedalSensor,
		pedalMap:    pedalMap,
	}

	return controller.Domain{
		Setpoint: etb,
		Observer: etb,
		OpenLoop: curveOpenLoop{curve: openLoop},
		Load:     sensorLoad{source: source, id: config.Etb.PedalSensor},
		Wiring:   etb,
	}, nil
}

func (e *Etb) Setpoint(int) sensors.Reading {
	return evalMap(e.pedalMap, e.source.Get(e.rpmSensor), e.source.Get(e.pedalSensor))
}
