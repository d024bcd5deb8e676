package domains

import (
	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/controller"
	"github.com/markusressel/act2go/internal/sensors"
	"github.com/markusressel/act2go/internal/table"
)

// Boost controls the wastegate duty to reach a target manifold pressure
type Boost struct {
	source    sensors.Source
	rpmSensor string
	tpsSensor string
	targetMap *table.Map
}

func newBoost(config configuration.ControllerConfig, source sensors.Source, tables Tables) (controller.Domain, error) {
	if config.Boost == nil {
		return controller.Domain{}, missingConfig(config)
	}

	targetMap, err := tables.Map(config.Boost.TargetTable)
	if err != nil {
		return controller.Domain{}, err
	}
	openLoop, err := optionalCurve(tables, config.Boost.OpenLoopTable)
	if err != nil {
		return controller.Domain{}, err
	}

	boost := &Boost{
		source:    source,
		rpmSensor: config.Boost.RpmSensor,
		tpsSensor: config.Boost.TpsSensor,
		targetMap: targetMap,
	}

	return controller.Domain{
		Setpoint: boost,
		Observer: singleSensor{source: source, id: config.Boost.MapSensor},
		OpenLoop: curveOpenLoop{curve: openLoop},
		Load:     sensorLoad{source: source, id: config.Boost.TpsSensor},
	}, nil
}

func (b *Boost) Setpoint(int) sensors.Reading {
	return evalMap(b.targetMap, b.source.Get(b.rpmSensor), b.source.Get(b.tpsSensor))
}
