package domains

import (
	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/controller"
	"github.com/markusressel/act2go/internal/sensors"
	"github.com/markusressel/act2go/internal/table"
)

// Alternator regulates the battery voltage through the alternator field duty
type Alternator struct {
	source        sensors.Source
	rpmSensor     string
	targetVoltage float64
	targetCurve   *table.Curve
}

func newAlternator(config configuration.ControllerConfig, source sensors.Source, tables Tables) (controller.Domain, error) {
	if config.Alternator == nil {
		return controller.Domain{}, missingConfig(config)
	}

	targetCurve, err := optionalCurve(tables, config.Alternator.TargetTable)
	if err != nil {
		return controller.Domain{}, err
	}

	alternator := &Alternator{
		source:        source,
		rpmSensor:     config.Alternator.RpmSensor,
		targetVoltage: config.Alternator.TargetVoltage,
		targetCurve:   targetCurve,
	}

	return controller.Domain{
		Setpoint: alternator,
		Observer: singleSensor{source: source, id: config.Alternator.VoltageSensor},
		OpenLoop: controller.ConstantOpenLoop(0),
	}, nil
}

func (a *Alternator) Setpoint(int) sensors.Reading {
	if a.targetCurve != nil {
		return evalCurve(a.targetCurve, a.source.Get(a.rpmSensor))
	}
	if a.targetVoltage <= 0 {
		return sensors.Unavailable()
	}
	return sensors.Valid(a.targetVoltage)
}
