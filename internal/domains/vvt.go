package domains

import (
	"fmt"

	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/controller"
	"github.com/markusressel/act2go/internal/sensors"
	"github.com/markusressel/act2go/internal/table"
)

// Vvt controls the cam phase of every cam (lane) of every bank.
// The target is looked up per lane from rpm and engine load,
// the observation is the decoded cam position of the instance.
type Vvt struct {
	perInstance

	lanesPerBank int
	rpmSensor    string
	loadSensor   string
	targets      []*table.Map
}

func newVvt(config configuration.ControllerConfig, source sensors.Source, tables Tables) (controller.Domain, error) {
	if config.Vvt == nil {
		return controller.Domain{}, missingConfig(config)
	}

	vvt := &Vvt{
		perInstance: perInstance{
			source:  source,
			sensors: config.Vvt.PositionSensors,
		},
		lanesPerBank: config.LanesPerBank,
		rpmSensor:    config.Vvt.RpmSensor,
		loadSensor:   config.Vvt.LoadSensor,
	}
	for lane, id := range config.Vvt.TargetTables {
		m, err := tables.Map(id)
		if err != nil {
			return controller.Domain{}, fmt.Errorf("controller %s: lane %d: %w", config.ID, lane, err)
		}
		vvt.targets = append(vvt.targets, m)
	}

	return controller.Domain{
		Setpoint: vvt,
		Observer: vvt,
		OpenLoop: controller.ConstantOpenLoop(0),
		Wiring:   vvt,
	}, nil
}

func (v *Vvt) Setpoint(index int) sensors.Reading {
	lane := controller.NewAddress(index, v.lanesPerBank).Lane
	if lane >= len(v.targets) {
		return sensors.Unavailable()
	}
	return evalMap(v.targets[lane], v.source.Get(v.rpmSensor), v.source.Get(v.loadSensor))
}
