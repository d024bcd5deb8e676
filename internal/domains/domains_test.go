package domains

import (
	"testing"
	"time"

	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/controller"
	"github.com/markusressel/act2go/internal/gains"
	"github.com/markusressel/act2go/internal/pid"
	"github.com/markusressel/act2go/internal/sensors"
	"github.com/markusressel/act2go/internal/table"
	"github.com/stretchr/testify/assert"
)

func createSensorRegistry(t *testing.T, ids ...string) *sensors.Registry {
	registry := sensors.NewRegistry(time.Second)
	for _, id := range ids {
		sensor, err := sensors.NewSensor(configuration.SensorConfig{
			ID:      id,
			Virtual: &configuration.VirtualSensorConfig{},
		}, "", nil)
		assert.NoError(t, err)
		registry.Register(sensor)
	}
	return registry
}

func createTables(t *testing.T, configs ...configuration.TableConfig) *table.Registry {
	tables, err := table.NewRegistryFromConfig(configs)
	assert.NoError(t, err)
	return tables
}

func constantMap(id string, value float64) configuration.TableConfig {
	return configuration.TableConfig{
		ID: id,
		Map: &configuration.MapTableConfig{
			X:      []float64{0, 8000},
			Y:      []float64{0, 200},
			Values: [][]float64{{value, value}, {value, value}},
		},
	}
}

func createVvtConfig() configuration.ControllerConfig {
	return configuration.ControllerConfig{
		ID:           "vvt",
		Type:         configuration.ControllerTypeVvt,
		Banks:        2,
		LanesPerBank: 2,
		Vvt: &configuration.VvtConfig{
			RpmSensor:       "rpm",
			LoadSensor:      "load",
			TargetTables:    []string{"intake", "exhaust"},
			PositionSensors: []string{"cam0", "cam1", "cam2", "cam3"},
		},
	}
}

func createVvt(t *testing.T) (controller.Domain, *sensors.Registry) {
	source := createSensorRegistry(t, "rpm", "load", "cam0", "cam1", "cam2", "cam3")
	tables := createTables(t,
		configuration.TableConfig{
			ID: "intake",
			Map: &configuration.MapTableConfig{
				X:      []float64{1000, 4321},
				Y:      []float64{20, 55},
				Values: [][]float64{{0, 10}, {5, 20}},
			},
		},
		constantMap("exhaust", -15),
	)
	domain, err := New(createVvtConfig(), source, tables)
	assert.NoError(t, err)
	return domain, source
}

func TestVvt_Setpoint(t *testing.T) {
	// GIVEN
	domain, source := createVvt(t)
	_ = source.SetMockValue("rpm", 4321)
	_ = source.SetMockValue("load", 55)

	// WHEN
	intake := domain.Setpoint.Setpoint(0)
	exhaust := domain.Setpoint.Setpoint(3)

	// THEN
	assert.Equal(t, 20.0, intake.ValueOr(0))
	assert.Equal(t, -15.0, exhaust.ValueOr(0))
}

func TestVvt_SetpointUnavailable(t *testing.T) {
	// GIVEN
	domain, source := createVvt(t)
	_ = source.SetMockValue("rpm", 4321)

	// WHEN
	reading := domain.Setpoint.Setpoint(0)

	// THEN
	assert.False(t, reading.IsValid())
}

func TestVvt_ObservePlant(t *testing.T) {
	// GIVEN
	domain, source := createVvt(t)
	_ = source.SetMockValue("cam0", 23)

	// WHEN
	reading := domain.Observer.Observe(0)

	// THEN
	assert.Equal(t, 23.0, reading.ValueOr(0))
	assert.False(t, domain.Observer.Observe(1).IsValid())
	assert.False(t, domain.Observer.Observe(4).IsValid())
}

func TestVvt_OpenLoop(t *testing.T) {
	// GIVEN
	domain, _ := createVvt(t)

	// THEN
	assert.Equal(t, 0.0, domain.OpenLoop.OpenLoop(10))
}

func TestVvt_Wiring(t *testing.T) {
	// GIVEN
	config := createVvtConfig()
	config.Vvt.PositionSensors = []string{"cam0", ""}
	source := createSensorRegistry(t, "rpm", "load", "cam0")
	tables := createTables(t, constantMap("intake", 0), constantMap("exhaust", 0))

	// WHEN
	domain, err := New(config, source, tables)

	// THEN
	assert.NoError(t, err)
	assert.True(t, domain.Wiring.IsWired(0))
	assert.False(t, domain.Wiring.IsWired(1))
	assert.False(t, domain.Wiring.IsWired(2))
}

func createVvtInstance(t *testing.T, index int) (*controller.Instance, *gains.Registry) {
	domain, _ := createVvt(t)
	config := createVvtConfig()
	registry := gains.NewRegistry(config.LanesPerBank, config.InstanceCount())
	address := controller.NewAddress(index, config.LanesPerBank)
	return controller.NewInstance(address, domain, registry, 10*time.Millisecond), registry
}

func TestVvt_ClosedLoopNotInverted(t *testing.T) {
	// GIVEN
	// second cam on second bank
	instance, registry := createVvtInstance(t, 3)
	camIndex := 1
	assert.Equal(t, camIndex, instance.Address().Lane)
	assert.NoError(t, registry.SetGains(camIndex, pid.Gains{P: 1.5}))

	// WHEN
	// target of 30 with position 20 should yield positive duty, P=1.5 means 15% duty for 10% error
	output, ok := instance.GetClosedLoop(30, 20)

	// THEN
	assert.True(t, ok)
	assert.InDelta(t, 15.0, output.DutyPercent, 1e-9)
}

func TestVvt_ClosedLoopInverted(t *testing.T) {
	// GIVEN
	// first cam on second bank
	instance, registry := createVvtInstance(t, 2)
	camIndex := 0
	assert.Equal(t, camIndex, instance.Address().Lane)
	assert.NoError(t, registry.SetInverted(2, true))
	assert.NoError(t, registry.SetGains(camIndex, pid.Gains{P: 1.5}))

	// WHEN
	// target of -30 with position -20 should yield positive duty, P=1.5 means 15% duty for 10% error
	output, ok := instance.GetClosedLoop(-30, -20)

	// THEN
	assert.True(t, ok)
	assert.InDelta(t, 15.0, output.DutyPercent, 1e-9)
}

func TestIdle(t *testing.T) {
	// GIVEN
	source := createSensorRegistry(t, "rpm", "clt")
	tables := createTables(t,
		configuration.TableConfig{ID: "target", Curve: &configuration.CurveTableConfig{X: []float64{0, 80}, Y: []float64{1200, 800}}},
		configuration.TableConfig{ID: "base", Curve: &configuration.CurveTableConfig{X: []float64{0, 80}, Y: []float64{40, 20}}},
	)
	config := configuration.ControllerConfig{
		ID: "idle", Type: configuration.ControllerTypeIdle, Banks: 1, LanesPerBank: 1,
		Idle: &configuration.IdleConfig{RpmSensor: "rpm", CoolantSensor: "clt", TargetRpmTable: "target", OpenLoopTable: "base"},
	}
	domain, err := New(config, source, tables)
	assert.NoError(t, err)
	_ = source.SetMockValue("clt", 40)
	_ = source.SetMockValue("rpm", 950)

	// THEN
	assert.Equal(t, 1000.0, domain.Setpoint.Setpoint(0).ValueOr(0))
	assert.Equal(t, 950.0, domain.Observer.Observe(0).ValueOr(0))
	assert.Equal(t, 40.0, domain.Load.Load().ValueOr(0))
	assert.Equal(t, 30.0, domain.OpenLoop.OpenLoop(40))
	assert.Nil(t, domain.Wiring)
}

func TestEtb(t *testing.T) {
	// GIVEN
	source := createSensorRegistry(t, "rpm", "pedal", "tps1", "tps2")
	tables := createTables(t,
		configuration.TableConfig{
			ID: "pedal",
			Map: &configuration.MapTableConfig{
				X:      []float64{0, 6000},
				Y:      []float64{0, 100},
				Values: [][]float64{{0, 0}, {100, 80}},
			},
		},
		configuration.TableConfig{ID: "ff", Curve: &configuration.CurveTableConfig{X: []float64{0, 100}, Y: []float64{5, 25}}},
	)
	config := configuration.ControllerConfig{
		ID: "etb", Type: configuration.ControllerTypeEtb, Banks: 1, LanesPerBank: 2,
		Etb: &configuration.EtbConfig{RpmSensor: "rpm", PedalSensor: "pedal", PedalTable: "pedal", PositionSensors: []string{"tps1", "tps2"}, OpenLoopTable: "ff"},
	}
	domain, err := New(config, source, tables)
	assert.NoError(t, err)
	_ = source.SetMockValue("rpm", 0)
	_ = source.SetMockValue("pedal", 50)
	_ = source.SetMockValue("tps2", 48)

	// THEN
	assert.Equal(t, 50.0, domain.Setpoint.Setpoint(1).ValueOr(0))
	assert.Equal(t, 48.0, domain.Observer.Observe(1).ValueOr(0))
	assert.False(t, domain.Observer.Observe(0).IsValid())
	assert.Equal(t, 15.0, domain.OpenLoop.OpenLoop(50))
	assert.True(t, domain.Wiring.IsWired(1))
}

func TestAlternator_ConstantTarget(t *testing.T) {
	// GIVEN
	source := createSensorRegistry(t, "vbatt")
	config := configuration.ControllerConfig{
		ID: "alternator", Type: configuration.ControllerTypeAlternator, Banks: 1, LanesPerBank: 1,
		Alternator: &configuration.AlternatorConfig{VoltageSensor: "vbatt", TargetVoltage: 14.2},
	}
	domain, err := New(config, source, table.NewRegistry())
	assert.NoError(t, err)
	_ = source.SetMockValue("vbatt", 13.8)

	// THEN
	assert.Equal(t, 14.2, domain.Setpoint.Setpoint(0).ValueOr(0))
	assert.Equal(t, 13.8, domain.Observer.Observe(0).ValueOr(0))
	assert.Equal(t, 0.0, domain.OpenLoop.OpenLoop(100))
}

func TestAlternator_TargetCurve(t *testing.T) {
	// GIVEN
	source := createSensorRegistry(t, "vbatt", "rpm")
	tables := createTables(t, configuration.TableConfig{ID: "target", Curve: &configuration.CurveTableConfig{X: []float64{800, 3000}, Y: []float64{14.4, 13.8}}})
	config := configuration.ControllerConfig{
		ID: "alternator", Type: configuration.ControllerTypeAlternator, Banks: 1, LanesPerBank: 1,
		Alternator: &configuration.AlternatorConfig{VoltageSensor: "vbatt", RpmSensor: "rpm", TargetVoltage: 14.2, TargetTable: "target"},
	}
	domain, err := New(config, source, tables)
	assert.NoError(t, err)

	// WHEN
	unavailable := domain.Setpoint.Setpoint(0)
	_ = source.SetMockValue("rpm", 800)
	available := domain.Setpoint.Setpoint(0)

	// THEN
	assert.False(t, unavailable.IsValid())
	assert.Equal(t, 14.4, available.ValueOr(0))
}

func TestBoost(t *testing.T) {
	// GIVEN
	source := createSensorRegistry(t, "rpm", "tps", "map")
	tables := createTables(t,
		constantMap("target", 180),
		configuration.TableConfig{ID: "open", Curve: &configuration.CurveTableConfig{X: []float64{0, 100}, Y: []float64{0, 60}}},
	)
	config := configuration.ControllerConfig{
		ID: "boost", Type: configuration.ControllerTypeBoost, Banks: 1, LanesPerBank: 1,
		Boost: &configuration.BoostConfig{RpmSensor: "rpm", TpsSensor: "tps", MapSensor: "map", TargetTable: "target", OpenLoopTable: "open"},
	}
	domain, err := New(config, source, tables)
	assert.NoError(t, err)
	_ = source.SetMockValue("rpm", 4000)
	_ = source.SetMockValue("tps", 50)
	_ = source.SetMockValue("map", 150)

	// THEN
	assert.Equal(t, 180.0, domain.Setpoint.Setpoint(0).ValueOr(0))
	assert.Equal(t, 150.0, domain.Observer.Observe(0).ValueOr(0))
	assert.Equal(t, 50.0, domain.Load.Load().ValueOr(0))
	assert.Equal(t, 30.0, domain.OpenLoop.OpenLoop(50))
}

func TestNew_Errors(t *testing.T) {
	source := createSensorRegistry(t)
	tables := createTables(t, constantMap("map", 1))

	// unknown type
	_, err := New(configuration.ControllerConfig{ID: "x", Type: "fuel"}, source, tables)
	assert.Error(t, err)

	// missing domain block
	_, err = New(configuration.ControllerConfig{ID: "x", Type: configuration.ControllerTypeBoost}, source, tables)
	assert.Error(t, err)

	// wrong table kind
	_, err = New(configuration.ControllerConfig{
		ID: "x", Type: configuration.ControllerTypeIdle,
		Idle: &configuration.IdleConfig{TargetRpmTable: "map"},
	}, source, tables)
	assert.Error(t, err)
}
