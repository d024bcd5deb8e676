package internal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/controller"
	"github.com/markusressel/act2go/internal/persistence"
	"github.com/markusressel/act2go/internal/pid"
	"github.com/markusressel/act2go/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(v float64) *float64 {
	return &v
}

func createIdleConfig(p float64) *configuration.Configuration {
	return &configuration.Configuration{
		SensorPollingRate:  50 * time.Millisecond,
		SensorTimeout:      time.Second,
		ControllerTickRate: 20 * time.Millisecond,
		Sensors: []configuration.SensorConfig{
			{ID: "clt", Virtual: &configuration.VirtualSensorConfig{Value: floatPtr(90)}},
			{ID: "rpm", Virtual: &configuration.VirtualSensorConfig{Value: floatPtr(850)}},
		},
		Tables: []configuration.TableConfig{
			{ID: "idle_target", Curve: &configuration.CurveTableConfig{X: []float64{0, 90}, Y: []float64{1200, 800}}},
			{ID: "idle_base", Curve: &configuration.CurveTableConfig{X: []float64{0, 90}, Y: []float64{40, 20}}},
		},
		Controllers: []configuration.ControllerConfig{
			{
				ID:           "idle",
				Type:         configuration.ControllerTypeIdle,
				Banks:        1,
				LanesPerBank: 1,
				Gains:        []configuration.GainsConfig{{P: p}},
				Idle: &configuration.IdleConfig{
					RpmSensor:      "rpm",
					CoolantSensor:  "clt",
					TargetRpmTable: "idle_target",
					OpenLoopTable:  "idle_base",
				},
			},
		},
		Telemetry: configuration.TelemetryConfig{
			Enabled: true,
			Records: configuration.DefaultTelemetryRecords,
		},
	}
}

func TestInitializeObjects(t *testing.T) {
	// GIVEN
	config := createIdleConfig(0.1)

	// WHEN
	objects, err := InitializeObjects(config, nil)

	// THEN
	require.NoError(t, err)
	assert.Len(t, objects.Monitors, 2)
	assert.Len(t, objects.Groups, 1)
	assert.Equal(t, 20*time.Millisecond, objects.Groups[0].TickRate())
	assert.Equal(t, 256+telemetry.RecordSize, objects.Layout.Size)

	for _, sensor := range objects.Sensors.Sensors() {
		assert.NoError(t, objects.Sensors.Update(sensor.GetId()))
	}

	// WHEN
	objects.Groups[0].Tick(0.02)

	// THEN
	state := objects.Groups[0].States()[0]
	assert.Equal(t, controller.ClosedLoopActive, state.Status)
	assert.Equal(t, 800.0, state.Target)
	assert.Equal(t, 20.0, state.Base)
	// 20 + 0.1 * (800 - 850)
	assert.InDelta(t, 15.0, state.DutyPercent, 1e-9)

	record, err := objects.Telemetry.Read(configuration.DefaultTelemetryRecords["idle"], 0)
	assert.NoError(t, err)
	assert.InDelta(t, 15.0, record.DutyPercent, 1e-5)
}

func TestInitializeObjects_UnknownTable(t *testing.T) {
	// GIVEN
	config := createIdleConfig(0.1)
	config.Controllers[0].Idle.TargetRpmTable = "missing"

	// WHEN
	_, err := InitializeObjects(config, nil)

	// THEN
	assert.Error(t, err)
}

func TestInitializeObjects_RestoresPersistedTuning(t *testing.T) {
	// GIVEN
	pers := persistence.NewPersistence(filepath.Join(t.TempDir(), "act2go.db"))
	require.NoError(t, pers.Init())
	require.NoError(t, pers.SaveGains("idle", 0, pid.Gains{P: 0.5}))

	// WHEN
	objects, err := InitializeObjects(createIdleConfig(0.1), pers)

	// THEN
	require.NoError(t, err)
	g, _ := objects.Gains["idle"].Lane(0)
	assert.Equal(t, 0.5, g.P)

	// WHEN
	err = objects.Gains["idle"].SetGains(0, pid.Gains{P: 0.7})

	// THEN
	assert.NoError(t, err)
	stored, err := pers.LoadGains("idle", 0)
	assert.NoError(t, err)
	assert.Equal(t, 0.7, stored.P)
}

func TestReload(t *testing.T) {
	// GIVEN
	objects, err := InitializeObjects(createIdleConfig(0.1), nil)
	require.NoError(t, err)
	for _, sensor := range objects.Sensors.Sensors() {
		_ = objects.Sensors.Update(sensor.GetId())
	}
	objects.Groups[0].Tick(0.02)

	// WHEN
	Reload(createIdleConfig(0.2), objects, nil)

	// THEN
	g, _ := objects.Gains["idle"].Lane(0)
	assert.Equal(t, 0.2, g.P)

	// WHEN
	objects.Groups[0].Tick(0.02)

	// THEN
	state := objects.Groups[0].States()[0]
	assert.Equal(t, controller.ClosedLoopActive, state.Status)
	// 20 + 0.2 * (800 - 850)
	assert.InDelta(t, 10.0, state.DutyPercent, 1e-9)
}
