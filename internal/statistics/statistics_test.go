package statistics

import (
	"strings"
	"testing"
	"time"

	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/controller"
	"github.com/markusressel/act2go/internal/gains"
	"github.com/markusressel/act2go/internal/sensors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func createSensorRegistry(t *testing.T) *sensors.Registry {
	registry := sensors.NewRegistry(time.Second)
	for _, id := range []string{"rpm", "clt"} {
		sensor, err := sensors.NewSensor(configuration.SensorConfig{ID: id, Virtual: &configuration.VirtualSensorConfig{}}, "", nil)
		assert.NoError(t, err)
		registry.Register(sensor)
	}
	_ = registry.SetMockValue("rpm", 900)
	return registry
}

func TestSensorCollector(t *testing.T) {
	// GIVEN
	collector := NewSensorCollector(createSensorRegistry(t))

	// WHEN
	expected := `
# HELP act2go_sensor_valid Whether the sensor currently provides a plausible value
# TYPE act2go_sensor_valid gauge
act2go_sensor_valid{id="clt"} 0
act2go_sensor_valid{id="rpm"} 1
# HELP act2go_sensor_value Current value of the sensor, only reported while available
# TYPE act2go_sensor_value gauge
act2go_sensor_value{id="rpm"} 900
`
	err := testutil.CollectAndCompare(collector, strings.NewReader(expected))

	// THEN
	assert.NoError(t, err)
}

func TestControllerCollector(t *testing.T) {
	// GIVEN
	source := createSensorRegistry(t)
	domain := controller.Domain{
		Setpoint: controller.SetpointFunc(func(int) sensors.Reading { return sensors.Valid(1000) }),
		Observer: controller.ObserverFunc(func(int) sensors.Reading { return source.Get("rpm") }),
		OpenLoop: controller.ConstantOpenLoop(20),
	}
	group := controller.NewGroup("idle", 1, 1, domain, gains.NewRegistry(1, 1), 10*time.Millisecond, nil, nil)
	group.Tick(0.01)
	collector := NewControllerCollector([]*controller.Group{group})

	// WHEN
	count := testutil.CollectAndCount(collector)
	duty := testutil.CollectAndCount(collector, "act2go_controller_duty_percent")

	// THEN
	// target, observed, duty, integrator, 5x status, 3 counters
	assert.Equal(t, 12, count)
	assert.Equal(t, 1, duty)
}
