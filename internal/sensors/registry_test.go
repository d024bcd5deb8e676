package sensors

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/markusressel/act2go/internal/configuration"
	"github.com/stretchr/testify/assert"
)

type mockSensor struct {
	config configuration.SensorConfig
	value  float64
	err    error
}

func (s *mockSensor) GetId() string {
	return s.config.ID
}

func (s *mockSensor) GetConfig() configuration.SensorConfig {
	return s.config
}

func (s *mockSensor) GetValue() (float64, error) {
	return s.value, s.err
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func createRegistry(timeout time.Duration) (*Registry, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	registry := NewRegistry(timeout)
	registry.now = clock.Now
	return registry, clock
}

func floatPtr(v float64) *float64 {
	return &v
}

func TestRegistry_UnknownSensor(t *testing.T) {
	// GIVEN
	registry, _ := createRegistry(time.Second)

	// WHEN
	reading := registry.Get("missing")

	// THEN
	assert.False(t, reading.IsValid())
}

func TestRegistry_NotYetUpdated(t *testing.T) {
	// GIVEN
	registry, _ := createRegistry(time.Second)
	registry.Register(&mockSensor{config: configuration.SensorConfig{ID: "rpm"}, value: 800})

	// WHEN
	reading := registry.Get("rpm")

	// THEN
	assert.False(t, reading.IsValid())
}

func TestRegistry_Update(t *testing.T) {
	// GIVEN
	registry, _ := createRegistry(time.Second)
	registry.Register(&mockSensor{config: configuration.SensorConfig{ID: "rpm"}, value: 800})

	// WHEN
	err := registry.Update("rpm")
	reading := registry.Get("rpm")

	// THEN
	assert.NoError(t, err)
	value, ok := reading.Get()
	assert.True(t, ok)
	assert.Equal(t, 800.0, value)
}

func TestRegistry_UpdateError(t *testing.T) {
	// GIVEN
	registry, _ := createRegistry(time.Second)
	sensor := &mockSensor{config: configuration.SensorConfig{ID: "rpm"}, value: 800}
	registry.Register(sensor)
	_ = registry.Update("rpm")
	sensor.err = errors.New("read failed")

	// WHEN
	err := registry.Update("rpm")

	// THEN
	assert.Error(t, err)
	assert.False(t, registry.Get("rpm").IsValid())
}

func TestRegistry_Stale(t *testing.T) {
	// GIVEN
	registry, clock := createRegistry(time.Second)
	registry.Register(&mockSensor{config: configuration.SensorConfig{ID: "rpm"}, value: 800})
	_ = registry.Update("rpm")

	// WHEN
	clock.now = clock.now.Add(500 * time.Millisecond)
	fresh := registry.Get("rpm")
	clock.now = clock.now.Add(time.Second)
	stale := registry.Get("rpm")

	// THEN
	assert.True(t, fresh.IsValid())
	assert.False(t, stale.IsValid())
}

func TestRegistry_SensorTimeoutOverridesDefault(t *testing.T) {
	// GIVEN
	registry, clock := createRegistry(time.Second)
	registry.Register(&mockSensor{config: configuration.SensorConfig{ID: "clt", Timeout: 10 * time.Second}, value: 90})
	_ = registry.Update("clt")

	// WHEN
	clock.now = clock.now.Add(5 * time.Second)

	// THEN
	assert.True(t, registry.Get("clt").IsValid())
}

func TestRegistry_NonFiniteIsUnavailable(t *testing.T) {
	// GIVEN
	registry, _ := createRegistry(time.Second)
	registry.Register(&mockSensor{config: configuration.SensorConfig{ID: "a"}, value: math.NaN()})
	registry.Register(&mockSensor{config: configuration.SensorConfig{ID: "b"}, value: math.Inf(1)})

	// WHEN
	_ = registry.Update("a")
	_ = registry.Update("b")

	// THEN
	assert.False(t, registry.Get("a").IsValid())
	assert.False(t, registry.Get("b").IsValid())
}

func TestRegistry_PlausibilityRange(t *testing.T) {
	// GIVEN
	registry, _ := createRegistry(time.Second)
	sensor := &mockSensor{config: configuration.SensorConfig{
		ID:  "map",
		Min: floatPtr(10),
		Max: floatPtr(300),
	}}
	registry.Register(sensor)

	// WHEN
	sensor.value = 5
	_ = registry.Update("map")
	low := registry.Get("map")

	sensor.value = 100
	_ = registry.Update("map")
	ok := registry.Get("map")

	sensor.value = 301
	_ = registry.Update("map")
	high := registry.Get("map")

	// THEN
	assert.False(t, low.IsValid())
	assert.True(t, ok.IsValid())
	assert.False(t, high.IsValid())
}

func TestRegistry_Smoothing(t *testing.T) {
	// GIVEN
	registry, _ := createRegistry(time.Second)
	sensor := &mockSensor{config: configuration.SensorConfig{ID: "vbatt", RollingWindowSize: 2}}
	registry.Register(sensor)

	// WHEN
	sensor.value = 12
	_ = registry.Update("vbatt")
	sensor.value = 14
	_ = registry.Update("vbatt")
	first := registry.Get("vbatt").ValueOr(0)
	sensor.value = 16
	_ = registry.Update("vbatt")
	second := registry.Get("vbatt").ValueOr(0)

	// THEN
	assert.InDelta(t, 13.0, first, 0.0001)
	assert.InDelta(t, 15.0, second, 0.0001)
}

func TestRegistry_MockValue(t *testing.T) {
	// GIVEN
	registry, clock := createRegistry(time.Second)
	registry.Register(&mockSensor{config: configuration.SensorConfig{ID: "tps", Max: floatPtr(100)}, value: 20})
	_ = registry.Update("tps")

	// WHEN
	err := registry.SetMockValue("tps", 55)
	clock.now = clock.now.Add(time.Hour)
	mocked := registry.Get("tps")
	_ = registry.SetMockValue("tps", 150)
	implausible := registry.Get("tps")
	registry.ClearMockValue("tps")
	cleared := registry.Get("tps")

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, 55.0, mocked.ValueOr(0))
	assert.False(t, implausible.IsValid())
	assert.False(t, cleared.IsValid())
}

func TestRegistry_MockValueUnknownSensor(t *testing.T) {
	// GIVEN
	registry, _ := createRegistry(time.Second)

	// WHEN
	err := registry.SetMockValue("missing", 1)

	// THEN
	assert.Error(t, err)
}

func TestRegistry_SensorsSorted(t *testing.T) {
	// GIVEN
	registry, _ := createRegistry(time.Second)
	registry.Register(&mockSensor{config: configuration.SensorConfig{ID: "b"}})
	registry.Register(&mockSensor{config: configuration.SensorConfig{ID: "a"}})

	// WHEN
	result := registry.Sensors()

	// THEN
	assert.Len(t, result, 2)
	assert.Equal(t, "a", result[0].GetId())
	assert.Equal(t, "b", result[1].GetId())
}

func TestRegistry_Status(t *testing.T) {
	// GIVEN
	registry, _ := createRegistry(time.Second)
	registry.Register(&mockSensor{config: configuration.SensorConfig{ID: "rpm"}, err: errors.New("boom")})
	_ = registry.Update("rpm")

	// WHEN
	status, ok := registry.Status("rpm")

	// THEN
	assert.True(t, ok)
	assert.False(t, status.Valid)
	assert.Equal(t, "boom", status.Error)
}

func TestMonitor_Run(t *testing.T) {
	// GIVEN
	registry, _ := createRegistry(time.Second)
	sensor := &mockSensor{config: configuration.SensorConfig{ID: "iat"}, value: 25}
	registry.Register(sensor)
	monitor := NewMonitor(registry, sensor, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)

	// WHEN
	go func() {
		done <- monitor.Run(ctx)
	}()

	// THEN
	assert.Eventually(t, func() bool {
		return registry.Get("iat").IsValid()
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 25.0, registry.Get("iat").ValueOr(0))

	cancel()
	assert.NoError(t, <-done)
}
