// Package actuators drives the physical outputs of controller instances.
package actuators

import "github.com/markusressel/act2go/internal/configuration"

// Sink receives the duty of every controller instance after each tick
type Sink interface {
	Drive(index int, dutyPercent float64) error
}

// New creates the sink described by the given actuator configuration,
// a NoopSink if none is configured
func New(config configuration.ActuatorConfig, instanceCount int) (Sink, error) {
	switch {
	case config.File != nil:
		return NewFileSink(config.File.Path, instanceCount)
	case config.Cmd != nil:
		return NewCmdSink(*config.Cmd, instanceCount), nil
	default:
		return NoopSink{}, nil
	}
}

// NoopSink discards every command
type NoopSink struct{}

func (NoopSink) Drive(int, float64) error {
	return nil
}

// changeTracker remembers the last successfully sent value of every instance
type changeTracker struct {
	sent  []bool
	value []float64
}

func newChangeTracker(instanceCount int) changeTracker {
	return changeTracker{
		sent:  make([]bool, instanceCount),
		value: make([]float64, instanceCount),
	}
}

func (c *changeTracker) unchanged(index int, value float64) bool {
	if index < 0 || index >= len(c.sent) {
		return false
	}
	return c.sent[index] && c.value[index] == value
}

func (c *changeTracker) remember(index int, value float64) {
	if index < 0 || index >= len(c.sent) {
		return
	}
	c.sent[index] = true
	c.value[index] = value
}
