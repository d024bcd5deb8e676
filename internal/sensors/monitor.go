package sensors

import (
	"context"
	"time"

	"github.com/markusressel/act2go/internal/ui"
)

// Monitor periodically reads a single sensor and stores the result in a Registry
type Monitor struct {
	registry    *Registry
	sensor      Sensor
	pollingRate time.Duration
}

// NewMonitor creates a monitor for the given sensor, using its configured
// polling rate or defaultPollingRate if none is set.
func NewMonitor(registry *Registry, sensor Sensor, defaultPollingRate time.Duration) *Monitor {
	pollingRate := sensor.GetConfig().PollingRate
	if pollingRate <= 0 {
		pollingRate = defaultPollingRate
	}
	return &Monitor{
		registry:    registry,
		sensor:      sensor,
		pollingRate: pollingRate,
	}
}

func (m *Monitor) Run(ctx context.Context) error {
	id := m.sensor.GetId()

	err := m.registry.Update(id)
	if err != nil {
		ui.Warning("Sensor %s: %v", id, err)
	}
	failing := err != nil

	tick := time.NewTicker(m.pollingRate)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			err := m.registry.Update(id)
			if err != nil && !failing {
				ui.Warning("Sensor %s: %v", id, err)
			} else if err == nil && failing {
				ui.Info("Sensor %s: recovered", id)
			}
			failing = err != nil
		}
	}
}
