package sensors

import (
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/markusressel/act2go/internal/util"
	cmap "github.com/orcaman/concurrent-map/v2"
	"golang.org/x/exp/slices"
)

// Status is a point in time view of a registered sensor
type Status struct {
	Id      string    `json:"id"`
	Value   float64   `json:"value"`
	Valid   bool      `json:"valid"`
	Mocked  bool      `json:"mocked"`
	Updated time.Time `json:"updated"`
	Error   string    `json:"error,omitempty"`
}

type entry struct {
	sensor  Sensor
	size    int
	timeout time.Duration
	min     float64
	max     float64

	mu        sync.RWMutex
	value     float64
	err       error
	updated   time.Time
	window    *rolling.PointPolicy
	primed    bool
	mocked    bool
	mockValue float64
}

// Registry holds the latest reading of every registered sensor.
// Reads never touch the underlying hardware, sensor monitors keep the values current.
type Registry struct {
	defaultTimeout time.Duration
	entries        cmap.ConcurrentMap[string, *entry]

	// now is replaceable in tests
	now func() time.Time
}

func NewRegistry(defaultTimeout time.Duration) *Registry {
	return &Registry{
		defaultTimeout: defaultTimeout,
		entries:        cmap.New[*entry](),
		now:            time.Now,
	}
}

// Register adds a sensor to the registry, replacing an existing one with the same id
func (r *Registry) Register(sensor Sensor) {
	config := sensor.GetConfig()

	e := &entry{
		sensor:  sensor,
		size:    config.RollingWindowSize,
		timeout: config.Timeout,
		min:     math.Inf(-1),
		max:     math.Inf(1),
		err:     ErrNoValue,
	}
	if e.timeout <= 0 {
		e.timeout = r.defaultTimeout
	}
	if config.Min != nil {
		e.min = *config.Min
	}
	if config.Max != nil {
		e.max = *config.Max
	}
	if config.RollingWindowSize > 1 {
		e.window = util.CreateRollingWindow(config.RollingWindowSize)
	}

	r.entries.Set(sensor.GetId(), e)
}

func (r *Registry) GetSensor(id string) (Sensor, bool) {
	e, ok := r.entries.Get(id)
	if !ok {
		return nil, false
	}
	return e.sensor, true
}

// Sensors returns all registered sensors, ordered by id
func (r *Registry) Sensors() []Sensor {
	var result []Sensor
	for _, e := range r.entries.Items() {
		result = append(result, e.sensor)
	}
	slices.SortFunc(result, func(a, b Sensor) int {
		return strings.Compare(a.GetId(), b.GetId())
	})
	return result
}

// Get returns the latest plausible reading of the given sensor, or Unavailable
func (r *Registry) Get(id string) Reading {
	e, ok := r.entries.Get(id)
	if !ok {
		return Unavailable()
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.mocked {
		return e.plausible(e.mockValue)
	}
	if e.err != nil {
		return Unavailable()
	}
	if e.timeout > 0 && r.now().Sub(e.updated) > e.timeout {
		return Unavailable()
	}
	return e.plausible(e.value)
}

func (e *entry) plausible(value float64) Reading {
	if !util.IsFinite(value) || value < e.min || value > e.max {
		return Unavailable()
	}
	return Valid(value)
}

// Update reads the current value of the given sensor and stores it
func (r *Registry) Update(id string) error {
	e, ok := r.entries.Get(id)
	if !ok {
		return fmt.Errorf("sensor not found: %s", id)
	}
	value, err := e.sensor.GetValue()
	r.Store(id, value, err)
	return err
}

// Store records the outcome of a sensor read
func (r *Registry) Store(id string, value float64, err error) {
	e, ok := r.entries.Get(id)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.err = err
	if err != nil {
		return
	}
	e.updated = r.now()

	if e.window != nil && util.IsFinite(value) {
		if !e.primed {
			// avoid averaging with the empty initial window
			for i := 1; i < e.size; i++ {
				e.window.Append(value)
			}
			e.primed = true
		}
		e.window.Append(value)
		value = util.GetWindowAvg(e.window)
	}
	e.value = value
}

// SetMockValue overrides the reading of the given sensor until ClearMockValue is called.
// Mocked values never go stale but are still checked for plausibility.
func (r *Registry) SetMockValue(id string, value float64) error {
	e, ok := r.entries.Get(id)
	if !ok {
		return fmt.Errorf("sensor not found: %s", id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mocked = true
	e.mockValue = value
	return nil
}

func (r *Registry) ClearMockValue(id string) {
	e, ok := r.entries.Get(id)
	if !ok {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mocked = false
}

// Status returns a view of the given sensor for display purposes
func (r *Registry) Status(id string) (Status, bool) {
	e, ok := r.entries.Get(id)
	if !ok {
		return Status{}, false
	}

	reading := r.Get(id)

	e.mu.RLock()
	defer e.mu.RUnlock()

	status := Status{
		Id:      id,
		Value:   e.value,
		Valid:   reading.IsValid(),
		Mocked:  e.mocked,
		Updated: e.updated,
	}
	if e.mocked {
		status.Value = e.mockValue
	}
	if e.err != nil {
		status.Error = e.err.Error()
	}
	return status, true
}
