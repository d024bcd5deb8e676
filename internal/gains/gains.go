// Package gains holds the tunable parameters of all instances of one controller.
package gains

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/pid"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidGains = errors.New("invalid gains")
)

// Snapshot is the complete tuning of one instance at one point in time
type Snapshot struct {
	Gains    pid.Gains `json:"gains"`
	Inverted bool      `json:"inverted"`
	Enabled  bool      `json:"enabled"`
}

// InstanceFlags are the settings that are specific to a single instance
type InstanceFlags struct {
	Inverted bool `json:"inverted"`
	Enabled  bool `json:"enabled"`
}

// Defaults is the tuning as found in the configuration
type Defaults struct {
	// gains per lane
	Lanes []pid.Gains
	// flags per instance index
	Instances []InstanceFlags
}

type ChangeKind int

const (
	LaneGainsChanged ChangeKind = iota
	InstanceFlagsChanged
)

type Change struct {
	Kind ChangeKind
	// set for LaneGainsChanged
	Lane  int
	Gains pid.Gains
	// set for InstanceFlagsChanged
	Index int
	Flags InstanceFlags
}

type Listener func(change Change)

// tuning is never modified once stored, writers replace it as a whole
type tuning struct {
	lanes     []pid.Gains
	instances []InstanceFlags
}

func (t *tuning) clone() *tuning {
	return &tuning{
		lanes:     append([]pid.Gains(nil), t.lanes...),
		instances: append([]InstanceFlags(nil), t.instances...),
	}
}

// Registry stores lane gains and instance flags. Every write replaces the whole
// tuning, so a reader never observes gains and flags of different writes.
type Registry struct {
	lanesPerBank  int
	instanceCount int

	current atomic.Pointer[tuning]
	// serializes writers
	writeMu sync.Mutex

	listenerMu sync.RWMutex
	listeners  []Listener
}

func NewRegistry(lanesPerBank int, instanceCount int) *Registry {
	if lanesPerBank <= 0 {
		lanesPerBank = 1
	}
	if instanceCount < 0 {
		instanceCount = 0
	}
	r := &Registry{
		lanesPerBank:  lanesPerBank,
		instanceCount: instanceCount,
	}
	r.Load(Defaults{})
	return r
}

// DefaultsFromConfig extracts the tuning of the given controller configuration
func DefaultsFromConfig(config configuration.ControllerConfig) Defaults {
	defaults := Defaults{
		Lanes:     make([]pid.Gains, len(config.Gains)),
		Instances: make([]InstanceFlags, config.InstanceCount()),
	}
	for lane, g := range config.Gains {
		defaults.Lanes[lane] = FromConfig(g)
	}
	for index := range defaults.Instances {
		defaults.Instances[index] = InstanceFlags{Enabled: true}
	}
	for _, instance := range config.Instances {
		if instance.Index < 0 || instance.Index >= len(defaults.Instances) {
			continue
		}
		defaults.Instances[instance.Index] = InstanceFlags{
			Inverted: instance.Inverted,
			Enabled:  instance.Enabled.Get(),
		}
	}
	return defaults
}

func FromConfig(g configuration.GainsConfig) pid.Gains {
	return pid.Gains{
		P:                g.P,
		I:                g.I,
		D:                g.D,
		Offset:           g.Offset,
		ILimit:           g.ILimit,
		DerivativeFilter: g.DerivativeFilter,
	}
}

func ToConfig(g pid.Gains) configuration.GainsConfig {
	return configuration.GainsConfig{
		P:                g.P,
		I:                g.I,
		D:                g.D,
		Offset:           g.Offset,
		ILimit:           g.ILimit,
		DerivativeFilter: g.DerivativeFilter,
	}
}

// Load replaces the whole tuning, missing lanes are zeroed and missing instances are enabled
func (r *Registry) Load(defaults Defaults) {
	next := &tuning{
		lanes:     make([]pid.Gains, r.lanesPerBank),
		instances: make([]InstanceFlags, r.instanceCount),
	}
	copy(next.lanes, defaults.Lanes)
	for index := range next.instances {
		next.instances[index] = InstanceFlags{Enabled: true}
		if index < len(defaults.Instances) {
			next.instances[index] = defaults.Instances[index]
		}
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	r.current.Store(next)
}

func (r *Registry) LanesPerBank() int {
	return r.lanesPerBank
}

func (r *Registry) InstanceCount() int {
	return r.instanceCount
}

// Get returns the tuning of the given instance. Unknown instances are disabled.
func (r *Registry) Get(index int) Snapshot {
	if index < 0 || index >= r.instanceCount {
		return Snapshot{}
	}
	t := r.current.Load()
	flags := t.instances[index]
	return Snapshot{
		Gains:    t.lanes[index%r.lanesPerBank],
		Inverted: flags.Inverted,
		Enabled:  flags.Enabled,
	}
}

func (r *Registry) Lane(lane int) (pid.Gains, bool) {
	if lane < 0 || lane >= r.lanesPerBank {
		return pid.Gains{}, false
	}
	return r.current.Load().lanes[lane], true
}

func (r *Registry) Instance(index int) (InstanceFlags, bool) {
	if index < 0 || index >= r.instanceCount {
		return InstanceFlags{}, false
	}
	return r.current.Load().instances[index], true
}

// update applies change to a copy of the current tuning and stores the copy
func (r *Registry) update(change func(t *tuning)) {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	next := r.current.Load().clone()
	change(next)
	r.current.Store(next)
}

// SetGains replaces the gains of the given lane
func (r *Registry) SetGains(lane int, g pid.Gains) error {
	if lane < 0 || lane >= r.lanesPerBank {
		return fmt.Errorf("lane %d out of range [0..%d): %w", lane, r.lanesPerBank, ErrNotFound)
	}
	if err := configuration.ValidateGains(ToConfig(g)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGains, err)
	}
	r.update(func(t *tuning) {
		t.lanes[lane] = g
	})
	r.notify(Change{Kind: LaneGainsChanged, Lane: lane, Gains: g})
	return nil
}

// SetInstanceFlags replaces the inversion and enable flags of the given instance
func (r *Registry) SetInstanceFlags(index int, flags InstanceFlags) error {
	if index < 0 || index >= r.instanceCount {
		return fmt.Errorf("instance %d out of range [0..%d): %w", index, r.instanceCount, ErrNotFound)
	}
	r.update(func(t *tuning) {
		t.instances[index] = flags
	})
	r.notify(Change{Kind: InstanceFlagsChanged, Index: index, Flags: flags})
	return nil
}

func (r *Registry) SetInverted(index int, inverted bool) error {
	return r.modifyInstance(index, func(flags *InstanceFlags) {
		flags.Inverted = inverted
	})
}

func (r *Registry) SetEnabled(index int, enabled bool) error {
	return r.modifyInstance(index, func(flags *InstanceFlags) {
		flags.Enabled = enabled
	})
}

func (r *Registry) modifyInstance(index int, change func(flags *InstanceFlags)) error {
	if index < 0 || index >= r.instanceCount {
		return fmt.Errorf("instance %d out of range [0..%d): %w", index, r.instanceCount, ErrNotFound)
	}
	var flags InstanceFlags
	r.update(func(t *tuning) {
		change(&t.instances[index])
		flags = t.instances[index]
	})
	r.notify(Change{Kind: InstanceFlagsChanged, Index: index, Flags: flags})
	return nil
}

// OnChange registers a listener that is called after every successful write
func (r *Registry) OnChange(listener Listener) {
	r.listenerMu.Lock()
	defer r.listenerMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Registry) notify(change Change) {
	r.listenerMu.RLock()
	defer r.listenerMu.RUnlock()
	for _, listener := range r.listeners {
		listener(change)
	}
}
