package controller

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/markusressel/act2go/internal/pid"
	"github.com/markusressel/act2go/internal/util"
)

type Counters struct {
	Ticks     uint64 `json:"ticks"`
	Saturated uint64 `json:"saturated"`
	Faults    uint64 `json:"faults"`
	Skipped   uint64 `json:"skipped"`
}

// State is a view of an instance after its last tick
type State struct {
	Address Address `json:"address"`

	Target        float64 `json:"target"`
	TargetValid   bool    `json:"targetValid"`
	Observed      float64 `json:"observed"`
	ObservedValid bool    `json:"observedValid"`

	Base        float64 `json:"base"`
	Trim        float64 `json:"trim"`
	DutyPercent float64 `json:"dutyPercent"`
	Saturated   bool    `json:"saturated"`
	Integrator  float64 `json:"integrator"`
	Status      Status  `json:"status"`

	Counters Counters `json:"counters"`
}

// Instance controls a single physical actuator.
// Tick must only be called from one goroutine, every other method is safe for concurrent use.
type Instance struct {
	address Address
	domain  Domain
	gains   GainSource
	// nominal tick period in seconds
	period float64

	wired      bool
	status     Status
	pidState   pid.State
	lastOutput Output
	counters   Counters

	resetRequested atomic.Bool

	// working copy, written during a tick
	state State

	publishedMu sync.RWMutex
	published   State
}

func NewInstance(address Address, domain Domain, gains GainSource, tickRate time.Duration) *Instance {
	instance := &Instance{
		address: address,
		domain:  domain,
		gains:   gains,
		period:  tickRate.Seconds(),
		status:  Uninitialized,
	}
	instance.state.Address = address
	instance.published.Address = address
	return instance
}

func (i *Instance) Address() Address {
	return i.address
}

// Init evaluates the sensor wiring of the instance
func (i *Instance) Init() Status {
	i.wired = i.domain.Wiring == nil || i.domain.Wiring.IsWired(i.address.Index)
	if i.wired {
		i.status = OpenLoopOnly
	} else {
		i.status = Disabled
	}
	i.state.Status = i.status
	i.publish()
	return i.status
}

// RequestReset clears the controller state at the next tick boundary
func (i *Instance) RequestReset() {
	i.resetRequested.Store(true)
}

func (i *Instance) reset() {
	i.pidState = pid.State{}
	i.lastOutput = Output{}
	i.status = Uninitialized
	i.Init()
}

// Tick runs one control cycle, dt is the time since the last tick in seconds
func (i *Instance) Tick(dt float64) Output {
	if i.resetRequested.Swap(false) {
		i.reset()
	}
	if i.status == Uninitialized {
		i.Init()
	}

	snapshot := i.gains.Get(i.address.Index)

	if !i.wired || !snapshot.Enabled {
		i.status = Disabled
		// the error history is stale once the instance is enabled again
		i.pidState.Primed = false
		i.lastOutput = Output{}
		i.state.Base = 0
		i.state.Trim = 0
		return i.finish(i.lastOutput)
	}

	if !util.IsFinite(dt) || dt <= 0 {
		i.counters.Skipped++
		return i.finish(i.lastOutput)
	}

	envelope := pid.Envelope{
		Base:     i.base(),
		Inverted: snapshot.Inverted,
	}

	target, targetValid := i.domain.Setpoint.Setpoint(i.address.Index).Get()
	observed, observedValid := i.domain.Observer.Observe(i.address.Index).Get()
	i.state.Target, i.state.TargetValid = target, targetValid
	i.state.Observed, i.state.ObservedValid = observed, observedValid

	trim := 0.0
	switch {
	case !util.IsFinite(envelope.Base):
		envelope.Base = 0
		trim = i.pidState.LastTrim
		i.status = Fault
	case !targetValid || !observedValid:
		// integrator frozen, derivative restarts once both inputs are back
		i.pidState.Primed = false
		i.status = OpenLoopOnly
	default:
		result := pid.Compute(i.pidState, pid.Input{
			Target:   target,
			Observed: observed,
			Gains:    snapshot.Gains,
			Dt:       dt,
			Envelope: envelope,
		})
		trim = result.Trim
		if result.Flags.Has(pid.Fault) {
			i.status = Fault
		} else {
			i.pidState = result.State
			i.status = ClosedLoopActive
		}
	}

	output := Combine(envelope, trim)

	if output.Saturated {
		i.counters.Saturated++
	}
	if i.status == Fault {
		i.counters.Faults++
	}

	i.state.Base = envelope.Base
	i.state.Trim = trim
	i.lastOutput = output
	return i.finish(output)
}

func (i *Instance) base() float64 {
	return i.GetOpenLoop(i.currentLoad())
}

// an unavailable load evaluates the model at 0
func (i *Instance) currentLoad() float64 {
	if i.domain.Load == nil {
		return 0
	}
	return i.domain.Load.Load().ValueOr(0)
}

func (i *Instance) finish(output Output) Output {
	i.counters.Ticks++

	i.state.DutyPercent = output.DutyPercent
	i.state.Saturated = output.Saturated
	i.state.Integrator = i.pidState.Integrator
	i.state.Status = i.status
	i.state.Counters = i.counters
	i.publish()

	return output
}

// publish never blocks the tick, if a reader holds the lock the previous state stays visible
func (i *Instance) publish() {
	if !i.publishedMu.TryLock() {
		return
	}
	i.published = i.state
	i.publishedMu.Unlock()
}

// State returns a copy of the state after the last tick
func (i *Instance) State() State {
	i.publishedMu.RLock()
	defer i.publishedMu.RUnlock()
	return i.published
}

// GetOpenLoop returns the feed-forward baseline for the given load
func (i *Instance) GetOpenLoop(load float64) float64 {
	if i.domain.OpenLoop == nil {
		return 0
	}
	return i.domain.OpenLoop.OpenLoop(load)
}

// Evaluation is the output of a closed loop computation together with its terms
type Evaluation struct {
	Output
	Base         float64 `json:"base"`
	Trim         float64 `json:"trim"`
	Proportional float64 `json:"proportional"`
	Integral     float64 `json:"integral"`
	Derivative   float64 `json:"derivative"`
}

// GetClosedLoop computes the output for the given inputs at the current load with the current
// tuning, without changing the state of the instance. Returns false if the inputs are not usable.
func (i *Instance) GetClosedLoop(target float64, observed float64) (Output, bool) {
	evaluation, ok := i.EvaluateClosedLoop(target, observed, i.currentLoad())
	return evaluation.Output, ok
}

// EvaluateClosedLoop is GetClosedLoop at the given load, including the individual terms
func (i *Instance) EvaluateClosedLoop(target float64, observed float64, load float64) (Evaluation, bool) {
	snapshot := i.gains.Get(i.address.Index)
	base := i.GetOpenLoop(load)
	if !util.IsFinite(base) {
		return Evaluation{}, false
	}
	envelope := pid.Envelope{
		Base:     base,
		Inverted: snapshot.Inverted,
	}
	result := pid.Compute(pid.State{Integrator: i.State().Integrator}, pid.Input{
		Target:   target,
		Observed: observed,
		Gains:    snapshot.Gains,
		Dt:       i.period,
		Envelope: envelope,
	})
	if result.Flags.Has(pid.Fault) || result.Flags.Has(pid.Skipped) {
		return Evaluation{}, false
	}
	return Evaluation{
		Output:       Combine(envelope, result.Trim),
		Base:         base,
		Trim:         result.Trim,
		Proportional: result.Proportional,
		Integral:     result.Integral,
		Derivative:   result.Derivative,
	}, true
}
