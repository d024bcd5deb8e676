package controller

import (
	"github.com/markusressel/act2go/internal/gains"
	"github.com/markusressel/act2go/internal/sensors"
)

// SetpointSource provides the desired value of the controlled quantity per instance
type SetpointSource interface {
	Setpoint(index int) sensors.Reading
}

// PlantObserver provides the measured value of the controlled quantity per instance
type PlantObserver interface {
	Observe(index int) sensors.Reading
}

// OpenLoopModel computes the feed-forward baseline duty for a given load
type OpenLoopModel interface {
	OpenLoop(load float64) float64
}

// LoadSource provides the current operating point used by the OpenLoopModel
type LoadSource interface {
	Load() sensors.Reading
}

// WiringChecker reports whether an instance has usable sensor wiring
type WiringChecker interface {
	IsWired(index int) bool
}

// GainSource provides a consistent copy of the tuning of an instance
type GainSource interface {
	Get(index int) gains.Snapshot
}

// Domain bundles the capabilities a physical subsystem provides to its controller.
// OpenLoop, Load and Wiring are optional.
type Domain struct {
	Setpoint SetpointSource
	Observer PlantObserver
	OpenLoop OpenLoopModel
	Load     LoadSource
	Wiring   WiringChecker
}

type SetpointFunc func(index int) sensors.Reading

func (f SetpointFunc) Setpoint(index int) sensors.Reading {
	return f(index)
}

type ObserverFunc func(index int) sensors.Reading

func (f ObserverFunc) Observe(index int) sensors.Reading {
	return f(index)
}

type OpenLoopFunc func(load float64) float64

func (f OpenLoopFunc) OpenLoop(load float64) float64 {
	return f(load)
}

type LoadFunc func() sensors.Reading

func (f LoadFunc) Load() sensors.Reading {
	return f()
}

// ConstantOpenLoop is an OpenLoopModel for domains without feed-forward model
type ConstantOpenLoop float64

func (c ConstantOpenLoop) OpenLoop(float64) float64 {
	return float64(c)
}
