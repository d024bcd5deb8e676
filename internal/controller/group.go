package controller

import (
	"context"
	"time"

	"github.com/markusressel/act2go/internal/ui"
)

// Sink drives the physical actuator of an instance
type Sink interface {
	Drive(index int, dutyPercent float64) error
}

// Publisher receives the state of every instance after each tick
type Publisher interface {
	Publish(state *State)
}

// Group is the fixed set of instances of one controller (banks x lanes)
type Group struct {
	id        string
	tickRate  time.Duration
	instances []*Instance
	sink      Sink
	publisher Publisher

	sinkFailing []bool
}

// NewGroup creates all instances of a controller. sink and publisher may be nil.
func NewGroup(
	id string,
	banks int,
	lanesPerBank int,
	domain Domain,
	gains GainSource,
	tickRate time.Duration,
	sink Sink,
	publisher Publisher,
) *Group {
	if lanesPerBank <= 0 {
		lanesPerBank = 1
	}
	count := banks * lanesPerBank

	g := &Group{
		id:          id,
		tickRate:    tickRate,
		sink:        sink,
		publisher:   publisher,
		sinkFailing: make([]bool, count),
	}
	for index := 0; index < count; index++ {
		g.instances = append(g.instances, NewInstance(NewAddress(index, lanesPerBank), domain, gains, tickRate))
	}
	return g
}

func (g *Group) GetId() string {
	return g.id
}

func (g *Group) TickRate() time.Duration {
	return g.tickRate
}

func (g *Group) Instances() []*Instance {
	return g.instances
}

func (g *Group) Instance(index int) (*Instance, bool) {
	if index < 0 || index >= len(g.instances) {
		return nil, false
	}
	return g.instances[index], true
}

// Init evaluates the wiring of every instance
func (g *Group) Init() {
	for _, instance := range g.instances {
		status := instance.Init()
		ui.Debug("Controller %s instance %d: %s", g.id, instance.Address().Index, status)
	}
}

// RequestReset resets all instances at their next tick
func (g *Group) RequestReset() {
	for _, instance := range g.instances {
		instance.RequestReset()
	}
}

// Tick advances every instance by dt seconds, drives the sink and publishes the new states
func (g *Group) Tick(dt float64) {
	for index, instance := range g.instances {
		output := instance.Tick(dt)
		g.drive(index, output.DutyPercent)
		if g.publisher != nil {
			g.publisher.Publish(&instance.state)
		}
	}
}

func (g *Group) drive(index int, dutyPercent float64) {
	if g.sink == nil {
		return
	}
	err := g.sink.Drive(index, dutyPercent)
	if err != nil && !g.sinkFailing[index] {
		ui.Warning("Controller %s: unable to drive instance %d: %v", g.id, index, err)
	} else if err == nil && g.sinkFailing[index] {
		ui.Info("Controller %s: instance %d is driven again", g.id, index)
	}
	g.sinkFailing[index] = err != nil
}

// States returns a copy of the state of every instance
func (g *Group) States() []State {
	result := make([]State, len(g.instances))
	for index, instance := range g.instances {
		result[index] = instance.State()
	}
	return result
}

// Run ticks all instances at the configured rate until ctx is done,
// then drives all actuators to zero
func (g *Group) Run(ctx context.Context) error {
	g.Init()

	ui.Info("Starting controller loop for '%s' (%d instances, every %v)", g.id, len(g.instances), g.tickRate)

	tick := time.NewTicker(g.tickRate)
	defer tick.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			g.stop()
			return nil
		case now := <-tick.C:
			dt := now.Sub(last).Seconds()
			last = now
			g.Tick(dt)
		}
	}
}

func (g *Group) stop() {
	ui.Info("Stopping controller '%s'", g.id)
	for index := range g.instances {
		g.drive(index, 0)
	}
}
