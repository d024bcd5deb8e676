package telemetry

import (
	"fmt"
	"strings"

	"github.com/markusressel/act2go/internal/configuration"
	"golang.org/x/exp/slices"
)

// AddressTable maps record names to their base address in the telemetry image
type AddressTable map[string]int

func NewAddressTable(records map[string]int) AddressTable {
	table := AddressTable{}
	for name, base := range records {
		table[strings.ToLower(name)] = base
	}
	return table
}

func (t AddressTable) Base(name string) (int, bool) {
	base, ok := t[strings.ToLower(name)]
	return base, ok
}

// Slot is the area of the telemetry image used by one controller
type Slot struct {
	Controller string `json:"controller"`
	Record     string `json:"record"`
	Base       int    `json:"base"`
	Count      int    `json:"count"`
}

func (s Slot) End() int {
	return s.Base + s.Count*RecordSize
}

// Layout is the placement of all controllers in the telemetry image
type Layout struct {
	Slots []Slot `json:"slots"`
	Size  int    `json:"size"`
}

// NewLayout places every controller at the base address of its record.
// Overlapping slots are rejected.
func NewLayout(table AddressTable, controllers []configuration.ControllerConfig) (Layout, error) {
	var layout Layout
	for _, c := range controllers {
		record := c.TelemetryRecord
		if len(record) <= 0 {
			record = c.Type
		}
		base, ok := table.Base(record)
		if !ok {
			return Layout{}, fmt.Errorf("controller %s: no telemetry record '%s' in the address table", c.ID, record)
		}
		if base < 0 {
			return Layout{}, fmt.Errorf("controller %s: negative base address %d", c.ID, base)
		}
		layout.Slots = append(layout.Slots, Slot{
			Controller: c.ID,
			Record:     record,
			Base:       base,
			Count:      c.InstanceCount(),
		})
	}

	slices.SortFunc(layout.Slots, func(a, b Slot) int {
		return a.Base - b.Base
	})
	for i, slot := range layout.Slots {
		if i > 0 && slot.Base < layout.Slots[i-1].End() {
			return Layout{}, fmt.Errorf("telemetry records of %s and %s overlap", layout.Slots[i-1].Controller, slot.Controller)
		}
		if slot.End() > layout.Size {
			layout.Size = slot.End()
		}
	}
	return layout, nil
}

func (l Layout) Slot(controllerId string) (Slot, bool) {
	for _, slot := range l.Slots {
		if slot.Controller == controllerId {
			return slot, true
		}
	}
	return Slot{}, false
}
