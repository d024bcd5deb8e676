// Package telemetry publishes the state of every controller instance into a
// fixed-layout binary image, as CAN frames and as a file.
package telemetry

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/markusressel/act2go/internal/controller"
)

// RecordSize is the size of the record of a single instance in bytes
const RecordSize = 24

const (
	FlagTargetValid uint8 = 1 << iota
	FlagObservedValid
	FlagSaturated
)

// Record is the telemetry of a single instance. Layout (little endian):
//
//	0  target      float32
//	4  observed    float32
//	8  dutyPercent float32
//	12 integrator  float32
//	16 status      uint8
//	17 flags       uint8
//	18 reserved    [6]byte
type Record struct {
	Target      float32 `json:"target"`
	Observed    float32 `json:"observed"`
	DutyPercent float32 `json:"dutyPercent"`
	Integrator  float32 `json:"integrator"`
	Status      uint8   `json:"status"`
	Flags       uint8   `json:"flags"`
}

func RecordFromState(state *controller.State) Record {
	record := Record{
		Target:      float32(state.Target),
		Observed:    float32(state.Observed),
		DutyPercent: float32(state.DutyPercent),
		Integrator:  float32(state.Integrator),
		Status:      uint8(state.Status),
	}
	if state.TargetValid {
		record.Flags |= FlagTargetValid
	}
	if state.ObservedValid {
		record.Flags |= FlagObservedValid
	}
	if state.Saturated {
		record.Flags |= FlagSaturated
	}
	return record
}

// Put writes the record into the first RecordSize bytes of b
func (r Record) Put(b []byte) {
	_ = b[RecordSize-1]
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(r.Target))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(r.Observed))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(r.DutyPercent))
	binary.LittleEndian.PutUint32(b[12:], math.Float32bits(r.Integrator))
	b[16] = r.Status
	b[17] = r.Flags
	clear(b[18:RecordSize])
}

func ParseRecord(b []byte) (Record, error) {
	if len(b) < RecordSize {
		return Record{}, fmt.Errorf("record needs %d bytes, got %d", RecordSize, len(b))
	}
	return Record{
		Target:      math.Float32frombits(binary.LittleEndian.Uint32(b[0:])),
		Observed:    math.Float32frombits(binary.LittleEndian.Uint32(b[4:])),
		DutyPercent: math.Float32frombits(binary.LittleEndian.Uint32(b[8:])),
		Integrator:  math.Float32frombits(binary.LittleEndian.Uint32(b[12:])),
		Status:      b[16],
		Flags:       b[17],
	}, nil
}

func (r Record) Has(flag uint8) bool {
	return r.Flags&flag != 0
}
