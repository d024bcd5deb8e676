package telemetry

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/markusressel/act2go/internal/configuration"
	"github.com/markusressel/act2go/internal/controller"
	"github.com/stretchr/testify/assert"
	"go.einride.tech/can"
)

// decodeFrame is the inverse of EncodeFrame, the integrator is not transmitted
func decodeFrame(frame can.Frame) Record {
	return Record{
		Target:      float32(frame.Data.SignedBitsLittleEndian(0, 16)) / valueScale,
		Observed:    float32(frame.Data.SignedBitsLittleEndian(16, 16)) / valueScale,
		DutyPercent: float32(frame.Data.UnsignedBitsLittleEndian(32, 16)) / dutyScale,
		Status:      uint8(frame.Data.UnsignedBitsLittleEndian(48, 8)),
		Flags:       uint8(frame.Data.UnsignedBitsLittleEndian(56, 8)),
	}
}

func createState() controller.State {
	return controller.State{
		Address:       controller.NewAddress(3, 2),
		Target:        30,
		TargetValid:   true,
		Observed:      -20.5,
		ObservedValid: true,
		DutyPercent:   100,
		Saturated:     true,
		Integrator:    1.25,
		Status:        controller.ClosedLoopActive,
	}
}

func createControllers() []configuration.ControllerConfig {
	return []configuration.ControllerConfig{
		{ID: "vvt", Type: configuration.ControllerTypeVvt, Banks: 2, LanesPerBank: 2},
		{ID: "idle", Type: configuration.ControllerTypeIdle, Banks: 1, LanesPerBank: 1},
	}
}

func TestRecord_Layout(t *testing.T) {
	// GIVEN
	state := createState()
	record := RecordFromState(&state)
	data := make([]byte, RecordSize)
	for i := range data {
		data[i] = 0xFF
	}

	// WHEN
	record.Put(data)

	// THEN
	assert.Equal(t, []byte{0x00, 0x00, 0xF0, 0x41}, data[0:4])
	assert.Equal(t, uint8(controller.ClosedLoopActive), data[16])
	assert.Equal(t, FlagTargetValid|FlagObservedValid|FlagSaturated, data[17])
	assert.Equal(t, make([]byte, 6), data[18:24])

	parsed, err := ParseRecord(data)
	assert.NoError(t, err)
	assert.Equal(t, record, parsed)
	assert.Equal(t, float32(-20.5), parsed.Observed)
}

func TestRecord_Flags(t *testing.T) {
	// GIVEN
	state := controller.State{TargetValid: true}

	// WHEN
	record := RecordFromState(&state)

	// THEN
	assert.True(t, record.Has(FlagTargetValid))
	assert.False(t, record.Has(FlagObservedValid))
	assert.False(t, record.Has(FlagSaturated))
}

func TestParseRecord_TooShort(t *testing.T) {
	// WHEN
	_, err := ParseRecord(make([]byte, RecordSize-1))

	// THEN
	assert.Error(t, err)
}

func TestAddressTable_CaseInsensitive(t *testing.T) {
	// GIVEN
	table := NewAddressTable(map[string]int{"VVT": 64})

	// WHEN
	base, ok := table.Base("vvt")

	// THEN
	assert.True(t, ok)
	assert.Equal(t, 64, base)
}

func TestNewLayout(t *testing.T) {
	// GIVEN
	table := NewAddressTable(configuration.DefaultTelemetryRecords)

	// WHEN
	layout, err := NewLayout(table, createControllers())

	// THEN
	assert.NoError(t, err)
	assert.Len(t, layout.Slots, 2)
	assert.Equal(t, Slot{Controller: "vvt", Record: "vvt", Base: 0, Count: 4}, layout.Slots[0])
	assert.Equal(t, 256+RecordSize, layout.Size)
	slot, ok := layout.Slot("idle")
	assert.True(t, ok)
	assert.Equal(t, 256, slot.Base)
}

func TestNewLayout_Overlap(t *testing.T) {
	// GIVEN
	table := NewAddressTable(map[string]int{"vvt": 0, "idle": RecordSize * 3})

	// WHEN
	_, err := NewLayout(table, createControllers())

	// THEN
	assert.Error(t, err)
}

func TestNewLayout_MissingRecord(t *testing.T) {
	// GIVEN
	table := NewAddressTable(map[string]int{"vvt": 0})

	// WHEN
	_, err := NewLayout(table, createControllers())

	// THEN
	assert.Error(t, err)
}

func TestBuffer_Publish(t *testing.T) {
	// GIVEN
	layout, _ := NewLayout(NewAddressTable(configuration.DefaultTelemetryRecords), createControllers())
	buffer := NewBuffer(layout.Size)
	slot, _ := layout.Slot("vvt")
	publisher := NewSlotPublisher(buffer, slot)
	state := createState()

	// WHEN
	publisher.Publish(&state)

	// THEN
	record, err := buffer.Read(slot.Base, 3)
	assert.NoError(t, err)
	assert.Equal(t, RecordFromState(&state), record)
	snapshot := buffer.Snapshot()
	assert.Len(t, snapshot, layout.Size)
	assert.Equal(t, uint8(controller.ClosedLoopActive), snapshot[3*RecordSize+16])
}

func TestBuffer_OutOfRange(t *testing.T) {
	// GIVEN
	buffer := NewBuffer(RecordSize)

	// WHEN
	buffer.Publish(Record{Status: 1}, 0, 1)
	_, err := buffer.Read(0, 1)

	// THEN
	assert.Error(t, err)
	assert.Equal(t, make([]byte, RecordSize), buffer.Snapshot())
}

func TestFrame_RoundTrip(t *testing.T) {
	// GIVEN
	state := createState()
	record := RecordFromState(&state)

	// WHEN
	frame := EncodeFrame(0x603, record)
	decoded := decodeFrame(frame)

	// THEN
	assert.Equal(t, uint32(0x603), frame.ID)
	assert.Equal(t, uint8(8), frame.Length)
	assert.Equal(t, float32(30), decoded.Target)
	assert.Equal(t, float32(-20.5), decoded.Observed)
	assert.Equal(t, float32(100), decoded.DutyPercent)
	assert.Equal(t, record.Status, decoded.Status)
	assert.Equal(t, record.Flags, decoded.Flags)
}

func TestFrame_Bytes(t *testing.T) {
	// GIVEN
	record := Record{Target: 1, Observed: -1, DutyPercent: 2.55, Status: 3, Flags: 5}

	// WHEN
	frame := EncodeFrame(1, record)

	// THEN
	assert.Equal(t, can.Data{0x0A, 0x00, 0xF6, 0xFF, 0xFF, 0x00, 0x03, 0x05}, frame.Data)
}

func TestFrame_NonFinite(t *testing.T) {
	// GIVEN
	record := Record{Target: float32(math.NaN()), Observed: float32(math.Inf(1)), DutyPercent: 200}

	// WHEN
	decoded := decodeFrame(EncodeFrame(1, record))

	// THEN
	assert.Equal(t, float32(0), decoded.Target)
	assert.Equal(t, float32(3276.7), decoded.Observed)
	assert.Equal(t, float32(200), decoded.DutyPercent)
}

func TestFrameId(t *testing.T) {
	// GIVEN
	slot := Slot{Base: 256, Count: 1}

	// THEN
	assert.Equal(t, uint32(0x600+256/RecordSize+0), FrameId(0x600, slot, 0))
}

type mockFrameSink struct {
	frames []can.Frame
	err    error
}

func (s *mockFrameSink) TransmitFrame(_ context.Context, frame can.Frame) error {
	s.frames = append(s.frames, frame)
	return s.err
}

func TestBroadcaster_Broadcast(t *testing.T) {
	// GIVEN
	layout, _ := NewLayout(NewAddressTable(configuration.DefaultTelemetryRecords), createControllers())
	buffer := NewBuffer(layout.Size)
	state := createState()
	slot, _ := layout.Slot("vvt")
	NewSlotPublisher(buffer, slot).Publish(&state)
	sink := &mockFrameSink{}
	broadcaster := NewBroadcaster(buffer, layout, 0x600, 0, sink)

	// WHEN
	err := broadcaster.Broadcast(context.Background())

	// THEN
	assert.NoError(t, err)
	assert.Len(t, sink.frames, 5)
	assert.Equal(t, uint32(0x603), sink.frames[3].ID)
	assert.Equal(t, float32(30), decodeFrame(sink.frames[3]).Target)
}

func TestBroadcaster_SinkError(t *testing.T) {
	// GIVEN
	layout, _ := NewLayout(NewAddressTable(configuration.DefaultTelemetryRecords), createControllers())
	sink := &mockFrameSink{err: errors.New("bus off")}
	broadcaster := NewBroadcaster(NewBuffer(layout.Size), layout, 0x600, 0, sink)

	// WHEN
	err := broadcaster.Broadcast(context.Background())

	// THEN
	assert.Error(t, err)
	assert.Len(t, sink.frames, 1)
}

func TestFileExporter(t *testing.T) {
	// GIVEN
	buffer := NewBuffer(RecordSize)
	buffer.Publish(Record{Status: 4}, 0, 0)
	path := filepath.Join(t.TempDir(), "telemetry.bin")
	exporter := NewFileExporter(buffer, path, 0)

	// WHEN
	err := exporter.Export()

	// THEN
	assert.NoError(t, err)
	content, _ := os.ReadFile(path)
	assert.Equal(t, buffer.Snapshot(), content)
}
