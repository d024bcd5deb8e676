package telemetry

import (
	"fmt"
	"sync"

	"github.com/markusressel/act2go/internal/controller"
)

// Buffer is the telemetry image shared by all controllers
type Buffer struct {
	mu   sync.RWMutex
	data []byte
}

func NewBuffer(size int) *Buffer {
	return &Buffer{
		data: make([]byte, size),
	}
}

func (b *Buffer) Size() int {
	return len(b.data)
}

// Publish writes the record of an instance, records outside the image are dropped
func (b *Buffer) Publish(record Record, base int, index int) {
	offset := base + index*RecordSize
	if offset < 0 || offset+RecordSize > len(b.data) {
		return
	}
	b.mu.Lock()
	record.Put(b.data[offset:])
	b.mu.Unlock()
}

func (b *Buffer) Read(base int, index int) (Record, error) {
	offset := base + index*RecordSize
	if offset < 0 || offset+RecordSize > len(b.data) {
		return Record{}, fmt.Errorf("record at %d is outside of the telemetry image", offset)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return ParseRecord(b.data[offset:])
}

// Snapshot returns a copy of the whole image
func (b *Buffer) Snapshot() []byte {
	b.mu.RLock()
	defer b.mu.RUnlock()
	result := make([]byte, len(b.data))
	copy(result, b.data)
	return result
}

// SlotPublisher writes the states of one controller into its slot
type SlotPublisher struct {
	buffer *Buffer
	slot   Slot
}

func NewSlotPublisher(buffer *Buffer, slot Slot) *SlotPublisher {
	return &SlotPublisher{
		buffer: buffer,
		slot:   slot,
	}
}

func (p *SlotPublisher) Publish(state *controller.State) {
	if state.Address.Index >= p.slot.Count {
		return
	}
	p.buffer.Publish(RecordFromState(state), p.slot.Base, state.Address.Index)
}
