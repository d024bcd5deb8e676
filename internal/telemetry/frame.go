package telemetry

import (
	"math"

	"go.einride.tech/can"
)

const (
	// scale of target and observed in a frame
	valueScale = 10
	// scale of the duty in a frame
	dutyScale = 100
)

// FrameId returns the CAN id of an instance: one id per record slot of the image
func FrameId(baseId uint32, slot Slot, index int) uint32 {
	return baseId + uint32(slot.Base/RecordSize) + uint32(index)
}

// EncodeFrame packs a record into a classic 8 byte CAN frame:
// target int16 x10, observed int16 x10, duty uint16 x100, status uint8, flags uint8
func EncodeFrame(id uint32, record Record) can.Frame {
	frame := can.Frame{
		ID:     id,
		Length: 8,
	}
	frame.Data.SetSignedBitsLittleEndian(0, 16, scaleSigned(record.Target, valueScale))
	frame.Data.SetSignedBitsLittleEndian(16, 16, scaleSigned(record.Observed, valueScale))
	frame.Data.SetUnsignedBitsLittleEndian(32, 16, scaleUnsigned(record.DutyPercent, dutyScale))
	frame.Data.SetUnsignedBitsLittleEndian(48, 8, uint64(record.Status))
	frame.Data.SetUnsignedBitsLittleEndian(56, 8, uint64(record.Flags))
	return frame
}

// non-finite values are sent as 0, the flags tell whether the value is valid
func scaleSigned(value float32, scale float64) int64 {
	v := float64(value) * scale
	if math.IsNaN(v) {
		return 0
	}
	return int64(math.Round(math.Max(math.MinInt16, math.Min(math.MaxInt16, v))))
}

func scaleUnsigned(value float32, scale float64) uint64 {
	v := float64(value) * scale
	if math.IsNaN(v) {
		return 0
	}
	return uint64(math.Round(math.Max(0, math.Min(math.MaxUint16, v))))
}
