package telemetry

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/markusressel/act2go/internal/ui"
	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
)

// FrameSink transmits CAN frames
type FrameSink interface {
	TransmitFrame(ctx context.Context, frame can.Frame) error
}

// SocketCanSink transmits frames on a SocketCAN interface
type SocketCanSink struct {
	conn net.Conn
	tx   *socketcan.Transmitter
}

func DialSocketCan(ctx context.Context, iface string) (*SocketCanSink, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, fmt.Errorf("socketcan dial %s: %w", iface, err)
	}
	return &SocketCanSink{
		conn: conn,
		tx:   socketcan.NewTransmitter(conn),
	}, nil
}

func (s *SocketCanSink) TransmitFrame(ctx context.Context, frame can.Frame) error {
	return s.tx.TransmitFrame(ctx, frame)
}

func (s *SocketCanSink) Close() error {
	return s.conn.Close()
}

const defaultBroadcastRate = 100 * time.Millisecond

// Broadcaster periodically sends the record of every instance as a CAN frame
type Broadcaster struct {
	buffer *Buffer
	layout Layout
	baseId uint32
	rate   time.Duration
	sink   FrameSink
}

func NewBroadcaster(buffer *Buffer, layout Layout, baseId uint32, rate time.Duration, sink FrameSink) *Broadcaster {
	if rate <= 0 {
		rate = defaultBroadcastRate
	}
	return &Broadcaster{
		buffer: buffer,
		layout: layout,
		baseId: baseId,
		rate:   rate,
		sink:   sink,
	}
}

// Broadcast sends one frame per instance
func (b *Broadcaster) Broadcast(ctx context.Context) error {
	for _, slot := range b.layout.Slots {
		for index := 0; index < slot.Count; index++ {
			record, err := b.buffer.Read(slot.Base, index)
			if err != nil {
				return err
			}
			frame := EncodeFrame(FrameId(b.baseId, slot, index), record)
			if err := b.sink.TransmitFrame(ctx, frame); err != nil {
				return fmt.Errorf("transmitting frame 0x%X: %w", frame.ID, err)
			}
		}
	}
	return nil
}

func (b *Broadcaster) Run(ctx context.Context) error {
	tick := time.NewTicker(b.rate)
	defer tick.Stop()

	failing := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			err := b.Broadcast(ctx)
			if err != nil && !failing {
				ui.Warning("Telemetry broadcast failed: %v", err)
			}
			failing = err != nil
		}
	}
}
