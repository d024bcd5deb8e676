package telemetry

import (
	"context"
	"time"

	"github.com/markusressel/act2go/internal/ui"
	"github.com/markusressel/act2go/internal/util"
)

const defaultExportRate = time.Second

// FileExporter periodically replaces a file with the current telemetry image
type FileExporter struct {
	buffer *Buffer
	path   string
	rate   time.Duration
}

func NewFileExporter(buffer *Buffer, path string, rate time.Duration) *FileExporter {
	if rate <= 0 {
		rate = defaultExportRate
	}
	return &FileExporter{
		buffer: buffer,
		path:   path,
		rate:   rate,
	}
}

func (e *FileExporter) Export() error {
	path, err := util.ExpandHomePath(e.path)
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(e.buffer.Snapshot(), path)
}

func (e *FileExporter) Run(ctx context.Context) error {
	tick := time.NewTicker(e.rate)
	defer tick.Stop()

	failing := false
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick.C:
			err := e.Export()
			if err != nil && !failing {
				ui.Warning("Telemetry export to %s failed: %v", e.path, err)
			}
			failing = err != nil
		}
	}
}
